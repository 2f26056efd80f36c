package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/lbxd/internal/models"
	"github.com/desertthunder/lbxd/internal/tasks"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// RenderList renders the film cache as a styled terminal listing.
func RenderList(films []models.Film, username string) string {
	var b strings.Builder

	heading := "Watchlist"
	if username != "" {
		heading = fmt.Sprintf("%s's watchlist", username)
	}
	b.WriteString(styles.title.Render(heading))
	b.WriteString("\n")

	if len(films) == 0 {
		b.WriteString(styles.help.Render("No films cached. Run a refresh to populate the watchlist."))
		b.WriteString("\n")
		return b.String()
	}

	for _, film := range films {
		yearPart := ""
		if film.Year != nil {
			yearPart = fmt.Sprintf(" (%d)", *film.Year)
		}

		switch film.Status {
		case models.StatusFound:
			platforms := platformNames(film.Platforms)
			if platforms == "" {
				platforms = "not streaming"
			}
			b.WriteString(fmt.Sprintf("%s%s  %s\n", film.Title, yearPart, styles.ok.Render(platforms)))
		case models.StatusNotFound:
			b.WriteString(fmt.Sprintf("%s%s  %s\n", film.Title, yearPart, styles.warn.Render("no match")))
		case models.StatusError:
			b.WriteString(fmt.Sprintf("%s%s  %s\n", film.Title, yearPart, styles.err.Render("lookup failed")))
		default:
			b.WriteString(fmt.Sprintf("%s%s  %s\n", film.Title, yearPart, styles.help.Render(string(film.Status))))
		}
	}

	return b.String()
}

// RenderSummary renders the outcome of a refresh cycle.
func RenderSummary(result *tasks.RefreshResult) string {
	var b strings.Builder

	b.WriteString(styles.title.Render("Refresh complete"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Scraped:   %d\n", result.Scraped))
	b.WriteString(fmt.Sprintf("Matched:   %s\n", styles.ok.Render(fmt.Sprintf("%d", result.Found))))
	b.WriteString(fmt.Sprintf("Unmatched: %s\n", styles.warn.Render(fmt.Sprintf("%d", result.NotFound))))
	if result.Failed > 0 {
		b.WriteString(fmt.Sprintf("Failed:    %s\n", styles.err.Render(fmt.Sprintf("%d", result.Failed))))
	}
	if result.Pruned > 0 {
		b.WriteString(fmt.Sprintf("Pruned:    %d\n", result.Pruned))
	}
	b.WriteString(styles.help.Render(fmt.Sprintf("Took %s", result.Duration.Round(time.Millisecond))))
	b.WriteString("\n")

	return b.String()
}
