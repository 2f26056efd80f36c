// package formatter provides functions to export cached films to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/lbxd/internal/models"
	"github.com/desertthunder/lbxd/internal/shared"
)

// ExportToCSV converts cached films to CSV format with columns: Slug, Title, Year, Status, TMDBID, Platforms, WatchLink
func ExportToCSV(films []models.Film) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Slug", "Title", "Year", "Status", "TMDBID", "Platforms", "WatchLink"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, film := range films {
		record := []string{
			film.Slug,
			film.Title,
			yearString(film.Year),
			string(film.Status),
			tmdbIDString(film.TMDBID),
			platformNames(film.Platforms),
			film.WatchLink,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts cached films to Markdown format with a status summary
func ExportToMarkdown(films []models.Film, username string) ([]byte, error) {
	var buf bytes.Buffer

	if username != "" {
		buf.WriteString(fmt.Sprintf("# %s's watchlist\n\n", username))
	} else {
		buf.WriteString("# Watchlist\n\n")
	}

	found, notFound, failed := countStatuses(films)
	buf.WriteString(fmt.Sprintf("**Films**: %d (%d matched, %d unmatched, %d failed)\n\n", len(films), found, notFound, failed))

	buf.WriteString("## Films\n\n")
	for i, film := range films {
		yearPart := ""
		if film.Year != nil {
			yearPart = fmt.Sprintf(" (%d)", *film.Year)
		}

		platforms := platformNames(film.Platforms)
		streamingPart := ""
		switch {
		case film.Status == models.StatusFound && platforms != "":
			streamingPart = fmt.Sprintf(" [%s]", platforms)
		case film.Status == models.StatusFound:
			streamingPart = " [not streaming]"
		default:
			streamingPart = fmt.Sprintf(" [%s]", film.Status)
		}

		buf.WriteString(fmt.Sprintf("%d. %s%s%s\n", i+1, film.Title, yearPart, streamingPart))
	}

	return buf.Bytes(), nil
}

// ExportToText converts cached films to plain text format
func ExportToText(films []models.Film, username string) ([]byte, error) {
	var buf bytes.Buffer

	if username != "" {
		buf.WriteString(fmt.Sprintf("Watchlist: %s\n", username))
	}
	buf.WriteString(fmt.Sprintf("Films: %d\n\n", len(films)))

	for i, film := range films {
		yearPart := ""
		if film.Year != nil {
			yearPart = fmt.Sprintf(" (%d)", *film.Year)
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s\n", i+1, film.Title, yearPart))
	}

	return buf.Bytes(), nil
}

// ToJSON generates a JSON representation of the film cache
func ToJSON(films []models.Film, pretty bool) ([]byte, error) {
	return shared.MarshalJSON(films, pretty)
}

// WriteCSVExport exports cached films to a CSV file.
//
// Defaults to watchlist_films.csv as the filename.
func WriteCSVExport(films []models.Film, filepath string) (string, error) {
	if filepath == "" {
		filepath = "watchlist_films.csv"
	}

	csvData, err := ExportToCSV(films)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(filepath, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return filepath, nil
}

// WriteMarkdownExport exports cached films to a Markdown file.
//
// Defaults to watchlist.md as the filename.
func WriteMarkdownExport(films []models.Film, username, filepath string) (string, error) {
	if filepath == "" {
		filepath = "watchlist.md"
	}

	mdData, err := ExportToMarkdown(films, username)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}

// WriteTextExport exports cached films to a plain text file.
//
// Defaults to watchlist.txt as the filename.
func WriteTextExport(films []models.Film, username, filepath string) (string, error) {
	if filepath == "" {
		filepath = "watchlist.txt"
	}

	textData, err := ExportToText(films, username)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}

func yearString(year *int) string {
	if year == nil {
		return ""
	}
	return strconv.Itoa(*year)
}

func tmdbIDString(id *int) string {
	if id == nil {
		return ""
	}
	return strconv.Itoa(*id)
}

func platformNames(platforms []models.StreamingPlatform) string {
	names := make([]string, len(platforms))
	for i, platform := range platforms {
		names[i] = platform.ProviderName
	}
	return strings.Join(names, ", ")
}

func countStatuses(films []models.Film) (found, notFound, failed int) {
	for _, film := range films {
		switch film.Status {
		case models.StatusFound:
			found++
		case models.StatusNotFound:
			notFound++
		case models.StatusError:
			failed++
		}
	}
	return found, notFound, failed
}
