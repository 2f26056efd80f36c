// Package services implements clients for the two upstream sources the
// refresh pipeline consumes.
//
// # Letterboxd Implementation
//
// [LetterboxdService] scrapes the public watchlist HTML one page at a time,
// following the a.next pagination link until exhausted. Parsing uses goquery
// selectors against the poster grid (li.poster-container div.film-poster).
//
// A [rate.Limiter] with burst 1 enforces the inter-page crawl delay: the
// first page is fetched immediately, every later page waits the configured
// interval. Tests construct the service with a zero delay.
//
// # TMDB Implementation
//
// [TMDBService] wraps the three endpoints the enricher needs: search by
// title, movie details, and watch/providers. Responses decode into typed
// structs; only the flatrate tier of the provider breakdown is read.
// Relative image paths are resolved here to absolute URLs, with distinct
// rendition sizes for provider logos (w45) and posters (w300).
//
// # Error Handling
//
// Both clients use sentinel errors from the shared package:
//   - [shared.ErrTransport] : network failure, timeout, or non-2xx status
//   - [shared.ErrParse] : response body did not match the expected shape
//
// Every request carries a context and the client's own 30 second timeout.
// A failed Letterboxd page aborts the whole watchlist fetch; TMDB failures
// are contained per film by the refresh engine, not here.
package services
