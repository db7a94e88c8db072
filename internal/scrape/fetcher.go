package scrape

import "context"

// Page is the scraped content of one URL.
type Page struct {
	// Markdown is the page content converted to markdown.
	Markdown string
	// Metadata carries page-level facts such as title and description.
	Metadata map[string]string
}

// Fetcher retrieves page content for a normalized URL.
type Fetcher interface {
	Scrape(ctx context.Context, url string) (*Page, error)
}
