// Package source defines the domain models shared by resolution and download.
package source

import "fmt"

// Episode represents a discrete media segment within a series, or a standalone lesson.
type Episode struct {
	// Series slug (e.g. "laravel-from-scratch"). Empty for standalone lessons.
	Series string `json:"series"`
	// Episode number within the series. Zero for standalone lessons.
	Number int `json:"number"`
	// Lesson slug for standalone lessons (e.g. "regex-basics").
	Slug string `json:"slug"`
	// Display name derived from the fetched page.
	Name string `json:"name"`
	// Site-relative page path (e.g. "/series/foo/episodes/3" or "/lessons/bar").
	Path string `json:"path"`
}

// String returns the canonical human-readable identifier of the episode.
func (e *Episode) String() string {
	if e.Series != "" {
		return fmt.Sprintf("%s #%d", e.Series, e.Number)
	}
	return e.Slug
}

// Key returns the stable identifier used by the completed-download ledger.
func (e *Episode) Key() string {
	if e.Series != "" {
		return fmt.Sprintf("series/%s/%d", e.Series, e.Number)
	}
	return "lessons/" + e.Slug
}
