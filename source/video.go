// Package source defines the domain models shared by resolution and download.
package source

import "fmt"

// Video is a directly downloadable, fixed-quality media variant offered by a provider.
type Video struct {
	// Direct URL to the file.
	URL string `json:"url"`
	// Numeric quality indicator (e.g. 1080). Higher is better.
	Quality int `json:"quality"`
}

// String returns the quality label or URL for display.
func (v *Video) String() string {
	if v.Quality > 0 {
		return fmt.Sprintf("%dp", v.Quality)
	}
	return v.URL
}

// ResolvedMedia is the outcome of a resolution pass: the playable URL and the
// provider that produced it. Immutable once produced, consumed exactly once by
// the transfer stage.
type ResolvedMedia struct {
	URL      string
	Quality  int
	Provider string
}
