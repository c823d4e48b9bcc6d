// Package ledger tracks which items have already been downloaded to completion.
package ledger

import (
	"time"

	"github.com/blaqmajik/laracasts-downloader/filesystem"
	"github.com/blaqmajik/laracasts-downloader/source"
	"github.com/blaqmajik/laracasts-downloader/where"
	"github.com/metafates/gache"
)

// Record is a single completed-download entry.
type Record struct {
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Destination string    `json:"destination"`
	CompletedAt time.Time `json:"completed_at"`
}

// cacher provides an abstracted, disk-backed registry of completed downloads.
var cacher = gache.New[map[string]*Record](
	&gache.Options{
		Path:       where.Ledger(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns the complete collection of completed-download records from the persistent store.
func Get() (map[string]*Record, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Record), nil
	}
	return cached, nil
}

// Contains reports whether the episode is already recorded as downloaded.
func Contains(episode *source.Episode) bool {
	records, err := Get()
	if err != nil {
		return false
	}
	_, ok := records[episode.Key()]
	return ok
}

// Save records a completed download for the episode.
func Save(episode *source.Episode, destination string) error {
	records, err := Get()
	if err != nil {
		return err
	}

	records[episode.Key()] = &Record{
		Name:        episode.Name,
		Path:        episode.Path,
		Destination: destination,
		CompletedAt: time.Now(),
	}

	return cacher.Set(records)
}

// Remove deletes the record for the episode, if any.
func Remove(episode *source.Episode) error {
	records, err := Get()
	if err != nil {
		return err
	}

	delete(records, episode.Key())
	return cacher.Set(records)
}
