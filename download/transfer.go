// Package download streams resolved media URLs to local storage with resumable, retry-tolerant transfers.
package download

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/blaqmajik/laracasts-downloader/filesystem"
	"github.com/blaqmajik/laracasts-downloader/log"
	"github.com/blaqmajik/laracasts-downloader/network"
	"github.com/blaqmajik/laracasts-downloader/site"
)

// maxRetries bounds the retry loop when retrying is enabled: a transfer is
// attempted at most 1+maxRetries times.
const maxRetries = 3

// ProgressFunc receives (bytesOnDiskSoFar, totalExpectedBytes) while a
// transfer streams. It is a side-effecting notification only; the transfer
// never depends on it.
type ProgressFunc func(done, total int64)

// Transfer streams media to destination files through the shared session.
type Transfer struct {
	session *network.Session
	retry   bool
}

// New creates a Transfer. When retry is false every failure is final after a
// single attempt.
func New(session *network.Session, retry bool) *Transfer {
	return &Transfer{session: session, retry: retry}
}

// Run downloads url to destPath, resuming from whatever is already on disk.
//
// Each attempt recomputes the resume offset from the destination file itself,
// so partial writes from a prior attempt are accounted for and no byte range
// is duplicated or skipped. The destination is only ever appended to, never
// truncated. A response that turns out to be a rendered page instead of media
// means the subscription lapsed mid-session: that is fatal immediately,
// regardless of the retry budget. Every other failure is transient and
// consumes one retry. Retry exhaustion returns the last underlying failure.
func (t *Transfer) Run(url, destPath string, progress ProgressFunc) error {
	start := time.Now()
	defer func() {
		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)
		log.Debugf("transfer of %s finished in %s, heap in use %s",
			filepath.Base(destPath), time.Since(start).Round(time.Millisecond), humanize.Bytes(stats.HeapInuse))
	}()

	if err := filesystem.API().MkdirAll(filepath.Dir(destPath), os.ModePerm); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	retries := 0
	if t.retry {
		retries = maxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		err := t.attempt(url, destPath, progress)
		if err == nil {
			return nil
		}
		if errors.Is(err, site.ErrSubscriptionNotActive) {
			return err
		}

		lastErr = err
		log.Warnf("transfer attempt %d/%d failed: %v", attempt+1, retries+1, err)
	}

	return lastErr
}

// attempt performs one ranged GET, appending the response to the destination.
func (t *Transfer) attempt(url, destPath string, progress ProgressFunc) error {
	offset := int64(0)
	if info, err := filesystem.API().Stat(destPath); err == nil {
		offset = info.Size()
	}

	req, err := t.session.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))

	resp, err := t.session.DoMedia(req)
	if err != nil {
		return fmt.Errorf("request media: %w", err)
	}
	defer resp.Body.Close()

	// A rendered page where binary media should be means the account's
	// subscription lapsed mid-session.
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return site.ErrSubscriptionNotActive
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	file, err := filesystem.API().OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open destination: %w", err)
	}
	defer file.Close()

	total := offset
	if resp.ContentLength > 0 {
		total += resp.ContentLength
	}

	var sink io.Writer = file
	if progress != nil {
		sink = &progressWriter{writer: file, done: offset, total: total, onUpdate: progress}
	}

	if _, err := io.Copy(sink, resp.Body); err != nil {
		return fmt.Errorf("stream media: %w", err)
	}
	return nil
}

// progressWriter tracks appended bytes on top of the resume offset and
// notifies the sink after every write.
type progressWriter struct {
	writer   io.Writer
	done     int64
	total    int64
	onUpdate ProgressFunc
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.writer.Write(p)
	pw.done += int64(n)
	pw.onUpdate(pw.done, pw.total)
	return n, err
}
