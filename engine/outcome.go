// Package engine composes session, fetch, resolution, and transfer into the downloader's public operations.
package engine

import (
	"fmt"
	"time"
)

// Status is the terminal classification of one download operation.
type Status int

const (
	// Success means the destination file now contains the complete media.
	Success Status = iota
	// Skipped means the ledger already records this item as downloaded.
	Skipped
	// NotYetAvailable means the page reports a future release date.
	NotYetAvailable
	// SubscriptionInactive means the account lapsed, at login or mid-transfer.
	SubscriptionInactive
	// Failed covers everything else; Err carries the underlying reason.
	Failed
)

// Outcome is the terminal value of one engine operation. Exactly one is
// produced per invocation; failures never escape as panics or process exits.
type Outcome struct {
	Status       Status
	Item         string
	Destination  string
	ScheduledFor time.Time
	Err          error
}

func (o Outcome) String() string {
	switch o.Status {
	case Success:
		return fmt.Sprintf("%s downloaded to %s", o.Item, o.Destination)
	case Skipped:
		return fmt.Sprintf("%s already downloaded, skipping", o.Item)
	case NotYetAvailable:
		return fmt.Sprintf("%s is not out yet, scheduled for %s", o.Item, o.ScheduledFor.Format("2006-01-02"))
	case SubscriptionInactive:
		return fmt.Sprintf("%s: subscription is not active", o.Item)
	case Failed:
		return fmt.Sprintf("%s failed: %v", o.Item, o.Err)
	default:
		return o.Item
	}
}
