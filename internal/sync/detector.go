// Package sync orchestrates one device sync cycle: decide which library
// items the device is missing, persist the delivery, merge in the vendor
// store's own changes and mint the continuation token.
package sync

import (
	"time"

	"github.com/mrlokans/kobobridge/internal/abs"
	"github.com/mrlokans/kobobridge/internal/entities"
)

// ChangeKind classifies a candidate item relative to the device.
type ChangeKind int

const (
	// ChangeNew means the device has never received this item.
	ChangeNew ChangeKind = iota
	// ChangeUpdated means the device holds a stale revision.
	ChangeUpdated
)

// Change is one item the device should receive this cycle.
type Change struct {
	Item abs.LibraryItem
	Kind ChangeKind
}

// ebookFormats the reader can actually open.
var supportedFormats = map[string]bool{
	"epub":  true,
	"kepub": true,
}

// DetectChanges compares the remote item list against the cutoff watermark
// and the device's sync records. An item is a candidate when it was added
// or modified after the cutoff; a candidate is dropped again when the
// device's record shows the current revision was already delivered. The
// remote listing order is preserved.
func DetectChanges(cutoff time.Time, items []abs.LibraryItem, records map[string]entities.SyncRecord) []Change {
	var changes []Change
	for _, item := range items {
		if !supportedFormats[item.Media.EbookFormat] {
			continue
		}

		addedAt := time.Unix(item.AddedAt, 0).UTC()
		updatedAt := time.Unix(item.UpdatedAt, 0).UTC()
		if !addedAt.After(cutoff) && !updatedAt.After(cutoff) {
			continue
		}

		record, synced := records[item.ID]
		if synced && !record.SyncedAt.Before(updatedAt) {
			// Already delivered at this revision; candidacy was
			// triggered by a sibling field.
			continue
		}

		kind := ChangeNew
		if synced {
			kind = ChangeUpdated
		}
		changes = append(changes, Change{Item: item, Kind: kind})
	}
	return changes
}
