package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kobobridge/internal/abs"
	"github.com/mrlokans/kobobridge/internal/entities"
)

func epubItem(id string, addedAt, updatedAt time.Time) abs.LibraryItem {
	return abs.LibraryItem{
		ID:        id,
		AddedAt:   addedAt.Unix(),
		UpdatedAt: updatedAt.Unix(),
		Media:     abs.Media{EbookFormat: "epub"},
	}
}

func TestDetectChanges(t *testing.T) {
	epoch := time.Unix(0, 0).UTC()
	march1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	march2 := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	march3 := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)

	t.Run("epoch cutoff without records classifies everything as new", func(t *testing.T) {
		items := []abs.LibraryItem{
			epubItem("item-1", march1, march1),
			epubItem("item-2", march2, march2),
			epubItem("item-3", march3, march3),
		}

		changes := DetectChanges(epoch, items, nil)

		require.Len(t, changes, 3)
		for _, change := range changes {
			assert.Equal(t, ChangeNew, change.Kind)
		}
	})

	t.Run("items at or before the cutoff are skipped", func(t *testing.T) {
		items := []abs.LibraryItem{
			epubItem("old", march1, march1),
			epubItem("fresh", march3, march3),
		}

		changes := DetectChanges(march2, items, nil)

		require.Len(t, changes, 1)
		assert.Equal(t, "fresh", changes[0].Item.ID)
	})

	t.Run("unsupported formats never participate", func(t *testing.T) {
		audiobook := abs.LibraryItem{
			ID:        "audio",
			AddedAt:   march3.Unix(),
			UpdatedAt: march3.Unix(),
		}
		pdf := abs.LibraryItem{
			ID:        "pdf",
			AddedAt:   march3.Unix(),
			UpdatedAt: march3.Unix(),
			Media:     abs.Media{EbookFormat: "pdf"},
		}

		changes := DetectChanges(epoch, []abs.LibraryItem{audiobook, pdf}, nil)

		assert.Empty(t, changes)
	})

	t.Run("record at current revision excludes the candidate", func(t *testing.T) {
		items := []abs.LibraryItem{epubItem("item-1", march1, march2)}
		records := map[string]entities.SyncRecord{
			"item-1": {DeviceID: "device-1", ItemID: "item-1", SyncedAt: march2},
		}

		changes := DetectChanges(epoch, items, records)

		assert.Empty(t, changes)
	})

	t.Run("stale record classifies the item as updated", func(t *testing.T) {
		items := []abs.LibraryItem{epubItem("item-1", march1, march3)}
		records := map[string]entities.SyncRecord{
			"item-1": {DeviceID: "device-1", ItemID: "item-1", SyncedAt: march2},
		}

		changes := DetectChanges(epoch, items, records)

		require.Len(t, changes, 1)
		assert.Equal(t, ChangeUpdated, changes[0].Kind)
	})

	t.Run("listing order is preserved", func(t *testing.T) {
		items := []abs.LibraryItem{
			epubItem("b", march2, march2),
			epubItem("a", march1, march1),
			epubItem("c", march3, march3),
		}

		changes := DetectChanges(epoch, items, nil)

		require.Len(t, changes, 3)
		assert.Equal(t, "b", changes[0].Item.ID)
		assert.Equal(t, "a", changes[1].Item.ID)
		assert.Equal(t, "c", changes[2].Item.ID)
	})
}
