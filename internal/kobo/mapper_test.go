package kobo

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kobobridge/internal/abs"
)

func sampleItem() abs.LibraryItem {
	return abs.LibraryItem{
		ID:        "li_8gch9ve09orgn4fdz8",
		AddedAt:   1709280000,
		UpdatedAt: 1709366400,
		Media: abs.Media{
			EbookFormat: "epub",
			Metadata: abs.ItemMetadata{
				Title:         "The Colour of Magic",
				AuthorName:    "Terry Pratchett",
				SeriesName:    "Discworld #1",
				Description:   "A wizard tour of the Disc.",
				Language:      "en",
				PublishedDate: "1983-11-24",
			},
		},
	}
}

func TestMapEntitlement(t *testing.T) {
	t.Run("new item produces a NewEntitlement", func(t *testing.T) {
		ent, err := MapEntitlement(sampleItem(), true, []string{"http://bridge/download/x"})
		require.NoError(t, err)
		_, ok := ent.(NewEntitlement)
		assert.True(t, ok)
	})

	t.Run("updated item produces a ChangedEntitlement", func(t *testing.T) {
		ent, err := MapEntitlement(sampleItem(), false, nil)
		require.NoError(t, err)
		_, ok := ent.(ChangedEntitlement)
		assert.True(t, ok)
	})

	t.Run("item without id cannot be mapped", func(t *testing.T) {
		item := sampleItem()
		item.ID = ""
		_, err := MapEntitlement(item, true, nil)
		assert.ErrorIs(t, err, ErrItemUnidentified)
	})

	t.Run("all id axes derive from the item id", func(t *testing.T) {
		ent, err := MapEntitlement(sampleItem(), true, nil)
		require.NoError(t, err)
		book := ent.(NewEntitlement).Book

		id := ItemUUID("li_8gch9ve09orgn4fdz8")
		assert.Equal(t, id, book.BookEntitlement.ID)
		assert.Equal(t, id, book.BookEntitlement.CrossRevisionID)
		assert.Equal(t, id, book.BookEntitlement.RevisionID)
		assert.Equal(t, id, book.BookMetadata.EntitlementID)
		assert.Equal(t, id, book.BookMetadata.CoverImageID)
		assert.Equal(t, id, book.BookMetadata.WorkID)
	})

	t.Run("timestamps convert from epoch seconds", func(t *testing.T) {
		ent, err := MapEntitlement(sampleItem(), true, nil)
		require.NoError(t, err)
		book := ent.(NewEntitlement).Book

		assert.Equal(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), book.BookEntitlement.Created)
		assert.Equal(t, time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC), book.BookEntitlement.LastModified)
	})

	t.Run("defaults fill missing metadata", func(t *testing.T) {
		item := sampleItem()
		item.Media.Metadata = abs.ItemMetadata{}

		ent, err := MapEntitlement(item, true, nil)
		require.NoError(t, err)
		book := ent.(NewEntitlement).Book

		assert.Equal(t, "Untitled", book.BookMetadata.Title)
		assert.Equal(t, "en", book.BookMetadata.Language)
		assert.Equal(t, time.Unix(0, 0).UTC(), book.BookMetadata.PublicationDate)
		assert.Nil(t, book.BookMetadata.Description)
		assert.Nil(t, book.BookMetadata.Contributors)
		assert.Nil(t, book.BookMetadata.ContributorRoles)
		assert.Nil(t, book.BookMetadata.Series)
	})

	t.Run("author string splits into contributors on commas", func(t *testing.T) {
		item := sampleItem()
		item.Media.Metadata.AuthorName = "Terry Pratchett, Neil Gaiman"

		ent, err := MapEntitlement(item, true, nil)
		require.NoError(t, err)
		book := ent.(NewEntitlement).Book

		assert.Equal(t, []string{"Terry Pratchett", "Neil Gaiman"}, book.BookMetadata.Contributors)
		require.Len(t, book.BookMetadata.ContributorRoles, 2)
		assert.Equal(t, "Neil Gaiman", book.BookMetadata.ContributorRoles[1].Name)
	})

	t.Run("series name with position splits into name and number", func(t *testing.T) {
		ent, err := MapEntitlement(sampleItem(), true, nil)
		require.NoError(t, err)
		book := ent.(NewEntitlement).Book

		require.NotNil(t, book.BookMetadata.Series)
		assert.Equal(t, "Discworld", book.BookMetadata.Series.Name)
		assert.Equal(t, 1.0, book.BookMetadata.Series.Number)
		assert.Equal(t, SeriesUUID("Discworld"), book.BookMetadata.Series.ID)
	})

	t.Run("unparsable publication date falls back to epoch", func(t *testing.T) {
		item := sampleItem()
		item.Media.Metadata.PublishedDate = "sometime in the eighties"

		ent, err := MapEntitlement(item, true, nil)
		require.NoError(t, err)
		book := ent.(NewEntitlement).Book
		assert.Equal(t, time.Unix(0, 0).UTC(), book.BookMetadata.PublicationDate)
	})
}

func TestItemUUID(t *testing.T) {
	t.Run("uuid ids pass through", func(t *testing.T) {
		raw := "b35a9e40-04a1-4ee7-b2b0-1d27f0ed42f6"
		assert.Equal(t, uuid.MustParse(raw), ItemUUID(raw))
	})

	t.Run("opaque ids derive deterministically", func(t *testing.T) {
		first := ItemUUID("li_abc123")
		second := ItemUUID("li_abc123")
		other := ItemUUID("li_def456")

		assert.Equal(t, first, second)
		assert.NotEqual(t, first, other)
	})
}

func TestSeriesUUID(t *testing.T) {
	assert.Equal(t, SeriesUUID("Discworld"), SeriesUUID("Discworld"))
	assert.NotEqual(t, SeriesUUID("Discworld"), SeriesUUID("Culture"))
}
