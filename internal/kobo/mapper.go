package kobo

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/kobobridge/internal/abs"
)

const (
	accessibilityFull      = "Full"
	entitlementActive      = "Active"
	originCategoryImported = "Imported"

	defaultTitle    = "Untitled"
	defaultLanguage = "en"
)

// categoryID is the single fixed category and genre every mapped book gets;
// the device only needs the field to be present and stable.
var categoryID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// ErrItemUnidentified indicates a library item without an id, which cannot
// be mapped to an entitlement.
var ErrItemUnidentified = errors.New("library item has no id")

// MapEntitlement converts one remote library item into the entitlement
// object the device expects. isNew selects the NewEntitlement wrapper over
// the ChangedEntitlement one.
func MapEntitlement(item abs.LibraryItem, isNew bool, downloadURLs []string) (Entitlement, error) {
	book, err := NewSyncedBook(item, downloadURLs)
	if err != nil {
		return nil, err
	}
	if isNew {
		return NewEntitlement{Book: book}, nil
	}
	return ChangedEntitlement{Book: book}, nil
}

// NewSyncedBook maps a library item to the device's book representation.
func NewSyncedBook(item abs.LibraryItem, downloadURLs []string) (SyncedBook, error) {
	if item.ID == "" {
		return SyncedBook{}, ErrItemUnidentified
	}

	id := ItemUUID(item.ID)
	created := time.Unix(item.AddedAt, 0).UTC()
	lastModified := time.Unix(item.UpdatedAt, 0).UTC()
	meta := item.Media.Metadata

	title := meta.Title
	if title == "" {
		title = defaultTitle
	}
	language := meta.Language
	if language == "" {
		language = defaultLanguage
	}

	var description *string
	if meta.Description != "" {
		d := meta.Description
		description = &d
	}

	contributors := splitContributors(meta.AuthorName)
	var roles []ContributorRole
	if contributors != nil {
		roles = make([]ContributorRole, 0, len(contributors))
		for _, name := range contributors {
			roles = append(roles, ContributorRole{Name: name})
		}
	}

	return SyncedBook{
		BookEntitlement: BookEntitlement{
			Accessibility:   accessibilityFull,
			ActivePeriod:    ActivePeriod{From: time.Now().UTC()},
			Created:         created,
			CrossRevisionID: id,
			ID:              id,
			LastModified:    lastModified,
			OriginCategory:  originCategoryImported,
			RevisionID:      id,
			Status:          entitlementActive,
		},
		BookMetadata: BookMetadata{
			Categories:       []uuid.UUID{categoryID},
			CoverImageID:     id,
			CrossRevisionID:  id,
			Description:      description,
			DownloadURLs:     downloadURLs,
			EntitlementID:    id,
			ExternalIDs:      []uuid.UUID{},
			Genre:            categoryID,
			Language:         language,
			PublicationDate:  parsePublicationDate(meta.PublishedDate),
			RevisionID:       id,
			Title:            title,
			WorkID:           id,
			Contributors:     contributors,
			ContributorRoles: roles,
			Series:           mapSeries(meta.SeriesName),
		},
	}, nil
}

// ItemUUID derives the device-facing UUID for a remote item id. Ids that
// already are UUIDs pass through; anything else gets a deterministic
// name-based UUID so the same item always maps to the same id.
func ItemUUID(itemID string) uuid.UUID {
	if id, err := uuid.Parse(itemID); err == nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("kobobridge/item/"+itemID))
}

// SeriesUUID derives a stable id from a series name. The remote source has
// no series ids of its own, so equal names must always hash to the same id.
func SeriesUUID(name string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("kobobridge/series/"+name))
}

// mapSeries builds the series object from a display name like
// "Discworld #4". A trailing "#<number>" is split off into the sequence
// number; without one the series defaults to position 1.
func mapSeries(name string) *Series {
	if name == "" {
		return nil
	}
	seriesName := name
	number := 1.0
	if idx := strings.LastIndex(name, " #"); idx > 0 {
		if n, err := strconv.ParseFloat(strings.TrimSpace(name[idx+2:]), 64); err == nil {
			seriesName = strings.TrimSpace(name[:idx])
			number = n
		}
	}
	return &Series{
		Name:        seriesName,
		Number:      number,
		NumberFloat: number,
		ID:          SeriesUUID(seriesName),
	}
}

// splitContributors splits a comma-separated author string. An absent
// author yields nil, not an empty slice: the device treats a null
// contributor list differently from an empty one.
func splitContributors(authorName string) []string {
	if strings.TrimSpace(authorName) == "" {
		return nil
	}
	parts := strings.Split(authorName, ",")
	contributors := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			contributors = append(contributors, name)
		}
	}
	if len(contributors) == 0 {
		return nil
	}
	return contributors
}

// parsePublicationDate accepts the handful of date shapes the remote
// metadata actually uses and falls back to the epoch.
func parsePublicationDate(s string) time.Time {
	if s == "" {
		return time.Unix(0, 0).UTC()
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Unix(0, 0).UTC()
}
