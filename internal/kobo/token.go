// Package kobo implements the device-facing half of the Kobo sync
// protocol: the continuation token codec and the entitlement wire shapes
// the device expects from the store API.
package kobo

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SyncTokenHeader is the header the device uses to carry its continuation
// token, both on requests and responses.
const SyncTokenHeader = "X-Kobo-SyncToken"

// ErrTokenDecode indicates the sync token header was present but malformed.
var ErrTokenDecode = errors.New("invalid kobo sync token")

type TokenKind int

const (
	// TokenAbsent means no usable token was supplied; the device has to
	// re-authenticate before syncing.
	TokenAbsent TokenKind = iota
	// TokenRawOnly is an opaque token minted by the Kobo store itself,
	// seen on the first sync after factory login. Locally it means
	// "never synced": all watermarks start at the Unix epoch.
	TokenRawOnly
	// TokenFull is a token we minted ourselves: the raw store token plus
	// our own per-axis watermarks.
	TokenFull
)

// Watermarks are the per-axis boundaries of already-delivered changes.
// A nil field means that axis was never synced and compares as the Unix
// epoch.
type Watermarks struct {
	BooksLastModified        *time.Time
	BooksLastCreated         *time.Time
	ArchiveLastModified      *time.Time
	ReadingStateLastModified *time.Time
	TagsLastModified         *time.Time
}

// BooksCutoff returns the change-detection cutoff for the books axis.
func (w Watermarks) BooksCutoff() time.Time {
	if w.BooksLastModified != nil {
		return *w.BooksLastModified
	}
	return time.Unix(0, 0).UTC()
}

// SyncToken is the decoded continuation token. Kind discriminates which of
// the remaining fields are meaningful: RawStoreToken for RawOnly and Full,
// Watermarks for Full only.
type SyncToken struct {
	Kind          TokenKind
	RawStoreToken string
	Watermarks    Watermarks
}

// tokenPayload is the JSON object inside a locally-minted token. Timestamps
// travel as RFC 3339 strings truncated to whole seconds.
type tokenPayload struct {
	RawKoboStoreToken        string  `json:"raw_kobo_store_token"`
	BooksLastModified        *string `json:"books_last_modified,omitempty"`
	BooksLastCreated         *string `json:"books_last_created,omitempty"`
	ArchiveLastModified      *string `json:"archive_last_modified,omitempty"`
	ReadingStateLastModified *string `json:"reading_state_last_modified,omitempty"`
	TagsLastModified         *string `json:"tags_last_modified,omitempty"`
}

// DecodeSyncToken parses the sync token header value. An empty value means
// the header was absent. A value containing a literal "." is an opaque
// store token of the form [blob].[blob] and is passed through untouched.
// Anything else must be standard base64 of our own JSON payload; garbage
// yields ErrTokenDecode. A payload without raw_kobo_store_token degrades
// to Absent because every token we mint carries it. Watermark fields that
// are missing or unparsable become nil, never an error.
func DecodeSyncToken(header string) (SyncToken, error) {
	if header == "" {
		return SyncToken{Kind: TokenAbsent}, nil
	}

	if strings.Contains(header, ".") {
		return SyncToken{Kind: TokenRawOnly, RawStoreToken: header}, nil
	}

	raw, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return SyncToken{}, fmt.Errorf("%w: bad base64: %v", ErrTokenDecode, err)
	}

	var payload tokenPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return SyncToken{}, fmt.Errorf("%w: bad JSON: %v", ErrTokenDecode, err)
	}

	if payload.RawKoboStoreToken == "" {
		return SyncToken{Kind: TokenAbsent}, nil
	}

	return SyncToken{
		Kind:          TokenFull,
		RawStoreToken: payload.RawKoboStoreToken,
		Watermarks: Watermarks{
			BooksLastModified:        parseWatermark(payload.BooksLastModified),
			BooksLastCreated:         parseWatermark(payload.BooksLastCreated),
			ArchiveLastModified:      parseWatermark(payload.ArchiveLastModified),
			ReadingStateLastModified: parseWatermark(payload.ReadingStateLastModified),
			TagsLastModified:         parseWatermark(payload.TagsLastModified),
		},
	}, nil
}

// EncodeSyncToken builds the header value for a locally-minted token:
// base64 of the JSON payload, timestamps at whole-second resolution.
func EncodeSyncToken(rawStoreToken string, w Watermarks) string {
	payload := tokenPayload{
		RawKoboStoreToken:        rawStoreToken,
		BooksLastModified:        formatWatermark(w.BooksLastModified),
		BooksLastCreated:         formatWatermark(w.BooksLastCreated),
		ArchiveLastModified:      formatWatermark(w.ArchiveLastModified),
		ReadingStateLastModified: formatWatermark(w.ReadingStateLastModified),
		TagsLastModified:         formatWatermark(w.TagsLastModified),
	}
	raw, _ := json.Marshal(payload)
	return base64.StdEncoding.EncodeToString(raw)
}

func parseWatermark(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

func formatWatermark(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Truncate(time.Second).Format(time.RFC3339)
	return &s
}
