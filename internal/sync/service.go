package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mrlokans/kobobridge/internal/abs"
	"github.com/mrlokans/kobobridge/internal/entities"
	"github.com/mrlokans/kobobridge/internal/kobo"
	"github.com/mrlokans/kobobridge/internal/store"
)

// ErrMissingToken indicates the device supplied no usable sync token.
var ErrMissingToken = errors.New("kobo sync token is required")

// ErrUpstream indicates a collaborator (library backend or vendor store)
// failed; the sync is aborted rather than answered partially.
var ErrUpstream = errors.New("upstream unavailable")

// CredentialResolver maps a device token to its owner's library API key.
type CredentialResolver interface {
	ResolveAPIKey(deviceID string) (string, error)
}

// LibraryClient lists the remote library on behalf of a user.
type LibraryClient interface {
	ListEbookItems(ctx context.Context, apiKey string) ([]abs.LibraryItem, error)
}

// RecordStore persists which items were delivered to which device.
type RecordStore interface {
	GetForDevice(deviceID string) (map[string]entities.SyncRecord, error)
	Replace(deviceID, itemID string, syncedAt time.Time) error
}

// StoreProxy forwards the sync call to the vendor store backend.
type StoreProxy interface {
	Sync(ctx context.Context, deviceHeaders http.Header, rawToken string) (*store.Result, error)
}

// Result is everything one sync cycle produces: the merged entitlement
// body plus the four control headers the device reads.
type Result struct {
	Entitlements []any
	SyncToken    string
	SyncContinue string
	SyncMode     string
	RecentReads  string
}

// Service runs the sync cycle for one device request.
type Service struct {
	credentials CredentialResolver
	library     LibraryClient
	records     RecordStore
	storeProxy  StoreProxy
	publicURL   string
	itemLimit   int
}

// NewService wires the sync orchestrator. publicURL is the externally
// reachable base URL of the bridge, used to build download links the
// device can actually follow. itemLimit caps how many local entitlements
// one response carries.
func NewService(credentials CredentialResolver, library LibraryClient, records RecordStore, storeProxy StoreProxy, publicURL string, itemLimit int) *Service {
	return &Service{
		credentials: credentials,
		library:     library,
		records:     records,
		storeProxy:  storeProxy,
		publicURL:   strings.TrimRight(publicURL, "/"),
		itemLimit:   itemLimit,
	}
}

// HandleSync runs one full sync cycle for the device: decode the token,
// detect local changes, persist deliveries, merge the vendor store's
// response and mint the continuation token. Local entitlements come before
// upstream ones in the body.
func (s *Service) HandleSync(ctx context.Context, deviceID string, headers http.Header) (*Result, error) {
	token, err := kobo.DecodeSyncToken(headers.Get(kobo.SyncTokenHeader))
	if err != nil {
		return nil, err
	}
	if token.Kind == kobo.TokenAbsent {
		return nil, ErrMissingToken
	}

	apiKey, err := s.credentials.ResolveAPIKey(deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve device credential: %w", err)
	}

	// A device without a configured library key simply sees no local
	// changes; the store half of the sync still runs.
	var items []abs.LibraryItem
	if apiKey != "" {
		items, err = s.library.ListEbookItems(ctx, apiKey)
		if err != nil {
			return nil, fmt.Errorf("%w: library listing failed: %v", ErrUpstream, err)
		}
	}

	records, err := s.records.GetForDevice(deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync records: %w", err)
	}

	cutoff := token.Watermarks.BooksCutoff()
	changes := DetectChanges(cutoff, items, records)

	eligible := len(changes)
	emitted := changes
	if eligible > s.itemLimit {
		emitted = changes[:s.itemLimit]
	}

	watermarks := token.Watermarks
	var local []any
	for _, change := range emitted {
		item := change.Item
		entitlement, err := kobo.MapEntitlement(item, change.Kind == ChangeNew, []string{s.downloadURL(deviceID, item)})
		if err != nil {
			log.Printf("WARN: skipping item %s: %v", item.ID, err)
			continue
		}

		syncedAt := time.Unix(item.UpdatedAt, 0).UTC()
		if err := s.records.Replace(deviceID, item.ID, syncedAt); err != nil {
			// The item is still delivered; worst case it is sent
			// again next cycle.
			log.Printf("WARN: failed to record sync of item %s for device %s: %v", item.ID, deviceID, err)
		}

		local = append(local, entitlement)
		watermarks = advanceBookWatermarks(watermarks, item)
	}

	// Listing order is not time order: an emitted item may carry later
	// timestamps than one held back by the cap. Keep every held item
	// beyond the cutoff or the promised follow-up cycle cannot find it.
	if eligible > s.itemLimit {
		watermarks = clampBookWatermarks(watermarks, changes[s.itemLimit:])
	}

	upstream, err := s.storeProxy.Sync(ctx, headers, token.RawStoreToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	entitlements := local
	for _, raw := range upstream.Entitlements {
		entitlements = append(entitlements, raw)
	}
	if entitlements == nil {
		entitlements = []any{}
	}

	rawToken := token.RawStoreToken
	if upstream.SyncToken != "" {
		rawToken = upstream.SyncToken
	}

	syncContinue := upstream.SyncContinue
	if eligible > s.itemLimit {
		syncContinue = kobo.SyncShouldContinue
	}

	return &Result{
		Entitlements: entitlements,
		SyncToken:    kobo.EncodeSyncToken(rawToken, watermarks),
		SyncContinue: syncContinue,
		SyncMode:     upstream.SyncMode,
		RecentReads:  upstream.RecentReads,
	}, nil
}

// downloadURL builds the bridge-served download link for one item. The
// device fetches files through the bridge because it has no credential of
// its own for the library backend.
func (s *Service) downloadURL(deviceID string, item abs.LibraryItem) string {
	return fmt.Sprintf("%s/kobo/%s/v1/download/%s.%s", s.publicURL, deviceID, item.ID, item.Media.EbookFormat)
}

// advanceBookWatermarks moves the book watermarks up to the delivered
// item's timestamps. Only emitted items advance the cutoff, so items held
// back by the item limit stay beyond it for the next cycle.
func advanceBookWatermarks(w kobo.Watermarks, item abs.LibraryItem) kobo.Watermarks {
	updatedAt := time.Unix(item.UpdatedAt, 0).UTC()
	addedAt := time.Unix(item.AddedAt, 0).UTC()

	if w.BooksLastModified == nil || updatedAt.After(*w.BooksLastModified) {
		w.BooksLastModified = &updatedAt
	}
	if w.BooksLastCreated == nil || addedAt.After(*w.BooksLastCreated) {
		w.BooksLastCreated = &addedAt
	}
	return w
}

// clampBookWatermarks caps the book watermarks strictly below the oldest
// held-back candidate, so every held item is re-detected on the next
// cycle. Item timestamps and token watermarks are whole seconds, so one
// second below the bound is the tightest safe cutoff.
func clampBookWatermarks(w kobo.Watermarks, held []Change) kobo.Watermarks {
	var bound time.Time
	for i, change := range held {
		ts := time.Unix(change.Item.UpdatedAt, 0).UTC()
		if addedAt := time.Unix(change.Item.AddedAt, 0).UTC(); addedAt.After(ts) {
			ts = addedAt
		}
		if i == 0 || ts.Before(bound) {
			bound = ts
		}
	}
	bound = bound.Add(-time.Second)

	if w.BooksLastModified != nil && w.BooksLastModified.After(bound) {
		b := bound
		w.BooksLastModified = &b
	}
	if w.BooksLastCreated != nil && w.BooksLastCreated.After(bound) {
		b := bound
		w.BooksLastCreated = &b
	}
	return w
}
