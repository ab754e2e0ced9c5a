package kobo

import (
	"time"

	"github.com/google/uuid"
)

// Control headers the store backend sets alongside the sync body.
const (
	SyncContinueHeader = "X-Kobo-Sync"
	SyncModeHeader     = "X-Kobo-Sync-Mode"
	RecentReadsHeader  = "X-Kobo-Recent-Reads"
	SyncShouldContinue = "continue"
)

// Entitlement is the tagged union the sync response body carries: each
// element is either a NewEntitlement or a ChangedEntitlement object.
type Entitlement interface {
	isEntitlement()
}

// NewEntitlement wraps a book the device has never seen.
type NewEntitlement struct {
	Book SyncedBook `json:"NewEntitlement"`
}

// ChangedEntitlement wraps a book the device already holds in a stale
// revision.
type ChangedEntitlement struct {
	Book SyncedBook `json:"ChangedEntitlement"`
}

func (NewEntitlement) isEntitlement()     {}
func (ChangedEntitlement) isEntitlement() {}

// SyncedBook bundles the rights object, descriptive metadata and optional
// reading progress for one book.
type SyncedBook struct {
	BookEntitlement BookEntitlement `json:"BookEntitlement"`
	BookMetadata    BookMetadata    `json:"BookMetadata"`
	ReadingState    *ReadingState   `json:"ReadingState"`
}

type BookEntitlement struct {
	Accessibility       string       `json:"Accessibility"`
	ActivePeriod        ActivePeriod `json:"ActivePeriod"`
	Created             time.Time    `json:"Created"`
	CrossRevisionID     uuid.UUID    `json:"CrossRevisionId"`
	ID                  uuid.UUID    `json:"Id"`
	IsRemoved           bool         `json:"IsRemoved"`
	IsHiddenFromArchive bool         `json:"IsHiddenFromArchive"`
	IsLocked            bool         `json:"IsLocked"`
	LastModified        time.Time    `json:"LastModified"`
	OriginCategory      string       `json:"OriginCategory"`
	RevisionID          uuid.UUID    `json:"RevisionId"`
	Status              string       `json:"Status"`
}

type ActivePeriod struct {
	From time.Time `json:"From"`
}

type BookMetadata struct {
	Categories              []uuid.UUID       `json:"Categories"`
	CoverImageID            uuid.UUID         `json:"CoverImageId"`
	CrossRevisionID         uuid.UUID         `json:"CrossRevisionId"`
	CurrentDisplayPrice     DisplayPrice      `json:"CurrentDisplayPrice"`
	CurrentLoveDisplayPrice LoveDisplayPrice  `json:"CurrentLoveDisplayPrice"`
	Description             *string           `json:"Description"`
	DownloadURLs            []string          `json:"DownloadUrls"`
	EntitlementID           uuid.UUID         `json:"EntitlementId"`
	ExternalIDs             []uuid.UUID       `json:"ExternalIds"`
	Genre                   uuid.UUID         `json:"Genre"`
	IsEligibleForKoboLove   bool              `json:"IsEligibleForKoboLove"`
	IsInternetArchive       bool              `json:"IsInternetArchive"`
	IsPreOrder              bool              `json:"IsPreOrder"`
	IsSocialEnabled         bool              `json:"IsSocialEnabled"`
	Language                string            `json:"Language"`
	PhoneticPronunciations  struct{}          `json:"PhoneticPronunciations"`
	PublicationDate         time.Time         `json:"PublicationDate"`
	RevisionID              uuid.UUID         `json:"RevisionId"`
	Title                   string            `json:"Title"`
	WorkID                  uuid.UUID         `json:"WorkId"`
	Contributors            []string          `json:"Contributors"`
	ContributorRoles        []ContributorRole `json:"ContributorRoles"`
	Series                  *Series           `json:"Series"`
}

type DisplayPrice struct {
	CurrencyCode string  `json:"CurrencyCode"`
	TotalAmount  float64 `json:"TotalAmount"`
}

type LoveDisplayPrice struct {
	TotalAmount float64 `json:"TotalAmount"`
}

type ContributorRole struct {
	Name string `json:"Name"`
}

type Series struct {
	Name        string    `json:"Name"`
	Number      float64   `json:"Number"`
	NumberFloat float64   `json:"NumberFloat"`
	ID          uuid.UUID `json:"Id"`
}

type ReadingState struct {
	EntitlementID     uuid.UUID       `json:"EntitlementId"`
	Created           time.Time       `json:"Created"`
	LastModified      time.Time       `json:"LastModified"`
	PriorityTimestamp time.Time       `json:"PriorityTimestamp"`
	StatusInfo        StatusInfo      `json:"StatusInfo"`
	Statistics        Statistics      `json:"Statistics"`
	CurrentBookmark   CurrentBookmark `json:"CurrentBookmark"`
}

type StatusInfo struct {
	LastModified        time.Time  `json:"LastModified"`
	Status              string     `json:"Status"` // "ReadyToRead", "Reading", "Finished"
	TimesStartedRead    float64    `json:"TimesStartedRead"`
	LastTimeStartedRead *time.Time `json:"LastTimeStartedRead"`
}

type Statistics struct {
	LastModified            time.Time `json:"LastModified"`
	SpentReadingMinutes     *float64  `json:"SpentReadingMinutes"`
	RemainingReadingMinutes *float64  `json:"RemainingReadingMinutes"`
}

type CurrentBookmark struct {
	LastModified                 time.Time         `json:"LastModified"`
	ProgressPercent              *float64          `json:"ProgressPercent"`
	ContentSourceProgressPercent *float64          `json:"ContentSourceProgressPercent"`
	Location                     *BookmarkLocation `json:"Location"`
}

type BookmarkLocation struct {
	Value  string `json:"Value"`
	Type   string `json:"Type"`
	Source string `json:"Source"`
}
