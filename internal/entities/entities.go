package entities

import (
	"time"
)

// User owns devices and carries the Audiobookshelf credential used on
// their behalf.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:100" json:"username"`
	AbsAPIKey string    `gorm:"size:512" json:"-"` // Audiobookshelf API key, hidden from JSON
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Device is a registered e-reader. Its ID doubles as the opaque auth token
// the device presents in the URL path.
type Device struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	OwnerID   string    `gorm:"index;size:36" json:"owner_id"`
	Owner     User      `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// SyncRecord marks a library item as delivered to a device. SyncedAt is the
// item's updatedAt at delivery time, not the wall clock of the sync call:
// the next sync compares it against the item's current updatedAt to decide
// whether the device copy is stale.
//
// The composite unique index keeps at most one live record per
// (device, item) pair; replacement is an upsert against that index.
// DeviceID is deliberately not a foreign key: records are cleaned up
// transactionally on device deletion and swept by the scheduled pruner.
type SyncRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DeviceID  string    `gorm:"uniqueIndex:idx_sync_device_item;size:36" json:"device_id"`
	ItemID    string    `gorm:"uniqueIndex:idx_sync_device_item;size:64" json:"item_id"`
	SyncedAt  time.Time `json:"synced_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

func (Device) TableName() string {
	return "devices"
}

func (SyncRecord) TableName() string {
	return "sync_records"
}
