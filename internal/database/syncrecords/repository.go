// Package syncrecords provides database operations for per-device sync
// bookkeeping.
//
// # Usage
//
//	repo := syncrecords.NewRepository(db)
//	records, err := repo.GetForDevice(deviceID)
package syncrecords

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/kobobridge/internal/entities"
)

// Repository handles all sync record database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new sync records repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetForDevice returns the device's sync records keyed by item id.
func (r *Repository) GetForDevice(deviceID string) (map[string]entities.SyncRecord, error) {
	var records []entities.SyncRecord
	err := r.db.Where("device_id = ?", deviceID).Find(&records).Error
	if err != nil {
		return nil, err
	}

	byItem := make(map[string]entities.SyncRecord, len(records))
	for _, record := range records {
		byItem[record.ItemID] = record
	}
	return byItem, nil
}

// Replace records that an item was delivered to a device. The unique
// (device_id, item_id) index plus the conflict clause make this a single
// atomic upsert, so two racing syncs for the same device never leave two
// live rows for one item.
func (r *Repository) Replace(deviceID, itemID string, syncedAt time.Time) error {
	record := entities.SyncRecord{
		DeviceID: deviceID,
		ItemID:   itemID,
		SyncedAt: syncedAt,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}, {Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"synced_at"}),
	}).Create(&record).Error
}

// DeleteForDevice wipes a device's sync history, forcing a full re-sync
// on its next request.
func (r *Repository) DeleteForDevice(deviceID string) error {
	return r.db.Where("device_id = ?", deviceID).Delete(&entities.SyncRecord{}).Error
}

// CountForDevice returns how many items a device has synced.
func (r *Repository) CountForDevice(deviceID string) (int64, error) {
	var count int64
	err := r.db.Model(&entities.SyncRecord{}).Where("device_id = ?", deviceID).Count(&count).Error
	return count, err
}
