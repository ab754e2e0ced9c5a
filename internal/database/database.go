package database

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/kobobridge/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Device{},
		&entities.SyncRecord{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateUser creates a new user holding the Audiobookshelf API key used
// for all of their devices.
func (d *Database) CreateUser(username, absAPIKey string) (*entities.User, error) {
	user := &entities.User{
		ID:        uuid.NewString(),
		Username:  username,
		AbsAPIKey: absAPIKey,
	}
	if err := d.DB.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username.
func (d *Database) GetUserByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := d.DB.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// RegisterDevice mints a new device token for the given user. The device
// id doubles as the auth token the reader embeds in its request paths.
func (d *Database) RegisterDevice(userID string) (*entities.Device, error) {
	device := &entities.Device{
		ID:      uuid.NewString(),
		OwnerID: userID,
	}
	if err := d.DB.Create(device).Error; err != nil {
		return nil, err
	}
	return device, nil
}

// GetDeviceByID retrieves a device together with its owner.
func (d *Database) GetDeviceByID(deviceID string) (*entities.Device, error) {
	var device entities.Device
	err := d.DB.Preload("Owner").Where("id = ?", deviceID).First(&device).Error
	if err != nil {
		return nil, err
	}
	return &device, nil
}

// DeleteDevice removes a device together with its sync records in one
// transaction, so a half-deleted device never leaves live records behind.
func (d *Database) DeleteDevice(deviceID string) error {
	return d.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("device_id = ?", deviceID).Delete(&entities.SyncRecord{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", deviceID).Delete(&entities.Device{}).Error
	})
}

// ResolveAPIKey maps a device token to its owner's Audiobookshelf API key.
// An unknown device or an owner without a key yields an empty key, not an
// error: such a device syncs an empty local library.
func (d *Database) ResolveAPIKey(deviceID string) (string, error) {
	device, err := d.GetDeviceByID(deviceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return device.Owner.AbsAPIKey, nil
}

// DeleteOrphanedSyncRecords removes sync records whose device no longer
// exists. Sync records carry no foreign key, so anything that bypasses
// DeleteDevice leaves rows for this sweep to collect.
func (d *Database) DeleteOrphanedSyncRecords() (int64, error) {
	result := d.DB.Where(
		"device_id NOT IN (?)",
		d.DB.Model(&entities.Device{}).Select("id"),
	).Delete(&entities.SyncRecord{})
	return result.RowsAffected, result.Error
}
