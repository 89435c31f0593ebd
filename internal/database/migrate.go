package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/franciscosanchezn/gin-cafe-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SchemaVersion is the schema revision this build expects. Bump it whenever
// a model change needs the database migrated before the service may start.
const SchemaVersion = 3

// ErrSchemaOutdated is returned by CheckSchema when the database is behind.
var ErrSchemaOutdated = errors.New("database schema is outdated")

// Models lists every table owned by the service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Item{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderHistory{},
		&models.InventoryRecord{},
		&models.DailyMetric{},
		&models.OAuthClient{},
		&models.OAuthToken{},
		&models.SchemaVersion{},
	}
}

// Migrate applies the gorm schema and records SchemaVersion.
func Migrate(db *gorm.DB) error {
	log.WithField("version", SchemaVersion).Info("Applying database schema")
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	current, err := CurrentVersion(db)
	if err != nil {
		return err
	}
	if current >= SchemaVersion {
		return nil
	}

	record := models.SchemaVersion{Version: SchemaVersion, AppliedAt: time.Now().UTC()}
	if err := db.Create(&record).Error; err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	log.WithFields(logrus.Fields{
		"from": current,
		"to":   SchemaVersion,
	}).Info("Schema version recorded")
	return nil
}

// CurrentVersion returns the highest recorded schema version, 0 when none.
func CurrentVersion(db *gorm.DB) (int, error) {
	if !db.Migrator().HasTable(&models.SchemaVersion{}) {
		return 0, nil
	}
	var version int
	err := db.Model(&models.SchemaVersion{}).
		Select("COALESCE(MAX(version), 0)").
		Scan(&version).Error
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// CheckSchema is the startup gate: services assume a fully migrated schema.
func CheckSchema(db *gorm.DB) error {
	version, err := CurrentVersion(db)
	if err != nil {
		return err
	}
	if version < SchemaVersion {
		return fmt.Errorf("%w: have %d, need %d", ErrSchemaOutdated, version, SchemaVersion)
	}
	return nil
}
