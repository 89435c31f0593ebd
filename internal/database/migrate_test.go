package database

import (
	"path/filepath"
	"testing"

	"github.com/franciscosanchezn/gin-cafe-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestCheckSchemaOnEmptyDatabase(t *testing.T) {
	db := openMemory(t)

	version, err := CurrentVersion(db)
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.ErrorIs(t, CheckSchema(db), ErrSchemaOutdated)
}

func TestMigrateRecordsVersionOnce(t *testing.T) {
	db := openMemory(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	version, err := CurrentVersion(db)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
	assert.NoError(t, CheckSchema(db))

	var rows int64
	db.Model(&models.SchemaVersion{}).Count(&rows)
	assert.Equal(t, int64(1), rows)

	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m))
	}
}

func TestCheckSchemaRejectsOlderVersion(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, db.AutoMigrate(&models.SchemaVersion{}))
	require.NoError(t, db.Create(&models.SchemaVersion{Version: SchemaVersion - 1}).Error)

	err := CheckSchema(db)
	assert.ErrorIs(t, err, ErrSchemaOutdated)
}

func TestInitDatabaseSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cafe.sqlite")

	db, err := InitDatabase(DatabaseConfig{Driver: "sqlite", Path: path, AutoMigrate: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
	assert.NoError(t, CheckSchema(db))
}

func TestInitDatabaseWithoutMigrationFailsGate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cafe.sqlite")

	_, err := InitDatabase(DatabaseConfig{Driver: "sqlite", Path: path})
	assert.ErrorIs(t, err, ErrSchemaOutdated)
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{"sqlite", DatabaseConfig{Driver: "sqlite", Path: "cafe.sqlite"}, "cafe.sqlite?_foreign_keys=on"},
		{"sqlite with params", DatabaseConfig{Driver: "sqlite", Path: "cafe.sqlite?cache=shared"}, "cafe.sqlite?cache=shared&_foreign_keys=on"},
		{"postgres url", DatabaseConfig{Driver: "postgres", URL: "postgres://u:p@db/cafe"}, "postgres://u:p@db/cafe"},
		{"postgres fields", DatabaseConfig{Driver: "postgres", Host: "db", User: "u", Password: "p", Name: "cafe", Port: "5432", SSLMode: "disable"},
			"host=db user=u password=p dbname=cafe port=5432 sslmode=disable"},
		{"unknown", DatabaseConfig{Driver: "mysql"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}
