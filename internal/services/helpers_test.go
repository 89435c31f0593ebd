package services

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-cafe-api/internal/catalog"
	"github.com/franciscosanchezn/gin-cafe-api/internal/database"
	"github.com/franciscosanchezn/gin-cafe-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testMenuJSON = `{
  "currency": "INR",
  "categories": [
    {"id": "coffee", "label": "Coffee", "items": [
      {"id": 1, "name": "Espresso", "price": 50},
      {"id": 2, "name": "Cappuccino", "price": 80}
    ]},
    {"id": "bakery", "label": "Bakery", "items": [
      {"id": 3, "name": "Croissant", "price": 65, "veg": false}
    ]}
  ]
}`

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, database.Migrate(db))
	return db
}

func setupTestMenu(t *testing.T) *catalog.FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "menu.json")
	require.NoError(t, os.WriteFile(path, []byte(testMenuJSON), 0o644))
	return catalog.NewFileStore(path)
}

// testClock is a settable clock shared by the services under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(start time.Time) *testClock {
	return &testClock{now: start}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func createStaff(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Name: username, Password: "secret-pass", Role: role}
	require.NoError(t, NewUserService(db).CreateUser(user))
	return user
}

func money(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func intPtr(v int) *int {
	return &v
}
