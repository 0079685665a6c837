// Package testutil provides common test utilities for the storefront backend.
// It contains helpers for in-memory databases, seeded fixtures and
// controllable clocks shared by package tests.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/catalog"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/persistence/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewSQLiteDB opens a private in-memory SQLite database with the full schema.
// The pool is pinned to one connection so every query sees the same memory database.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open SQLite database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db), "Failed to migrate schema")

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// MockDB wraps a GORM database with sqlmock for testing.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a new mock database speaking the Postgres dialect.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err, "Failed to open GORM connection")

	t.Cleanup(func() {
		_ = mockDB.Close()
	})
	return &MockDB{DB: gormDB, Mock: mock, SqlDB: mockDB}
}

// SeedProduct inserts a product and returns it. A nil stock leaves the product untracked.
func SeedProduct(t *testing.T, db *gorm.DB, typ catalog.ProductType, mrpCents int64, listingCents *int64, stock *int) *catalog.Product {
	t.Helper()

	p, err := catalog.NewProduct("SKU-"+uuid.NewString()[:8], "Test Product", typ, mrpCents)
	require.NoError(t, err)
	require.NoError(t, p.SetListingPrice(listingCents))
	require.NoError(t, p.SetStock(stock))

	require.NoError(t, db.WithContext(context.Background()).Create(models.ProductModelFromDomain(p)).Error)
	return p
}

// ProductStock reads the current stock column for a product
func ProductStock(t *testing.T, db *gorm.DB, id uuid.UUID) *int {
	t.Helper()

	var m models.ProductModel
	require.NoError(t, db.First(&m, "id = ?", id).Error)
	return m.Stock
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int { return &v }

// Int64Ptr returns a pointer to v
func Int64Ptr(v int64) *int64 { return &v }

// Clock is a settable time source for tests
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a clock fixed at t
func NewClock(t time.Time) *Clock {
	return &Clock{now: t.UTC()}
}

// Now returns the current fake time
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t.UTC()
}
