package admin

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jbaptiste/cardfolio-backend/pkg/db/models"
	dbtypes "github.com/jbaptiste/cardfolio-backend/pkg/db/types"
)

func setupAdminTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL DEFAULT '',
  display_name TEXT,
  role TEXT NOT NULL DEFAULT 'user',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS holdings (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  card_id TEXT NOT NULL,
  language TEXT NOT NULL DEFAULT 'fr',
  quantity INTEGER NOT NULL DEFAULT 1,
  purchase_price REAL,
  purchase_date DATETIME,
  booster TEXT,
  graded INTEGER NOT NULL DEFAULT 0,
  grading TEXT,
  notes TEXT,
  variants TEXT,
  card_snapshot TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newAdminService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: NewRepository(db)})
	require.NoError(t, err)
	return svc
}

func floatPtr(v float64) *float64 { return &v }

func seedUser(t *testing.T, db *gorm.DB, email string) uuid.UUID {
	t.Helper()
	user := models.User{ID: uuid.New(), Email: email, Role: "user"}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func seedHolding(t *testing.T, db *gorm.DB, holding models.Holding) models.Holding {
	t.Helper()
	if holding.ID == uuid.Nil {
		holding.ID = uuid.New()
	}
	if holding.Language == "" {
		holding.Language = "fr"
	}
	holding.CreatedAt = time.Now()
	holding.UpdatedAt = holding.CreatedAt
	require.NoError(t, db.Create(&holding).Error)
	return holding
}

func TestOverview(t *testing.T) {
	db := setupAdminTestDB(t)
	svc := newAdminService(t, db)

	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")
	seedUser(t, db, "carol@example.com")

	seedHolding(t, db, models.Holding{OwnerID: alice, CardID: "a-1", Quantity: 2})
	seedHolding(t, db, models.Holding{OwnerID: alice, CardID: "a-2", Quantity: 1})
	seedHolding(t, db, models.Holding{OwnerID: bob, CardID: "b-1", Quantity: 4})

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), overview.Users)
	assert.Equal(t, int64(3), overview.Holdings)
	assert.Equal(t, int64(7), overview.TotalQuantity)

	require.Len(t, overview.TopCollectors, 2)
	assert.Equal(t, alice.String(), overview.TopCollectors[0].OwnerID)
	assert.Equal(t, "alice@example.com", overview.TopCollectors[0].Email)
	assert.Equal(t, int64(2), overview.TopCollectors[0].Holdings)
}

func TestOverviewEmptySystem(t *testing.T) {
	db := setupAdminTestDB(t)
	svc := newAdminService(t, db)

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Zero(t, overview.Users)
	assert.Zero(t, overview.Holdings)
	assert.Zero(t, overview.TotalQuantity)
	assert.Empty(t, overview.TopCollectors)
}

func TestRepairHoldingsFixesQuantityDrift(t *testing.T) {
	db := setupAdminTestDB(t)
	svc := newAdminService(t, db)
	owner := uuid.New()

	broken := seedHolding(t, db, models.Holding{
		OwnerID: owner, CardID: "a-1", Quantity: 7,
		Variants: dbtypes.VariantList{{}, {}, {}},
	})
	seedHolding(t, db, models.Holding{OwnerID: owner, CardID: "b-2", Quantity: 2})

	report, err := svc.RepairHoldings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.QuantityRepaired)
	assert.Zero(t, report.UnitaryCleared)

	var stored models.Holding
	require.NoError(t, db.First(&stored, "id = ?", broken.ID).Error)
	assert.Equal(t, 3, stored.Quantity)
}

func TestRepairHoldingsClearsUnitaryResidue(t *testing.T) {
	db := setupAdminTestDB(t)
	svc := newAdminService(t, db)
	owner := uuid.New()

	broken := seedHolding(t, db, models.Holding{
		OwnerID: owner, CardID: "a-1", Quantity: 2,
		PurchasePrice: floatPtr(25),
		Graded:        true,
		Variants:      dbtypes.VariantList{{PurchasePrice: floatPtr(10)}, {PurchasePrice: floatPtr(15)}},
	})

	report, err := svc.RepairHoldings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.UnitaryCleared)
	assert.Zero(t, report.QuantityRepaired)

	var stored models.Holding
	require.NoError(t, db.First(&stored, "id = ?", broken.ID).Error)
	assert.Nil(t, stored.PurchasePrice)
	assert.False(t, stored.Graded)
	assert.Len(t, stored.Variants, 2, "variants survive the repair")
}

func TestRepairHoldingsNoopOnHealthyData(t *testing.T) {
	db := setupAdminTestDB(t)
	svc := newAdminService(t, db)
	owner := uuid.New()

	seedHolding(t, db, models.Holding{OwnerID: owner, CardID: "a-1", Quantity: 3, PurchasePrice: floatPtr(12)})
	seedHolding(t, db, models.Holding{
		OwnerID: owner, CardID: "b-2", Quantity: 2,
		Variants: dbtypes.VariantList{{}, {}},
	})

	report, err := svc.RepairHoldings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Scanned)
	assert.Zero(t, report.QuantityRepaired)
	assert.Zero(t, report.UnitaryCleared)
}
