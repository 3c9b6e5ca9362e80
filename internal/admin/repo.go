package admin

import (
	"context"

	"gorm.io/gorm"

	"github.com/jbaptiste/cardfolio-backend/pkg/db/models"
)

// Repository runs the cross-user queries behind the admin surface.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a Repository to a database handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CountUsers returns the total registered user count.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

// CountHoldings returns the total holding count across all owners.
func (r *Repository) CountHoldings(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Holding{}).Count(&count).Error
	return count, err
}

// TotalQuantity sums the quantity column across all holdings.
func (r *Repository) TotalQuantity(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Holding{}).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return total, err
}

// CollectorCount pairs an owner with their holding count.
type CollectorCount struct {
	OwnerID  string `gorm:"column:owner_id"`
	Email    string `gorm:"column:email"`
	Holdings int64  `gorm:"column:holdings"`
}

// TopCollectors returns the owners with the most holdings.
func (r *Repository) TopCollectors(ctx context.Context, limit int) ([]CollectorCount, error) {
	var rows []CollectorCount
	err := r.db.WithContext(ctx).
		Model(&models.Holding{}).
		Select("holdings.owner_id, users.email, COUNT(*) AS holdings").
		Joins("LEFT JOIN users ON users.id = holdings.owner_id").
		Group("holdings.owner_id, users.email").
		Order("holdings DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// ListHoldingsBatch pages through every holding ordered by id, for scans
// that touch the whole table.
func (r *Repository) ListHoldingsBatch(ctx context.Context, afterID string, batchSize int) ([]models.Holding, error) {
	var holdings []models.Holding
	query := r.db.WithContext(ctx).Order("id ASC").Limit(batchSize)
	if afterID != "" {
		query = query.Where("id > ?", afterID)
	}
	err := query.Find(&holdings).Error
	return holdings, err
}

// SaveHolding persists a repaired holding row.
func (r *Repository) SaveHolding(ctx context.Context, holding *models.Holding) error {
	return r.db.WithContext(ctx).Save(holding).Error
}
