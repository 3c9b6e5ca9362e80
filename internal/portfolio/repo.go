package portfolio

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jbaptiste/cardfolio-backend/pkg/db/models"
)

// Repository encapsulates holding persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a portfolio repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByOwnerCardLang loads the holding for an (owner, card, language)
// triple, or gorm.ErrRecordNotFound.
func (r *Repository) FindByOwnerCardLang(ctx context.Context, ownerID uuid.UUID, cardID, language string) (*models.Holding, error) {
	var holding models.Holding
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND card_id = ? AND language = ?", ownerID, cardID, language).
		First(&holding).Error
	if err != nil {
		return nil, err
	}
	return &holding, nil
}

// FindByID loads a holding scoped to its owner.
func (r *Repository) FindByID(ctx context.Context, ownerID, holdingID uuid.UUID) (*models.Holding, error) {
	var holding models.Holding
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", holdingID, ownerID).
		First(&holding).Error
	if err != nil {
		return nil, err
	}
	return &holding, nil
}

// ListByOwner returns every holding for the owner, most recently updated first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Holding, error) {
	var holdings []models.Holding
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&holdings).Error
	if err != nil {
		return nil, err
	}
	return holdings, nil
}

// Create inserts a new holding.
func (r *Repository) Create(ctx context.Context, holding *models.Holding) error {
	return r.db.WithContext(ctx).Create(holding).Error
}

// Save persists the full holding row, writing NULL for cleared fields.
func (r *Repository) Save(ctx context.Context, holding *models.Holding) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: false}).
		Save(holding).Error
}

// Delete removes a holding scoped to its owner and reports whether a row
// was actually deleted.
func (r *Repository) Delete(ctx context.Context, ownerID, holdingID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", holdingID, ownerID).
		Delete(&models.Holding{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteAllByOwner clears the owner's entire portfolio and returns the
// number of removed holdings.
func (r *Repository) DeleteAllByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&models.Holding{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// OwnedCardIDs returns which of the given card ids appear among the
// owner's holdings.
func (r *Repository) OwnedCardIDs(ctx context.Context, ownerID uuid.UUID, cardIDs []string) ([]string, error) {
	if len(cardIDs) == 0 {
		return nil, nil
	}
	var owned []string
	err := r.db.WithContext(ctx).
		Model(&models.Holding{}).
		Distinct("card_id").
		Where("owner_id = ? AND card_id IN ?", ownerID, cardIDs).
		Pluck("card_id", &owned).Error
	if err != nil {
		return nil, err
	}
	return owned, nil
}
