package models

import (
	"time"

	"github.com/google/uuid"
	dbtypes "github.com/jbaptiste/cardfolio-backend/pkg/db/types"
)

// Holding is one owned card entry. A holding is either unitary (quantity of
// identical copies described by the top-level fields) or variant-mode (each
// copy described individually in Variants). When Variants is non-empty the
// unitary purchase fields are cleared and Quantity always equals len(Variants).
type Holding struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID       uuid.UUID            `gorm:"column:owner_id;type:uuid;not null;index:holdings_owner_idx;index:holdings_owner_card_lang_idx,priority:1"`
	CardID        string               `gorm:"column:card_id;type:text;not null;index:holdings_owner_card_lang_idx,priority:2"`
	Language      string               `gorm:"column:language;type:text;not null;default:'fr';index:holdings_owner_card_lang_idx,priority:3"`
	Quantity      int                  `gorm:"column:quantity;not null;default:1"`
	PurchasePrice *float64             `gorm:"column:purchase_price"`
	PurchaseDate  *time.Time           `gorm:"column:purchase_date"`
	Booster       *string              `gorm:"column:booster"`
	Graded        bool                 `gorm:"column:graded;not null;default:false"`
	Grading       dbtypes.Grading      `gorm:"column:grading;type:jsonb"`
	Notes         *string              `gorm:"column:notes"`
	Variants      dbtypes.VariantList  `gorm:"column:variants;type:jsonb"`
	CardSnapshot  dbtypes.CardSnapshot `gorm:"column:card_snapshot;type:jsonb"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// HasVariants reports whether the holding tracks copies individually.
func (h Holding) HasVariants() bool {
	return len(h.Variants) > 0
}
