package portfolio

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/jbaptiste/cardfolio-backend/pkg/db/types"
)

// Optional distinguishes an omitted JSON field from an explicit null.
// Set is false when the field was absent; Value is nil on explicit null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	o.Value = &value
	return nil
}

// CardMetadata carries the catalog fields a caller may attach when adding a
// card. Only non-empty fields are copied into the stored snapshot.
type CardMetadata struct {
	Name          string   `json:"name,omitempty"`
	SetID         string   `json:"setId,omitempty"`
	SetName       string   `json:"setName,omitempty"`
	SetLogo       string   `json:"setLogo,omitempty"`
	SetCardCount  int      `json:"setCardCount,omitempty"`
	Number        string   `json:"number,omitempty"`
	Rarity        string   `json:"rarity,omitempty"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	ImageURLHiRes string   `json:"imageUrlHiRes,omitempty"`
	Types         []string `json:"types,omitempty"`
}

// VariantInput describes one copy in an incoming request. Grading is raw
// caller JSON and goes through NormalizeGrading.
type VariantInput struct {
	PurchasePrice *float64       `json:"purchasePrice,omitempty"`
	PurchaseDate  *time.Time     `json:"purchaseDate,omitempty"`
	Booster       *string        `json:"booster,omitempty"`
	Graded        bool           `json:"graded"`
	Grading       map[string]any `json:"grading,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
}

// AddRequest is the payload for adding copies of a card. Either the unitary
// fields with Quantity, or a non-empty Variants list.
type AddRequest struct {
	CardID   string `json:"cardId" validate:"required"`
	Language string `json:"language"`

	Quantity      int            `json:"quantity"`
	PurchasePrice *float64       `json:"purchasePrice,omitempty"`
	PurchaseDate  *time.Time     `json:"purchaseDate,omitempty"`
	Booster       *string        `json:"booster,omitempty"`
	Graded        bool           `json:"graded"`
	Grading       map[string]any `json:"grading,omitempty"`
	Notes         *string        `json:"notes,omitempty"`

	Variants []VariantInput `json:"variants,omitempty"`

	Card *CardMetadata `json:"card,omitempty"`
}

// UpdateRequest patches a holding. Omitted fields are untouched; explicit
// nulls clear. A Variants array replaces the existing list wholesale.
type UpdateRequest struct {
	Quantity      Optional[int]            `json:"quantity"`
	PurchasePrice Optional[float64]        `json:"purchasePrice"`
	PurchaseDate  Optional[time.Time]      `json:"purchaseDate"`
	Booster       Optional[string]         `json:"booster"`
	Graded        Optional[bool]           `json:"graded"`
	Grading       Optional[map[string]any] `json:"grading"`
	Notes         Optional[string]         `json:"notes"`
	Variants      *[]VariantInput          `json:"variants,omitempty"`
}

// VariantView is the display shape of one tracked copy.
type VariantView struct {
	PurchasePrice *float64   `json:"purchasePrice,omitempty"`
	PurchaseDate  *time.Time `json:"purchaseDate,omitempty"`
	Booster       *string    `json:"booster,omitempty"`
	IsGraded      bool       `json:"isGraded"`
	GradeCompany  string     `json:"gradeCompany,omitempty"`
	GradeScore    string     `json:"gradeScore,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

// HoldingView is the flattened holding returned to callers: snapshot fields
// lifted to the top level, grading summarized from the best-graded variant.
type HoldingView struct {
	ID       uuid.UUID `json:"id"`
	CardID   string    `json:"cardId"`
	Language string    `json:"language"`
	Quantity int       `json:"quantity"`

	Name          string   `json:"name,omitempty"`
	SetID         string   `json:"setId,omitempty"`
	SetName       string   `json:"setName,omitempty"`
	SetLogo       string   `json:"setLogo,omitempty"`
	SetCardCount  int      `json:"setCardCount,omitempty"`
	Number        string   `json:"number,omitempty"`
	Rarity        string   `json:"rarity,omitempty"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	ImageURLHiRes string   `json:"imageUrlHiRes,omitempty"`
	Types         []string `json:"types,omitempty"`

	PurchasePrice *float64   `json:"purchasePrice,omitempty"`
	PurchaseDate  *time.Time `json:"purchaseDate,omitempty"`
	Booster       *string    `json:"booster,omitempty"`
	Notes         *string    `json:"notes,omitempty"`

	IsGraded     bool   `json:"isGraded"`
	GradeCompany string `json:"gradeCompany,omitempty"`
	GradeScore   string `json:"gradeScore,omitempty"`

	Variants []VariantView `json:"variants,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SetCard is one distinct card within a grouped set.
type SetCard struct {
	CardID     string   `json:"cardId"`
	Name       string   `json:"name,omitempty"`
	Number     string   `json:"number,omitempty"`
	ImageURL   string   `json:"imageUrl,omitempty"`
	Quantity   int      `json:"quantity"`
	TotalPrice float64  `json:"totalPrice"`
	Graded     bool     `json:"graded"`
	Languages  []string `json:"languages,omitempty"`
}

// SetGroup is the per-set aggregation returned by GetSetsByUser.
type SetGroup struct {
	SetID      string    `json:"setId"`
	SetName    string    `json:"setName"`
	SetLogo    string    `json:"setLogo,omitempty"`
	Owned      int       `json:"owned"`
	Total      int       `json:"total,omitempty"`
	Percentage int       `json:"percentage"`
	Cards      []SetCard `json:"cards"`
}

func variantFromInput(in VariantInput) dbtypes.Variant {
	return dbtypes.Variant{
		PurchasePrice: in.PurchasePrice,
		PurchaseDate:  in.PurchaseDate,
		Booster:       in.Booster,
		Graded:        in.Graded,
		Grading:       NormalizeGrading(in.Grading),
		Notes:         in.Notes,
	}
}

func snapshotFromMetadata(meta *CardMetadata) dbtypes.CardSnapshot {
	if meta == nil {
		return dbtypes.CardSnapshot{}
	}
	var snap dbtypes.CardSnapshot
	if meta.Name != "" {
		snap.Name = meta.Name
	}
	if meta.SetID != "" {
		snap.SetID = meta.SetID
	}
	if meta.SetName != "" {
		snap.SetName = meta.SetName
	}
	if meta.SetLogo != "" {
		snap.SetLogo = meta.SetLogo
	}
	if meta.SetCardCount > 0 {
		snap.SetCardCount = meta.SetCardCount
	}
	if meta.Number != "" {
		snap.Number = meta.Number
	}
	if meta.Rarity != "" {
		snap.Rarity = meta.Rarity
	}
	if meta.ImageURL != "" {
		snap.ImageURL = meta.ImageURL
	}
	if meta.ImageURLHiRes != "" {
		snap.ImageURLHiRes = meta.ImageURLHiRes
	}
	if len(meta.Types) > 0 {
		snap.Types = append([]string(nil), meta.Types...)
	}
	return snap
}
