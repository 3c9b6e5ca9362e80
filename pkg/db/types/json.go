package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Grading holds the professional grading details attached to a copy.
// Stored as a nullable jsonb column; the zero value maps to SQL NULL.
type Grading struct {
	Company             string `json:"company"`
	Grade               string `json:"grade"`
	CertificationNumber string `json:"certificationNumber,omitempty"`
}

// IsZero reports whether the grading carries no information.
func (g Grading) IsZero() bool {
	return g.Company == "" && g.Grade == "" && g.CertificationNumber == ""
}

func (g *Grading) Scan(src any) error {
	if src == nil {
		*g = Grading{}
		return nil
	}
	return scanJSON(src, g, "Grading")
}

func (g Grading) Value() (driver.Value, error) {
	if g.IsZero() {
		return nil, nil
	}
	return json.Marshal(g)
}

// Variant describes a single copy inside a variant-mode holding.
type Variant struct {
	PurchasePrice *float64   `json:"purchasePrice,omitempty"`
	PurchaseDate  *time.Time `json:"purchaseDate,omitempty"`
	Booster       *string    `json:"booster,omitempty"`
	Graded        bool       `json:"graded"`
	Grading       *Grading   `json:"grading,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

// VariantList is the jsonb array of per-copy variants. Empty maps to NULL.
type VariantList []Variant

func (v *VariantList) Scan(src any) error {
	if src == nil {
		*v = nil
		return nil
	}
	return scanJSON(src, v, "VariantList")
}

func (v VariantList) Value() (driver.Value, error) {
	if len(v) == 0 {
		return nil, nil
	}
	return json.Marshal(v)
}

// CardSnapshot is the denormalized catalog data captured when a card enters
// the portfolio, so lists and statistics never depend on the upstream catalog.
type CardSnapshot struct {
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

// IsZero reports whether the snapshot carries no catalog data.
func (c CardSnapshot) IsZero() bool {
	return c.Name == "" && c.SetID == "" && c.SetName == "" && c.SetLogo == "" &&
		c.SetCardCount == 0 && c.Number == "" && c.Rarity == "" &&
		c.ImageURL == "" && c.ImageURLHiRes == "" && len(c.Types) == 0
}

func (c *CardSnapshot) Scan(src any) error {
	if src == nil {
		*c = CardSnapshot{}
		return nil
	}
	return scanJSON(src, c, "CardSnapshot")
}

func (c CardSnapshot) Value() (driver.Value, error) {
	if c.IsZero() {
		return nil, nil
	}
	return json.Marshal(c)
}

func scanJSON(src any, dst any, name string) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("%s: unsupported Scan type %T", name, src)
	}
}
