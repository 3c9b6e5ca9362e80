package portfolio

import (
	dbtypes "github.com/jbaptiste/cardfolio-backend/pkg/db/types"

	"github.com/jbaptiste/cardfolio-backend/pkg/db/models"
)

// flatten lifts the card snapshot to the top level and summarizes grading
// for display.
func flatten(h models.Holding) HoldingView {
	view := HoldingView{
		ID:       h.ID,
		CardID:   h.CardID,
		Language: h.Language,
		Quantity: h.Quantity,

		Name:          h.CardSnapshot.Name,
		SetID:         h.CardSnapshot.SetID,
		SetName:       h.CardSnapshot.SetName,
		SetLogo:       h.CardSnapshot.SetLogo,
		SetCardCount:  h.CardSnapshot.SetCardCount,
		Number:        h.CardSnapshot.Number,
		Rarity:        h.CardSnapshot.Rarity,
		ImageURL:      h.CardSnapshot.ImageURL,
		ImageURLHiRes: h.CardSnapshot.ImageURLHiRes,
		Types:         h.CardSnapshot.Types,

		PurchasePrice: h.PurchasePrice,
		PurchaseDate:  h.PurchaseDate,
		Booster:       h.Booster,
		Notes:         h.Notes,

		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}

	if !h.HasVariants() {
		view.IsGraded = h.Graded
		view.GradeCompany = h.Grading.Company
		view.GradeScore = h.Grading.Grade
		return view
	}

	view.Variants = make([]VariantView, 0, len(h.Variants))
	anyGraded := false
	for _, variant := range h.Variants {
		vv := VariantView{
			PurchasePrice: variant.PurchasePrice,
			PurchaseDate:  variant.PurchaseDate,
			Booster:       variant.Booster,
			IsGraded:      variant.Graded,
			Notes:         variant.Notes,
		}
		if variant.Grading != nil {
			vv.GradeCompany = variant.Grading.Company
			vv.GradeScore = variant.Grading.Grade
		}
		view.Variants = append(view.Variants, vv)
		if variant.Graded {
			anyGraded = true
		}
	}

	view.IsGraded = anyGraded
	if best := bestGradedVariant(h.Variants); best != nil && best.Grading != nil {
		view.GradeCompany = best.Grading.Company
		view.GradeScore = best.Grading.Grade
	} else {
		view.GradeCompany = h.Grading.Company
		view.GradeScore = h.Grading.Grade
	}
	return view
}

// bestGradedVariant picks the graded variant with the highest parsed grade
// score, keeping the first-seen variant on ties.
func bestGradedVariant(variants dbtypes.VariantList) *dbtypes.Variant {
	var best *dbtypes.Variant
	bestScore := -1.0
	for i := range variants {
		variant := &variants[i]
		if !variant.Graded {
			continue
		}
		score := 0.0
		if variant.Grading != nil {
			score = GradeScore(variant.Grading.Grade)
		}
		if score > bestScore {
			best = variant
			bestScore = score
		}
	}
	return best
}
