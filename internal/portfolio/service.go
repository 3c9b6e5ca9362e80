package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jbaptiste/cardfolio-backend/pkg/db/models"
	dbtypes "github.com/jbaptiste/cardfolio-backend/pkg/db/types"
	pkgerrors "github.com/jbaptiste/cardfolio-backend/pkg/errors"
)

const defaultLanguage = "fr"

// Service defines the behavior needed by the portfolio controller.
type Service interface {
	Add(ctx context.Context, ownerID uuid.UUID, req AddRequest) (*HoldingView, error)
	Update(ctx context.Context, ownerID, holdingID uuid.UUID, req UpdateRequest) (*HoldingView, error)
	DeleteVariant(ctx context.Context, ownerID, holdingID uuid.UUID, index int) (*HoldingView, error)
	Delete(ctx context.Context, ownerID, holdingID uuid.UUID) error
	Clear(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Get(ctx context.Context, ownerID, holdingID uuid.UUID) (*HoldingView, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]HoldingView, error)
	CheckOwnership(ctx context.Context, ownerID uuid.UUID, cardIDs []string) (map[string]bool, error)
	GetSetsByUser(ctx context.Context, ownerID uuid.UUID) ([]SetGroup, error)
}

type repository interface {
	FindByOwnerCardLang(ctx context.Context, ownerID uuid.UUID, cardID, language string) (*models.Holding, error)
	FindByID(ctx context.Context, ownerID, holdingID uuid.UUID) (*models.Holding, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Holding, error)
	Create(ctx context.Context, holding *models.Holding) error
	Save(ctx context.Context, holding *models.Holding) error
	Delete(ctx context.Context, ownerID, holdingID uuid.UUID) (bool, error)
	DeleteAllByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	OwnedCardIDs(ctx context.Context, ownerID uuid.UUID, cardIDs []string) ([]string, error)
}

type txManager interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo repository
	tx   txManager
}

// ServiceParams bundles the dependencies required to build a portfolio service.
type ServiceParams struct {
	Repo repository
	Tx   txManager
}

// NewService constructs a portfolio service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction manager is required")
	}
	return &service{repo: params.Repo, tx: params.Tx}, nil
}

// Add merges new copies into an existing holding or creates one. The
// read-modify-write on the (owner, card, language) triple runs inside a
// transaction so concurrent additions cannot interleave.
func (s *service) Add(ctx context.Context, ownerID uuid.UUID, req AddRequest) (*HoldingView, error) {
	cardID := strings.TrimSpace(req.CardID)
	if cardID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cardId is required")
	}
	language := strings.ToLower(strings.TrimSpace(req.Language))
	if language == "" {
		language = defaultLanguage
	}

	variantMode := len(req.Variants) > 0
	if !variantMode && req.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var result *models.Holding
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		existing, err := repo.FindByOwnerCardLang(ctx, ownerID, cardID, language)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup holding")
			}
			existing = nil
		}

		if existing == nil {
			holding := s.buildNewHolding(ownerID, cardID, language, req, variantMode)
			if err := repo.Create(ctx, holding); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create holding")
			}
			result = holding
			return nil
		}

		s.mergeIntoExisting(existing, req, variantMode)
		if existing.CardSnapshot.IsZero() && req.Card != nil {
			existing.CardSnapshot = snapshotFromMetadata(req.Card)
		}
		if err := repo.Save(ctx, existing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save holding")
		}
		result = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := flatten(*result)
	return &view, nil
}

func (s *service) buildNewHolding(ownerID uuid.UUID, cardID, language string, req AddRequest, variantMode bool) *models.Holding {
	holding := &models.Holding{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		CardID:       cardID,
		Language:     language,
		CardSnapshot: snapshotFromMetadata(req.Card),
	}

	if variantMode {
		holding.Variants = variantsFromInputs(req.Variants)
		holding.Quantity = len(holding.Variants)
		return holding
	}

	holding.Quantity = req.Quantity
	holding.PurchasePrice = req.PurchasePrice
	holding.PurchaseDate = req.PurchaseDate
	holding.Booster = req.Booster
	holding.Graded = req.Graded
	holding.Notes = req.Notes
	if grading := NormalizeGrading(req.Grading); grading != nil {
		holding.Grading = *grading
	}
	return holding
}

func (s *service) mergeIntoExisting(existing *models.Holding, req AddRequest, variantMode bool) {
	if existing.HasVariants() {
		// Variant mode never merges: every add appends distinct variants.
		existing.Variants = append(existing.Variants, incomingVariants(req, variantMode)...)
		existing.Quantity = len(existing.Variants)
		return
	}

	if !variantMode && unitaryDataMatches(existing, req) {
		existing.Quantity += req.Quantity
		return
	}

	// Metadata differs: the existing unitary stack becomes variant 0 and
	// the incoming copies follow as their own variants.
	converted := dbtypes.VariantList{unitaryAsVariant(existing)}
	converted = append(converted, incomingVariants(req, variantMode)...)
	existing.Variants = converted
	existing.Quantity = len(converted)
	clearUnitaryFields(existing)
}

func incomingVariants(req AddRequest, variantMode bool) dbtypes.VariantList {
	if variantMode {
		return variantsFromInputs(req.Variants)
	}
	incoming := dbtypes.Variant{
		PurchasePrice: req.PurchasePrice,
		PurchaseDate:  req.PurchaseDate,
		Booster:       req.Booster,
		Graded:        req.Graded,
		Grading:       NormalizeGrading(req.Grading),
		Notes:         req.Notes,
	}
	list := make(dbtypes.VariantList, 0, req.Quantity)
	for i := 0; i < req.Quantity; i++ {
		list = append(list, incoming)
	}
	return list
}

func variantsFromInputs(inputs []VariantInput) dbtypes.VariantList {
	list := make(dbtypes.VariantList, 0, len(inputs))
	for _, in := range inputs {
		list = append(list, variantFromInput(in))
	}
	return list
}

func unitaryAsVariant(h *models.Holding) dbtypes.Variant {
	variant := dbtypes.Variant{
		PurchasePrice: h.PurchasePrice,
		PurchaseDate:  h.PurchaseDate,
		Booster:       h.Booster,
		Graded:        h.Graded,
		Notes:         h.Notes,
	}
	if !h.Grading.IsZero() {
		grading := h.Grading
		variant.Grading = &grading
	}
	return variant
}

func clearUnitaryFields(h *models.Holding) {
	h.PurchasePrice = nil
	h.PurchaseDate = nil
	h.Booster = nil
	h.Graded = false
	h.Grading = dbtypes.Grading{}
	h.Notes = nil
}

func unitaryDataMatches(existing *models.Holding, req AddRequest) bool {
	if !float64PtrEqual(existing.PurchasePrice, req.PurchasePrice) {
		return false
	}
	if !timePtrEqual(existing.PurchaseDate, req.PurchaseDate) {
		return false
	}
	if !stringPtrEqual(existing.Booster, req.Booster) {
		return false
	}
	if existing.Graded != req.Graded {
		return false
	}

	incoming := NormalizeGrading(req.Grading)
	incomingCompany, incomingGrade := "", ""
	if incoming != nil {
		incomingCompany, incomingGrade = incoming.Company, incoming.Grade
	}
	return existing.Grading.Company == incomingCompany && existing.Grading.Grade == incomingGrade
}

// Update patches a holding. A variants array replaces the stored list
// wholesale; unitary patches honor explicit-null semantics; quantity 1 on a
// variant-mode holding reverts it to unitary.
func (s *service) Update(ctx context.Context, ownerID, holdingID uuid.UUID, req UpdateRequest) (*HoldingView, error) {
	holding, err := s.loadOwned(ctx, ownerID, holdingID)
	if err != nil {
		return nil, err
	}

	if req.Variants != nil {
		applyVariantReplacement(holding, *req.Variants)
	} else if err := applyUnitaryPatch(holding, req); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, holding); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save holding")
	}

	view := flatten(*holding)
	return &view, nil
}

func applyVariantReplacement(holding *models.Holding, inputs []VariantInput) {
	holding.Variants = variantsFromInputs(inputs)
	if len(holding.Variants) == 0 {
		holding.Variants = nil
		holding.Quantity = 1
		return
	}
	holding.Quantity = len(holding.Variants)
	clearUnitaryFields(holding)
}

func applyUnitaryPatch(holding *models.Holding, req UpdateRequest) error {
	if req.Quantity.Set {
		if req.Quantity.Value == nil || *req.Quantity.Value < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
		quantity := *req.Quantity.Value
		switch {
		case holding.HasVariants() && quantity == 1:
			revertToUnitary(holding, holding.Variants[0])
		case holding.HasVariants():
			// Variant-mode quantity always equals the variant count.
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity of a holding with variants is derived from its variant list")
		default:
			holding.Quantity = quantity
		}
	}

	// A holding still in variant mode carries no unitary fields.
	if holding.HasVariants() && hasUnitaryFieldPatch(req) {
		return pkgerrors.New(pkgerrors.CodeValidation, "unitary fields cannot be patched while the holding has variants")
	}

	if req.PurchasePrice.Set {
		holding.PurchasePrice = req.PurchasePrice.Value
	}
	if req.PurchaseDate.Set {
		holding.PurchaseDate = req.PurchaseDate.Value
	}
	if req.Booster.Set {
		holding.Booster = req.Booster.Value
	}
	if req.Notes.Set {
		holding.Notes = req.Notes.Value
	}
	if req.Graded.Set {
		holding.Graded = req.Graded.Value != nil && *req.Graded.Value
	}
	if req.Grading.Set {
		holding.Grading = dbtypes.Grading{}
		if req.Grading.Value != nil {
			if grading := NormalizeGrading(*req.Grading.Value); grading != nil {
				holding.Grading = *grading
			}
		}
	}
	return nil
}

func hasUnitaryFieldPatch(req UpdateRequest) bool {
	return req.PurchasePrice.Set ||
		req.PurchaseDate.Set ||
		req.Booster.Set ||
		req.Notes.Set ||
		req.Graded.Set ||
		req.Grading.Set
}

func revertToUnitary(holding *models.Holding, variant dbtypes.Variant) {
	holding.PurchasePrice = variant.PurchasePrice
	holding.PurchaseDate = variant.PurchaseDate
	holding.Booster = variant.Booster
	holding.Graded = variant.Graded
	holding.Grading = dbtypes.Grading{}
	if variant.Grading != nil {
		holding.Grading = *variant.Grading
	}
	holding.Notes = variant.Notes
	holding.Variants = nil
	holding.Quantity = 1
}

// DeleteVariant removes the variant at the given index. Removing the last
// variant deletes the holding and returns a nil view; one remaining variant
// reverts the holding to unitary mode.
func (s *service) DeleteVariant(ctx context.Context, ownerID, holdingID uuid.UUID, index int) (*HoldingView, error) {
	holding, err := s.loadOwned(ctx, ownerID, holdingID)
	if err != nil {
		return nil, err
	}
	if !holding.HasVariants() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "holding has no variants")
	}
	if index < 0 || index >= len(holding.Variants) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant index out of bounds")
	}

	remaining := append(dbtypes.VariantList{}, holding.Variants[:index]...)
	remaining = append(remaining, holding.Variants[index+1:]...)

	switch len(remaining) {
	case 0:
		if _, err := s.repo.Delete(ctx, ownerID, holdingID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete holding")
		}
		return nil, nil
	case 1:
		revertToUnitary(holding, remaining[0])
	default:
		holding.Variants = remaining
		holding.Quantity = len(remaining)
	}

	if err := s.repo.Save(ctx, holding); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save holding")
	}

	view := flatten(*holding)
	return &view, nil
}

// Delete removes one holding.
func (s *service) Delete(ctx context.Context, ownerID, holdingID uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, ownerID, holdingID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete holding")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "holding not found")
	}
	return nil
}

// Clear deletes the owner's whole portfolio and returns the removed count.
func (s *service) Clear(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	count, err := s.repo.DeleteAllByOwner(ctx, ownerID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear portfolio")
	}
	return count, nil
}

// Get returns one flattened holding.
func (s *service) Get(ctx context.Context, ownerID, holdingID uuid.UUID) (*HoldingView, error) {
	holding, err := s.loadOwned(ctx, ownerID, holdingID)
	if err != nil {
		return nil, err
	}
	view := flatten(*holding)
	return &view, nil
}

// List returns the owner's flattened holdings.
func (s *service) List(ctx context.Context, ownerID uuid.UUID) ([]HoldingView, error) {
	holdings, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list holdings")
	}
	views := make([]HoldingView, 0, len(holdings))
	for _, holding := range holdings {
		views = append(views, flatten(holding))
	}
	return views, nil
}

// CheckOwnership reports which of the queried card ids the owner holds.
func (s *service) CheckOwnership(ctx context.Context, ownerID uuid.UUID, cardIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(cardIDs))
	queried := make([]string, 0, len(cardIDs))
	for _, id := range cardIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		result[id] = false
		queried = append(queried, id)
	}
	if len(queried) == 0 {
		return result, nil
	}

	owned, err := s.repo.OwnedCardIDs(ctx, ownerID, queried)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check ownership")
	}
	for _, id := range owned {
		result[id] = true
	}
	return result, nil
}

func (s *service) loadOwned(ctx context.Context, ownerID, holdingID uuid.UUID) (*models.Holding, error) {
	holding, err := s.repo.FindByID(ctx, ownerID, holdingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "holding not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup holding")
	}
	return holding, nil
}

func float64PtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
