package admin

import (
	"context"
	"fmt"

	"github.com/jbaptiste/cardfolio-backend/pkg/db/models"
	dbtypes "github.com/jbaptiste/cardfolio-backend/pkg/db/types"
	pkgerrors "github.com/jbaptiste/cardfolio-backend/pkg/errors"
)

const (
	topCollectorsLimit = 10
	repairBatchSize    = 200
)

// Overview is the cross-user report served to administrators.
type Overview struct {
	Users         int64            `json:"users"`
	Holdings      int64            `json:"holdings"`
	TotalQuantity int64            `json:"totalQuantity"`
	TopCollectors []CollectorCount `json:"topCollectors"`
}

// RepairReport counts what a repair pass touched.
type RepairReport struct {
	Scanned          int `json:"scanned"`
	QuantityRepaired int `json:"quantityRepaired"`
	UnitaryCleared   int `json:"unitaryCleared"`
}

type repository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountHoldings(ctx context.Context) (int64, error)
	TotalQuantity(ctx context.Context) (int64, error)
	TopCollectors(ctx context.Context, limit int) ([]CollectorCount, error)
	ListHoldingsBatch(ctx context.Context, afterID string, batchSize int) ([]models.Holding, error)
	SaveHolding(ctx context.Context, holding *models.Holding) error
}

// Service exposes the admin operations.
type Service interface {
	Overview(ctx context.Context) (*Overview, error)
	RepairHoldings(ctx context.Context) (*RepairReport, error)
}

type service struct {
	repo repository
}

// ServiceParams bundles the dependencies required to build an admin service.
type ServiceParams struct {
	Repo repository
}

// NewService constructs an admin service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	return &service{repo: params.Repo}, nil
}

// Overview aggregates user and holding counts across the whole system.
func (s *service) Overview(ctx context.Context) (*Overview, error) {
	users, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count users")
	}
	holdings, err := s.repo.CountHoldings(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count holdings")
	}
	quantity, err := s.repo.TotalQuantity(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum quantities")
	}
	collectors, err := s.repo.TopCollectors(ctx, topCollectorsLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rank collectors")
	}

	return &Overview{
		Users:         users,
		Holdings:      holdings,
		TotalQuantity: quantity,
		TopCollectors: collectors,
	}, nil
}

// RepairHoldings scans every holding and restores the two structural
// invariants: a variant-mode holding's quantity equals its variant count,
// and variant mode carries no unitary fields.
func (s *service) RepairHoldings(ctx context.Context) (*RepairReport, error) {
	report := &RepairReport{}
	afterID := ""

	for {
		batch, err := s.repo.ListHoldingsBatch(ctx, afterID, repairBatchSize)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "scan holdings")
		}
		if len(batch) == 0 {
			break
		}

		for i := range batch {
			holding := &batch[i]
			report.Scanned++

			changed := false
			if holding.HasVariants() {
				if holding.Quantity != len(holding.Variants) {
					holding.Quantity = len(holding.Variants)
					report.QuantityRepaired++
					changed = true
				}
				if hasUnitaryResidue(holding) {
					clearUnitaryResidue(holding)
					report.UnitaryCleared++
					changed = true
				}
			}
			if changed {
				if err := s.repo.SaveHolding(ctx, holding); err != nil {
					return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save repaired holding")
				}
			}
		}

		afterID = batch[len(batch)-1].ID.String()
		if len(batch) < repairBatchSize {
			break
		}
	}

	return report, nil
}

func hasUnitaryResidue(h *models.Holding) bool {
	return h.PurchasePrice != nil ||
		h.PurchaseDate != nil ||
		h.Booster != nil ||
		h.Graded ||
		!h.Grading.IsZero() ||
		h.Notes != nil
}

func clearUnitaryResidue(h *models.Holding) {
	h.PurchasePrice = nil
	h.PurchaseDate = nil
	h.Booster = nil
	h.Graded = false
	h.Grading = dbtypes.Grading{}
	h.Notes = nil
}
