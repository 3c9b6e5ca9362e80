package dashboard

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jbaptiste/cardfolio-backend/internal/portfolio"
	"github.com/jbaptiste/cardfolio-backend/pkg/db/models"
	pkgerrors "github.com/jbaptiste/cardfolio-backend/pkg/errors"
)

const (
	metricCount = "count"
	metricValue = "value"

	granularityDaily   = "daily"
	granularityWeekly  = "weekly"
	granularityMonthly = "monthly"

	unknownSetID   = "unknown"
	unknownSetName = "Unknown Set"
	unknownCompany = "unknown"

	defaultLimit = 5
	maxLimit     = 50
)

// Service computes read-only reports over one owner's holdings.
type Service interface {
	Summary(ctx context.Context, ownerID uuid.UUID, period PeriodQuery) (*Summary, error)
	TimeSeries(ctx context.Context, ownerID uuid.UUID, query TimeSeriesQuery) (*TimeSeries, error)
	GradeDistribution(ctx context.Context, ownerID uuid.UUID) (*GradeDistribution, error)
	TopSets(ctx context.Context, ownerID uuid.UUID, limit int) (*TopSetsReport, error)
	RecentActivity(ctx context.Context, ownerID uuid.UUID, limit int) ([]Activity, error)
	MostExpensive(ctx context.Context, ownerID uuid.UUID, limit int) ([]ExpensiveCard, error)
}

type holdingSource interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Holding, error)
}

type service struct {
	repo holdingSource
}

// ServiceParams bundles the dependencies required to build a dashboard service.
type ServiceParams struct {
	Repo holdingSource
}

// NewService constructs a dashboard service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("holding repository is required")
	}
	return &service{repo: params.Repo}, nil
}

// Summary aggregates the owner's KPIs over the resolved period.
func (s *service) Summary(ctx context.Context, ownerID uuid.UUID, periodQuery PeriodQuery) (*Summary, error) {
	period, err := ResolvePeriod(periodQuery)
	if err != nil {
		return nil, err
	}
	holdings, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	cards := make(map[string]struct{})
	sets := make(map[string]struct{})
	value := decimal.Zero

	for _, holding := range holdings {
		if !period.Contains(acquisitionDate(holding, period)) {
			continue
		}
		summary.TotalQuantity += holding.Quantity
		cards[holding.CardID] = struct{}{}
		if setID := holding.CardSnapshot.SetID; setID != "" {
			sets[setID] = struct{}{}
		}
		value = value.Add(decimal.NewFromFloat(portfolio.EffectivePrice(holding)))
		if portfolio.EffectiveGraded(holding) {
			summary.GradedQuantity += holding.Quantity
		}
	}

	summary.DistinctCards = len(cards)
	summary.DistinctSets = len(sets)
	summary.TotalValue, _ = value.Round(2).Float64()
	return summary, nil
}

// TimeSeries buckets the owner's acquisitions and returns a cumulative
// running sum per bucket, in chronological order.
func (s *service) TimeSeries(ctx context.Context, ownerID uuid.UUID, query TimeSeriesQuery) (*TimeSeries, error) {
	metric := strings.ToLower(strings.TrimSpace(query.Metric))
	if metric == "" {
		metric = metricCount
	}
	if metric != metricCount && metric != metricValue {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "metric must be count or value")
	}

	period, err := ResolvePeriod(query.Period)
	if err != nil {
		return nil, err
	}
	granularity, err := narrowGranularity(query.Granularity, period)
	if err != nil {
		return nil, err
	}

	holdings, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]decimal.Decimal)
	for _, holding := range holdings {
		at := acquisitionDate(holding, period)
		if !period.Contains(at) {
			continue
		}
		key := bucketKey(at, granularity)
		amount := decimal.NewFromInt(int64(holding.Quantity))
		if metric == metricValue {
			amount = decimal.NewFromFloat(portfolio.EffectivePrice(holding))
		}
		buckets[key] = buckets[key].Add(amount)
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	points := make([]TimeSeriesPoint, 0, len(keys))
	running := decimal.Zero
	for _, key := range keys {
		running = running.Add(buckets[key])
		value, _ := running.Round(2).Float64()
		points = append(points, TimeSeriesPoint{Bucket: key, Value: value})
	}

	return &TimeSeries{Metric: metric, Granularity: granularity, Points: points}, nil
}

// GradeDistribution splits quantities into graded and normal and breaks the
// graded population down per grading company.
func (s *service) GradeDistribution(ctx context.Context, ownerID uuid.UUID) (*GradeDistribution, error) {
	holdings, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	dist := &GradeDistribution{}
	companies := make(map[string]int)
	var companyOrder []string

	addGraded := func(company string, quantity int) {
		dist.GradedQuantity += quantity
		if company == "" {
			company = unknownCompany
		}
		if _, ok := companies[company]; !ok {
			companyOrder = append(companyOrder, company)
		}
		companies[company] += quantity
	}

	for _, holding := range holdings {
		if !holding.HasVariants() {
			if holding.Graded {
				addGraded(holding.Grading.Company, holding.Quantity)
			} else {
				dist.NormalQuantity += holding.Quantity
			}
			continue
		}
		for _, variant := range holding.Variants {
			if !variant.Graded {
				dist.NormalQuantity++
				continue
			}
			company := ""
			if variant.Grading != nil {
				company = variant.Grading.Company
			}
			addGraded(company, 1)
		}
	}

	total := dist.GradedQuantity + dist.NormalQuantity
	if total > 0 {
		dist.GradedPercentage = int(math.Round(float64(dist.GradedQuantity) / float64(total) * 100))
	}

	dist.Companies = make([]CompanyShare, 0, len(companyOrder))
	for _, company := range companyOrder {
		quantity := companies[company]
		share := CompanyShare{Company: company, Quantity: quantity}
		if dist.GradedQuantity > 0 {
			pct := decimal.NewFromInt(int64(quantity)).
				Div(decimal.NewFromInt(int64(dist.GradedQuantity))).
				Mul(decimal.NewFromInt(100))
			share.Percentage, _ = pct.Round(2).Float64()
		}
		dist.Companies = append(dist.Companies, share)
	}
	sort.SliceStable(dist.Companies, func(i, j int) bool {
		return dist.Companies[i].Quantity > dist.Companies[j].Quantity
	})
	return dist, nil
}

// TopSets ranks sets by owned quantity.
func (s *service) TopSets(ctx context.Context, ownerID uuid.UUID, limit int) (*TopSetsReport, error) {
	limit = normalizeLimit(limit)
	holdings, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	type accum struct {
		set   TopSet
		value decimal.Decimal
	}
	sets := make(map[string]*accum)
	var order []string

	for _, holding := range holdings {
		setID := holding.CardSnapshot.SetID
		setName := holding.CardSnapshot.SetName
		if setID == "" {
			setID = unknownSetID
			setName = unknownSetName
		}
		entry, ok := sets[setID]
		if !ok {
			entry = &accum{set: TopSet{SetID: setID, SetName: setName, SetLogo: holding.CardSnapshot.SetLogo}}
			sets[setID] = entry
			order = append(order, setID)
		}
		if entry.set.SetName == "" && setName != "" {
			entry.set.SetName = setName
		}
		entry.set.Quantity += holding.Quantity
		entry.value = entry.value.Add(decimal.NewFromFloat(portfolio.EffectivePrice(holding)))
	}

	ranked := make([]TopSet, 0, len(order))
	for _, setID := range order {
		entry := sets[setID]
		entry.set.TotalValue, _ = entry.value.Round(2).Float64()
		ranked = append(ranked, entry.set)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Quantity > ranked[j].Quantity
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return &TopSetsReport{Sets: ranked, DistinctSets: len(order)}, nil
}

// RecentActivity reports the most recently touched holdings. A holding whose
// update follows its creation by more than a second is an update, otherwise
// an addition.
func (s *service) RecentActivity(ctx context.Context, ownerID uuid.UUID, limit int) ([]Activity, error) {
	limit = normalizeLimit(limit)
	holdings, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	// ListByOwner already sorts by updated_at descending.
	if len(holdings) > limit {
		holdings = holdings[:limit]
	}

	activities := make([]Activity, 0, len(holdings))
	for _, holding := range holdings {
		activityType := "added"
		if holding.UpdatedAt.Sub(holding.CreatedAt) > time.Second {
			activityType = "updated"
		}
		activities = append(activities, Activity{
			HoldingID: holding.ID,
			CardID:    holding.CardID,
			Name:      holding.CardSnapshot.Name,
			ImageURL:  holding.CardSnapshot.ImageURL,
			Type:      activityType,
			Quantity:  holding.Quantity,
			When:      holding.UpdatedAt,
		})
	}
	return activities, nil
}

// MostExpensive ranks holdings by representative price, dropping those with
// no positive price.
func (s *service) MostExpensive(ctx context.Context, ownerID uuid.UUID, limit int) ([]ExpensiveCard, error) {
	limit = normalizeLimit(limit)
	holdings, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	cards := make([]ExpensiveCard, 0, len(holdings))
	for _, holding := range holdings {
		price := representativePrice(holding)
		if price <= 0 {
			continue
		}
		cards = append(cards, ExpensiveCard{
			HoldingID: holding.ID,
			CardID:    holding.CardID,
			Name:      holding.CardSnapshot.Name,
			SetName:   holding.CardSnapshot.SetName,
			ImageURL:  holding.CardSnapshot.ImageURL,
			Price:     price,
			Graded:    portfolio.EffectiveGraded(holding),
		})
	}
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].Price > cards[j].Price
	})
	if len(cards) > limit {
		cards = cards[:limit]
	}
	return cards, nil
}

func (s *service) load(ctx context.Context, ownerID uuid.UUID) ([]models.Holding, error) {
	holdings, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list holdings")
	}
	return holdings, nil
}

// acquisitionDate is the date a holding is bucketed and filtered by. An
// unbounded period reads the purchase date when recorded; bounded periods use
// the creation timestamp.
func acquisitionDate(h models.Holding, period Period) time.Time {
	if period.Unbounded() && h.PurchaseDate != nil {
		return *h.PurchaseDate
	}
	return h.CreatedAt
}

// narrowGranularity clamps the requested granularity to the period: a single
// week is always daily, a single month never coarser than weekly.
func narrowGranularity(raw string, period Period) (string, error) {
	granularity := strings.ToLower(strings.TrimSpace(raw))
	if granularity == "" {
		granularity = granularityMonthly
	}
	switch granularity {
	case granularityDaily, granularityWeekly, granularityMonthly:
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "granularity must be daily, weekly or monthly")
	}

	switch period.Type {
	case periodWeek:
		granularity = granularityDaily
	case periodMonth:
		if granularity == granularityMonthly {
			granularity = granularityWeekly
		}
	}
	return granularity, nil
}

// bucketKey formats a timestamp into a lexically sortable bucket label.
func bucketKey(t time.Time, granularity string) string {
	switch granularity {
	case granularityDaily:
		return t.Format("2006-01-02")
	case granularityWeekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	default:
		return t.Format("2006-01")
	}
}

func representativePrice(h models.Holding) float64 {
	if h.PurchasePrice != nil && *h.PurchasePrice > 0 {
		return *h.PurchasePrice
	}
	best := 0.0
	for _, variant := range h.Variants {
		if variant.PurchasePrice != nil && *variant.PurchasePrice > best {
			best = *variant.PurchasePrice
		}
	}
	return best
}

func normalizeLimit(limit int) int {
	if limit < 1 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
