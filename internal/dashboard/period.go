package dashboard

import (
	"strings"
	"time"

	pkgerrors "github.com/jbaptiste/cardfolio-backend/pkg/errors"
)

// PeriodQuery selects the date range a report covers. Explicit startDate and
// endDate take precedence over the hierarchical type/year/month/week selector.
type PeriodQuery struct {
	Type      string `json:"type"`
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	Week      int    `json:"week"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Period is a resolved half-open-free range. Start and End are nil when the
// period covers everything.
type Period struct {
	Type  string
	Start *time.Time
	End   *time.Time
}

const (
	periodAll   = "all"
	periodYear  = "year"
	periodMonth = "month"
	periodWeek  = "week"

	dateLayout = "2006-01-02"
)

// ResolvePeriod turns a raw query into a concrete range. A week is a fixed
// 7-day block starting at day 1+(week-1)*7 of the month, not an ISO week.
func ResolvePeriod(query PeriodQuery) (Period, error) {
	if query.StartDate != "" || query.EndDate != "" {
		return resolveExplicit(query)
	}

	periodType := strings.ToLower(strings.TrimSpace(query.Type))
	if periodType == "" || periodType == periodAll {
		return Period{Type: periodAll}, nil
	}

	if query.Year < 1 {
		return Period{}, pkgerrors.New(pkgerrors.CodeValidation, "year is required for period type "+periodType)
	}

	switch periodType {
	case periodYear:
		start := time.Date(query.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(query.Year, time.December, 31, 23, 59, 59, 999999999, time.UTC)
		return Period{Type: periodYear, Start: &start, End: &end}, nil
	case periodMonth:
		if query.Month < 1 || query.Month > 12 {
			return Period{}, pkgerrors.New(pkgerrors.CodeValidation, "month must be between 1 and 12")
		}
		start := time.Date(query.Year, time.Month(query.Month), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
		return Period{Type: periodMonth, Start: &start, End: &end}, nil
	case periodWeek:
		if query.Month < 1 || query.Month > 12 {
			return Period{}, pkgerrors.New(pkgerrors.CodeValidation, "month must be between 1 and 12")
		}
		if query.Week < 1 || query.Week > 5 {
			return Period{}, pkgerrors.New(pkgerrors.CodeValidation, "week must be between 1 and 5")
		}
		firstDay := 1 + (query.Week-1)*7
		start := time.Date(query.Year, time.Month(query.Month), firstDay, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 0, 7).Add(-time.Nanosecond)
		return Period{Type: periodWeek, Start: &start, End: &end}, nil
	default:
		return Period{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown period type "+periodType)
	}
}

func resolveExplicit(query PeriodQuery) (Period, error) {
	period := Period{Type: "custom"}
	if query.StartDate != "" {
		start, err := time.Parse(dateLayout, query.StartDate)
		if err != nil {
			return Period{}, pkgerrors.New(pkgerrors.CodeValidation, "startDate must be formatted YYYY-MM-DD")
		}
		period.Start = &start
	}
	if query.EndDate != "" {
		end, err := time.Parse(dateLayout, query.EndDate)
		if err != nil {
			return Period{}, pkgerrors.New(pkgerrors.CodeValidation, "endDate must be formatted YYYY-MM-DD")
		}
		end = end.Add(24*time.Hour - time.Nanosecond)
		period.End = &end
	}
	if period.Start != nil && period.End != nil && period.End.Before(*period.Start) {
		return Period{}, pkgerrors.New(pkgerrors.CodeValidation, "endDate must not precede startDate")
	}
	return period, nil
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	if p.Start != nil && t.Before(*p.Start) {
		return false
	}
	if p.End != nil && t.After(*p.End) {
		return false
	}
	return true
}

// Unbounded is true when the period has no date limits.
func (p Period) Unbounded() bool {
	return p.Start == nil && p.End == nil
}
