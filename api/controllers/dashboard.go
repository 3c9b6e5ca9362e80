package controllers

import (
	"net/http"

	"github.com/jbaptiste/cardfolio-backend/api/responses"
	"github.com/jbaptiste/cardfolio-backend/api/validators"
	"github.com/jbaptiste/cardfolio-backend/internal/dashboard"
	pkgerrors "github.com/jbaptiste/cardfolio-backend/pkg/errors"
	"github.com/jbaptiste/cardfolio-backend/pkg/logger"
)

func periodFromQuery(r *http.Request) (dashboard.PeriodQuery, error) {
	year, err := validators.ParseQueryInt(r, "year", 0, 0, 9999)
	if err != nil {
		return dashboard.PeriodQuery{}, err
	}
	month, err := validators.ParseQueryInt(r, "month", 0, 0, 12)
	if err != nil {
		return dashboard.PeriodQuery{}, err
	}
	week, err := validators.ParseQueryInt(r, "week", 0, 0, 5)
	if err != nil {
		return dashboard.PeriodQuery{}, err
	}
	return dashboard.PeriodQuery{
		Type:      r.URL.Query().Get("type"),
		Year:      year,
		Month:     month,
		Week:      week,
		StartDate: r.URL.Query().Get("startDate"),
		EndDate:   r.URL.Query().Get("endDate"),
	}, nil
}

// DashboardSummary serves the portfolio KPI report.
func DashboardSummary(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}
		ownerID, err := ownerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		period, err := periodFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Summary(r.Context(), ownerID, period)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}

// DashboardTimeSeries serves the cumulative acquisition series.
func DashboardTimeSeries(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}
		ownerID, err := ownerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		period, err := periodFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		series, err := svc.TimeSeries(r.Context(), ownerID, dashboard.TimeSeriesQuery{
			Metric:      r.URL.Query().Get("metric"),
			Granularity: r.URL.Query().Get("granularity"),
			Period:      period,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, series)
	}
}

// DashboardGrades serves the graded-versus-normal distribution.
func DashboardGrades(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}
		ownerID, err := ownerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dist, err := svc.GradeDistribution(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dist)
	}
}

// DashboardTopSets serves the sets ranked by owned quantity.
func DashboardTopSets(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}
		ownerID, err := ownerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 5, 1, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.TopSets(r.Context(), ownerID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

// DashboardRecent serves the most recently touched holdings.
func DashboardRecent(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}
		ownerID, err := ownerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 5, 1, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		activities, err := svc.RecentActivity(r.Context(), ownerID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, activities)
	}
}

// DashboardMostExpensive serves the priciest holdings.
func DashboardMostExpensive(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}
		ownerID, err := ownerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 5, 1, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cards, err := svc.MostExpensive(r.Context(), ownerID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cards)
	}
}
