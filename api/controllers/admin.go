package controllers

import (
	"net/http"

	"github.com/jbaptiste/cardfolio-backend/api/responses"
	"github.com/jbaptiste/cardfolio-backend/internal/admin"
	pkgerrors "github.com/jbaptiste/cardfolio-backend/pkg/errors"
	"github.com/jbaptiste/cardfolio-backend/pkg/logger"
)

// AdminOverview serves the cross-user report.
func AdminOverview(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		overview, err := svc.Overview(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, overview)
	}
}

// AdminRepairHoldings runs the structural repair pass over all holdings.
func AdminRepairHoldings(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		report, err := svc.RepairHoldings(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}
