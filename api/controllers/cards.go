package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jbaptiste/cardfolio-backend/api/responses"
	"github.com/jbaptiste/cardfolio-backend/api/validators"
	"github.com/jbaptiste/cardfolio-backend/internal/cards"
	pkgerrors "github.com/jbaptiste/cardfolio-backend/pkg/errors"
	"github.com/jbaptiste/cardfolio-backend/pkg/logger"
)

// CardsSearch serves free-text card searches against the catalog.
func CardsSearch(svc cards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cards service unavailable"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 10000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pageSize, err := validators.ParseQueryInt(r, "pageSize", 25, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Search(r.Context(), cards.SearchRequest{
			Query:    r.URL.Query().Get("q"),
			Language: r.URL.Query().Get("language"),
			Page:     page,
			PageSize: pageSize,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// CardsGet looks a single card up by catalog id.
func CardsGet(svc cards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cards service unavailable"))
			return
		}

		cardID := strings.TrimSpace(chi.URLParam(r, "cardId"))
		card, err := svc.GetByID(r.Context(), cardID, r.URL.Query().Get("language"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if card == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "card not found"))
			return
		}

		responses.WriteSuccess(w, card)
	}
}
