package cards

import (
	"context"
	"fmt"
	"strings"

	"github.com/jbaptiste/cardfolio-backend/pkg/catalog"
	pkgerrors "github.com/jbaptiste/cardfolio-backend/pkg/errors"
	"github.com/jbaptiste/cardfolio-backend/pkg/pagination"
)

// SearchRequest carries a free-text card search.
type SearchRequest struct {
	Query    string
	Language string
	Page     int
	PageSize int
}

// SearchResponse is one page of matching cards.
type SearchResponse struct {
	Cards      []catalog.CardSummary `json:"cards"`
	Pagination pagination.Meta       `json:"pagination"`
}

// Service defines the behavior needed by the cards controller.
type Service interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
	GetByID(ctx context.Context, cardID, language string) (*catalog.Card, error)
}

type catalogClient interface {
	SearchByNameAnyLanguage(ctx context.Context, query, language string) ([]catalog.CardSummary, error)
	GetByIDAnyLanguage(ctx context.Context, cardID, language string) (*catalog.Card, error)
}

type service struct {
	catalog catalogClient
}

// ServiceParams bundles the dependencies required to build a cards service.
type ServiceParams struct {
	Catalog catalogClient
}

// NewService constructs a card search service.
func NewService(params ServiceParams) (Service, error) {
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog client is required")
	}
	return &service{catalog: params.Catalog}, nil
}

// Search queries the catalog with the name fragment, retrying once in the
// fallback language when the preferred language finds nothing, then narrows
// results with the fuzzy matcher and the optional number token before
// paginating.
func (s *service) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query is required")
	}

	parsed := ParseQuery(query)
	searchTerm := parsed.NameFragment
	if searchTerm == "" {
		searchTerm = parsed.NumberToken
	}

	results, err := s.catalog.SearchByNameAnyLanguage(ctx, searchTerm, req.Language)
	if err != nil {
		return nil, err
	}

	foldedFragment := Fold(parsed.NameFragment)
	matched := make([]catalog.CardSummary, 0, len(results))
	for _, card := range results {
		if !MatchesNumber(card.Number, parsed.NumberToken) {
			continue
		}
		if !MatchesName(card.Name, foldedFragment) {
			continue
		}
		matched = append(matched, card)
	}

	params := pagination.Normalize(pagination.Params{Page: req.Page, PageSize: req.PageSize})
	meta := pagination.BuildMeta(params, int64(len(matched)))

	start := params.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + params.PageSize
	if end > len(matched) {
		end = len(matched)
	}

	return &SearchResponse{
		Cards:      matched[start:end],
		Pagination: meta,
	}, nil
}

// GetByID fetches a card with the one-shot language fallback. A card absent
// in every language yields (nil, nil).
func (s *service) GetByID(ctx context.Context, cardID, language string) (*catalog.Card, error) {
	if strings.TrimSpace(cardID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card id is required")
	}
	return s.catalog.GetByIDAnyLanguage(ctx, cardID, language)
}
