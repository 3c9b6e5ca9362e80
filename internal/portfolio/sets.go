package portfolio

import (
	"context"
	"math"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jbaptiste/cardfolio-backend/pkg/db/models"
	pkgerrors "github.com/jbaptiste/cardfolio-backend/pkg/errors"
)

const (
	unknownSetID   = "unknown"
	unknownSetName = "Set inconnu"
)

// EffectivePrice reconciles the unitary and variant representations into a
// single figure: the unitary purchase price when set and non-zero, else the
// sum of variant prices, else 0.
func EffectivePrice(h models.Holding) float64 {
	if h.PurchasePrice != nil && *h.PurchasePrice != 0 {
		return *h.PurchasePrice
	}
	sum := decimal.Zero
	for _, variant := range h.Variants {
		if variant.PurchasePrice != nil {
			sum = sum.Add(decimal.NewFromFloat(*variant.PurchasePrice))
		}
	}
	value, _ := sum.Float64()
	return value
}

// EffectiveGraded is true when the unitary graded flag is set or any
// variant is graded.
func EffectiveGraded(h models.Holding) bool {
	if h.Graded {
		return true
	}
	for _, variant := range h.Variants {
		if variant.Graded {
			return true
		}
	}
	return false
}

// GetSetsByUser groups the owner's holdings by set, merging repeated card
// ids, computing completion, and sorting sets by distinct cards owned.
func (s *service) GetSetsByUser(ctx context.Context, ownerID uuid.UUID) ([]SetGroup, error) {
	holdings, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list holdings")
	}

	type cardAccum struct {
		card  SetCard
		price decimal.Decimal
		langs map[string]struct{}
	}
	type setAccum struct {
		group SetGroup
		cards map[string]*cardAccum
		order []string
	}

	sets := make(map[string]*setAccum)
	var setOrder []string

	for _, holding := range holdings {
		setID := holding.CardSnapshot.SetID
		setName := holding.CardSnapshot.SetName
		if setID == "" {
			setID = unknownSetID
			setName = unknownSetName
		}

		accum, ok := sets[setID]
		if !ok {
			accum = &setAccum{
				group: SetGroup{SetID: setID, SetName: setName, SetLogo: holding.CardSnapshot.SetLogo},
				cards: make(map[string]*cardAccum),
			}
			sets[setID] = accum
			setOrder = append(setOrder, setID)
		}
		if accum.group.SetName == "" && setName != "" {
			accum.group.SetName = setName
		}
		if accum.group.SetLogo == "" && holding.CardSnapshot.SetLogo != "" {
			accum.group.SetLogo = holding.CardSnapshot.SetLogo
		}
		if count := holding.CardSnapshot.SetCardCount; count > accum.group.Total {
			accum.group.Total = count
		}

		entry, ok := accum.cards[holding.CardID]
		if !ok {
			entry = &cardAccum{
				card: SetCard{
					CardID:   holding.CardID,
					Name:     holding.CardSnapshot.Name,
					Number:   holding.CardSnapshot.Number,
					ImageURL: holding.CardSnapshot.ImageURL,
				},
				langs: make(map[string]struct{}),
			}
			accum.cards[holding.CardID] = entry
			accum.order = append(accum.order, holding.CardID)
		}
		entry.card.Quantity += holding.Quantity
		entry.price = entry.price.Add(decimal.NewFromFloat(EffectivePrice(holding)))
		entry.card.Graded = entry.card.Graded || EffectiveGraded(holding)
		if holding.Language != "" {
			entry.langs[holding.Language] = struct{}{}
		}
	}

	groups := make([]SetGroup, 0, len(sets))
	for _, setID := range setOrder {
		accum := sets[setID]

		cards := make([]SetCard, 0, len(accum.order))
		for _, cardID := range accum.order {
			entry := accum.cards[cardID]
			entry.card.TotalPrice, _ = entry.price.Round(2).Float64()
			for lang := range entry.langs {
				entry.card.Languages = append(entry.card.Languages, lang)
			}
			sort.Strings(entry.card.Languages)
			cards = append(cards, entry.card)
		}
		sort.SliceStable(cards, func(i, j int) bool {
			ni, iok := numericPrefix(cards[i].Number)
			nj, jok := numericPrefix(cards[j].Number)
			if iok && jok && ni != nj {
				return ni < nj
			}
			if iok != jok {
				return iok
			}
			return cards[i].Number < cards[j].Number
		})

		group := accum.group
		group.Cards = cards
		group.Owned = len(cards)
		if group.Total > 0 {
			group.Percentage = int(math.Round(float64(group.Owned) / float64(group.Total) * 100))
		}
		groups = append(groups, group)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Owned > groups[j].Owned
	})
	return groups, nil
}

// numericPrefix parses the leading digits of a card number ("136a" → 136).
func numericPrefix(number string) (int, bool) {
	end := 0
	for end < len(number) && number[end] >= '0' && number[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	value, err := strconv.Atoi(number[:end])
	if err != nil {
		return 0, false
	}
	return value, true
}
