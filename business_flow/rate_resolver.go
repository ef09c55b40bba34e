// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"strings"

	"github.com/solusaas-git/ovoky-voip-platform-sub001/models"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/repository"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/utils"
)

// ResolvedRate is the outcome of a successful prefix match against a rate deck
type ResolvedRate struct {
	MonthlyRate float64
	SetupFee    float64
	Prefix      string
}

// RateCache caches the rate rows of one deck between resolutions.
// A miss is never an error; the resolver falls through to the repository.
type RateCache interface {
	GetRates(ctx context.Context, rateDeckID uint) ([]*models.Rate, bool)
	SetRates(ctx context.Context, rateDeckID uint, rates []*models.Rate)
}

// RateResolver resolves the effective price of a number from its rate deck
type RateResolver interface {
	// Resolve returns the best matching rate or nil when the number has no
	// deck, the deck is empty, or no prefix matches.
	Resolve(ctx context.Context, number, country, numberType string, rateDeckID *uint) (*ResolvedRate, error)
}

type RateResolverImpl struct {
	rateRepo repository.RateRepository
	cache    RateCache
}

// NewRateResolver creates a new rate resolver. cache may be nil.
func NewRateResolver(rateRepo repository.RateRepository, cache RateCache) RateResolver {
	return &RateResolverImpl{rateRepo: rateRepo, cache: cache}
}

// Resolve picks the rate whose prefix is the longest leading match of the
// normalized number. The first pass requires country and number type to
// match; when nothing matches it falls back to a deck-wide pass, so a
// misclassified number still resolves to its closest prefix.
func (r *RateResolverImpl) Resolve(ctx context.Context, number, country, numberType string, rateDeckID *uint) (*ResolvedRate, error) {
	if rateDeckID == nil {
		return nil, nil
	}

	rates, err := r.loadRates(ctx, *rateDeckID)
	if err != nil {
		return nil, NewBusinessError("RATE_RESOLUTION_FAILED", "Failed to load rate deck", err)
	}
	if len(rates) == 0 {
		return nil, nil
	}

	normalized := utils.NormalizeNumber(number)

	best := bestPrefixMatch(rates, normalized, func(rate *models.Rate) bool {
		return strings.EqualFold(rate.Country, country) && rate.Type == numberType
	})
	if best == nil {
		best = bestPrefixMatch(rates, normalized, nil)
	}
	if best == nil {
		return nil, nil
	}

	return &ResolvedRate{
		MonthlyRate: best.Rate,
		SetupFee:    best.SetupFee,
		Prefix:      best.Prefix,
	}, nil
}

func (r *RateResolverImpl) loadRates(ctx context.Context, rateDeckID uint) ([]*models.Rate, error) {
	if r.cache != nil {
		if rates, ok := r.cache.GetRates(ctx, rateDeckID); ok {
			return rates, nil
		}
	}

	rates, err := r.rateRepo.ByDeck(ctx, rateDeckID)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		r.cache.SetRates(ctx, rateDeckID, rates)
	}
	return rates, nil
}

// bestPrefixMatch returns the rate with the longest prefix that is a leading
// match of number, restricted to rates accepted by pred when pred is non-nil.
// On equal prefix length the lexicographically smallest prefix wins, so the
// result does not depend on row order. Rates with an empty prefix never match.
func bestPrefixMatch(rates []*models.Rate, number string, pred func(*models.Rate) bool) *models.Rate {
	var best *models.Rate
	bestPrefix := ""

	for _, rate := range rates {
		if pred != nil && !pred(rate) {
			continue
		}
		prefix := utils.NormalizeNumber(rate.Prefix)
		if prefix == "" || !strings.HasPrefix(number, prefix) {
			continue
		}
		if best == nil || len(prefix) > len(bestPrefix) ||
			(len(prefix) == len(bestPrefix) && prefix < bestPrefix) {
			best = rate
			bestPrefix = prefix
		}
	}

	return best
}
