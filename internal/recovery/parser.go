// Package recovery turns unreliable model output into a well-formed
// AnalysisResult. Tiers run in order until one succeeds; the last resort is a
// static result, so Parse never fails.
package recovery

import (
	"go-property-enhancer/internal/logger"
	"go-property-enhancer/pkg/models"

	"github.com/sirupsen/logrus"
)

// Parser runs a chain of recovery tiers.
type Parser struct {
	tiers []Tier
}

// NewParser returns the standard chain: direct, embedded, fallback.
func NewParser() *Parser {
	return NewParserWithTiers(DirectTier{}, EmbeddedTier{}, FallbackTier{})
}

// NewParserWithTiers builds a parser from an explicit chain.
func NewParserWithTiers(tiers ...Tier) *Parser {
	return &Parser{tiers: tiers}
}

// Parse returns the first successful tier's result and that tier's name.
// If every tier fails the static fallback is returned.
func (p *Parser) Parse(raw string) (models.AnalysisResult, TierName) {
	for _, tier := range p.tiers {
		result, err := tier.Recover(raw)
		if err == nil {
			return result, tier.Name()
		}
		logger.WithFields(logrus.Fields{
			"tier":         tier.Name(),
			"response_len": len(raw),
		}).WithError(err).Debug("Recovery tier rejected response")
	}
	return Fallback(), TierFallback
}

// Tiers returns the names of the configured chain, in order.
func (p *Parser) Tiers() []TierName {
	names := make([]TierName, 0, len(p.tiers))
	for _, t := range p.tiers {
		names = append(names, t.Name())
	}
	return names
}
