// Package score provides priority scoring for best-first traversal.
// Scorers are injected capabilities: the engine calls them at admission
// time and orders the frontier by the returned value, but never
// interprets the score beyond that.
package score

import (
	"math"
	"strings"
)

// Context carries the signals available when a candidate URL is scored.
type Context struct {
	// Depth the candidate would be fetched at.
	Depth int
	// AnchorText of the link that discovered the candidate, if any.
	AnchorText string
	// ParentQuality is the recorded quality of the discovering page in
	// [0,1], or 0 when the scheduler does not propagate it.
	ParentQuality float64
}

// Scorer computes a priority in [0,1] for a candidate URL. The same
// (url, Context) pair must always produce the same score within one
// crawl run.
type Scorer interface {
	Score(url string, sc Context) float64
}

// Clamp bounds a score to [0,1].
func Clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// DepthDecayScorer prefers shallow URLs: score halves with every level.
// It is the engine's fallback when no scorer is injected.
type DepthDecayScorer struct{}

// Score implements the Scorer interface.
func (DepthDecayScorer) Score(_ string, sc Context) float64 {
	return Clamp(math.Pow(0.5, float64(sc.Depth)))
}

// KeywordScorer boosts URLs or anchor texts containing any of its
// keywords. Concrete strategies (contact-focused, product-focused) are
// instances with different keyword sets.
type KeywordScorer struct {
	// Keywords matched case-insensitively against URL and anchor text.
	Keywords []string
	// Base score for candidates with no keyword hit.
	Base float64
	// Boost added per distinct matched keyword.
	Boost float64
}

// NewKeywordScorer creates a scorer with sensible base and boost.
func NewKeywordScorer(keywords ...string) *KeywordScorer {
	return &KeywordScorer{Keywords: keywords, Base: 0.2, Boost: 0.3}
}

// Score implements the Scorer interface.
func (s *KeywordScorer) Score(url string, sc Context) float64 {
	haystack := strings.ToLower(url + " " + sc.AnchorText)
	v := s.Base
	for _, kw := range s.Keywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			v += s.Boost
		}
	}
	return Clamp(v)
}

// CompositeScorer blends multiple scorers with fixed weights. Weights
// are normalized, so only their ratios matter.
type CompositeScorer struct {
	scorers []Scorer
	weights []float64
	total   float64
}

// NewCompositeScorer creates a weighted blend. Mismatched or empty
// inputs yield a scorer that always returns 0.
func NewCompositeScorer(scorers []Scorer, weights []float64) *CompositeScorer {
	c := &CompositeScorer{}
	if len(scorers) != len(weights) {
		return c
	}
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		c.scorers = append(c.scorers, scorers[i])
		c.weights = append(c.weights, w)
		c.total += w
	}
	return c
}

// Score implements the Scorer interface.
func (c *CompositeScorer) Score(url string, sc Context) float64 {
	if c.total == 0 {
		return 0
	}
	var sum float64
	for i, s := range c.scorers {
		sum += s.Score(url, sc) * c.weights[i]
	}
	return Clamp(sum / c.total)
}

// ParentQualityScorer propagates the discovering page's quality with a
// mild depth penalty, steering the crawl toward rich regions of the
// link graph.
type ParentQualityScorer struct{}

// Score implements the Scorer interface.
func (ParentQualityScorer) Score(_ string, sc Context) float64 {
	penalty := 0.05 * float64(sc.Depth)
	return Clamp(0.3 + 0.7*sc.ParentQuality - penalty)
}
