package classifier

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
)

// Result is the outcome of classifying one piece of text.
type Result struct {
	// Domain is the winning domain, or "general" when nothing scored.
	Domain string `json:"domain"`
	// Confidence is the normalized score in [0,1].
	Confidence float64 `json:"confidence"`
	// Explanation says how the domain was chosen.
	Explanation string `json:"explanation"`
}

// Oracle is a secondary classifier consulted in ensemble mode. It is
// assumed slow and unreliable; its failure never propagates into the
// primary classification path.
type Oracle interface {
	Classify(ctx context.Context, text string) (Result, error)
}

// generalFloor is the confidence reported when no domain scores.
const generalFloor = 0.2

// Classifier scores text against a fixed domain -> keyword table.
// Classification is deterministic and has no side effects: identical
// text always yields the identical result.
type Classifier struct {
	keywords DomainKeywords
	// domains is the sorted domain list, fixed at construction so tie
	// breaks are stable.
	domains []string

	// oracle enables ensemble mode when non-nil.
	oracle Oracle
	// oracleTimeout bounds each oracle call.
	oracleTimeout time.Duration
	// adoptThreshold is the blended confidence above which the
	// oracle's domain is adopted.
	adoptThreshold float64
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithOracle enables ensemble mode with the given secondary oracle.
func WithOracle(o Oracle, timeout time.Duration, adoptThreshold float64) Option {
	return func(c *Classifier) {
		c.oracle = o
		c.oracleTimeout = timeout
		c.adoptThreshold = adoptThreshold
	}
}

// WithKeywords replaces the default keyword table.
func WithKeywords(kw DomainKeywords) Option {
	return func(c *Classifier) { c.keywords = kw }
}

// New creates a Classifier with the default keyword table.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		keywords:       DefaultDomainKeywords(),
		oracleTimeout:  10 * time.Second,
		adoptThreshold: 0.6,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.domains = make([]string, 0, len(c.keywords))
	for d := range c.keywords {
		c.domains = append(c.domains, d)
	}
	sort.Strings(c.domains)
	return c
}

// Classify scores text against every domain and returns the best
// match. If an oracle is configured, the heuristic result is blended
// with the oracle's: confidences are averaged, and the oracle's domain
// is adopted only when the blended confidence exceeds the adopt
// threshold. Oracle errors fall back silently to the heuristic result.
func (c *Classifier) Classify(ctx context.Context, text string) Result {
	primary := c.classifyHeuristic(text)

	if c.oracle == nil {
		return primary
	}

	octx, cancel := context.WithTimeout(ctx, c.oracleTimeout)
	defer cancel()

	secondary, err := c.oracle.Classify(octx, text)
	if err != nil {
		log.Printf("[classifier] oracle failed, using heuristic result: %v", err)
		return primary
	}

	blended := (primary.Confidence + secondary.Confidence) / 2
	if secondary.Domain != "" && blended > c.adoptThreshold {
		return Result{
			Domain:     secondary.Domain,
			Confidence: blended,
			Explanation: fmt.Sprintf("ensemble adopted oracle domain %q (blended confidence %.2f over heuristic %q)",
				secondary.Domain, blended, primary.Domain),
		}
	}
	return primary
}

// classifyHeuristic is the pure keyword-overlap scorer.
func (c *Classifier) classifyHeuristic(text string) Result {
	lower := strings.ToLower(text)

	bestDomain := ""
	bestScore := 0
	var bestKeyword string

	for _, domain := range c.domains {
		score := 0
		matched := ""
		for _, kw := range c.keywords[domain] {
			if strings.Contains(lower, kw) {
				score++
				if matched == "" {
					matched = kw
				}
			}
		}
		if score > bestScore {
			bestDomain = domain
			bestScore = score
			bestKeyword = matched
		}
	}

	if bestScore == 0 {
		return Result{
			Domain:      DomainGeneral,
			Confidence:  generalFloor,
			Explanation: "no domain keyword matched",
		}
	}

	// Normalize against the best domain's full keyword table so a
	// saturated match yields confidence 1.0.
	confidence := float64(bestScore) / float64(len(c.keywords[bestDomain]))
	if confidence > 1 {
		confidence = 1
	}

	return Result{
		Domain:     bestDomain,
		Confidence: confidence,
		Explanation: fmt.Sprintf("matched %d %s keyword(s), first %q",
			bestScore, bestDomain, bestKeyword),
	}
}
