package inventory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-bexpr"
)

// filterCache stores compiled go-bexpr evaluators keyed by expression text.
var filterCache = &sync.Map{}

// CompileTagFilter validates a tag filter expression up front so list
// handlers can reject bad input with a client error instead of an empty
// result.
func CompileTagFilter(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	if _, ok := filterCache.Load(expr); ok {
		return nil
	}
	evaluator, err := bexpr.CreateEvaluator(expr)
	if err != nil {
		return fmt.Errorf("invalid tag filter: %w", err)
	}
	filterCache.Store(expr, evaluator)
	return nil
}

// MatchTagFilter evaluates a tag filter expression against a tag map.
// An empty expression matches everything. Evaluation errors (for example a
// key the expression references that the map lacks) exclude the resource.
func MatchTagFilter(expr string, tags map[string]string) bool {
	if strings.TrimSpace(expr) == "" {
		return true
	}

	datum := make(map[string]any, len(tags))
	for k, v := range tags {
		datum[k] = v
	}

	if cached, ok := filterCache.Load(expr); ok {
		matches, err := cached.(*bexpr.Evaluator).Evaluate(datum)
		if err != nil {
			return false
		}
		return matches
	}

	evaluator, err := bexpr.CreateEvaluator(expr)
	if err != nil {
		return false
	}
	filterCache.Store(expr, evaluator)

	matches, err := evaluator.Evaluate(datum)
	if err != nil {
		return false
	}
	return matches
}
