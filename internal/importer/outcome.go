package importer

import "github.com/mtgbinder/mtgbinder/internal/scryfall"

// OutcomeKind classifies the result of one name lookup.
type OutcomeKind int

// Lookup outcome kinds.
const (
	OutcomeResolved OutcomeKind = iota
	OutcomeNotFound
	OutcomeRateLimited
	OutcomeNetworkError
)

// String returns the outcome kind name for logging.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeResolved:
		return "resolved"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeNetworkError:
		return "network_error"
	}
	return "unknown"
}

// LookupOutcome is the tagged result of resolving one input name.
// Card is set only when Kind is OutcomeResolved; Err carries the cause
// for OutcomeNetworkError.
type LookupOutcome struct {
	Kind OutcomeKind
	Name string
	Card *scryfall.Card
	Err  error
}

// Accumulator collects lookup outcomes into an order-preserving stable
// partition: resolved cards in input order, and the original input
// name for every failed lookup, also in input order.
type Accumulator struct {
	resolved []scryfall.Card
	failed   []string
}

// Add records one outcome.
func (a *Accumulator) Add(outcome LookupOutcome) {
	if outcome.Kind == OutcomeResolved {
		a.resolved = append(a.resolved, *outcome.Card)
		return
	}
	a.failed = append(a.failed, outcome.Name)
}

// Resolved returns the successfully resolved cards in input order.
func (a *Accumulator) Resolved() []scryfall.Card {
	return a.resolved
}

// Failed returns the input names that failed, in input order.
func (a *Accumulator) Failed() []string {
	return a.failed
}

// Total returns the number of outcomes recorded.
func (a *Accumulator) Total() int {
	return len(a.resolved) + len(a.failed)
}
