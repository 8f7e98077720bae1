package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mtgbinder/mtgbinder/internal/events"
	"github.com/mtgbinder/mtgbinder/internal/scryfall"
)

// CardFetcher resolves a single card name against the external card
// data service. fuzzy selects the loose-matching strategy.
type CardFetcher interface {
	GetCardByName(ctx context.Context, name string, fuzzy bool) (*scryfall.Card, error)
}

// BatchFetcher is the optional bulk lookup a fetcher may support.
// When present, large runs resolve exact matches with one request per
// 75 names and only fall back to paced per-name lookups for the names
// the batch missed.
type BatchFetcher interface {
	GetCardsByNames(ctx context.Context, names []string) ([]scryfall.Card, []string, error)
}

// batchThreshold is the run size at which the batch endpoint beats
// paced per-name lookups.
const batchThreshold = 5

// MergeTarget receives resolved cards one at a time. Each MergeCard
// call must durably persist the merge before returning, so a crash
// mid-run cannot lose already-processed cards. Implementations exist
// for user collections and for decks.
type MergeTarget interface {
	MergeCard(ctx context.Context, card scryfall.Card) error
}

// TargetFunc adapts a function to the MergeTarget interface.
type TargetFunc func(ctx context.Context, card scryfall.Card) error

// MergeCard calls f.
func (f TargetFunc) MergeCard(ctx context.Context, card scryfall.Card) error {
	return f(ctx, card)
}

// Report summarizes one pipeline run.
type Report struct {
	// AddedCount is the number of cards resolved and merged.
	AddedCount int `json:"added_count"`

	// FailedNames lists the input names that could not be resolved,
	// in input order.
	FailedNames []string `json:"failed_names"`

	// Attempted is the number of normalized input names.
	Attempted int `json:"attempted"`
}

// Summary renders the human-readable end-of-run message.
func (r Report) Summary() string {
	if r.Attempted == 0 {
		return "nothing to import"
	}
	s := fmt.Sprintf("%d cards added", r.AddedCount)
	if len(r.FailedNames) > 0 {
		s += fmt.Sprintf(", %d cards failed: %s", len(r.FailedNames), strings.Join(r.FailedNames, ", "))
	}
	return s
}

// Importer runs bulk card resolution: strictly sequential lookups
// under the governor's pacing, with per-card durable merges into the
// target. A single failed name never aborts a run; only a merge
// (storage) failure does.
type Importer struct {
	fetcher    CardFetcher
	governor   *Governor
	dispatcher *events.Dispatcher
	logger     *slog.Logger
}

// New creates an Importer. dispatcher may be nil if no completion
// events are wanted.
func New(fetcher CardFetcher, governor *Governor, dispatcher *events.Dispatcher, logger *slog.Logger) *Importer {
	if governor == nil {
		governor = NewGovernor(DefaultSpacing, DefaultCooldown)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		fetcher:    fetcher,
		governor:   governor,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// ImportCards resolves each name and merges the results into target.
//
// Empty or blank-only input short-circuits without contacting the
// external service. Rate-limited names are not retried within the run:
// the governor pauses for its cooldown and the name is reported as
// failed. Cancellation takes effect at the next suspension point;
// cards merged before that stay merged and are counted in the report.
func (imp *Importer) ImportCards(ctx context.Context, target MergeTarget, names []string) (Report, error) {
	normalized := NormalizeNames(names)
	report := Report{Attempted: len(normalized), FailedNames: []string{}}
	if len(normalized) == 0 {
		return report, nil
	}

	var acc Accumulator
	prefetched := imp.batchResolve(ctx, normalized)

	for _, name := range normalized {
		if err := ctx.Err(); err != nil {
			return imp.finish(report, acc), err
		}

		var outcome LookupOutcome
		if card, ok := prefetched[strings.ToLower(name)]; ok {
			card := card
			outcome = LookupOutcome{Kind: OutcomeResolved, Name: name, Card: &card}
		} else {
			if err := imp.governor.Wait(ctx); err != nil {
				return imp.finish(report, acc), err
			}
			outcome = imp.resolve(ctx, name)
		}

		if outcome.Kind == OutcomeRateLimited {
			imp.logger.Warn("rate limited, cooling down", "name", name)
			if err := imp.governor.Cooldown(ctx); err != nil {
				acc.Add(outcome)
				return imp.finish(report, acc), err
			}
		}

		if outcome.Kind == OutcomeResolved {
			if err := target.MergeCard(ctx, *outcome.Card); err != nil {
				// Storage refusing a write threatens durability; this is
				// the one per-item condition that aborts the run.
				return imp.finish(report, acc), fmt.Errorf("failed to merge %q: %w", outcome.Card.Name, err)
			}
		} else {
			imp.logger.Debug("lookup failed", "name", name, "outcome", outcome.Kind.String())
		}
		acc.Add(outcome)
	}

	report = imp.finish(report, acc)

	if imp.dispatcher != nil {
		imp.dispatcher.Dispatch(events.Event{Type: events.TypeImportCompleted, Data: report})
	}
	imp.logger.Info("import finished",
		"attempted", report.Attempted,
		"added", report.AddedCount,
		"failed", len(report.FailedNames))

	return report, nil
}

// batchResolve resolves exact matches up front through the fetcher's
// batch endpoint, keyed by lowercased name. A nil map means no batch
// was attempted or it failed; every name then goes through the normal
// per-name path, so a batch failure can only cost time, never results.
func (imp *Importer) batchResolve(ctx context.Context, names []string) map[string]scryfall.Card {
	batcher, ok := imp.fetcher.(BatchFetcher)
	if !ok || len(names) < batchThreshold {
		return nil
	}

	if err := imp.governor.Wait(ctx); err != nil {
		return nil
	}
	cards, _, err := batcher.GetCardsByNames(ctx, names)
	if err != nil {
		imp.logger.Warn("batch lookup failed, falling back to per-name lookups", "error", err)
		if scryfall.IsRateLimited(err) {
			_ = imp.governor.Cooldown(ctx)
		}
		return nil
	}

	resolved := make(map[string]scryfall.Card, len(cards))
	for _, card := range cards {
		resolved[strings.ToLower(card.Name)] = card
	}
	imp.logger.Debug("batch resolved", "requested", len(names), "matched", len(resolved))
	return resolved
}

// resolve runs the exact-then-fuzzy lookup for one name and classifies
// the outcome. It never retries; pacing and cooldown are the
// governor's responsibility.
func (imp *Importer) resolve(ctx context.Context, name string) LookupOutcome {
	card, err := imp.fetcher.GetCardByName(ctx, name, false)
	if err != nil && scryfall.IsNotFound(err) {
		// Exact miss: fall back to fuzzy matching.
		card, err = imp.fetcher.GetCardByName(ctx, name, true)
	}

	switch {
	case err == nil:
		return LookupOutcome{Kind: OutcomeResolved, Name: name, Card: card}
	case scryfall.IsNotFound(err):
		return LookupOutcome{Kind: OutcomeNotFound, Name: name}
	case scryfall.IsRateLimited(err):
		return LookupOutcome{Kind: OutcomeRateLimited, Name: name}
	default:
		return LookupOutcome{Kind: OutcomeNetworkError, Name: name, Err: err}
	}
}

func (imp *Importer) finish(report Report, acc Accumulator) Report {
	report.AddedCount = len(acc.Resolved())
	report.FailedNames = append([]string{}, acc.Failed()...)
	return report
}
