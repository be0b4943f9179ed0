// Package policy turns raw caller identifiers into admission decisions.
// Decision order is fixed: explicit trust overrides everything, exact
// number blocks beat broader pattern and country rules.
package policy

import (
	"github.com/haukened/callgate/internal/screen/common/log"
	"github.com/haukened/callgate/internal/screen/common/phone"
	"github.com/haukened/callgate/internal/screen/domain"
)

type Evaluator struct {
	rules      Rules
	normalizer *phone.Normalizer
	logger     log.Logger
}

type EvaluatorOptions struct {
	Rules      Rules
	Normalizer *phone.Normalizer
	Logger     log.Logger
}

func NewEvaluator(opts EvaluatorOptions) *Evaluator {
	e := &Evaluator{
		rules:      opts.Rules,
		normalizer: opts.Normalizer,
		logger:     opts.Logger,
	}
	if e.normalizer == nil {
		e.normalizer = phone.NewNormalizer()
	}
	if e.logger == nil {
		e.logger = log.NewNoopLogger()
	}
	return e
}

// Evaluate decides admission for a raw caller identifier. Unparseable
// input fails toward Allow with a diagnostic: blocking a call we cannot
// even identify is worse than letting it ring.
func (e *Evaluator) Evaluate(raw string) domain.Decision {
	id, err := e.normalizer.Normalize(raw)
	if err != nil {
		e.logger.Debug(map[string]any{"raw": raw, "error": err}, "unparseable caller identifier, allowing")
		return domain.AllowDecision()
	}
	return e.rules.Decide(id.Digits)
}

// Screen is the live-call path: evaluate and record the outcome against
// the matched rule's activity counters. Recording failures never change
// the decision; the call outcome is already settled.
func (e *Evaluator) Screen(raw string) domain.Decision {
	id, err := e.normalizer.Normalize(raw)
	if err != nil {
		e.logger.Debug(map[string]any{"raw": raw, "error": err}, "unparseable caller identifier, allowing")
		return domain.AllowDecision()
	}

	d := e.rules.Decide(id.Digits)
	switch {
	case d.Blocked:
		if err := e.rules.RecordBlocked(id.Digits, d); err != nil {
			e.logger.Warn(map[string]any{"digits": id.Digits, "error": err}, "failed to record blocked call")
		}
	case d.Trusted:
		if err := e.rules.RecordAllowed(id.Digits); err != nil {
			e.logger.Warn(map[string]any{"digits": id.Digits, "error": err}, "failed to record allowed call")
		}
	}
	return d
}
