// Package cascade is the tiered-fallback engine shared by the web and video
// extraction paths. Tiers run in strict priority order; a tier error is a
// soft failure that advances the cascade, and the failure list survives to
// the end so a fully exhausted run can explain every dead end.
package cascade

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/longevityfoodlab/recipe-parser/internal/recipe"
)

// Failure records why one tier produced nothing acceptable.
type Failure struct {
	Tier   string
	Reason string
}

// Tier is one extraction strategy plus its acceptance predicate. Run may
// consult and mutate shared state captured in its closure; returning a nil
// record with a nil error means the tier had nothing to offer.
type Tier struct {
	Name string
	Run  func(ctx context.Context) (*recipe.Record, error)

	// Accept decides whether the tier's record stops the cascade. A nil
	// Accept accepts any non-nil record.
	Accept func(rec *recipe.Record) (ok bool, reason string)
}

// Engine executes tiers in order.
type Engine struct {
	tiers  []Tier
	logger *zerolog.Logger
}

func New(tiers []Tier, logger *zerolog.Logger) *Engine {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}

	return &Engine{tiers: tiers, logger: logger}
}

// Execute runs the cascade and returns the first accepted record together
// with the failures of every tier that came before it. A nil record means
// every tier was exhausted.
func (e *Engine) Execute(ctx context.Context) (*recipe.Record, []Failure) {
	var failures []Failure

	for _, tier := range e.tiers {
		if err := ctx.Err(); err != nil {
			failures = append(failures, Failure{tier.Name, "request budget exhausted: " + err.Error()})

			return nil, failures
		}

		rec, err := tier.Run(ctx)
		if err != nil {
			e.logger.Debug().Err(err).Str("tier", tier.Name).Msg("tier failed, advancing")
			failures = append(failures, Failure{tier.Name, err.Error()})

			continue
		}

		if rec == nil {
			failures = append(failures, Failure{tier.Name, "no content"})

			continue
		}

		if tier.Accept != nil {
			if ok, reason := tier.Accept(rec); !ok {
				e.logger.Debug().Str("tier", tier.Name).Str("reason", reason).Msg("tier result rejected, advancing")
				failures = append(failures, Failure{tier.Name, reason})

				continue
			}
		}

		return rec, failures
	}

	return nil, failures
}
