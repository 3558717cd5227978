// Package resolve turns noisy multi-pass OCR observations into validated
// field values. The engine is deterministic and stateless: every call
// recomputes all derived state, so resolution is idempotent and safe to
// run concurrently as long as each call gets its own observation set.
package resolve

import (
	"go.uber.org/zap"

	"github.com/fairwaylabs/shotlens/internal/decode"
	"github.com/fairwaylabs/shotlens/internal/model"
	"github.com/rotisserie/eris"
)

// Resolver orchestrates candidate generation, scoring, fallback and
// structured decoding for a configured set of fields. The registry and
// weights are read-only after construction.
type Resolver struct {
	registry *model.FieldRegistry
	weights  Weights
}

// NewResolver creates a resolver over the given field registry.
func NewResolver(registry *model.FieldRegistry, weights Weights) *Resolver {
	return &Resolver{registry: registry, weights: weights}
}

// ResolveField resolves one field from its observations. A field with no
// surviving candidate resolves to not-found; that is a normal outcome,
// not an error.
func (r *Resolver) ResolveField(name string, obs []model.Observation) (model.ResolvedField, error) {
	spec := r.registry.ByName(name)
	if spec == nil {
		return model.ResolvedField{}, eris.Errorf("resolve: no spec for field %q", name)
	}
	return r.resolveSpec(spec, obs), nil
}

// ResolveAll resolves every registered field in configuration order.
// Fields absent from the observation map resolve to not-found.
func (r *Resolver) ResolveAll(obsByField map[string][]model.Observation) []model.ResolvedField {
	out := make([]model.ResolvedField, 0, len(r.registry.Fields))
	for i := range r.registry.Fields {
		spec := &r.registry.Fields[i]
		out = append(out, r.resolveSpec(spec, obsByField[spec.Name]))
	}
	return out
}

func (r *Resolver) resolveSpec(spec *model.FieldSpec, obs []model.Observation) model.ResolvedField {
	result := model.ResolvedField{Name: spec.Name, Key: outputKey(spec)}

	candidates := GenerateCandidates(obs, spec)
	best, ok := SelectBest(candidates, spec, r.weights)
	if !ok {
		zap.L().Debug("resolve: no candidates",
			zap.String("field", spec.Name),
			zap.Int("observations", len(obs)),
		)
		return result
	}

	// Last resort: reinterpret decimal placement or sign, never both.
	if spec.ValidRange != nil && best.IsNumeric && !spec.ValidRange.Contains(best.Numeric) {
		transformed, ok := ApplyFallback(best, spec)
		if !ok {
			zap.L().Debug("resolve: no in-range interpretation",
				zap.String("field", spec.Name),
				zap.String("value", best.Value),
			)
			return result
		}
		zap.L().Debug("resolve: fallback transform applied",
			zap.String("field", spec.Name),
			zap.String("raw", best.Value),
			zap.String("value", transformed.Value),
		)
		best = transformed
	}

	return r.decodeValue(spec, best, result)
}

// decodeValue runs the field's structured decoder, if any, over the
// winning candidate's text.
func (r *Resolver) decodeValue(spec *model.FieldSpec, best model.ScoredCandidate, result model.ResolvedField) model.ResolvedField {
	switch spec.Decoder {
	case model.DecoderDate:
		date, ok := decode.Date(best.Value)
		if !ok {
			zap.L().Debug("resolve: date decode failed",
				zap.String("field", spec.Name),
				zap.String("text", best.Value),
			)
			return result
		}
		result.Value = date
		result.Found = true

	case model.DecoderRange:
		rng, ok := decode.YardageRange(best.Value)
		if !ok {
			zap.L().Debug("resolve: range decode failed",
				zap.String("field", spec.Name),
				zap.String("text", best.Value),
			)
			return result
		}
		from, to := rng.From, rng.To
		result.Value = rng.Text
		result.RangeFrom = &from
		result.RangeTo = &to
		result.Found = true

	default:
		result.Value = best.Value
		result.Found = true
	}

	return result
}

func outputKey(spec *model.FieldSpec) string {
	if spec.OutputKey != "" {
		return spec.OutputKey
	}
	return spec.Name
}
