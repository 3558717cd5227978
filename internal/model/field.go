package model

import (
	"regexp"

	"github.com/rotisserie/eris"
)

// Decoder names for structured post-processing of a resolved value.
const (
	DecoderNone  = ""
	DecoderDate  = "date"
	DecoderRange = "range"
)

// Range is an inclusive numeric plausibility window for a field.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether v falls inside the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Mid returns the center of the range.
func (r Range) Mid() float64 {
	return (r.Min + r.Max) / 2
}

// FieldSpec describes one extractable field: where it lives on the
// screenshot, what shape of value it holds, and how to post-process it.
type FieldSpec struct {
	Name           string         `json:"name" yaml:"name"`
	OutputKey      string         `json:"output_key" yaml:"output_key"`
	CropBox        Box            `json:"crop_box" yaml:"crop_box"`
	ValidRange     *Range         `json:"valid_range,omitempty" yaml:"valid_range,omitempty"`
	ExpectsDecimal bool           `json:"expects_decimal" yaml:"expects_decimal"`
	ExpectsSign    bool           `json:"expects_sign" yaml:"expects_sign"`
	Pattern        string         `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Decoder        string         `json:"decoder,omitempty" yaml:"decoder,omitempty"`
	ExpectedPoint  *Point         `json:"expected_location,omitempty" yaml:"expected_location,omitempty"`
	PatternRegex   *regexp.Regexp `json:"-" yaml:"-"` // compiled at registry build
}

// ExpectedLocation returns where the value is expected on the
// screenshot. The default is the crop-box center, matching how regions
// are framed; observation boxes are compared against it in full-image
// coordinates.
func (f *FieldSpec) ExpectedLocation() Point {
	if f.ExpectedPoint != nil {
		return *f.ExpectedPoint
	}
	return f.CropBox.Center()
}

// FieldRegistry is an ordered, indexed collection of field specs.
// Registries are read-only after construction and safe for concurrent use.
type FieldRegistry struct {
	Fields []FieldSpec
	byName map[string]*FieldSpec
}

// NewFieldRegistry indexes the given specs and pre-compiles custom
// patterns. A malformed pattern is a configuration defect and fails the
// whole load rather than surfacing mid-resolution.
func NewFieldRegistry(fields []FieldSpec) (*FieldRegistry, error) {
	r := &FieldRegistry{
		Fields: fields,
		byName: make(map[string]*FieldSpec, len(fields)),
	}
	for i := range r.Fields {
		f := &r.Fields[i]
		if f.Name == "" {
			return nil, eris.Errorf("field registry: spec %d has no name", i)
		}
		if _, dup := r.byName[f.Name]; dup {
			return nil, eris.Errorf("field registry: duplicate field %q", f.Name)
		}
		if f.Pattern != "" {
			re, err := regexp.Compile(f.Pattern)
			if err != nil {
				return nil, eris.Wrapf(err, "field registry: compile pattern for %q", f.Name)
			}
			f.PatternRegex = re
		}
		if f.ValidRange != nil && f.ValidRange.Min > f.ValidRange.Max {
			return nil, eris.Errorf("field registry: inverted valid_range for %q", f.Name)
		}
		r.byName[f.Name] = f
	}
	return r, nil
}

// ByName returns the spec for the given field name, or nil if not found.
func (r *FieldRegistry) ByName(name string) *FieldSpec {
	return r.byName[name]
}
