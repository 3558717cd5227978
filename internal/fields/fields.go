// Package fields loads field specifications from YAML and validates
// their geometry before the registry is built.
package fields

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/fairwaylabs/shotlens/internal/model"
)

// maxDimension bounds crop coordinates; screenshots from supported
// launch monitors stay well under this.
const maxDimension = 10000

// fileSpec mirrors the on-disk YAML shape for one field.
type fileSpec struct {
	Name           string       `yaml:"name"`
	OutputKey      string       `yaml:"output_key"`
	CropBox        []float64    `yaml:"crop_box"` // [x, y, w, h]
	ValidRange     *model.Range `yaml:"valid_range"`
	ExpectsDecimal bool         `yaml:"expects_decimal"`
	ExpectsSign    bool         `yaml:"expects_sign"`
	Pattern        string       `yaml:"pattern"`
	Decoder        string       `yaml:"decoder"`
	Expected       []float64    `yaml:"expected_location"` // optional [x, y]
}

// LoadFile reads a YAML field definition file and returns a built
// registry. The file has a top-level "fields" list.
func LoadFile(path string) (*model.FieldRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fields: read %s", path)
	}
	return Parse(data)
}

// Parse builds a registry from raw YAML field definitions.
func Parse(data []byte) (*model.FieldRegistry, error) {
	var wrapper struct {
		Fields []fileSpec `yaml:"fields"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "fields: parse yaml")
	}
	if len(wrapper.Fields) == 0 {
		return nil, eris.New("fields: no fields defined")
	}

	specs := make([]model.FieldSpec, 0, len(wrapper.Fields))
	for _, fs := range wrapper.Fields {
		spec, err := fs.toSpec()
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	return model.NewFieldRegistry(specs)
}

func (fs fileSpec) toSpec() (model.FieldSpec, error) {
	box, err := boxFromSlice(fs.CropBox, fs.Name)
	if err != nil {
		return model.FieldSpec{}, err
	}

	spec := model.FieldSpec{
		Name:           fs.Name,
		OutputKey:      fs.OutputKey,
		CropBox:        box,
		ValidRange:     fs.ValidRange,
		ExpectsDecimal: fs.ExpectsDecimal,
		ExpectsSign:    fs.ExpectsSign,
		Pattern:        fs.Pattern,
		Decoder:        fs.Decoder,
	}

	switch fs.Decoder {
	case model.DecoderNone, model.DecoderDate, model.DecoderRange:
	default:
		return model.FieldSpec{}, eris.Errorf("fields: unknown decoder %q for %s", fs.Decoder, fs.Name)
	}

	if len(fs.Expected) > 0 {
		if len(fs.Expected) != 2 {
			return model.FieldSpec{}, eris.Errorf("fields: expected_location for %s must be [x, y]", fs.Name)
		}
		spec.ExpectedPoint = &model.Point{X: fs.Expected[0], Y: fs.Expected[1]}
	}

	return spec, nil
}

// boxFromSlice validates a [x, y, w, h] crop box. Coordinates must be
// non-negative, dimensions positive, and everything inside sane screen
// bounds.
func boxFromSlice(v []float64, name string) (model.Box, error) {
	if len(v) != 4 {
		return model.Box{}, eris.Errorf("fields: crop_box for %s must be [x, y, w, h], got %d elements", name, len(v))
	}
	x, y, w, h := v[0], v[1], v[2], v[3]
	if x < 0 || y < 0 {
		return model.Box{}, eris.Errorf("fields: crop_box for %s has negative origin", name)
	}
	if w <= 0 || h <= 0 {
		return model.Box{}, eris.Errorf("fields: crop_box for %s has non-positive dimensions", name)
	}
	if x+w > maxDimension || y+h > maxDimension {
		return model.Box{}, eris.Errorf("fields: crop_box for %s extends beyond %d px", name, maxDimension)
	}
	return model.Box{X: x, Y: y, W: w, H: h}, nil
}

// Default returns the built-in registry for the supported launch monitor
// screenshot layout. Used when no fields file is configured.
func Default() *model.FieldRegistry {
	reg, err := model.NewFieldRegistry([]model.FieldSpec{
		{
			Name:      "DATE",
			OutputKey: "date",
			CropBox:   model.Box{X: 985, Y: 41, W: 301, H: 116},
			Pattern:   `((?:JANUARY|FEBRUARY|MARCH|APRIL|MAY|JUNE|JULY|AUGUST|SEPTEMBER|OCTOBER|NOVEMBER|DECEMBER)\s+\d{1,2},\s*\d{4})`,
			Decoder:   model.DecoderDate,
		},
		{
			Name:      "SHOT_ID",
			OutputKey: "shot_id",
			CropBox:   model.Box{X: 60, Y: 175, W: 84, H: 81},
			Pattern:   `#\s*(\d+)`,
		},
		{
			Name:       "DISTANCE_TO_PIN",
			OutputKey:  "distance_to_pin",
			CropBox:    model.Box{X: 184, Y: 396, W: 175, H: 148},
			ValidRange: &model.Range{Min: 1, Max: 400},
		},
		{
			Name:           "CARRY",
			OutputKey:      "carry",
			CropBox:        model.Box{X: 147, Y: 705, W: 252, H: 145},
			ValidRange:     &model.Range{Min: 1, Max: 400},
			ExpectsDecimal: true,
		},
		{
			Name:       "FROM_PIN",
			OutputKey:  "from_pin",
			CropBox:    model.Box{X: 188, Y: 982, W: 170, H: 136},
			ValidRange: &model.Range{Min: 0, Max: 100},
		},
		{
			Name:           "STROKES_GAINED",
			OutputKey:      "sg_individual",
			CropBox:        model.Box{X: 94, Y: 1249, W: 323, H: 149},
			ValidRange:     &model.Range{Min: -5, Max: 5},
			ExpectsDecimal: true,
			ExpectsSign:    true,
		},
		{
			Name:      "YARDAGE_RANGE",
			OutputKey: "yardage_range",
			CropBox:   model.Box{X: 1783, Y: 525, W: 150, H: 60},
			Pattern:   `(\d+-\d+)\s*(?:yards?|yds?)?`,
			Decoder:   model.DecoderRange,
		},
	})
	if err != nil {
		// The built-in table is static; a failure here is a programmer error.
		panic(err)
	}
	return reg
}
