package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/shotlens/internal/model"
)

const sampleYAML = `
fields:
  - name: DISTANCE_TO_PIN
    output_key: distance_to_pin
    crop_box: [184, 396, 175, 148]
    valid_range: {min: 1, max: 400}
  - name: CARRY
    output_key: carry
    crop_box: [147, 705, 252, 145]
    expects_decimal: true
  - name: SHOT_ID
    output_key: shot_id
    crop_box: [60, 175, 84, 81]
    pattern: '#\s*(\d+)'
`

func TestParse_BuildsRegistry(t *testing.T) {
	reg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	require.Len(t, reg.Fields, 3)

	dist := reg.ByName("DISTANCE_TO_PIN")
	require.NotNil(t, dist)
	assert.Equal(t, 1.0, dist.ValidRange.Min)
	assert.Equal(t, 400.0, dist.ValidRange.Max)

	shot := reg.ByName("SHOT_ID")
	require.NotNil(t, shot)
	assert.NotNil(t, shot.PatternRegex)
}

func TestParse_EmptyFileRejected(t *testing.T) {
	_, err := Parse([]byte("fields: []"))
	assert.Error(t, err)
}

func TestParse_MalformedPatternFailsAtLoad(t *testing.T) {
	bad := `
fields:
  - name: BROKEN
    crop_box: [0, 0, 10, 10]
    pattern: '([unclosed'
`
	_, err := Parse([]byte(bad))
	assert.Error(t, err)
}

func TestParse_BadCropBox(t *testing.T) {
	for name, doc := range map[string]string{
		"wrong length": `
fields:
  - name: F
    crop_box: [1, 2, 3]
`,
		"negative origin": `
fields:
  - name: F
    crop_box: [-1, 0, 10, 10]
`,
		"zero width": `
fields:
  - name: F
    crop_box: [0, 0, 0, 10]
`,
		"beyond bounds": `
fields:
  - name: F
    crop_box: [9990, 0, 100, 10]
`,
	} {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestParse_UnknownDecoderRejected(t *testing.T) {
	bad := `
fields:
  - name: F
    crop_box: [0, 0, 10, 10]
    decoder: csv
`
	_, err := Parse([]byte(bad))
	assert.Error(t, err)
}

func TestParse_ExplicitExpectedLocation(t *testing.T) {
	doc := `
fields:
  - name: F
    crop_box: [0, 0, 100, 50]
    expected_location: [80, 10]
`
	reg, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, model.Point{X: 80, Y: 10}, reg.ByName("F").ExpectedLocation())
}

func TestDefault_CoversRequiredMetrics(t *testing.T) {
	reg := Default()
	for _, name := range []string{"DISTANCE_TO_PIN", "CARRY", "FROM_PIN", "STROKES_GAINED"} {
		assert.NotNil(t, reg.ByName(name), name)
	}
	assert.Equal(t, model.DecoderDate, reg.ByName("DATE").Decoder)
	assert.Equal(t, model.DecoderRange, reg.ByName("YARDAGE_RANGE").Decoder)
}

func TestDefault_ExpectedLocationIsCropCenter(t *testing.T) {
	reg := Default()
	carry := reg.ByName("CARRY")
	assert.Equal(t, model.Point{X: 273, Y: 777.5}, carry.ExpectedLocation())
}
