package model

// ResolvedField is the terminal output for one field. A missing value is
// a normal outcome: Found is false and Value is empty.
type ResolvedField struct {
	Name  string `json:"name"`
	Key   string `json:"key"` // output key, defaults to the field name
	Value string `json:"value"`
	Found bool   `json:"found"`

	// RangeFrom and RangeTo carry the numeric endpoints when the field
	// used the range decoder.
	RangeFrom *float64 `json:"range_from,omitempty"`
	RangeTo   *float64 `json:"range_to,omitempty"`
}

// Extraction is the full result for one image: resolved fields in
// configuration order.
type Extraction struct {
	Image  string          `json:"image"`
	Fields []ResolvedField `json:"fields"`
}

// ByKey returns extraction values keyed by output key, the shape the
// serialization layer consumes.
func (e Extraction) ByKey() map[string]string {
	m := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		m[f.Key] = f.Value
		if f.RangeFrom != nil && f.RangeTo != nil {
			m[f.Key+"_from"] = FormatNumeric(*f.RangeFrom)
			m[f.Key+"_to"] = FormatNumeric(*f.RangeTo)
		}
	}
	return m
}
