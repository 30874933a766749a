package features

// Preprocessor turns a FeatureVector into the numeric row the models expect:
// categorical columns go through the fitted encoders, every column declared in
// the schema but unknown to the record defaults to 0, and the output order is
// exactly the training-time column order. Pure function of (columns, encoders,
// input); downstream models are order-sensitive vectors, so the ordering is
// load-bearing.
type Preprocessor struct {
	Columns  []string
	Encoders map[string]*LabelEncoder
}

// NewPreprocessor wires a fitted column order and encoder set.
func NewPreprocessor(columns []string, encoders map[string]*LabelEncoder) *Preprocessor {
	return &Preprocessor{Columns: columns, Encoders: encoders}
}

// Transform produces the ordered numeric row for one record.
func (p *Preprocessor) Transform(v FeatureVector) []float64 {
	row := make([]float64, len(p.Columns))
	for i, col := range p.Columns {
		if enc, ok := p.Encoders[col]; ok {
			raw, _ := v.categorical(col)
			row[i] = float64(enc.Encode(raw))
			continue
		}
		if val, ok := v.numeric(col); ok {
			row[i] = val
			continue
		}
		// Column fixed at training time but not part of the record schema:
		// default to 0 rather than failing.
		row[i] = 0
	}
	return row
}
