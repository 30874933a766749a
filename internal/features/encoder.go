package features

import (
	"errors"
	"sort"

	"github.com/rs/zerolog/log"
)

// ErrUnknownCategory reports a categorical value that was never seen during
// training. The serving path does not propagate it: Transform maps unseen
// values to a reserved code instead so inference stays available. The sentinel
// exists for callers that want strict validation up front.
var ErrUnknownCategory = errors.New("unknown category")

// LabelEncoder maps categorical string values to integer codes fitted from
// training data. Codes are assigned in sorted class order so a refit on the
// same classes is stable.
type LabelEncoder struct {
	Column  string         `json:"column"`
	Classes []string       `json:"classes"`
	codes   map[string]int `json:"-"`
}

// FitEncoder builds an encoder over the distinct values of one column.
func FitEncoder(column string, values []string) *LabelEncoder {
	seen := make(map[string]struct{})
	for _, v := range values {
		seen[v] = struct{}{}
	}
	classes := make([]string, 0, len(seen))
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Strings(classes)

	enc := &LabelEncoder{Column: column, Classes: classes}
	enc.buildIndex()
	return enc
}

// buildIndex rebuilds the lookup table; required after JSON decoding, where
// only Classes round-trips.
func (e *LabelEncoder) buildIndex() {
	e.codes = make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		e.codes[c] = i
	}
}

// UnseenCode is the reserved code assigned to values outside the fitted
// classes.
func (e *LabelEncoder) UnseenCode() int {
	return len(e.Classes)
}

// Encode maps a value to its fitted code. Unseen values get the reserved code
// and a warn-level log event, never an error.
func (e *LabelEncoder) Encode(value string) int {
	if e.codes == nil {
		e.buildIndex()
	}
	if code, ok := e.codes[value]; ok {
		return code
	}
	log.Warn().
		Str("column", e.Column).
		Str("value", value).
		Int("code", e.UnseenCode()).
		Msg("category not seen during training, using reserved code")
	return e.UnseenCode()
}

// Check returns ErrUnknownCategory when the value is outside the fitted
// classes. Strict counterpart to Encode for boundary validation.
func (e *LabelEncoder) Check(value string) error {
	if e.codes == nil {
		e.buildIndex()
	}
	if _, ok := e.codes[value]; !ok {
		return ErrUnknownCategory
	}
	return nil
}
