package benefit

import (
	"encoding/json"
	"strconv"
)

// Value is the typed form of the benefit payload. The stored column is legacy
// data that may be a native JSON object or a string-encoded one; ParseValue is
// the only place that raw form is touched, everything downstream sees Value.
type Value struct {
	Type          Type    `json:"type"`
	Percentage    float64 `json:"percentage,omitempty"`
	MonthlyPoints int64   `json:"monthlyPoints,omitempty"`
	Tier          string  `json:"tier,omitempty"`
}

func (b *Benefit) ParseValue() Value {
	v := Value{Type: b.Type}

	fields := decodeRawValue([]byte(b.RawValue))
	if fields == nil {
		return v
	}

	switch b.Type {
	case TypeDesconto, TypeCashback:
		// legacy rows use either "percentage" or "value"
		if pct, ok := asFloat(fields["percentage"]); ok {
			v.Percentage = pct
		} else if pct, ok := asFloat(fields["value"]); ok {
			v.Percentage = pct
		}
	case TypePontos:
		if pts, ok := asFloat(fields["monthlyPoints"]); ok {
			v.MonthlyPoints = int64(pts)
		}
	case TypeAcessoExclusivo:
		if tier, ok := fields["tier"].(string); ok {
			v.Tier = tier
		}
	}

	return v
}

// decodeRawValue tolerates both `{"percentage":10}` and `"{\"percentage\":10}"`.
// Anything unparseable decodes to nil.
func decodeRawValue(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}

	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil
	}

	if s, ok := probe.(string); ok {
		if err := json.Unmarshal([]byte(s), &probe); err != nil {
			return nil
		}
	}

	fields, _ := probe.(map[string]any)
	return fields
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
