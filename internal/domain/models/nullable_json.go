package models

import (
	"encoding/json"
	"math"
)

// MarshalJSON encodes NaN and infinities as null.
func (f NullableFloat) MarshalJSON() ([]byte, error) {
	if p := f.Ptr(); p != nil {
		return json.Marshal(*p)
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes null as the missing sentinel.
func (f *NullableFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = NullableFloat(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = NullableFloat(v)
	return nil
}
