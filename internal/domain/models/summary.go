package models

// Summary describes a column of slopes. Statistics cover finite values only and are
// nil when no value is finite.
type Summary struct {
	Count    int      `json:"count"`
	Enriched int      `json:"enriched"`
	Mean     *float64 `json:"mean,omitempty"`
	Std      *float64 `json:"std,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	P25      *float64 `json:"p25,omitempty"`
	P50      *float64 `json:"p50,omitempty"`
	P75      *float64 `json:"p75,omitempty"`
	Max      *float64 `json:"max,omitempty"`
}
