package models

// Field names of a DiaSource measurement used by the slope feature.
const (
	FieldMidPointTai = "midPointTai"
	FieldFilterName  = "filterName"
	FieldPsFlux      = "psFlux"
	FieldPsFluxErr   = "psFluxErr"
)

// DiaSource is a single difference-image detection. Pointer fields distinguish an absent
// field from a zero value.
type DiaSource struct {
	DiaSourceID *int64   `json:"diaSourceId,omitempty"`
	MidPointTai *float64 `json:"midPointTai,omitempty"`
	FilterName  *string  `json:"filterName,omitempty"`
	PsFlux      *float64 `json:"psFlux,omitempty"`
	PsFluxErr   *float64 `json:"psFluxErr,omitempty"`
}

// Alert is the current detection plus its previous detections, in stored order.
type Alert struct {
	AlertID       int64       `json:"alertId"`
	DiaSource     DiaSource   `json:"diaSource"`
	PrvDiaSources []DiaSource `json:"prvDiaSources"`
}

// EnrichedAlert is an alert with the derived slope attached.
type EnrichedAlert struct {
	Alert
	Band  string        `json:"band"`
	Slope NullableFloat `json:"slope"`
}
