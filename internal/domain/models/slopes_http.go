package models

// LightCurveInput is the wire form of a light curve. Null times or fluxes decode as NaN.
type LightCurveInput struct {
	Times  []NullableFloat `json:"times"`
	Bands  []string        `json:"bands"`
	Fluxes []NullableFloat `json:"fluxes"`
}

// LightCurve converts the wire form to the domain record.
func (in LightCurveInput) LightCurve() LightCurve {
	return LightCurve{
		Times:  floats(in.Times),
		Bands:  in.Bands,
		Fluxes: floats(in.Fluxes),
	}
}

func floats(in []NullableFloat) []float64 {
	if in == nil {
		return nil
	}
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

// SlopesRequest is the body of POST /api/v1/slopes.
// Band and MinHistLength fall back to the configured defaults when omitted.
type SlopesRequest struct {
	Band          string            `json:"band" validate:"omitempty,max=8"`
	MinHistLength int               `json:"min_hist_length" validate:"omitempty,gte=2"`
	Objects       []LightCurveInput `json:"objects" validate:"required"`
}

// Params returns the estimator parameters of the request.
func (r *SlopesRequest) Params() Params {
	return Params{Band: r.Band, MinHistLength: r.MinHistLength}
}

// SlopesResponse carries one slope per requested object, in request order.
type SlopesResponse struct {
	Band          string          `json:"band"`
	MinHistLength int             `json:"min_hist_length"`
	Slopes        []NullableFloat `json:"slopes"`
	Summary       Summary         `json:"summary"`
}

// EnrichRequest is the body of POST /api/v1/alerts/enrich.
type EnrichRequest struct {
	Band          string  `json:"band" validate:"omitempty,max=8"`
	MinHistLength int     `json:"min_hist_length" validate:"omitempty,gte=2"`
	Source        string  `json:"source" default:"http" validate:"oneof=http replay"`
	Alerts        []Alert `json:"alerts" validate:"required"`
}

// Params returns the estimator parameters of the request.
func (r *EnrichRequest) Params() Params {
	return Params{Band: r.Band, MinHistLength: r.MinHistLength}
}

// EnrichResponse carries the enriched alerts in request order.
type EnrichResponse struct {
	Band    string          `json:"band"`
	Alerts  []EnrichedAlert `json:"alerts"`
	Summary Summary         `json:"summary"`
}
