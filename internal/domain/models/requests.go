package models

// Requests for the prediction HTTP endpoints. Defined in domain for
// consistency and reuse.

type AnalyzeRequest struct {
	Timeframe string `query:"timeframe" json:"timeframe" default:"10m" validate:"oneof=10m 30m 1h 1d"`
}

type PredictionsRequest struct {
	Limit int    `query:"limit" json:"limit" default:"200" validate:"gte=1,lte=2000"`
	State string `query:"state" json:"state" default:"all" validate:"oneof=all open settled"`
}
