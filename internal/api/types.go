package api

import "github.com/KaramelBytes/eda-cli/internal/analysis"

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// SummaryResponse is returned by POST /quality-from-csv.
type SummaryResponse struct {
	Summary         *analysis.DatasetSummary `json:"summary"`
	DurationSeconds float64                  `json:"duration_seconds"`
}

// FlagsResponse is returned by POST /quality-flags-from-csv.
type FlagsResponse struct {
	Flags           analysis.QualityFlags `json:"flags"`
	DurationSeconds float64               `json:"duration_seconds"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}
