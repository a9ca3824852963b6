package models

// -----------------------------------------------------------------------------
// Server State Structure
// -----------------------------------------------------------------------------

type MLatestData struct {
	Type            string           `json:"type"` // "INITIAL" or "UPDATE"
	Table           *MMacroTable     `json:"table"`
	Cards           []MMetricCard    `json:"cards"`
	Failures        []MSeriesFailure `json:"failures"`
	Timestamp       int64            `json:"timestamp"`
	PipelineMetrics MPipelineMetrics `json:"pipeline_metrics"`
}

// -----------------------------------------------------------------------------
// SubscribeCommand for client messages
// -----------------------------------------------------------------------------

type MSubscribeCommand struct {
	Command    string   `json:"command"`
	ClientType string   `json:"clientType"`
	Panels     []string `json:"panels"`
	Metrics    []string `json:"metrics"`
}
