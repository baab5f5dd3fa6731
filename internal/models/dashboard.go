package models

// Stat is one of the headline cards on the command center
type Stat struct {
	Title string  `json:"title" yaml:"title"`
	Value string  `json:"value" yaml:"value"`
	Trend float64 `json:"trend" yaml:"trend"` // percent change
}

// SeriesPoint is a point on the throughput chart
type SeriesPoint struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// EfficiencyPoint is a point on the line efficiency chart
type EfficiencyPoint struct {
	Time   string  `json:"time" yaml:"time"`
	Active float64 `json:"active" yaml:"active"`
	Ideal  float64 `json:"ideal" yaml:"ideal"`
}

// Alert is an entry in the system alert feed
type Alert struct {
	ID   int    `json:"id" yaml:"id"`
	Type string `json:"type" yaml:"type"` // critical, warning, info
	Msg  string `json:"msg" yaml:"msg"`
	Time string `json:"time" yaml:"time"`
}

// Dashboard is the full command center payload
type Dashboard struct {
	Stats      []Stat            `json:"stats"`
	Throughput []SeriesPoint     `json:"throughput"`
	Efficiency []EfficiencyPoint `json:"efficiency"`
	Alerts     []Alert           `json:"alerts"`
}

// Resource is an entry in the knowledge hub
type Resource struct {
	Title string `json:"title" yaml:"title"`
	Type  string `json:"type" yaml:"type"`
	Desc  string `json:"desc" yaml:"desc"`
}

// TwinState is the digital twin simulator's control state
type TwinState struct {
	Simulating bool `json:"simulating"`
	Load       int  `json:"load"` // percent, 0-100
}
