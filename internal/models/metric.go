package models

import "strings"

// Metric canonical reading field
type Metric string

const (
	MetricCPU         Metric = "cpu"
	MetricRAM         Metric = "ram"
	MetricTemperature Metric = "temperature"
	MetricPower       Metric = "power"
)

var metricAliases = map[string]Metric{
	"cpu":         MetricCPU,
	"ram":         MetricRAM,
	"temperature": MetricTemperature,
	"temperatura": MetricTemperature,
	"power":       MetricPower,
	"potencia":    MetricPower,
	"potência":    MetricPower,
}

// ParseMetric resolves a rule's metric name, case-insensitively and including
// the Portuguese aliases used by the dashboard.
func ParseMetric(name string) (Metric, bool) {
	m, ok := metricAliases[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}
