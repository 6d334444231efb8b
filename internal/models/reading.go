package models

// Reading one sensor sample from the readings table. Any metric may be NULL.
type Reading struct {
	Timestamp   string   `json:"timestamp" db:"timestamp"` // UTC-3 text
	CPU         *float64 `json:"cpu,omitempty" db:"cpu"`
	RAM         *float64 `json:"ram,omitempty" db:"ram"`
	Temperature *float64 `json:"temperature,omitempty" db:"temperatura"`
	Power       *float64 `json:"power,omitempty" db:"potencia"`
}

// Value returns the reading's value for m; false when the column was NULL
func (r Reading) Value(m Metric) (float64, bool) {
	var v *float64
	switch m {
	case MetricCPU:
		v = r.CPU
	case MetricRAM:
		v = r.RAM
	case MetricTemperature:
		v = r.Temperature
	case MetricPower:
		v = r.Power
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}
