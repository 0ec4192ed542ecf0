package output

import (
	"github.com/goccy/go-json"
	"github.com/rgehrsitz/ukplan/internal/planner"
)

// JSONFormatter emits the full report as indented JSON
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(report *planner.Report) ([]byte, error) {
	return MarshalJSON(report)
}

// MarshalJSON indents any result record. Decimals encode as strings.
func MarshalJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
