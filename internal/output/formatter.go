package output

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rgehrsitz/ukplan/internal/domain"
	"github.com/rgehrsitz/ukplan/internal/planner"
	"github.com/shopspring/decimal"
)

// Formatter renders a planning report into bytes
type Formatter interface {
	Name() string
	Format(report *planner.Report) ([]byte, error)
}

// FormatterFunc adapts a plain function to the Formatter interface
type FormatterFunc struct {
	ID string
	F  func(report *planner.Report) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(report *planner.Report) ([]byte, error) { return f.F(report) }

var formatters = map[string]Formatter{
	"console": ConsoleFormatter{},
	"json":    JSONFormatter{},
	"csv":     CSVFormatter{},
}

var aliases = map[string]string{
	"text":  "console",
	"table": "console",
}

// GetFormatterByName returns the formatter registered under name or alias, or nil
func GetFormatterByName(name string) Formatter {
	if target, ok := aliases[name]; ok {
		name = target
	}
	return formatters[name]
}

// AvailableFormatterNames lists the registered formatter names
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(formatters))
	for n := range formatters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// AvailableFormatAliases lists the accepted alternative names
func AvailableFormatAliases() []string {
	names := make([]string, 0, len(aliases))
	for n := range aliases {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// WriteFormatted renders the report and saves it to a timestamped file in the
// working directory, returning the file name.
func WriteFormatted(f Formatter, report *planner.Report, ext string) (string, error) {
	data, err := f.Format(report)
	if err != nil {
		return "", fmt.Errorf("failed to format report: %w", err)
	}
	filename := fmt.Sprintf("ukplan_report_%s.%s", time.Now().Format("20060102_150405"), ext)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return filename, nil
}

// FormatCurrency formats a decimal as pounds
func FormatCurrency(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-£" + amount.Neg().StringFixed(2)
	}
	return "£" + amount.StringFixed(2)
}

// FormatPercentage formats a fractional rate (0.2) as a percentage (20.00%)
func FormatPercentage(rate decimal.Decimal) string {
	return domain.RateToPercent(rate).StringFixed(2) + "%"
}

// FormatFloatPercentage is FormatPercentage for the float-valued portfolio figures
func FormatFloatPercentage(rate float64) string {
	return FormatPercentage(decimal.NewFromFloat(rate))
}
