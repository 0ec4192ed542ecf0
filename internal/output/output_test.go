package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rgehrsitz/ukplan/internal/calculation"
	"github.com/rgehrsitz/ukplan/internal/planner"
	"github.com/rgehrsitz/ukplan/internal/portfolio"
	"github.com/rgehrsitz/ukplan/internal/protection"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestReport() *planner.Report {
	return &planner.Report{
		ID:        "00000000-0000-0000-0000-000000000001",
		Household: "Test Household",
		TaxYear:   "2025/26",
		AsOf:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		NetIncome: calculation.NetIncomeResult{
			Gross:             decimal.NewFromInt(50000),
			IncomeTax:         decimal.NewFromInt(7486),
			NationalInsurance: decimal.NewFromInt(2994),
			NetIncome:         decimal.NewFromInt(39520),
			EffectiveRate:     decimal.RequireFromString("0.1904"),
		},
		Properties: []planner.PropertyReport{{
			Name: "Home",
			Equity: calculation.PropertyEquity{
				Value:               decimal.NewFromInt(400000),
				OutstandingMortgage: decimal.NewFromInt(200000),
				Equity:              decimal.NewFromInt(200000),
				LoanToValue:         decimal.RequireFromString("0.5"),
			},
			Mortgages: []planner.MortgageReport{{
				Lender:            "Bank",
				MonthlyPayment:    decimal.RequireFromString("1265.30"),
				RemainingPayments: 240,
				TotalInterest:     decimal.RequireFromString("103672.00"),
			}},
		}},
		Protection: protection.Analysis{
			Gap: protection.CoverageGap{
				TotalNeed:      decimal.NewFromInt(100000),
				TotalCoverage:  decimal.NewFromInt(25000),
				TotalGap:       decimal.NewFromInt(75000),
				GapsByCategory: map[string]decimal.Decimal{"debt": decimal.NewFromInt(75000)},
				AdequacyScore:  25,
				Adequacy:       protection.BandCritical,
			},
		},
		Portfolio: &planner.PortfolioReport{
			Current: portfolio.Statistics{ExpectedReturn: 0.054, Volatility: 0.096},
			Frontier: &portfolio.Frontier{
				Sampled: 10,
				Efficient: []portfolio.WeightedPortfolio{
					{Weights: map[string]float64{"Gilts": 1}, Statistics: portfolio.Statistics{ExpectedReturn: 0.03, Volatility: 0.05}},
				},
			},
		},
	}
}

func TestFormatterFunc(t *testing.T) {
	called := false
	f := FormatterFunc{
		ID: "test-formatter",
		F: func(report *planner.Report) ([]byte, error) {
			called = true
			return []byte(report.TaxYear), nil
		},
	}

	out, err := f.Format(buildTestReport())

	assert.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "2025/26", string(out))
	assert.Equal(t, "test-formatter", f.Name())
}

func TestGetFormatterByName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"console", "console"},
		{"json", "json"},
		{"csv", "csv"},
		{"text", "console"},
		{"table", "console"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := GetFormatterByName(tt.name)
			require.NotNil(t, f)
			assert.Equal(t, tt.want, f.Name())
		})
	}

	assert.Nil(t, GetFormatterByName("html"))
}

func TestAvailableFormatterNames(t *testing.T) {
	assert.Equal(t, []string{"console", "csv", "json"}, AvailableFormatterNames())
	assert.Equal(t, []string{"table", "text"}, AvailableFormatAliases())
}

func TestJSONFormatter_Format(t *testing.T) {
	out, err := JSONFormatter{}.Format(buildTestReport())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "2025/26", decoded["taxYear"])
	assert.Equal(t, "Test Household", decoded["household"])

	netIncome, ok := decoded["netIncome"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "39520", netIncome["netIncome"], "decimals encode as strings")
}

func TestCSVFormatter_Format(t *testing.T) {
	out, err := CSVFormatter{}.Format(buildTestReport())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, []string{"Section", "Item", "Metric", "Value"}, records[0])
	assert.Contains(t, records, []string{"income", "household", "gross", "50000.00"})
	assert.Contains(t, records, []string{"property", "Home", "loan_to_value", "0.5000"})
	assert.Contains(t, records, []string{"mortgage", "Bank", "remaining_payments", "240"})
	assert.Contains(t, records, []string{"protection", "total", "adequacy_score", "25"})
	assert.Contains(t, records, []string{"portfolio", "frontier", "efficient_portfolios", "1"})
	for _, r := range records {
		assert.Len(t, r, 4)
	}
}

func TestConsoleFormatter_Format(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(buildTestReport())
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "UK FINANCIAL PLAN: Test Household")
	assert.Contains(t, text, "NET INCOME")
	assert.Contains(t, text, "£39520.00")
	assert.Contains(t, text, "PROPERTY: Home")
	assert.Contains(t, text, "50.00%")
	assert.Contains(t, text, "25/100 Critical")
	assert.Contains(t, text, "gap: debt")
	assert.Contains(t, text, "PORTFOLIO")
	assert.Contains(t, text, "5.40%")
}

func TestConsoleFormatter_NoPortfolio(t *testing.T) {
	report := buildTestReport()
	report.Portfolio = nil

	out, err := ConsoleFormatter{}.Format(report)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "PORTFOLIO")
}

func TestWriteSDLT(t *testing.T) {
	var buf bytes.Buffer
	WriteSDLT(&buf, calculation.SDLTResult{
		PurchasePrice: decimal.NewFromInt(300000),
		BandSet:       "standard",
		Bands: []calculation.SDLTBandSlice{
			{From: decimal.Zero, To: decimal.NewFromInt(125000), Rate: decimal.Zero, Tax: decimal.Zero},
			{From: decimal.NewFromInt(125000), Rate: decimal.RequireFromString("0.02"), Tax: decimal.NewFromInt(2500)},
		},
		TotalSDLT: decimal.NewFromInt(5000),
	})

	assert.Contains(t, buf.String(), "£5000.00")
	assert.Contains(t, buf.String(), "and above")
}

func TestWriteFormatted(t *testing.T) {
	tmpDir := t.TempDir()
	originalDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(originalDir)

	f := FormatterFunc{ID: "test", F: func(*planner.Report) ([]byte, error) { return []byte("content"), nil }}

	filename, err := WriteFormatted(f, buildTestReport(), "txt")
	require.NoError(t, err)
	assert.Contains(t, filename, "ukplan_report_")
	assert.Contains(t, filename, ".txt")

	content, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "content", string(content))
}

func TestWriteFormatted_FormatterError(t *testing.T) {
	f := FormatterFunc{ID: "broken", F: func(*planner.Report) ([]byte, error) { return nil, fmt.Errorf("boom") }}

	filename, err := WriteFormatted(f, buildTestReport(), "txt")

	assert.Error(t, err)
	assert.Empty(t, filename)
	assert.Contains(t, err.Error(), "failed to format report")
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "£1234.50", FormatCurrency(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "-£10.00", FormatCurrency(decimal.NewFromInt(-10)))
	assert.Equal(t, "20.00%", FormatPercentage(decimal.RequireFromString("0.2")))
	assert.Equal(t, "5.40%", FormatFloatPercentage(0.054))
}
