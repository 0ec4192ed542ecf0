package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rgehrsitz/ukplan/internal/calculation"
	"github.com/rgehrsitz/ukplan/internal/config"
	"github.com/rgehrsitz/ukplan/internal/domain"
	"github.com/rgehrsitz/ukplan/internal/output"
	"github.com/rgehrsitz/ukplan/internal/planner"
	"github.com/rgehrsitz/ukplan/internal/portfolio"
	"github.com/rgehrsitz/ukplan/internal/protection"
	"github.com/rgehrsitz/ukplan/internal/store/sqlite"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

// activeConfig opens the configured provider and loads the active tax year
func (o *options) activeConfig() (*domain.TaxYearConfig, error) {
	provider, closeFn, err := o.openProvider()
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return provider.ActiveConfig()
}

// render writes a single calculator result as JSON or through its console writer
func (o *options) render(cmd *cobra.Command, v any, console func(io.Writer)) error {
	f := output.GetFormatterByName(o.format)
	if f == nil {
		return fmt.Errorf("unsupported format: %s", o.format)
	}
	switch f.Name() {
	case "json":
		data, err := output.MarshalJSON(v)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	case "console":
		console(cmd.OutOrStdout())
		return nil
	default:
		return fmt.Errorf("format %s is only available for the report command", f.Name())
	}
}

func decimalFlag(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	raw, _ := cmd.Flags().GetString(name)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", name, raw, err)
	}
	return d, nil
}

// percentFlag reads a whole-percentage flag (4.5) as a rate (0.045)
func percentFlag(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	d, err := decimalFlag(cmd, name)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.PercentToRate(d), nil
}

func dateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q, expected YYYY-MM-DD: %w", name, raw, err)
	}
	return t, nil
}

func loadHousehold(path string) (*domain.Household, error) {
	return config.NewInputParser().LoadFromFile(path)
}

func reportCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [household-file]",
		Short: "Run every calculation for a household",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			household, err := loadHousehold(args[0])
			if err != nil {
				return err
			}
			asOf, err := dateFlag(cmd, "as-of")
			if err != nil {
				return err
			}
			f := output.GetFormatterByName(opts.format)
			if f == nil {
				return fmt.Errorf("unsupported format: %s", opts.format)
			}

			provider, closeFn, err := opts.openProvider()
			if err != nil {
				return err
			}
			defer closeFn()

			engine := planner.NewEngine(provider)
			if opts.debug {
				engine.SetLogger(newLogger(cmd.ErrOrStderr()))
			}
			if n, _ := cmd.Flags().GetInt("portfolios"); n > 0 {
				engine.Options.FrontierPortfolios = n
			}
			if seed, _ := cmd.Flags().GetInt64("seed"); seed != 0 {
				engine.Options.Portfolio.Seed = seed
			}

			report, err := engine.Run(cmd.Context(), household, asOf)
			if err != nil {
				if errors.Is(err, domain.ErrConfigurationNotFound) {
					return fmt.Errorf("%w: activate a tax year before running a report", err)
				}
				return err
			}

			if save, _ := cmd.Flags().GetBool("save"); save {
				filename, err := output.WriteFormatted(f, report, f.Name())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", filename)
				return nil
			}

			data, err := f.Format(report)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().String("as-of", "", "Valuation date YYYY-MM-DD (default today)")
	cmd.Flags().Int("portfolios", 0, "Random portfolios sampled for the frontier")
	cmd.Flags().Int64("seed", 0, "Seed for portfolio sampling")
	cmd.Flags().Bool("save", false, "Write the report to a timestamped file instead of stdout")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [household-file]",
		Short: "Validate a household file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadHousehold(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Household file %s is valid\n", args[0])
			return nil
		},
	}
}

func netIncomeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "net-income",
		Short: "Calculate income tax, National Insurance and net income",
		RunE: func(cmd *cobra.Command, args []string) error {
			var income domain.IncomeProfile
			fields := []struct {
				flag string
				dst  *decimal.Decimal
			}{
				{"employment", &income.Employment},
				{"self-employment", &income.SelfEmployment},
				{"rental", &income.Rental},
				{"dividend", &income.Dividend},
				{"other", &income.Other},
			}
			for _, f := range fields {
				v, err := decimalFlag(cmd, f.flag)
				if err != nil {
					return err
				}
				if v.IsNegative() {
					return fmt.Errorf("%w: --%s cannot be negative", domain.ErrInvalidInput, f.flag)
				}
				*f.dst = v
			}

			cfg, err := opts.activeConfig()
			if err != nil {
				return err
			}
			result := calculation.NewIncomeTaxCalculator(cfg).CalculateNetIncome(income)
			return opts.render(cmd, result, func(w io.Writer) { output.WriteNetIncome(w, result) })
		},
	}
	for _, name := range []string{"employment", "self-employment", "rental", "dividend", "other"} {
		cmd.Flags().String(name, "0", "Annual "+name+" income")
	}
	return cmd
}

func sdltCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sdlt",
		Short: "Calculate Stamp Duty Land Tax on a purchase",
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := decimalFlag(cmd, "price")
			if err != nil {
				return err
			}
			if !price.IsPositive() {
				return fmt.Errorf("%w: --price must be positive", domain.ErrInvalidInput)
			}
			propertyType, _ := cmd.Flags().GetString("type")
			switch domain.PropertyType(propertyType) {
			case domain.MainResidence, domain.SecondaryResidence, domain.BuyToLet:
			default:
				return fmt.Errorf("%w: --type must be main_residence, secondary_residence or buy_to_let", domain.ErrInvalidInput)
			}
			ftb, _ := cmd.Flags().GetBool("first-time-buyer")

			cfg, err := opts.activeConfig()
			if err != nil {
				return err
			}
			result := calculation.NewPropertyTaxCalculator(cfg).CalculateSDLT(price, domain.PropertyType(propertyType), ftb)
			return opts.render(cmd, result, func(w io.Writer) { output.WriteSDLT(w, result) })
		},
	}
	cmd.Flags().String("price", "0", "Purchase price")
	cmd.Flags().String("type", string(domain.MainResidence), "Property type: main_residence, secondary_residence, buy_to_let")
	cmd.Flags().Bool("first-time-buyer", false, "Apply first-time buyer relief")
	return cmd
}

func mortgageCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mortgage",
		Short: "Calculate a mortgage payment and amortization schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			loan, err := decimalFlag(cmd, "loan")
			if err != nil {
				return err
			}
			rate, err := percentFlag(cmd, "rate")
			if err != nil {
				return err
			}
			start, err := dateFlag(cmd, "start")
			if err != nil {
				return err
			}
			term, _ := cmd.Flags().GetInt("term-months")
			mortgageType, _ := cmd.Flags().GetString("type")
			if !loan.IsPositive() || term <= 0 || rate.IsNegative() {
				return fmt.Errorf("%w: --loan and --term-months must be positive and --rate non-negative", domain.ErrInvalidInput)
			}
			if t := domain.MortgageType(mortgageType); t != domain.Repayment && t != domain.InterestOnly {
				return fmt.Errorf("%w: --type must be repayment or interest_only", domain.ErrInvalidInput)
			}

			amortizer := calculation.NewMortgageAmortizer()
			schedule := amortizer.GenerateAmortizationSchedule(domain.Mortgage{
				OriginalLoanAmount:  loan,
				OutstandingBalance:  loan,
				InterestRate:        rate,
				Type:                domain.MortgageType(mortgageType),
				StartDate:           start,
				RemainingTermMonths: term,
			}, start)
			years := amortizer.CalculateAnnualEquityBuild(schedule)

			if full, _ := cmd.Flags().GetBool("schedule"); !full {
				schedule.Rows = nil
			}
			return opts.render(cmd, struct {
				calculation.AmortizationSchedule
				AnnualEquity []calculation.AnnualEquity `json:"annualEquity"`
			}{schedule, years}, func(w io.Writer) { output.WriteMortgage(w, schedule, years) })
		},
	}
	cmd.Flags().String("loan", "0", "Loan amount")
	cmd.Flags().String("rate", "0", "Annual interest rate in percent (4.5 = 4.5%)")
	cmd.Flags().Int("term-months", 300, "Term in months")
	cmd.Flags().String("type", string(domain.Repayment), "Mortgage type: repayment or interest_only")
	cmd.Flags().String("start", "", "First payment month YYYY-MM-DD (default today)")
	cmd.Flags().Bool("schedule", false, "Include every monthly row in JSON output")
	return cmd
}

func allowanceCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allowance",
		Short: "Check pension contributions against the annual allowance",
		RunE: func(cmd *cobra.Command, args []string) error {
			values := map[string]decimal.Decimal{}
			for _, name := range []string{"contributions", "threshold-income", "adjusted-income", "carry-forward"} {
				v, err := decimalFlag(cmd, name)
				if err != nil {
					return err
				}
				values[name] = v
			}
			cfg, err := opts.activeConfig()
			if err != nil {
				return err
			}
			result := calculation.NewAnnualAllowanceCalculator(cfg).CheckAnnualAllowance(
				values["contributions"], values["threshold-income"], values["adjusted-income"], values["carry-forward"])
			carry := calculation.CarryForwardResult{TotalUnused: result.CarryForward}
			return opts.render(cmd, result, func(w io.Writer) {
				output.WriteAllowance(w, result, carry, calculation.MPAAStatus{})
			})
		},
	}
	cmd.Flags().String("contributions", "0", "Total pension input for the year")
	cmd.Flags().String("threshold-income", "0", "Threshold income")
	cmd.Flags().String("adjusted-income", "0", "Adjusted income")
	cmd.Flags().String("carry-forward", "0", "Unused allowance carried forward")
	return cmd
}

func frontierCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frontier [household-file]",
		Short: "Sample the efficient frontier for a household's asset classes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			household, err := loadHousehold(args[0])
			if err != nil {
				return err
			}
			if household.Portfolio == nil || len(household.Portfolio.AssetClasses) == 0 {
				return fmt.Errorf("%w: %s has no portfolio asset classes", domain.ErrInvalidInput, args[0])
			}
			p := household.Portfolio

			popts := portfolio.DefaultOptions()
			if seed, _ := cmd.Flags().GetInt64("seed"); seed != 0 {
				popts.Seed = seed
			}
			engine := portfolio.NewEngine(popts)
			n, _ := cmd.Flags().GetInt("portfolios")

			targetReturn, _ := cmd.Flags().GetFloat64("target-return")
			targetRisk, _ := cmd.Flags().GetFloat64("target-risk")
			if targetReturn > 0 || targetRisk > 0 {
				target := portfolio.Target{Kind: portfolio.TargetReturn, Value: targetReturn / 100}
				if targetRisk > 0 {
					target = portfolio.Target{Kind: portfolio.TargetRisk, Value: targetRisk / 100}
				}
				optimal, err := engine.CalculateOptimalPortfolio(p.AssetClasses, target, p.RiskFreeRate)
				if err != nil {
					return err
				}
				return opts.render(cmd, optimal, func(w io.Writer) {
					fmt.Fprintf(w, "Optimal portfolio for %s %.2f%%:\n", target.Kind, target.Value*100)
					output.WriteStatistics(w, optimal.Statistics)
				})
			}

			frontier, err := engine.CalculateEfficientFrontier(p.AssetClasses, n, p.RiskFreeRate)
			if err != nil {
				return err
			}
			return opts.render(cmd, frontier, func(w io.Writer) { output.WriteFrontier(w, frontier) })
		},
	}
	cmd.Flags().Int("portfolios", 1000, "Random portfolios to sample")
	cmd.Flags().Int64("seed", 0, "Sampling seed (default from portfolio options)")
	cmd.Flags().Float64("target-return", 0, "Pick the efficient portfolio nearest this return, in percent")
	cmd.Flags().Float64("target-risk", 0, "Pick the efficient portfolio nearest this volatility, in percent")
	return cmd
}

func protectionCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "protection [household-file]",
		Short: "Analyse life, critical illness and income protection gaps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			household, err := loadHousehold(args[0])
			if err != nil {
				return err
			}
			change, err := percentFlag(cmd, "premium-change")
			if err != nil {
				return err
			}
			cfg, err := opts.activeConfig()
			if err != nil {
				return err
			}
			analysis := protection.NewGapEngine(cfg).Analyze(household.Protection, household.Policies, change)
			return opts.render(cmd, analysis, func(w io.Writer) { output.WriteProtection(w, analysis) })
		},
	}
	cmd.Flags().String("premium-change", "10", "Premium increase to test, in percent")
	return cmd
}

func validateConfigCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate-config [tax-config-file]",
		Short: "Validate a tax-year configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.taxConfig
			if len(args) == 1 {
				path = args[0]
			}
			fp, err := config.NewFileProvider(path)
			if err != nil {
				return err
			}
			active, err := fp.ActiveConfig()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tax configuration %s is valid: %d tax years, %s active\n", path, len(fp.TaxYears()), active.TaxYear)
			return nil
		},
	}
}

func configCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage tax years stored in the SQLite database",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.dbPath == "" {
				return errors.New("--db (or UKPLAN_DB) is required for config commands")
			}
			return nil
		},
	}

	withStore := func(fn func(cmd *cobra.Command, args []string, store *sqlite.Store) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			store, err := sqlite.New(opts.dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			return fn(cmd, args, store)
		}
	}

	importCmd := &cobra.Command{
		Use:   "import [tax-config-file]",
		Short: "Import every tax year in a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, args []string, store *sqlite.Store) error {
			fp, err := config.NewFileProvider(args[0])
			if err != nil {
				return err
			}
			for _, cfg := range fp.Configs() {
				if err := store.Save(cmd.Context(), cfg); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s\n", cfg.TaxYear)
			}
			return nil
		}),
	}

	activateCmd := &cobra.Command{
		Use:   "activate [tax-year]",
		Short: "Make a stored tax year the active one",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, args []string, store *sqlite.Store) error {
			if err := store.Activate(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tax year %s is now active\n", args[0])
			return nil
		}),
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored tax years",
		RunE: withStore(func(cmd *cobra.Command, args []string, store *sqlite.Store) error {
			records, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			return opts.render(cmd, records, func(w io.Writer) {
				for _, r := range records {
					marker := " "
					if r.IsActive {
						marker = "*"
					}
					fmt.Fprintf(w, "%s %s  v%d  from %s  updated %s\n", marker, r.TaxYear, r.Version,
						r.EffectiveFrom.Format(dateLayout), r.UpdatedAt.Format(time.RFC3339))
				}
			})
		}),
	}

	cmd.AddCommand(importCmd, activateCmd, listCmd)
	return cmd
}
