package main

import (
	"encoding/json"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/sheikh-saqib/microfinance-ledger/internal/loan"
	"github.com/sheikh-saqib/microfinance-ledger/internal/models"
)

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().String("principal", "", "Amount lent")
	quoteCmd.Flags().String("rate", "", "Flat interest rate in percent per term unit")
	quoteCmd.Flags().Int("term", 0, "Number of term units")
	quoteCmd.Flags().String("unit", "month", "Term unit: day, week, month or year")
	quoteCmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
}

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Compute interest, total repayment and due date for loan terms",
	Example: `  server quote --principal 1000 --rate 5 --term 3 --unit month --start 2024-01-31`,
	Args:    cobra.NoArgs,
	RunE:    runQuote,
}

func runQuote(cmd *cobra.Command, args []string) error {
	terms, err := termsFromFlags(cmd)
	if err != nil {
		return err
	}
	fin, err := loan.ComputeLoanFinancials(terms)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(fin)
}

// termsFromFlags leaves unset flags absent so missing input reports as
// incomplete rather than as zero.
func termsFromFlags(cmd *cobra.Command) (models.LoanTerms, error) {
	flags := cmd.Flags()
	var terms models.LoanTerms

	if v, _ := flags.GetString("principal"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return terms, fmt.Errorf("%w: principal %q", models.ErrInvalidArgument, v)
		}
		terms.Principal = decimal.NewNullDecimal(d)
	}
	if v, _ := flags.GetString("rate"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return terms, fmt.Errorf("%w: rate %q", models.ErrInvalidArgument, v)
		}
		terms.RatePercent = decimal.NewNullDecimal(d)
	}
	if flags.Changed("term") {
		n, _ := flags.GetInt("term")
		terms.TermLength = &n
	}
	unit, _ := flags.GetString("unit")
	terms.TermUnit = models.TermUnit(unit)
	if v, _ := flags.GetString("start"); v != "" {
		d, err := civil.ParseDate(v)
		if err != nil {
			return terms, fmt.Errorf("%w: start date %q", models.ErrInvalidArgument, v)
		}
		terms.StartDate = d
	}
	return terms, nil
}
