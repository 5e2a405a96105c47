// Package main is adoptionctl, an offline tool for checking adoption CSV
// exports and sanitizer output without a running server.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kiranshivaraju/rfpmarket/internal/adoption"
	"github.com/kiranshivaraju/rfpmarket/pkg/models"
	"github.com/kiranshivaraju/rfpmarket/pkg/sanitize"
)

const defaultSanitizeMax = 10000

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "adoptionctl",
		Short:        "Inspect adoption usage exports offline",
		SilenceUsage: true,
	}
	root.AddCommand(newAggregateCmd(), newSanitizeCmd())
	return root
}

type aggregateOutput struct {
	RecordsProcessed int                         `json:"records_processed"`
	Tools            []models.ToolUsageAggregate `json:"tools"`
	Items            []models.AuditItem          `json:"items"`
	Errors           []adoption.FieldError       `json:"errors,omitempty"`
}

func newAggregateCmd() *cobra.Command {
	var airline string

	cmd := &cobra.Command{
		Use:   "aggregate <file.csv>",
		Short: "Aggregate a usage CSV into per-tool metrics and audit items",
		Long: `Reads a CSV export with a header row (tool_name, user_id, login_count,
last_login, session_duration_minutes, sentiment_rating), prints the per-tool
aggregates and the audit items an evaluation would receive, and reports any
validation errors those items would hit. Use "-" to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeFn, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			records, err := adoption.ParseCSV(in)
			var verr *adoption.ValidationError
			if errors.As(err, &verr) {
				writeJSON(cmd.OutOrStdout(), aggregateOutput{Errors: verr.Errors})
				return fmt.Errorf("%d invalid cells", len(verr.Errors))
			}
			if err != nil {
				return err
			}

			tools := adoption.Aggregate(records)
			items := adoption.ToAuditItems(tools)
			out := aggregateOutput{
				RecordsProcessed: len(records),
				Tools:            tools,
				Items:            items,
				Errors: adoption.ValidateAuditRequest(models.AuditRequest{
					AirlineName: airline,
					Items:       items,
				}),
			}
			writeJSON(cmd.OutOrStdout(), out)
			if len(out.Errors) > 0 {
				return fmt.Errorf("audit request would be rejected: %d errors", len(out.Errors))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&airline, "airline", "offline", "airline name used when validating the audit items")
	return cmd
}

func newSanitizeCmd() *cobra.Command {
	var (
		maxLen     int
		identifier bool
	)

	cmd := &cobra.Command{
		Use:   "sanitize",
		Short: "Sanitize stdin the way user text is sanitized before it reaches a model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}

			var out string
			if identifier {
				out = sanitize.Identifier(string(raw))
			} else {
				out = sanitize.PromptInput(string(raw), maxLen)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().IntVar(&maxLen, "max", defaultSanitizeMax, "maximum characters kept from the input")
	cmd.Flags().BoolVar(&identifier, "identifier", false, "strip instead of escape, for tool names or requirement ids")
	return cmd
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}

func writeJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
