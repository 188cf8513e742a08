package main

import (
	"github.com/spf13/cobra"

	"interview-coach/internal/domain"
)

var negotiateCmd = &cobra.Command{
	Use:   "negotiate",
	Short: "Analyze an offer against market data and draft a negotiation script",
	RunE:  runNegotiate,
}

var negotiateInput string

func init() {
	negotiateCmd.Flags().StringVarP(&negotiateInput, "in", "i", "", "Path to the JSON or YAML job file")
	rootCmd.AddCommand(negotiateCmd)
}

func runNegotiate(cmd *cobra.Command, _ []string) error {
	var in struct {
		Job domain.JobDescription `json:"job"`
	}
	if err := readInput(negotiateInput, &in); err != nil {
		return err
	}
	pipeline, err := newPipeline(nil)
	if err != nil {
		return err
	}
	analysis, err := pipeline.AnalyzeOffer(in.Job)
	if err != nil {
		return err
	}
	return emit(cmd.OutOrStdout(), analysis, func() string { return renderNegotiation(analysis) })
}
