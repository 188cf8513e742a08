package main

import (
	"github.com/spf13/cobra"

	"interview-coach/internal/domain"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build a preparation plan for a job and candidate",
	Long:  "Build a preparation plan from an input file with {\"job\": ..., \"candidate\": ...}.",
	RunE:  runPlan,
}

var planInput string

func init() {
	planCmd.Flags().StringVarP(&planInput, "in", "i", "", "Path to the JSON or YAML input file")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	var in struct {
		Job       domain.JobDescription   `json:"job"`
		Candidate domain.CandidateProfile `json:"candidate"`
	}
	if err := readInput(planInput, &in); err != nil {
		return err
	}
	pipeline, err := newPipeline(nil)
	if err != nil {
		return err
	}
	plan, err := pipeline.PlanPreparation(in.Job, in.Candidate)
	if err != nil {
		return err
	}
	return emit(cmd.OutOrStdout(), plan, func() string { return renderPlan(plan) })
}
