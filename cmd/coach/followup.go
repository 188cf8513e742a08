package main

import (
	"github.com/spf13/cobra"

	"interview-coach/internal/domain"
	"interview-coach/internal/service"
)

var followUpCmd = &cobra.Command{
	Use:   "follow-up",
	Short: "Plan the follow-up sequence after a completed interview",
	RunE:  runFollowUp,
}

var followUpInput string

func init() {
	followUpCmd.Flags().StringVarP(&followUpInput, "in", "i", "", "Path to the JSON or YAML input file")
	rootCmd.AddCommand(followUpCmd)
}

func runFollowUp(cmd *cobra.Command, _ []string) error {
	var in struct {
		Session       domain.InterviewSession  `json:"session"`
		Record        domain.PerformanceRecord `json:"record"`
		Company       domain.Company           `json:"company"`
		Position      string                   `json:"position"`
		ApplicantName string                   `json:"applicant_name"`
	}
	if err := readInput(followUpInput, &in); err != nil {
		return err
	}
	pipeline, err := newPipeline(nil)
	if err != nil {
		return err
	}
	plan, err := pipeline.PlanFollowUp(in.Session, in.Record, in.Company, service.FollowUpContext{
		Position:      in.Position,
		ApplicantName: in.ApplicantName,
	})
	if err != nil {
		return err
	}
	return emit(cmd.OutOrStdout(), plan, func() string { return renderFollowUp(plan) })
}
