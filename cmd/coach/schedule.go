package main

import (
	"time"

	"github.com/spf13/cobra"

	"interview-coach/internal/domain"
	"interview-coach/internal/service"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Schedule the interview rounds for an application",
	RunE:  runSchedule,
}

var scheduleInput string

func init() {
	scheduleCmd.Flags().StringVarP(&scheduleInput, "in", "i", "", "Path to the JSON or YAML input file")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	var in struct {
		ApplicationID string                `json:"application_id"`
		Job           domain.JobDescription `json:"job"`
		Now           time.Time             `json:"now"`
	}
	if err := readInput(scheduleInput, &in); err != nil {
		return err
	}
	pipeline, err := newPipeline(nil)
	if err != nil {
		return err
	}
	sessions, err := pipeline.ScheduleSessions(in.ApplicationID, in.Job, in.Now)
	if err != nil {
		return err
	}
	report := pipeline.Progression(sessions)
	out := struct {
		Sessions    []domain.InterviewSession `json:"sessions"`
		Progression service.ProgressionReport  `json:"progression"`
	}{sessions, report}
	return emit(cmd.OutOrStdout(), out, func() string {
		return renderSessions(sessions, report.Smoothness, report.TimingEfficiency)
	})
}
