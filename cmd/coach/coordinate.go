package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"interview-coach/internal/domain"
	"interview-coach/internal/repository"
	"interview-coach/internal/service"
)

var coordinateCmd = &cobra.Command{
	Use:   "coordinate",
	Short: "Schedule, plan and analyze an application in one pass",
	Long:  "Run scheduling, preparation planning and offer analysis for one application. With --history and --candidate the plan id is stored as the candidate's last plan.",
	RunE:  runCoordinate,
}

var (
	coordinateInput     string
	coordinateHistory   string
	coordinateCandidate string
)

func init() {
	coordinateCmd.Flags().StringVarP(&coordinateInput, "in", "i", "", "Path to the JSON or YAML input file")
	coordinateCmd.Flags().StringVar(&coordinateHistory, "history", "", "SQLite history file for the candidate")
	coordinateCmd.Flags().StringVar(&coordinateCandidate, "candidate", "", "Candidate id whose last plan is updated")
	rootCmd.AddCommand(coordinateCmd)
}

func runCoordinate(cmd *cobra.Command, _ []string) error {
	var req service.CoordinateRequest
	if err := readInput(coordinateInput, &req); err != nil {
		return err
	}
	req.CandidateID = coordinateCandidate

	ctx := cmd.Context()
	var history domain.HistoryStore
	if coordinateHistory != "" {
		store, err := repository.OpenSQLiteHistoryStore(ctx, coordinateHistory)
		if err != nil {
			return err
		}
		defer store.Close()
		history = store
	}
	pipeline, err := newPipeline(history)
	if err != nil {
		return err
	}
	result, err := pipeline.Coordinate(ctx, req)
	if err != nil {
		return err
	}
	return emit(cmd.OutOrStdout(), result, func() string {
		parts := []string{
			renderSessions(result.Sessions, result.Progression.Smoothness, result.Progression.TimingEfficiency),
			renderPlan(result.Plan),
		}
		if result.Negotiation != nil {
			parts = append(parts, renderNegotiation(*result.Negotiation))
		}
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	})
}
