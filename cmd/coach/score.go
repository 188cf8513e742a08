package main

import (
	"errors"

	"github.com/spf13/cobra"

	"interview-coach/internal/domain"
	"interview-coach/internal/repository"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score interview answers and build a performance record",
	Long:  "Score the answers of a completed session. With --record the resulting record is appended to the candidate history in a SQLite file.",
	RunE:  runScore,
}

var (
	scoreInput     string
	scoreRecord    string
	scoreCandidate string
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreInput, "in", "i", "", "Path to the JSON or YAML input file")
	scoreCmd.Flags().StringVar(&scoreRecord, "record", "", "SQLite history file to append the record to")
	scoreCmd.Flags().StringVar(&scoreCandidate, "candidate", "", "Candidate id owning the history (required with --record)")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	var in struct {
		Session       domain.InterviewSession `json:"session"`
		Responses     domain.ResponseBundle   `json:"responses"`
		InterviewType string                  `json:"interview_type"`
	}
	if err := readInput(scoreInput, &in); err != nil {
		return err
	}
	if scoreRecord != "" && scoreCandidate == "" {
		return errors.New("--candidate is required with --record")
	}

	ctx := cmd.Context()
	var history domain.HistoryStore
	if scoreRecord != "" {
		store, err := repository.OpenSQLiteHistoryStore(ctx, scoreRecord)
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
	record, err := pipeline.RecordPerformance(ctx, scoreCandidate, in.Session, in.Responses, in.InterviewType)
	if err != nil {
		return err
	}
	return emit(cmd.OutOrStdout(), record, func() string { return renderRecord(record) })
}
