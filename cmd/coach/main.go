// Command coach ejecuta el pipeline de preparacion desde la terminal.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"interview-coach/internal/config"
	"interview-coach/internal/domain"
	"interview-coach/internal/library"
	"interview-coach/internal/service"
)

var rootCmd = &cobra.Command{
	Use:           "coach",
	Short:         "Interview preparation pipeline",
	Long:          "coach plans preparation, schedules interview rounds, scores answers, forecasts outcomes and analyzes offers from JSON or YAML input files.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	nowFlag     string
	jsonOutput  bool
	verboseFlag bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&nowFlag, "now", "", "Freeze the clock at this RFC3339 instant")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print raw JSON instead of the formatted report")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log pipeline decisions to stderr")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(1)
	}
}

func clockFromFlag() (domain.Clock, error) {
	if nowFlag == "" {
		return domain.SystemClock{}, nil
	}
	at, err := time.Parse(time.RFC3339, nowFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid --now %q: %w", nowFlag, err)
	}
	return domain.FixedClock{At: at}, nil
}

func newLogger() *zap.Logger {
	if !verboseFlag {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// newPipeline arma el pipeline con la config del entorno; history puede ser nil.
func newPipeline(history domain.HistoryStore) (*service.Pipeline, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	clock, err := clockFromFlag()
	if err != nil {
		return nil, err
	}
	lib, err := library.Default()
	if err != nil {
		return nil, fmt.Errorf("load question library: %w", err)
	}
	return service.NewPipeline(newLogger(), clock, lib, history, service.PipelineConfig{
		Platform:        cfg.InterviewPlatform,
		DailyCapMinutes: cfg.DailyPrepCapMinutes,
		FollowUp: service.FollowUpOrchestratorConfig{
			WorkStart:          cfg.FollowUpWorkStart,
			BusinessHoursStart: cfg.BusinessHoursStart,
			BusinessHoursEnd:   cfg.BusinessHoursEnd,
		},
	})
}
