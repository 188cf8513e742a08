package main

import (
	"github.com/spf13/cobra"

	"interview-coach/internal/domain"
	"interview-coach/internal/repository"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast the next interview score and, optionally, the offer probability",
	Long:  "Forecast from the history in the input file, or from a SQLite history with --history and --candidate. With \"offer\" context in the input the offer probability is computed too.",
	RunE:  runForecast,
}

var (
	forecastInput     string
	forecastHistory   string
	forecastCandidate string
)

func init() {
	forecastCmd.Flags().StringVarP(&forecastInput, "in", "i", "", "Path to the JSON or YAML input file")
	forecastCmd.Flags().StringVar(&forecastHistory, "history", "", "SQLite history file written by score --record")
	forecastCmd.Flags().StringVar(&forecastCandidate, "candidate", "", "Candidate id to load from --history")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, _ []string) error {
	var in struct {
		History []domain.PerformanceRecord `json:"history"`
		Context domain.ForecastContext     `json:"context"`
		Offer   *domain.OfferContext       `json:"offer"`
	}
	if forecastInput != "" {
		if err := readInput(forecastInput, &in); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	var history domain.HistoryStore
	if forecastHistory != "" {
		store, err := repository.OpenSQLiteHistoryStore(ctx, forecastHistory)
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

	var forecast domain.Forecast
	if history != nil && forecastCandidate != "" {
		forecast, err = pipeline.ForecastCandidate(ctx, forecastCandidate, in.Context)
	} else {
		forecast, err = pipeline.Forecast(in.History, in.Context)
	}
	if err != nil {
		return err
	}

	out := struct {
		Forecast domain.Forecast       `json:"forecast"`
		Offer    *domain.OfferForecast `json:"offer,omitempty"`
	}{Forecast: forecast}
	if in.Offer != nil && forecast.Trend != domain.TrendInsufficientData {
		offer, err := pipeline.ForecastOffer(forecast.Predicted, *in.Offer)
		if err != nil {
			return err
		}
		out.Offer = &offer
	}
	return emit(cmd.OutOrStdout(), out, func() string {
		if out.Offer == nil {
			return renderForecast(forecast)
		}
		return renderForecast(forecast) + "\n" + renderOffer(*out.Offer)
	})
}
