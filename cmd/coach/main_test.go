package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-coach/internal/domain"
)

func resetFlags() {
	nowFlag, jsonOutput, verboseFlag = "", false, false
	planInput, scheduleInput, negotiateInput, followUpInput = "", "", "", ""
	scoreInput, scoreRecord, scoreCandidate = "", "", ""
	forecastInput, forecastHistory, forecastCandidate = "", "", ""
	coordinateInput, coordinateHistory, coordinateCandidate = "", "", ""
}

func runCoach(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadInputYAML(t *testing.T) {
	path := writeFile(t, "job.yaml", `
job:
  title: Senior Python Engineer
  requirements: [python, scalability]
  salary:
    min: 170000
    max: 210000
`)
	var in struct {
		Job domain.JobDescription `json:"job"`
	}
	require.NoError(t, readInput(path, &in))
	assert.Equal(t, "Senior Python Engineer", in.Job.Title)
	assert.Equal(t, []string{"python", "scalability"}, in.Job.RequiredSkills)
	require.NotNil(t, in.Job.Salary)
	assert.Equal(t, 210000, in.Job.Salary.Max)
}

func TestReadInputErrors(t *testing.T) {
	var v map[string]any
	assert.Error(t, readInput("", &v))
	assert.Error(t, readInput(filepath.Join(t.TempDir(), "missing.json"), &v))
	assert.Error(t, readInput(writeFile(t, "bad.json", "{"), &v))
}

func TestPlanCommandJSON(t *testing.T) {
	in := writeFile(t, "plan.json", `{
		"job": {"title": "Junior Frontend Developer", "requirements": ["javascript", "react"]},
		"candidate": {"experience": "junior", "available_minutes": 120}
	}`)
	out, err := runCoach(t, "plan", "--in", in, "--json", "--now", "2025-01-06T12:00:00Z")
	require.NoError(t, err)

	var plan domain.PreparationPlan
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, 120, plan.TotalMinutes)
	assert.NotEmpty(t, plan.FocusAreas)
}

func TestNegotiateCommandReport(t *testing.T) {
	in := writeFile(t, "offer.yaml", `
job:
  title: Senior Python Engineer
  company: Acme
  salary: {min: 170000, max: 210000}
`)
	out, err := runCoach(t, "negotiate", "--in", in)
	require.NoError(t, err)
	assert.Contains(t, out, "Offer analysis")
	assert.Contains(t, out, "$193,500")
}

func TestScoreRecordThenForecast(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")
	in := writeFile(t, "score.json", `{
		"session": {"id": "s1", "status": "completed", "type": "behavioral"},
		"responses": {"q1": "First, I analyzed the problem systematically with the team."},
		"interview_type": "behavioral"
	}`)

	_, err := runCoach(t, "score", "--in", in, "--record", db)
	require.Error(t, err)

	out, err := runCoach(t, "score", "--in", in, "--record", db, "--candidate", "cand-1", "--json")
	require.NoError(t, err)
	var record domain.PerformanceRecord
	require.NoError(t, json.Unmarshal([]byte(out), &record))
	assert.Equal(t, "s1", record.SessionID)

	out, err = runCoach(t, "forecast", "--history", db, "--candidate", "cand-1", "--json")
	require.NoError(t, err)
	var result struct {
		Forecast domain.Forecast `json:"forecast"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, domain.TrendInsufficientData, result.Forecast.Trend)
}

func TestInvalidNowFlag(t *testing.T) {
	in := writeFile(t, "plan.json", `{"job": {"title": "x"}, "candidate": {"experience": "mid", "available_minutes": 60}}`)
	_, err := runCoach(t, "plan", "--in", in, "--now", "yesterday")
	assert.ErrorContains(t, err, "invalid --now")
}

func TestRenderError(t *testing.T) {
	err := domain.InvalidInput("preparation_planner", "available minutes must be positive")
	msg := renderError(err)
	assert.Contains(t, msg, "invalid_input")
	assert.Contains(t, msg, "preparation_planner")
}
