package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalbox/signalbox/analysis"
	"github.com/signalbox/signalbox/detector"
	"github.com/signalbox/signalbox/optimizer"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRun(id string, completed time.Time) *analysis.Run {
	detection := detector.DetectionResult{
		Framework:       "autogen",
		Confidence:      detector.ConfidenceHigh,
		ConfidenceScore: 86,
		Components: []*detector.Component{
			{Name: "classifier", Type: detector.TypeAgent, Model: "gpt-4", FilePath: "app.py", LineNumber: 3},
		},
	}
	return &analysis.Run{
		ID:          id,
		Source:      "https://github.com/acme/widgets",
		StartedAt:   completed.Add(-2 * time.Second),
		CompletedAt: completed,
		Detection:   detection,
		Workflow:    optimizer.New().OptimizeWorkflow(detection),
	}
}

func TestSaveAndGetRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := sampleRun("run_1", time.Now())
	require.NoError(t, s.SaveRun(ctx, run))

	got, err := s.GetRun(ctx, "run_1")
	require.NoError(t, err)

	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.Source, got.Source)
	assert.Equal(t, "autogen", got.Detection.Framework)
	require.Len(t, got.Detection.Components, 1)
	assert.Equal(t, "classifier", got.Detection.Components[0].Name)
	assert.InDelta(t, run.Workflow.TotalSavings, got.Workflow.TotalSavings, 1e-9)
}

func TestSaveRun_Replace(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := sampleRun("run_1", time.Now())
	require.NoError(t, s.SaveRun(ctx, run))

	run.Source = "local:elsewhere"
	require.NoError(t, s.SaveRun(ctx, run))

	got, err := s.GetRun(ctx, "run_1")
	require.NoError(t, err)
	assert.Equal(t, "local:elsewhere", got.Source)

	list, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGetRun_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetRun(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListRuns_Ordering(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveRun(ctx, sampleRun("run_old", base)))
	require.NoError(t, s.SaveRun(ctx, sampleRun("run_new", base.Add(time.Hour))))

	list, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "run_new", list[0].ID)
	assert.Equal(t, "run_old", list[1].ID)
	assert.Equal(t, "autogen", list[0].Framework)
	assert.Equal(t, "high", list[0].Confidence)
	assert.True(t, list[0].CompletedAt.Equal(base.Add(time.Hour)))
}

func TestDeleteRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRun(ctx, sampleRun("run_1", time.Now())))
	require.NoError(t, s.DeleteRun(ctx, "run_1"))

	_, err := s.GetRun(ctx, "run_1")
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, s.DeleteRun(ctx, "run_1"), ErrNotFound)
}
