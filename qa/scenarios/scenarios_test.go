package scenarios

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tariffbroker/app"
	"github.com/kilianp07/tariffbroker/config"
	"github.com/kilianp07/tariffbroker/core/journal"
	"github.com/kilianp07/tariffbroker/core/model"
	"github.com/kilianp07/tariffbroker/infra/mqtt"
)

// testConfig keeps the searches small.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Utility.Horizon = 24
	cfg.Candidates.NumTariffs = 12
	cfg.Optimizer.MaxEvaluations = 20
	return cfg
}

func TestScenario(t *testing.T) {
	files, err := filepath.Glob("*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		sc, err := Load(f)
		require.NoError(t, err, f)
		t.Run(sc.Name, func(t *testing.T) {
			rep, err := Run(context.Background(), sc, testConfig(), app.Options{})
			require.NoError(t, err)
			assert.Equal(t, sc.Timeslots, rep.Timeslots)
			assert.Len(t, rep.Steps, sc.Timeslots)
			assert.Equal(t, sc.Timeslots, rep.Publishes+rep.Revokes+rep.NoOps)
			assert.NoError(t, rep.Check(sc.Expected))
		})
	}
}

func TestRunJournalsAndPublishesEveryDecision(t *testing.T) {
	sc, err := Load("two_brokers.yaml")
	require.NoError(t, err)
	sc.Timeslots = 3

	store, err := journal.NewJSONLStore(filepath.Join(t.TempDir(), "decisions.jsonl"))
	require.NoError(t, err)
	defer func() { assert.NoError(t, store.Close()) }()
	pub := mqtt.NewMemoryPublisher()

	rep, err := Run(context.Background(), sc, testConfig(), app.Options{Journal: store, Publisher: pub})
	require.NoError(t, err)

	recs, err := store.Query(context.Background(), journal.Query{})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for i, r := range recs {
		assert.Equal(t, i, r.Timeslot)
		assert.Equal(t, "one-shot", r.Strategy)
		assert.NotEmpty(t, r.Top)
	}
	assert.Len(t, pub.Published(), 3)

	// warm-up never lets the broker sit idle
	assert.Zero(t, rep.NoOps)
	first := rep.Decisions[0]
	require.Len(t, first.Actions, 1)
	assert.Equal(t, model.Publish, first.Actions[0].Kind)
	assert.Equal(t, "tariffbroker", first.Actions[0].Tariff.Broker)
}

func TestRunCancelled(t *testing.T) {
	sc, err := Load("two_brokers.yaml")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, sc, testConfig(), app.Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReportCheck(t *testing.T) {
	one, subs := 1, 100.0
	rep := &Report{Scenario: "x", Publishes: 2, Revokes: 2, Subscribers: 50}
	assert.NoError(t, rep.Check(Expected{MinPublishes: 2}))
	assert.Error(t, rep.Check(Expected{MinPublishes: 3}))
	assert.Error(t, rep.Check(Expected{MaxPublishes: &one}))
	assert.Error(t, rep.Check(Expected{MaxRevokes: &one}))
	assert.Error(t, rep.Check(Expected{MinSubscribers: &subs}))
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load("no-file.yaml")
	assert.Error(t, err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(":"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)

	unnamed := filepath.Join(dir, "quiet_day.yaml")
	require.NoError(t, os.WriteFile(unnamed, []byte("market:\n  seed: 1\n"), 0o644))
	sc, err := Load(unnamed)
	require.NoError(t, err)
	assert.Equal(t, "quiet_day", sc.Name)
	assert.Equal(t, 24, sc.Timeslots)
}

func TestPrepareRejectsEmptyMarket(t *testing.T) {
	_, _, err := Prepare(&Scenario{Name: "empty"}, testConfig(), app.Options{})
	assert.Error(t, err)
}
