package persistence

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/timberline/internal/config"
	"github.com/talgya/timberline/internal/entropy"
	"github.com/talgya/timberline/internal/game"
	"github.com/talgya/timberline/internal/sim"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndLoadRun(t *testing.T) {
	db := openTestDB(t)

	cfg, err := config.Default()
	require.NoError(t, err)
	records := sim.Run(cfg.Scenario)

	id := uuid.NewString()
	require.NoError(t, db.SaveRun(id, cfg.Scenario, records))

	meta, loaded, err := db.LoadRun(id)
	require.NoError(t, err)
	assert.Equal(t, id, meta.ID)
	assert.Equal(t, len(records), meta.Periods)
	assert.InDelta(t, records[len(records)-1].CumulativeProfit, meta.CumulativeProfit, 1e-6)
	assert.Equal(t, records, loaded)
}

func TestLoadRunNotFound(t *testing.T) {
	db := openTestDB(t)
	_, _, err := db.LoadRun(uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRunsMostRecentFirst(t *testing.T) {
	db := openTestDB(t)

	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Scenario.Periods = 2
	records := sim.Run(cfg.Scenario)

	for i := 0; i < 3; i++ {
		require.NoError(t, db.SaveRun(uuid.NewString(), cfg.Scenario, records))
	}

	runs, err := db.ListRuns(10)
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	runs, err = db.ListRuns(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestSessionRoundTrip(t *testing.T) {
	db := openTestDB(t)

	cfg, err := config.Default()
	require.NoError(t, err)
	g := game.New(cfg.Game, entropy.NewSeeded(9))
	g.Harvest(200)
	require.NoError(t, g.AdvanceTurn())
	saved := g.State()

	id := uuid.NewString()
	require.NoError(t, db.SaveSession(id, saved))

	loaded, err := db.LoadSession(id)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)

	// Upsert replaces the snapshot.
	require.NoError(t, g.AdvanceTurn())
	require.NoError(t, db.SaveSession(id, g.State()))
	loaded, err = db.LoadSession(id)
	require.NoError(t, err)
	assert.Equal(t, g.State().Turn, loaded.Turn)
}

func TestSessionNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.LoadSession("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMeta(t *testing.T) {
	db := openTestDB(t)

	_, err := db.GetMeta("active_session")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.SetMeta("active_session", "abc"))
	v, err := db.GetMeta("active_session")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	require.NoError(t, db.SetMeta("active_session", "def"))
	v, err = db.GetMeta("active_session")
	require.NoError(t, err)
	assert.Equal(t, "def", v)
}
