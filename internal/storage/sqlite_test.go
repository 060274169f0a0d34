package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/lexcheck/internal/ir"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "lexcheck.db"))
	require.NoError(t, err)
	require.NoError(t, db.CreateSchema())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleRun(id string, at time.Time, flaws ...ir.Flaw) *ir.Run {
	counts := map[ir.Severity]int{}
	for _, s := range ir.Severities() {
		counts[s] = 0
	}
	for _, f := range flaws {
		counts[f.Severity]++
	}
	if flaws == nil {
		flaws = []ir.Flaw{}
	}
	return &ir.Run{
		ID:           id,
		StartedAt:    at,
		Source:       id + ".txt",
		DocumentType: ir.DocNDA,
		Version:      ir.Version,
		Report: ir.Report{
			IsValid:          len(flaws) == 0,
			Confidence:       0.75,
			TotalFlaws:       len(flaws),
			CountsBySeverity: counts,
			Flaws:            flaws,
		},
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	db := openTestDB(t)
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	run := sampleRun("r1", t0,
		ir.Flaw{FlawType: "MISSING_GOVERNING_LAW", Severity: ir.SeverityCritical, Location: "Document-wide"},
		ir.Flaw{FlawType: "WEAK_OBLIGATIONS", Severity: ir.SeverityMedium, Location: "Line ~2", Evidence: "may"},
	)
	require.NoError(t, db.SaveRun(run))

	got, err := db.LoadRun("r1")
	require.NoError(t, err)
	assert.Equal(t, run.Report.Flaws, got.Report.Flaws)
	assert.Equal(t, ir.DocNDA, got.DocumentType)
	assert.False(t, got.Report.IsCompliant())

	ok, err := db.HasRun("r1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = db.HasRun("nope")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = db.LoadRun("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRun_ReplacesFlaws(t *testing.T) {
	db := openTestDB(t)
	t0 := time.Now().UTC()
	require.NoError(t, db.SaveRun(sampleRun("r1", t0,
		ir.Flaw{FlawType: "A", Severity: ir.SeverityLow},
		ir.Flaw{FlawType: "B", Severity: ir.SeverityLow},
	)))
	require.NoError(t, db.SaveRun(sampleRun("r1", t0, ir.Flaw{FlawType: "C", Severity: ir.SeverityHigh})))

	fs, err := db.ListFlaws("r1", ir.SeverityLow)
	require.NoError(t, err)
	require.Len(t, fs, 1)
	assert.Equal(t, "C", fs[0].FlawType)
}

func TestListRunsAndLatest(t *testing.T) {
	db := openTestDB(t)
	_, err := db.LoadLatestRun()
	assert.ErrorIs(t, err, ErrNotFound)

	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.SaveRun(sampleRun("old", t0)))
	require.NoError(t, db.SaveRun(sampleRun("new", t0.Add(time.Hour),
		ir.Flaw{FlawType: "X", Severity: ir.SeverityHigh})))

	rows, err := db.ListRuns(10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "new", rows[0].ID)
	assert.False(t, rows[0].Compliant)
	assert.Equal(t, 1, rows[0].Flaws)
	assert.Equal(t, "old", rows[1].ID)
	assert.True(t, rows[1].Compliant)
	assert.True(t, rows[0].StartedAt.Equal(t0.Add(time.Hour)))

	latest, err := db.LoadLatestRun()
	require.NoError(t, err)
	assert.Equal(t, "new", latest.ID)

	rows, err = db.ListRuns(1, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "old", rows[0].ID)
}

func TestListFlaws_MinSeverity(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.SaveRun(sampleRun("r1", time.Now(),
		ir.Flaw{FlawType: "C", Severity: ir.SeverityCritical},
		ir.Flaw{FlawType: "H", Severity: ir.SeverityHigh},
		ir.Flaw{FlawType: "M", Severity: ir.SeverityMedium},
		ir.Flaw{FlawType: "L", Severity: ir.SeverityLow},
	)))

	tests := []struct {
		min  ir.Severity
		want []string
	}{
		{ir.SeverityLow, []string{"C", "H", "M", "L"}},
		{ir.SeverityMedium, []string{"C", "H", "M"}},
		{ir.SeverityHigh, []string{"C", "H"}},
		{ir.SeverityCritical, []string{"C"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.min), func(t *testing.T) {
			fs, err := db.ListFlaws("r1", tt.min)
			require.NoError(t, err)
			var got []string
			for _, f := range fs {
				got = append(got, f.FlawType)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWaivers(t *testing.T) {
	db := openTestDB(t)
	id, err := db.CreateWaiver(" weak_obligations ", "NDA", "", "accepted drafting style", "alice", time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = db.CreateWaiver("INVALID_DURATION", "", "forever", "legacy", "alice", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = db.CreateWaiver("  ", "", "", "x", "alice", time.Now())
	assert.Error(t, err)

	all, err := db.ListWaivers(false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := db.ListWaivers(true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "WEAK_OBLIGATIONS", active[0].FlawType)
	assert.Equal(t, "NDA", active[0].DocumentType)
	assert.Empty(t, active[0].PatternSub)

	require.NoError(t, db.RevokeWaiver(id))
	assert.ErrorIs(t, db.RevokeWaiver(id), ErrNotFound)

	active, err = db.ListWaivers(true)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestUsersAndSessions(t *testing.T) {
	db := openTestDB(t)
	uid, err := db.CreateUser("alice", "hash", RoleAdmin)
	require.NoError(t, err)
	_, err = db.CreateUser("bob", "hash", "root")
	assert.Error(t, err)

	u, ph, err := db.GetUserByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, "hash", ph)
	assert.True(t, u.IsAdmin())

	_, _, err = db.GetUserByUsername("carol")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.CreateSession(uid, "tok", time.Now().Add(time.Hour)))
	su, err := db.GetSession("tok")
	require.NoError(t, err)
	assert.Equal(t, "alice", su.Username)

	require.NoError(t, db.DeleteSession("tok"))
	_, err = db.GetSession("tok")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.CreateSession(uid, "stale", time.Now().Add(-time.Minute)))
	_, err = db.GetSession("stale")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, db.LogAudit("alice", "login", "user:alice", nil))
}
