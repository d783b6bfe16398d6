package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jorginhocode/discord-mudae-helper/internal/domain"
)

type allowAll struct{}

func (allowAll) IsAllowed(int64) bool { return true }

type allowNone struct{}

func (allowNone) IsAllowed(int64) bool { return false }

func tempLedger(t *testing.T, gate Gate) (*Ledger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cooldowns.json")
	return OpenLedger(path, gate, zap.NewNop()), path
}

func TestRecordSuccess_StampsAndPersists(t *testing.T) {
	l, path := tempLedger(t, allowAll{})
	now := time.Date(2025, time.June, 1, 12, 0, 2, 0, time.UTC)

	stamp := l.RecordSuccess(7, domain.KindDaily, "Poty (potyhx)", now)
	assert.Equal(t, now, stamp)

	rec, ok := l.Get(7)
	require.True(t, ok)
	assert.Equal(t, "Poty (potyhx)", rec.UserAccount)
	require.NotNil(t, rec.LastDaily)
	assert.Equal(t, now, *rec.LastDaily)
	assert.Nil(t, rec.LastDK)
	assert.Nil(t, rec.LastVote)

	// The file must exist after a mutation.
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestRecordSuccess_DisallowedUserIsNoOp(t *testing.T) {
	l, path := tempLedger(t, allowNone{})
	stamp := l.RecordSuccess(7, domain.KindDaily, "x", time.Now())

	assert.True(t, stamp.IsZero())
	_, ok := l.Get(7)
	assert.False(t, ok)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no file should be written")
}

func TestLedger_RoundTrip(t *testing.T) {
	gate := allowAll{}
	l, path := tempLedger(t, gate)
	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	l.RecordSuccess(7, domain.KindDaily, "a", now)
	l.RecordSuccess(7, domain.KindVote, "a", now.Add(time.Minute))
	l.RecordSuccess(9, domain.KindDK, "b", now)

	reloaded := OpenLedger(path, gate, zap.NewNop())
	check := now.Add(2 * time.Hour)
	for _, id := range []int64{7, 9} {
		orig, ok := l.Get(id)
		require.True(t, ok)
		got, ok := reloaded.Get(id)
		require.True(t, ok)
		for _, k := range domain.Kinds {
			wantLabel, wantDur := domain.Remaining(orig.Last(k), k, check)
			gotLabel, gotDur := domain.Remaining(got.Last(k), k, check)
			assert.Equal(t, wantLabel, gotLabel)
			assert.Equal(t, wantDur, gotDur)
		}
	}
	assert.Equal(t, []int64{7, 9}, reloaded.UserIDs())
}

func TestLedger_NaiveTimestampReadAsUTC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cooldowns.json")
	raw := `{"7": {"user_account": "a", "last_daily": "2025-06-01T12:00:00", "last_dk": null, "last_vote": null}}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	l := OpenLedger(path, allowAll{}, zap.NewNop())
	rec, ok := l.Get(7)
	require.True(t, ok)
	require.NotNil(t, rec.LastDaily)
	assert.Equal(t, time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC), *rec.LastDaily)
}

func TestLedger_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cooldowns.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))

	l := OpenLedger(path, allowAll{}, zap.NewNop())
	assert.Empty(t, l.UserIDs())
}

func TestEnsure_CreatesOnceAndReportsExistence(t *testing.T) {
	l, _ := tempLedger(t, allowAll{})

	existed := l.Ensure(7, "a")
	assert.False(t, existed)
	existed = l.Ensure(7, "a")
	assert.True(t, existed)

	// Disallowed users never get a record.
	l2, _ := tempLedger(t, allowNone{})
	l2.Ensure(8, "b")
	_, ok := l2.Get(8)
	assert.False(t, ok)
}

func TestPrune_RemovesRecord(t *testing.T) {
	l, path := tempLedger(t, allowAll{})
	l.RecordSuccess(7, domain.KindDaily, "a", time.Now().UTC())
	l.Prune(7)

	_, ok := l.Get(7)
	assert.False(t, ok)

	reloaded := OpenLedger(path, allowAll{}, zap.NewNop())
	_, ok = reloaded.Get(7)
	assert.False(t, ok)
}
