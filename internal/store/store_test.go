package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	s, err := Open(t.TempDir(), logger)
	require.NoError(t, err)
	return s
}

func TestOpenCorruptFilesFallBackEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "leaderboard.json"), []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profiles.json"), []byte("[]"), 0o644))

	s, err := Open(dir, logrus.New())
	require.NoError(t, err)
	assert.Empty(t, s.Leaderboard("", 0))

	// Profiles are still usable after the fallback.
	p := s.GetOrCreateProfile("Alice")
	assert.Equal(t, InitialRating, p.Rating)
}

func TestLeaderboardCapAndOrder(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < MaxEntries+20; i++ {
		s.AddEntry("p", i, "battle")
	}

	all := s.Leaderboard("", MaxEntries+20)
	assert.Len(t, all, MaxEntries)
	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, all[i-1].Score, all[i].Score)
	}
	// Lowest scores were the ones truncated.
	assert.Equal(t, MaxEntries+19, all[0].Score)
	assert.Equal(t, 20, all[len(all)-1].Score)
}

func TestLeaderboardModeFilterAndDefaultLimit(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 30; i++ {
		mode := "battle"
		if i%2 == 0 {
			mode = "survival"
		}
		s.AddEntry("p", i, mode)
	}

	battle := s.Leaderboard("battle", 50)
	for _, e := range battle {
		assert.Equal(t, "battle", e.Mode)
	}
	assert.Len(t, battle, 15)

	// No explicit limit falls back to the default.
	assert.Len(t, s.Leaderboard("", 0), DefaultLimit)
}

func TestProfileLifecycle(t *testing.T) {
	s := newTestStore(t)

	p := s.GetOrCreateProfile("Bob")
	assert.Equal(t, "Bob", p.Name)
	assert.Equal(t, InitialRating, p.Rating)
	assert.Zero(t, p.GamesPlayed)

	s.RecordResult("Bob", 140, true)
	s.RecordResult("Bob", 90, false)
	s.SetRating("Bob", 1016)

	p = s.GetOrCreateProfile("Bob")
	assert.Equal(t, 2, p.GamesPlayed)
	assert.Equal(t, 1, p.Wins)
	assert.Equal(t, 1, p.Losses)
	assert.Equal(t, 140, p.BestScore)
	assert.Equal(t, 230, p.TotalScore)
	assert.Equal(t, 1016, p.Rating)
}

func TestProfilesPersistAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	logger := logrus.New()

	s, err := Open(dir, logger)
	require.NoError(t, err)
	s.RecordResult("Carol", 55, true)
	s.SaveProfiles()

	reopened, err := Open(dir, logger)
	require.NoError(t, err)
	p := reopened.GetOrCreateProfile("Carol")
	assert.Equal(t, 1, p.Wins)
	assert.Equal(t, 55, p.BestScore)
}

func TestLeaderboardFileIsHumanReadable(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, logrus.New())
	require.NoError(t, err)

	s.AddEntry("Dana", 77, "survival")

	b, err := os.ReadFile(filepath.Join(dir, "leaderboard.json"))
	require.NoError(t, err)

	var entries []Entry
	require.NoError(t, json.Unmarshal(b, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Dana", entries[0].Name)
	// Indented output, not a single line.
	assert.Contains(t, string(b), "\n")
}
