package game

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexfall/hexfall/internal/protocol"
)

func TestAddPlayerCapacity(t *testing.T) {
	host := uuid.New()
	r := NewRoom("AAAAA", host, ModeBattle, 2)

	assert.True(t, r.AddPlayer(host, "Alice"))
	assert.True(t, r.AddPlayer(uuid.New(), "Bob"))
	assert.False(t, r.AddPlayer(uuid.New(), "Carol"))
	assert.LessOrEqual(t, len(r.Players), r.MaxPlayers)
}

func TestAddPlayerRejectsNonWaiting(t *testing.T) {
	r := NewRoom("AAAAA", uuid.New(), ModeSurvival, 4)
	require.True(t, r.AddPlayer(uuid.New(), "Alice"))

	r.Phase = PhaseCountdown
	assert.False(t, r.AddPlayer(uuid.New(), "Bob"))
}

func TestHostPromotionFollowsJoinOrder(t *testing.T) {
	host := uuid.New()
	second := uuid.New()
	third := uuid.New()
	r := NewRoom("AAAAA", host, ModeSurvival, 4)
	r.AddPlayer(host, "Alice")
	r.AddPlayer(second, "Bob")
	r.AddPlayer(third, "Carol")

	r.RemovePlayer(host)
	assert.Equal(t, second, r.Host)

	// Removing a non-host player does not touch the host.
	r.RemovePlayer(third)
	assert.Equal(t, second, r.Host)

	r.RemovePlayer(second)
	assert.Equal(t, uuid.Nil, r.Host)
}

func TestAllReady(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	r := NewRoom("AAAAA", a, ModeBattle, 2)
	r.AddPlayer(a, "Alice")
	assert.False(t, r.AllReady(), "a single ready player is not enough")

	r.Player(a).Ready = true
	assert.False(t, r.AllReady())

	r.AddPlayer(b, "Bob")
	assert.False(t, r.AllReady())

	r.Player(b).Ready = true
	assert.True(t, r.AllReady())
}

func TestApplySettingsClampsLives(t *testing.T) {
	r := NewRoom("AAAAA", uuid.New(), ModeBattle, 2)

	lives := 9
	r.ApplySettings(&protocol.SettingsPayload{LivesCount: &lives})
	assert.Equal(t, 5, r.Settings.LivesCount)

	lives = -3
	r.ApplySettings(&protocol.SettingsPayload{LivesCount: &lives})
	assert.Equal(t, 1, r.Settings.LivesCount)

	// Zero means "not provided".
	lives = 0
	mult := 0.0
	r.ApplySettings(&protocol.SettingsPayload{LivesCount: &lives, PenaltyMultiplier: &mult})
	assert.Equal(t, 1, r.Settings.LivesCount)
	assert.Equal(t, 1.0, r.Settings.PenaltyMultiplier)

	off := false
	r.ApplySettings(&protocol.SettingsPayload{PenaltyEnabled: &off})
	assert.False(t, r.Settings.PenaltyEnabled)
}

func TestGenerateCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code := GenerateCode(func(c string) bool { return seen[c] })
		require.Len(t, code, 5)
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, ch), "unexpected character %q", ch)
		}
		assert.False(t, seen[code], "code %s collided", code)
		seen[code] = true
	}
}

func TestSnapshotNamesHost(t *testing.T) {
	host := uuid.New()
	r := NewRoom("HXFAL", host, ModeBattle, 2)
	r.AddPlayer(host, "Alice")
	r.AddPlayer(uuid.New(), "Bob")

	snap := r.Snapshot()
	assert.Equal(t, "HXFAL", snap.ID)
	assert.Equal(t, "Alice", snap.Host)
	assert.Equal(t, 2, snap.PlayerCount)
	require.Len(t, snap.Players, 2)
	assert.Equal(t, "Alice", snap.Players[0].Name)
	assert.Equal(t, "Bob", snap.Players[1].Name)
}
