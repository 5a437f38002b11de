package handlers

import (
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexfall/hexfall/internal/game"
	"github.com/hexfall/hexfall/internal/protocol"
	"github.com/hexfall/hexfall/internal/session"
	"github.com/hexfall/hexfall/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	st, err := store.Open(t.TempDir(), logger)
	require.NoError(t, err)

	registry := session.NewRegistry()
	coord := game.NewCoordinator(game.DefaultConfig(), registry, st, logger)
	return NewServer(logger, registry, coord, st)
}

// newClient registers a fresh session and returns its connection.
func newClient(s *Server) *session.Conn {
	conn := session.NewConn(uuid.New(), s.log)
	s.registry.Register(conn)
	return conn
}

// drain empties the connection's outbound queue.
func drain(conn *session.Conn) []any {
	var out []any
	for {
		select {
		case m := <-conn.Out:
			out = append(out, m)
		default:
			return out
		}
	}
}

func lastMsg[T any](msgs []any) (T, bool) {
	var last T
	found := false
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			last = v
			found = true
		}
	}
	return last, found
}

func TestDispatchRejectsMalformedInput(t *testing.T) {
	s := newTestServer(t)
	conn := newClient(s)

	s.dispatch(conn, []byte("{not json"))
	msgs := drain(conn)
	errMsg, ok := lastMsg[protocol.Error](msgs)
	require.True(t, ok)
	assert.Equal(t, "Invalid JSON format", errMsg.Message)

	s.dispatch(conn, []byte(`{"type":"bogus"}`))
	errMsg, ok = lastMsg[protocol.Error](drain(conn))
	require.True(t, ok)
	assert.Equal(t, "Unknown action type: bogus", errMsg.Message)

	s.dispatch(conn, []byte(`{"type":"joinRoom","data":"nope"}`))
	errMsg, ok = lastMsg[protocol.Error](drain(conn))
	require.True(t, ok)
	assert.Equal(t, "Invalid payload for joinRoom", errMsg.Message)
}

func TestDispatchSetNameReturnsProfile(t *testing.T) {
	s := newTestServer(t)
	conn := newClient(s)

	s.dispatch(conn, []byte(`{"type":"setName","data":{"name":"  Alice  "}}`))

	assert.Equal(t, "Alice", s.registry.Name(conn.ID))
	pd, ok := lastMsg[protocol.ProfileData](drain(conn))
	require.True(t, ok)
	profile, ok := pd.Profile.(store.Profile)
	require.True(t, ok)
	assert.Equal(t, "Alice", profile.Name)
	assert.Equal(t, store.InitialRating, profile.Rating)
}

func TestDispatchRoomFlow(t *testing.T) {
	s := newTestServer(t)
	host := newClient(s)
	joiner := newClient(s)

	s.dispatch(host, []byte(`{"type":"setName","data":{"name":"Alice"}}`))
	s.dispatch(joiner, []byte(`{"type":"setName","data":{"name":"Bob"}}`))
	drain(host)
	drain(joiner)

	s.dispatch(host, []byte(`{"type":"createRoom","data":{"mode":"battle"}}`))
	created, ok := lastMsg[protocol.RoomCreated](drain(host))
	require.True(t, ok)

	s.dispatch(joiner, []byte(fmt.Sprintf(`{"type":"joinRoom","data":{"roomId":%q}}`, created.RoomID)))
	joined, ok := lastMsg[protocol.RoomJoined](drain(joiner))
	require.True(t, ok)
	assert.Equal(t, created.RoomID, joined.RoomID)

	// The host heard about the join.
	pj, ok := lastMsg[protocol.PlayerJoined](drain(host))
	require.True(t, ok)
	assert.Equal(t, "Bob", pj.Name)

	// getRooms no longer lists the now-full battle room.
	s.dispatch(host, []byte(`{"type":"getRooms"}`))
	list, ok := lastMsg[protocol.RoomList](drain(host))
	require.True(t, ok)
	assert.Empty(t, list.Rooms)

	s.dispatch(host, []byte(`{"type":"leaveRoom"}`))
	pl, ok := lastMsg[protocol.PlayerLeft](drain(joiner))
	require.True(t, ok)
	assert.Equal(t, "Alice", pl.Name)
}

func TestDispatchLeaderboardAndProfileQueries(t *testing.T) {
	s := newTestServer(t)
	conn := newClient(s)
	s.store.AddEntry("Zed", 150, "battle")
	s.store.AddEntry("Yan", 90, "survival")

	s.dispatch(conn, []byte(`{"type":"getLeaderboard","data":{"mode":"battle"}}`))
	lb, ok := lastMsg[protocol.LeaderboardData](drain(conn))
	require.True(t, ok)
	entries, ok := lb.Entries.([]store.Entry)
	require.True(t, ok)
	require.Len(t, entries, 1)
	assert.Equal(t, "Zed", entries[0].Name)

	// getProfile without a name falls back to the caller's own.
	s.dispatch(conn, []byte(`{"type":"getProfile"}`))
	pd, ok := lastMsg[protocol.ProfileData](drain(conn))
	require.True(t, ok)
	profile := pd.Profile.(store.Profile)
	assert.Equal(t, session.DefaultName, profile.Name)
}

func TestDispatchQuickMatch(t *testing.T) {
	s := newTestServer(t)
	a := newClient(s)
	b := newClient(s)

	s.dispatch(a, []byte(`{"type":"quickMatch","data":{"mode":"battle"}}`))
	mm, ok := lastMsg[protocol.Matchmaking](drain(a))
	require.True(t, ok)
	assert.Equal(t, "searching", mm.Status)

	s.dispatch(b, []byte(`{"type":"quickMatch","data":{"mode":"battle"}}`))
	fa, ok := lastMsg[protocol.MatchFound](drain(a))
	require.True(t, ok)
	fb, ok := lastMsg[protocol.MatchFound](drain(b))
	require.True(t, ok)
	assert.Equal(t, fa.RoomID, fb.RoomID)
}
