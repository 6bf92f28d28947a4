package realtime_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickcollab/quickcollab/internal/realtime"
)

type payload struct {
	N int `json:"n"`
}

func TestDispatcher_DeliversToAllMembers(t *testing.T) {
	t.Parallel()

	reg := realtime.NewRegistry()
	d := realtime.NewDispatcher(reg, nil)
	room := realtime.BoardRoom(uuid.New())

	a := realtime.NewSession(reg, 4)
	b := realtime.NewSession(reg, 4)
	outsider := realtime.NewSession(reg, 4)
	defer a.Close()
	defer b.Close()
	defer outsider.Close()

	require.NoError(t, a.Join(room))
	require.NoError(t, b.Join(room))
	require.NoError(t, outsider.Join(realtime.BoardRoom(uuid.New())))

	d.Broadcast(context.Background(), room, "taskCreated", payload{N: 1})

	for _, s := range []*realtime.Session{a, b} {
		envs := drain(s)
		require.Len(t, envs, 1)
		assert.Equal(t, "taskCreated", envs[0].Event)
		assert.JSONEq(t, `{"n":1}`, string(envs[0].Data))
	}
	assert.Empty(t, drain(outsider), "members of other rooms receive nothing")
}

func TestDispatcher_OriginatorReceivesToo(t *testing.T) {
	t.Parallel()

	// Duplicate tabs of one client are distinct sessions in the same room;
	// both must converge on the same event stream.
	reg := realtime.NewRegistry()
	d := realtime.NewDispatcher(reg, nil)
	room := realtime.BoardRoom(uuid.New())

	origin := realtime.NewSession(reg, 4)
	defer origin.Close()
	require.NoError(t, origin.Join(room))

	d.Broadcast(context.Background(), room, "taskUpdated", payload{N: 7})

	envs := drain(origin)
	require.Len(t, envs, 1)
	assert.Equal(t, "taskUpdated", envs[0].Event)
}

func TestDispatcher_DisconnectedMemberIsSkipped(t *testing.T) {
	t.Parallel()

	reg := realtime.NewRegistry()
	d := realtime.NewDispatcher(reg, nil)
	room := realtime.BoardRoom(uuid.New())

	alive := realtime.NewSession(reg, 4)
	dead := realtime.NewSession(reg, 4)
	defer alive.Close()

	require.NoError(t, alive.Join(room))
	require.NoError(t, dead.Join(room))
	dead.Close()

	assert.NotPanics(t, func() {
		d.Broadcast(context.Background(), room, "taskDeleted", payload{N: 2})
	})

	assert.Len(t, drain(alive), 1, "failure to reach one member must not affect the rest")
}

func TestDispatcher_EmptyRoom(t *testing.T) {
	t.Parallel()

	reg := realtime.NewRegistry()
	d := realtime.NewDispatcher(reg, nil)

	assert.NotPanics(t, func() {
		d.Broadcast(context.Background(), realtime.TaskRoom(uuid.New()), "commentAdded", payload{})
	})
}

func TestDispatcher_Dispatch_PreservesOrder(t *testing.T) {
	t.Parallel()

	reg := realtime.NewRegistry()
	d := realtime.NewDispatcher(reg, nil)
	room := realtime.UserRoom(uuid.New())

	s := realtime.NewSession(reg, 8)
	defer s.Close()
	require.NoError(t, s.Join(room))

	d.Dispatch(context.Background(), []realtime.Broadcast{
		{Room: room, Event: "taskCreated", Payload: payload{N: 1}},
		{Room: room, Event: "taskAssigned", Payload: payload{N: 2}},
	})

	envs := drain(s)
	require.Len(t, envs, 2)
	assert.Equal(t, "taskCreated", envs[0].Event)
	assert.Equal(t, "taskAssigned", envs[1].Event)
}

func TestDispatcher_Mirror(t *testing.T) {
	t.Parallel()

	t.Run("broadcasts are republished", func(t *testing.T) {
		t.Parallel()

		reg := realtime.NewRegistry()
		mirror := &recordingMirror{}
		d := realtime.NewDispatcher(reg, mirror)
		room := realtime.BoardRoom(uuid.New())

		d.Broadcast(context.Background(), room, "taskCreated", payload{N: 3})

		require.Len(t, mirror.channels, 1)
		assert.Equal(t, room, mirror.channels[0])
		assert.JSONEq(t, `{"event":"taskCreated","data":{"n":3}}`, string(mirror.payloads[0]))
	})

	t.Run("mirror failure does not block local delivery", func(t *testing.T) {
		t.Parallel()

		reg := realtime.NewRegistry()
		mirror := &recordingMirror{err: errors.New("broker down")}
		d := realtime.NewDispatcher(reg, mirror)
		room := realtime.BoardRoom(uuid.New())

		s := realtime.NewSession(reg, 4)
		defer s.Close()
		require.NoError(t, s.Join(room))

		assert.NotPanics(t, func() {
			d.Broadcast(context.Background(), room, "taskCreated", payload{N: 4})
		})
		assert.Len(t, drain(s), 1)
	})
}

func TestDispatcher_ConcurrentBroadcastAndDisconnect(t *testing.T) {
	t.Parallel()

	reg := realtime.NewRegistry()
	d := realtime.NewDispatcher(reg, nil)
	room := realtime.BoardRoom(uuid.New())

	var wg sync.WaitGroup
	for range 8 {
		s := realtime.NewSession(reg, 1)
		require.NoError(t, s.Join(room))

		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Close()
		}()
		go func() {
			defer wg.Done()
			d.Broadcast(context.Background(), room, "taskUpdated", payload{N: 5})
		}()
	}
	wg.Wait()
}
