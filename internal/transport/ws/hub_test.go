package ws

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshatyadav31/Lumora-Ai/internal/logger"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(logger.Discard())
	go hub.Run()
	defer hub.Stop()

	a := hub.NewConnection(nil)
	b := hub.NewConnection(nil)
	hub.Register(a)
	hub.Register(b)
	assert.Equal(t, 2, hub.GetConnectionCount())

	require.NoError(t, hub.BroadcastJSON(map[string]string{"type": "state"}))
	for _, conn := range []*Connection{a, b} {
		select {
		case data := <-conn.Send:
			assert.JSONEq(t, `{"type":"state"}`, string(data))
		case <-time.After(time.Second):
			t.Fatal("no frame delivered")
		}
	}

	hub.Unregister(a)
	_, open := <-a.Send
	assert.False(t, open)
	assert.Equal(t, 1, hub.GetConnectionCount())
}

func TestSendToUnregisteredConnection(t *testing.T) {
	hub := NewHub(logger.Discard())
	go hub.Run()
	defer hub.Stop()

	stranger := hub.NewConnection(nil)
	assert.ErrorIs(t, hub.SendToConnection(stranger, []byte("x")), ErrConnectionClosed)

	conn := hub.NewConnection(nil)
	hub.Register(conn)
	require.NoError(t, hub.SendToConnection(conn, []byte("x")))

	hub.Unregister(conn)
	assert.ErrorIs(t, hub.SendToConnection(conn, []byte("y")), ErrConnectionClosed)
}

func TestSendToConnectionWhileUnregistering(t *testing.T) {
	hub := NewHub(logger.Discard())
	go hub.Run()
	defer hub.Stop()

	conn := hub.NewConnection(nil)
	hub.Register(conn)

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for range conn.Send {
		}
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			err := hub.SendToConnection(conn, []byte("x"))
			if errors.Is(err, ErrConnectionClosed) {
				return
			}
		}
	}()

	hub.Unregister(conn)
	wg.Wait()

	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}
	assert.ErrorIs(t, hub.SendToConnection(conn, []byte("z")), ErrConnectionClosed)
}

func TestRegisterAfterStop(t *testing.T) {
	hub := NewHub(logger.Discard())
	go hub.Run()
	hub.Stop()

	hub.Register(hub.NewConnection(nil))
	assert.Zero(t, hub.GetConnectionCount())
}
