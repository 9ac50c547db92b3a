package ws

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/szabala94/KalamburyPro-master/internal"
)

type fakeConn struct {
	mu     sync.Mutex
	json   []internal.ChatMessage
	raw    [][]byte
	failed bool
}

func (f *fakeConn) WriteJSON(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed {
		return errors.New("broken pipe")
	}
	f.json = append(f.json, v.(internal.ChatMessage))
	return nil
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed {
		return errors.New("broken pipe")
	}
	f.raw = append(f.raw, data)
	return nil
}

func (f *fakeConn) Close() error { return nil }

func (f *fakeConn) jsonCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.json)
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	a, b := &fakeConn{}, &fakeConn{}
	hub.Register("a", a)
	hub.Register("b", b)

	msg := internal.ChatMessage{Type: internal.MsgMessage, Content: "hello"}
	hub.Broadcast(msg)

	assert.Equal(t, 1, a.jsonCount())
	assert.Equal(t, 1, b.jsonCount())
	assert.Equal(t, msg, a.json[0])
}

func TestHubBroadcastExcept(t *testing.T) {
	hub := NewHub()
	a, b := &fakeConn{}, &fakeConn{}
	hub.Register("a", a)
	hub.Register("b", b)

	hub.BroadcastExcept("a", internal.ChatMessage{Type: internal.MsgMessage})

	assert.Zero(t, a.jsonCount())
	assert.Equal(t, 1, b.jsonCount())
}

func TestHubSendTo(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{}
	hub.Register("a", a)

	hub.SendTo("a", internal.ChatMessage{Type: internal.MsgWordToGuess, Content: "house"})
	assert.Equal(t, 1, a.jsonCount())

	// A departed peer is skipped, never an error.
	hub.SendTo("gone", internal.ChatMessage{Type: internal.MsgWordToGuess})
}

func TestHubFailedPeerDoesNotAbortOthers(t *testing.T) {
	hub := NewHub()
	broken, healthy := &fakeConn{failed: true}, &fakeConn{}
	hub.Register("broken", broken)
	hub.Register("healthy", healthy)

	hub.Broadcast(internal.ChatMessage{Type: internal.MsgScoreboard})

	assert.Equal(t, 1, healthy.jsonCount())
}

func TestHubRawRelaySkipsSender(t *testing.T) {
	hub := NewHub()
	a, b := &fakeConn{}, &fakeConn{}
	hub.Register("a", a)
	hub.Register("b", b)

	hub.BroadcastRawExcept("a", 1, []byte("stroke-data"))

	assert.Empty(t, a.raw)
	assert.Len(t, b.raw, 1)
	assert.Equal(t, []byte("stroke-data"), b.raw[0])
}

func TestHubMembershipRacesWithBroadcast(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(2)
		id := string(rune('a' + i))
		go func() {
			defer wg.Done()
			hub.Register(id, &fakeConn{})
			hub.Unregister(id)
		}()
		go func() {
			defer wg.Done()
			hub.Broadcast(internal.ChatMessage{Type: internal.MsgMessage})
		}()
	}
	wg.Wait()
}
