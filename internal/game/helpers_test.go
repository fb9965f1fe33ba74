package game

import (
	"sync"
	"testing"
	"time"
)

// recorder captures emitted events for assertions.
type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	Target  string // room code or conn id
	ToRoom  bool
	Event   string
	Payload any
}

func (rec *recorder) ToRoom(code, event string, payload any) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.events = append(rec.events, recordedEvent{Target: code, ToRoom: true, Event: event, Payload: payload})
}

func (rec *recorder) ToConn(connID, event string, payload any) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.events = append(rec.events, recordedEvent{Target: connID, Event: event, Payload: payload})
}

func (rec *recorder) countTo(target, event string) int {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	n := 0
	for _, e := range rec.events {
		if e.Target == target && e.Event == event {
			n++
		}
	}
	return n
}

func (rec *recorder) lastTo(target, event string) (any, bool) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	for i := len(rec.events) - 1; i >= 0; i-- {
		if rec.events[i].Target == target && rec.events[i].Event == event {
			return rec.events[i].Payload, true
		}
	}
	return nil, false
}

// fastSettings keeps phase delays short enough for tests while leaving the
// drafting countdown long so completion triggers, not timeouts, drive the
// transitions under test.
func fastSettings() Settings {
	s := DefaultSettings()
	s.RoleGrace = 5 * time.Millisecond
	s.PresentationDelay = 5 * time.Millisecond
	s.DraftSeconds = 90
	s.BotSubmitMin = 10 * time.Millisecond
	s.BotSubmitMax = 30 * time.Millisecond
	s.BotVoteMin = 5 * time.Millisecond
	s.BotVoteMax = 15 * time.Millisecond
	return s
}

func newTestRegistry() (*Registry, *recorder) {
	rec := &recorder{}
	return NewRegistry(rec, DefaultScenarios(), fastSettings()), rec
}

func waitPhase(t *testing.T, r *Room, want Phase) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		got := r.Phase
		r.mu.Unlock()
		if got == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	r.mu.Lock()
	got := r.Phase
	r.mu.Unlock()
	t.Fatalf("room never reached phase %s, stuck at %s", want, got)
}

// seatedRoom creates a room with host "host" and n joined players named
// p1..pN with conn ids c1..cN.
func seatedRoom(t *testing.T, g *Registry, n int) *Room {
	t.Helper()
	code := g.CreateRoom("host")
	for i := 1; i <= n; i++ {
		name := string(rune('A'-1+i)) + "-player"
		if _, err := g.JoinRoom(code, name, connID(i)); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
	}
	r, err := g.Get(code)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	return r
}

func connID(i int) string {
	return "conn-" + string(rune('0'+i))
}
