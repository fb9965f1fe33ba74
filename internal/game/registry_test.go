package game

import (
	"strings"
	"testing"
)

func TestNewRegistry(t *testing.T) {
	g, _ := newTestRegistry()
	if g.rooms == nil {
		t.Fatal("rooms map should be initialized")
	}
}

func TestCreateRoom(t *testing.T) {
	g, _ := newTestRegistry()

	code := g.CreateRoom("host-conn")
	if len(code) != 4 {
		t.Fatalf("expected 4-character code, got %q", code)
	}
	if code != strings.ToUpper(code) {
		t.Fatalf("expected uppercase code, got %q", code)
	}

	r, err := g.Get(code)
	if err != nil {
		t.Fatalf("should be able to retrieve created room: %v", err)
	}
	if r.HostConnID != "host-conn" {
		t.Fatalf("expected host host-conn, got %s", r.HostConnID)
	}
	if r.Phase != PhaseLobby {
		t.Fatalf("expected phase %s, got %s", PhaseLobby, r.Phase)
	}
}

func TestGetIsCaseInsensitive(t *testing.T) {
	g, _ := newTestRegistry()
	code := g.CreateRoom("host")
	if _, err := g.Get(strings.ToLower(code)); err != nil {
		t.Fatalf("lowercase lookup should work: %v", err)
	}
	if _, err := g.Get("ZZZZZZ"); err != ErrRoomNotFound {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestJoinRoom(t *testing.T) {
	g, rec := newTestRegistry()
	code := g.CreateRoom("host")

	res, err := g.JoinRoom(code, "Alice", "c1")
	if err != nil {
		t.Fatalf("should be able to join: %v", err)
	}
	if !res.IsLeader {
		t.Fatal("first player should be leader")
	}

	res2, err := g.JoinRoom(code, "Bob", "c2")
	if err != nil {
		t.Fatalf("should be able to join: %v", err)
	}
	if res2.IsLeader {
		t.Fatal("second player should not be leader")
	}

	r, _ := g.Get(code)
	if len(r.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(r.Players))
	}
	if rec.countTo(code, "playerJoined") != 2 {
		t.Fatalf("expected 2 roster broadcasts, got %d", rec.countTo(code, "playerJoined"))
	}
}

func TestJoinUnknownRoom(t *testing.T) {
	g, _ := newTestRegistry()
	if _, err := g.JoinRoom("NOPE", "Alice", "c1"); err != ErrRoomNotFound {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestStartGameAuthorization(t *testing.T) {
	g, _ := newTestRegistry()
	r := seatedRoom(t, g, 3)

	if err := g.StartGame("conn-2", false, ""); err != ErrNotHost {
		t.Fatalf("non-leader player should not start the game, got %v", err)
	}
	// conn-1 is the leader, host is the host device; both may start
	if err := g.StartGame("host", false, ""); err != nil {
		t.Fatalf("host should start the game: %v", err)
	}
	waitPhase(t, r, PhaseDrafting)
}

func TestStartGameRequiresThreePlayers(t *testing.T) {
	g, _ := newTestRegistry()
	r := seatedRoom(t, g, 2)

	if err := g.StartGame("host", false, ""); err != ErrNotEnoughPlayers {
		t.Fatalf("expected ErrNotEnoughPlayers, got %v", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Phase != PhaseLobby {
		t.Fatalf("room should stay in lobby, got %s", r.Phase)
	}
}

func TestFillBots(t *testing.T) {
	g, _ := newTestRegistry()
	code := g.CreateRoom("host")
	if _, err := g.JoinRoom(code, "Alice", "c1"); err != nil {
		t.Fatal(err)
	}

	if err := g.FillBots("c1"); err != nil {
		t.Fatalf("leader should be able to fill bots: %v", err)
	}
	r, _ := g.Get(code)
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Players) != 3 {
		t.Fatalf("expected 3 seats after fill, got %d", len(r.Players))
	}
	bots := 0
	for _, p := range r.Players {
		if p.IsBot {
			bots++
		}
	}
	if bots != 2 {
		t.Fatalf("expected 2 bot seats, got %d", bots)
	}
}

func TestDisconnectRetainsSeat(t *testing.T) {
	g, _ := newTestRegistry()
	r := seatedRoom(t, g, 3)

	g.Disconnect("conn-2")

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Players) != 3 {
		t.Fatalf("disconnect must not remove the player, got %d seats", len(r.Players))
	}
	p := r.playerByName("B-player")
	if p == nil || p.Connected {
		t.Fatal("player should be marked disconnected but retained")
	}
}

func TestTutorialBackfillsBots(t *testing.T) {
	g, _ := newTestRegistry()
	code := g.CreateRoom("host")
	if _, err := g.JoinRoom(code, "Trainee", "c1"); err != nil {
		t.Fatal(err)
	}

	if err := g.StartGame("c1", true, RoleWitness); err != nil {
		t.Fatalf("tutorial start should succeed with one human: %v", err)
	}
	r, _ := g.Get(code)

	r.mu.Lock()
	if len(r.Players) != 4 {
		r.mu.Unlock()
		t.Fatalf("expected 4 seats in tutorial, got %d", len(r.Players))
	}
	if r.TotalRounds != 1 || !r.IsTutorial {
		r.mu.Unlock()
		t.Fatal("tutorial should be a single round")
	}
	trainee := r.player("c1")
	if trainee.Role != RoleWitness {
		r.mu.Unlock()
		t.Fatalf("trainee requested WITNESS, got %s", trainee.Role)
	}
	r.mu.Unlock()
}

func TestRestartFromEndResetsScores(t *testing.T) {
	g, _ := newTestRegistry()
	r := seatedRoom(t, g, 3)

	r.mu.Lock()
	r.Phase = PhaseEnd
	for _, p := range r.Players {
		p.Score = 4000
	}
	r.mu.Unlock()

	if err := g.StartGame("host", false, ""); err != nil {
		t.Fatalf("restart from END should work: %v", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.Players {
		if p.Score != 0 {
			t.Fatalf("scores should reset on fresh start, %s has %d", p.Name, p.Score)
		}
	}
	if r.CurrentRound != 1 {
		t.Fatalf("round counter should reset, got %d", r.CurrentRound)
	}
}
