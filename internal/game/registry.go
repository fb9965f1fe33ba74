package game

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Settings carries the phase timing knobs. Zero values are replaced by
// DefaultSettings in NewRegistry.
type Settings struct {
	DraftSeconds      int
	RoleGrace         time.Duration
	PresentationDelay time.Duration
	BotSubmitMin      time.Duration
	BotSubmitMax      time.Duration
	BotVoteMin        time.Duration
	BotVoteMax        time.Duration
	StandardRounds    int

	ExportEnabled bool
	ExportFile    string
}

func DefaultSettings() Settings {
	return Settings{
		DraftSeconds:      90,
		RoleGrace:         5 * time.Second,
		PresentationDelay: 10 * time.Second,
		BotSubmitMin:      10 * time.Second,
		BotSubmitMax:      30 * time.Second,
		BotVoteMin:        5 * time.Second,
		BotVoteMax:        15 * time.Second,
		StandardRounds:    3,
	}
}

// Registry owns every active room and is the only component that mutates
// room state. It is injected into the transport handlers rather than kept
// as package-level state so tests get a fresh instance each.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	emit      Emitter
	scenarios *ScenarioStore
	settings  Settings

	stats    StatsSink
	botAI    BotAnswerer
	botModel string
}

func NewRegistry(emit Emitter, scenarios *ScenarioStore, settings Settings) *Registry {
	def := DefaultSettings()
	if settings.DraftSeconds <= 0 {
		settings.DraftSeconds = def.DraftSeconds
	}
	if settings.RoleGrace <= 0 {
		settings.RoleGrace = def.RoleGrace
	}
	if settings.PresentationDelay <= 0 {
		settings.PresentationDelay = def.PresentationDelay
	}
	if settings.BotSubmitMin <= 0 || settings.BotSubmitMax < settings.BotSubmitMin {
		settings.BotSubmitMin, settings.BotSubmitMax = def.BotSubmitMin, def.BotSubmitMax
	}
	if settings.BotVoteMin <= 0 || settings.BotVoteMax < settings.BotVoteMin {
		settings.BotVoteMin, settings.BotVoteMax = def.BotVoteMin, def.BotVoteMax
	}
	if settings.StandardRounds <= 0 {
		settings.StandardRounds = def.StandardRounds
	}
	return &Registry{
		rooms:     make(map[string]*Room),
		emit:      emit,
		scenarios: scenarios,
		settings:  settings,
	}
}

// SetStats attaches the durable player-statistics sink. Optional.
func (g *Registry) SetStats(s StatsSink) { g.stats = s }

// SetBotProvider attaches an LLM used by bot seats for generic alibis.
// Optional; bots fall back to the static pool.
func (g *Registry) SetBotProvider(p BotAnswerer, model string) {
	g.botAI = p
	g.botModel = model
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomCode(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}

// CreateRoom allocates a fresh room owned by the creating connection.
func (g *Registry) CreateRoom(hostConnID string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	code := randomCode(4)
	for g.rooms[code] != nil {
		code = randomCode(4)
	}
	g.rooms[code] = &Room{
		Code:          code,
		HostConnID:    hostConnID,
		Phase:         PhaseLobby,
		usedScenarios: make(map[int]bool),
		Answers:       make(map[string]string),
		Drafts:        make(map[string]string),
		Votes:         make(map[string]Vote),
	}
	log.Info().Str("code", code).Str("host", hostConnID).Msg("room created")
	return code
}

// Get looks up a room by its code, case-insensitively.
func (g *Registry) Get(code string) (*Room, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r := g.rooms[strings.ToUpper(code)]
	if r == nil {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// RoomInfo is the lobby-discovery view of a room.
type RoomInfo struct {
	RoomCode    string `json:"roomCode"`
	Phase       Phase  `json:"phase"`
	PlayerCount int    `json:"playerCount"`
}

func (g *Registry) Info(code string) (RoomInfo, error) {
	r, err := g.Get(code)
	if err != nil {
		return RoomInfo{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomInfo{RoomCode: r.Code, Phase: r.Phase, PlayerCount: len(r.Players)}, nil
}

// findRoomByConn returns the room where connID is the host or a seated
// player. Small room counts make the scan cheap.
func (g *Registry) findRoomByConn(connID string) *Room {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, r := range g.rooms {
		if r.HostConnID == connID {
			return r
		}
		if r.player(connID) != nil {
			return r
		}
	}
	return nil
}

// isAuthority reports whether connID may start games and advance rounds in
// r: the host device, or the leader seat when players run their own room.
func (r *Room) isAuthority(connID string) bool {
	if r.HostConnID == connID {
		return true
	}
	if p := r.player(connID); p != nil && p.IsLeader {
		return true
	}
	return false
}

type JoinResult struct {
	RoomCode    string
	PlayerID    string
	IsLeader    bool
	Reconnected bool
}

// JoinRoom seats a connection. A matching display name means reconnection:
// the seat is rebound to the new connection and the current phase is
// replayed to it. Unknown names join fresh in the lobby, or mid-round as a
// forced citizen.
func (g *Registry) JoinRoom(code, name, connID string) (JoinResult, error) {
	r, err := g.Get(code)
	if err != nil {
		return JoinResult{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if p := r.playerByName(name); p != nil {
		old := p.ConnID
		g.rebindConn(r, old, connID)
		p.Connected = true
		log.Info().Str("code", r.Code).Str("name", name).Str("conn", connID).Msg("player reconnected")
		res := JoinResult{RoomCode: r.Code, PlayerID: connID, IsLeader: p.IsLeader, Reconnected: true}
		g.emit.ToConn(connID, "joinedRoom", JoinedRoomPayload{RoomCode: r.Code, PlayerID: connID, IsLeader: p.IsLeader})
		g.emit.ToRoom(r.Code, "playerJoined", r.roster())
		g.replayPhase(r, p)
		return res, nil
	}

	midRound := r.Phase != PhaseLobby && r.Phase != PhaseEnd

	p := &Player{
		ConnID:    connID,
		Name:      name,
		Connected: true,
	}
	if !midRound {
		p.IsLeader = !r.hasHumanPlayer()
	} else {
		// latecomers sit the round out of the assignment pool
		p.Role = RoleCitizen
	}
	r.Players = append(r.Players, p)
	log.Info().Str("code", r.Code).Str("name", name).Bool("midRound", midRound).Msg("player joined")

	g.emit.ToConn(connID, "joinedRoom", JoinedRoomPayload{RoomCode: r.Code, PlayerID: connID, IsLeader: p.IsLeader})
	g.emit.ToRoom(r.Code, "playerJoined", r.roster())
	if midRound {
		g.replayPhase(r, p)
	}
	return JoinResult{RoomCode: r.Code, PlayerID: connID, IsLeader: p.IsLeader}, nil
}

// rebindConn rewires every reference to a connection id after reconnection.
// The display name is the stable key; everything keyed by connection id has
// to follow the new transport identity.
func (g *Registry) rebindConn(r *Room, old, newID string) {
	if old == newID {
		return
	}
	p := r.player(old)
	if p == nil {
		return
	}
	p.ConnID = newID
	if v, ok := r.Answers[old]; ok {
		delete(r.Answers, old)
		r.Answers[newID] = v
	}
	if v, ok := r.Drafts[old]; ok {
		delete(r.Drafts, old)
		r.Drafts[newID] = v
	}
	if v, ok := r.Votes[old]; ok {
		delete(r.Votes, old)
		r.Votes[newID] = v
	}
	for _, other := range r.Players {
		if other.LawyerClient == old {
			other.LawyerClient = newID
		}
	}
	for voter, v := range r.Votes {
		changed := false
		if v.Quality == old {
			v.Quality = newID
			changed = true
		}
		if v.Identity == old {
			v.Identity = newID
			changed = true
		}
		if changed {
			r.Votes[voter] = v
		}
	}
	if r.forcedConnID == old {
		r.forcedConnID = newID
	}
	if r.HostConnID == old {
		r.HostConnID = newID
	}
}

// replayPhase resynchronizes one connection with the in-flight round.
func (g *Registry) replayPhase(r *Room, p *Player) {
	if r.Phase == PhaseLobby || r.Phase == PhaseEnd {
		return
	}
	if r.CurrentScenario != nil && p.Role != "" {
		g.emit.ToConn(p.ConnID, "roleAssigned", rolePayload(p, r))
	}
	switch r.Phase {
	case PhaseDrafting:
		// remaining time is not tracked per-connection; the client resyncs
		// on the next broadcast tick
		g.emit.ToConn(p.ConnID, "startDrafting", StartDraftingPayload{Duration: g.settings.DraftSeconds})
	case PhasePresentation:
		g.emit.ToConn(p.ConnID, "startPresentation", nil)
	case PhaseVoting:
		g.emit.ToConn(p.ConnID, "startVoting", r.ballot())
	}
}

func (r *Room) hasHumanPlayer() bool {
	for _, p := range r.Players {
		if !p.IsBot {
			return true
		}
	}
	return false
}

// roster is the public player list broadcast on every membership change.
func (r *Room) roster() []*Player {
	out := make([]*Player, len(r.Players))
	copy(out, r.Players)
	return out
}

func (r *Room) ballot() VotingPayload {
	answers := make([]BallotAnswer, 0, len(r.Players))
	players := make([]BallotPlayer, 0, len(r.Players))
	for _, p := range r.Players {
		text := r.Answers[p.ConnID]
		if text == "" {
			text = "..."
		}
		answers = append(answers, BallotAnswer{ID: p.ConnID, Answer: text})
		players = append(players, BallotPlayer{ID: p.ConnID, Name: p.Name})
	}
	return VotingPayload{Answers: answers, Players: players}
}

var botNames = []string{"سالم", "ماجد", "نورة", "فهد", "ليلى", "خالد", "منى", "سعود"}

func (g *Registry) addBot(r *Room, n int) {
	name := fmt.Sprintf("%s (آلي)", botNames[n%len(botNames)])
	if r.playerByName(name) != nil {
		name = fmt.Sprintf("%s-%d (آلي)", botNames[n%len(botNames)], n)
	}
	r.Players = append(r.Players, &Player{
		ConnID:    "bot-" + uuid.NewString()[:8],
		Name:      name,
		IsBot:     true,
		Connected: true,
	})
}

// FillBots backfills the lobby with bot seats up to the 3-player minimum.
func (g *Registry) FillBots(connID string) error {
	r := g.findRoomByConn(connID)
	if r == nil {
		return ErrRoomNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isAuthority(connID) {
		return ErrNotHost
	}
	if r.Phase != PhaseLobby {
		return ErrInvalidPhase
	}
	for len(r.Players) < 3 {
		g.addBot(r, len(r.Players))
	}
	g.emit.ToRoom(r.Code, "playerJoined", r.roster())
	return nil
}

// Disconnect degrades the matching seat to disconnected without removing it,
// so a same-name rejoin can resume mid-round.
func (g *Registry) Disconnect(connID string) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, r := range g.rooms {
		r.mu.Lock()
		if p := r.player(connID); p != nil {
			p.Connected = false
			log.Info().Str("code", r.Code).Str("name", p.Name).Msg("player disconnected")
			g.emit.ToRoom(r.Code, "playerJoined", r.roster())
			r.mu.Unlock()
			return
		}
		r.mu.Unlock()
	}
}
