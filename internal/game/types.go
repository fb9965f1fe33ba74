package game

import (
	"sync"
)

type Phase string

const (
	PhaseLobby        Phase = "LOBBY"
	PhasePlaying      Phase = "PLAYING"
	PhaseDrafting     Phase = "DRAFTING"
	PhasePresentation Phase = "PRESENTATION"
	PhaseVoting       Phase = "VOTING"
	PhaseResults      Phase = "RESULTS"
	PhaseEnd          Phase = "END"
)

type Role string

const (
	RoleWitness    Role = "WITNESS"
	RoleArchitect  Role = "ARCHITECT"
	RoleDetective  Role = "DETECTIVE"
	RoleSpy        Role = "SPY"
	RoleAccomplice Role = "ACCOMPLICE"
	RoleLawyer     Role = "LAWYER"
	RoleTrickster  Role = "TRICKSTER"
	RoleCitizen    Role = "CITIZEN"
)

type AbilityType string

const (
	AbilityEagleEye      AbilityType = "EAGLE_EYE"
	AbilityInterrogation AbilityType = "INTERROGATION"
)

type Player struct {
	ConnID    string `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Role      Role   `json:"-"`
	IsLeader  bool   `json:"isLeader"`
	IsBot     bool   `json:"isBot"`
	Connected bool   `json:"connected"`

	// LawyerClient is the connection id of the player this one defends.
	// Only set while holding RoleLawyer.
	LawyerClient string `json:"-"`

	abilityUsed bool
}

type Vote struct {
	Quality  string `json:"quality"`
	Identity string `json:"identity"`
}

type Scenario struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Story    string   `json:"story"`
	Keywords []string `json:"keywords"`
	TrapWord string   `json:"trapWord"`
}

// Room is one active game session. All mutable fields are guarded by mu;
// only the Registry mutates them.
type Room struct {
	Code       string
	HostConnID string
	Phase      Phase
	Players    []*Player

	CurrentScenario *Scenario
	usedScenarios   map[int]bool

	CurrentRound int
	TotalRounds  int
	IsTutorial   bool

	// tutorial role pin, consumed at round start
	forcedConnID string
	forcedRole   Role

	Answers map[string]string
	Drafts  map[string]string
	Votes   map[string]Vote

	// timerCancel stops the phase-owned countdown or delay. timerGen is
	// bumped on every transition so stale callbacks notice and bail out.
	timerCancel func()
	timerGen    uint64

	mu sync.Mutex
}

func (r *Room) player(connID string) *Player {
	for _, p := range r.Players {
		if p.ConnID == connID {
			return p
		}
	}
	return nil
}

func (r *Room) playerByName(name string) *Player {
	for _, p := range r.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (r *Room) playerByRole(role Role) *Player {
	for _, p := range r.Players {
		if p.Role == role {
			return p
		}
	}
	return nil
}
