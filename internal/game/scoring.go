package game

import (
	"fmt"
	"math"
)

// ScoreEvent is one fired scoring rule for one player.
type ScoreEvent struct {
	Points int    `json:"points"`
	Reason string `json:"reason"`
}

// RoundScore is a player's delta for the round plus the ordered rule lines
// that produced it.
type RoundScore struct {
	Delta  int          `json:"delta"`
	Events []ScoreEvent `json:"events"`
}

// tally is the precomputed vote picture a rule operates on.
type tally struct {
	players  []*Player
	votes    map[string]Vote
	quality  map[string]int // targetID -> quality vote count
	identity map[string]int // targetID -> identity vote count

	witness    *Player
	architect  *Player
	detective  *Player
	spy        *Player
	accomplice *Player
	lawyer     *Player
	trickster  *Player

	// accusedID is the single identity-vote plurality target, empty on a tie
	accusedID string
}

type scoreboard map[string]*RoundScore

func (sb scoreboard) add(connID string, points int, reason string) {
	s := sb[connID]
	if s == nil {
		return
	}
	s.Delta += points
	s.Events = append(s.Events, ScoreEvent{Points: points, Reason: reason})
}

// scoreRule mutates the scoreboard for one rule. Rules run in a fixed order;
// the witness penalty scales the round-so-far total, so ordering is part of
// the contract.
type scoreRule func(t *tally, sb scoreboard)

var scoreRules = []scoreRule{
	rulePersuasion,
	ruleDetectiveVerdict,
	ruleCrowdDeduction,
	ruleArchitectDeception,
	ruleWitnessSurvival,
	ruleWitnessExposure,
	ruleAccompliceSupport,
	ruleLawyerDefense,
	ruleSpyMimicry,
	ruleTricksterPayoff,
	ruleCitizenGuess,
}

// ScoreRound computes the per-player deltas and breakdown for a finished
// round. Deterministic for a fixed snapshot: no randomness, no room access.
func ScoreRound(players []*Player, votes map[string]Vote) map[string]*RoundScore {
	t := newTally(players, votes)
	sb := make(scoreboard, len(players))
	for _, p := range players {
		sb[p.ConnID] = &RoundScore{}
	}
	for _, rule := range scoreRules {
		rule(t, sb)
	}
	return sb
}

func newTally(players []*Player, votes map[string]Vote) *tally {
	t := &tally{
		players:  players,
		votes:    votes,
		quality:  make(map[string]int),
		identity: make(map[string]int),
	}
	for _, v := range votes {
		if v.Quality != "" {
			t.quality[v.Quality]++
		}
		if v.Identity != "" {
			t.identity[v.Identity]++
		}
	}
	for _, p := range players {
		switch p.Role {
		case RoleWitness:
			t.witness = p
		case RoleArchitect:
			t.architect = p
		case RoleDetective:
			t.detective = p
		case RoleSpy:
			t.spy = p
		case RoleAccomplice:
			t.accomplice = p
		case RoleLawyer:
			t.lawyer = p
		case RoleTrickster:
			t.trickster = p
		}
	}
	max := 0
	for id, count := range t.identity {
		if count > max {
			max = count
			t.accusedID = id
		} else if count == max {
			t.accusedID = ""
		}
	}
	return t
}

func (t *tally) detectiveFoundWitness() bool {
	if t.detective == nil || t.witness == nil {
		return false
	}
	return t.votes[t.detective.ConnID].Identity == t.witness.ConnID
}

func (t *tally) witnessSurvived() bool {
	if t.witness == nil {
		return false
	}
	// survival means strictly less than half the table suspected the witness
	return 2*t.identity[t.witness.ConnID] < len(t.players)
}

func rulePersuasion(t *tally, sb scoreboard) {
	for _, p := range t.players {
		if count := t.quality[p.ConnID]; count > 0 {
			sb.add(p.ConnID, count*1000, fmt.Sprintf("+%d لأفضل إجابة (%d صوت)", count*1000, count))
		}
	}
}

func ruleDetectiveVerdict(t *tally, sb scoreboard) {
	if t.detective == nil || t.witness == nil {
		return
	}
	if t.detectiveFoundWitness() {
		sb.add(t.detective.ConnID, 2500, "+2500 كشفت الشاهد")
	} else {
		sb.add(t.detective.ConnID, -500, "-500 تخمين خاطئ للمحقق")
	}
}

func ruleCrowdDeduction(t *tally, sb scoreboard) {
	if t.witness == nil {
		return
	}
	for _, p := range t.players {
		// citizens get the bigger bonus from ruleCitizenGuess instead
		if p.Role == RoleDetective || p.Role == RoleWitness || p.Role == RoleCitizen {
			continue
		}
		if t.votes[p.ConnID].Identity == t.witness.ConnID {
			sb.add(p.ConnID, 500, "+500 كشفت الشاهد")
		}
	}
}

func ruleArchitectDeception(t *tally, sb scoreboard) {
	if t.architect == nil || t.witness == nil {
		return
	}
	if t.quality[t.architect.ConnID] > t.quality[t.witness.ConnID] {
		sb.add(t.architect.ConnID, 1500, "+1500 تفوقت على الشاهد")
	}
}

func ruleWitnessSurvival(t *tally, sb scoreboard) {
	if t.witnessSurvived() {
		sb.add(t.witness.ConnID, 2000, "+2000 نجوت من الكشف")
	}
}

func ruleWitnessExposure(t *tally, sb scoreboard) {
	if !t.detectiveFoundWitness() {
		return
	}
	s := sb[t.witness.ConnID]
	if s == nil {
		return
	}
	before := s.Delta
	s.Delta = int(math.Floor(float64(before) * 0.5))
	s.Events = append(s.Events, ScoreEvent{
		Points: s.Delta - before,
		Reason: "-50% كشفك المحقق",
	})
}

func ruleAccompliceSupport(t *tally, sb scoreboard) {
	if t.accomplice == nil || t.witness == nil {
		return
	}
	maxQuality := 0
	for _, count := range t.quality {
		if count > maxQuality {
			maxQuality = count
		}
	}
	witnessQuality := t.quality[t.witness.ConnID]
	witnessWonQuality := witnessQuality == maxQuality && witnessQuality > 0
	if t.witnessSurvived() || witnessWonQuality {
		sb.add(t.accomplice.ConnID, 1500, "+1500 دعمت الشاهد بنجاح")
	}
}

func ruleLawyerDefense(t *tally, sb scoreboard) {
	if t.lawyer == nil || t.lawyer.LawyerClient == "" {
		return
	}
	if t.lawyer.LawyerClient != t.accusedID {
		sb.add(t.lawyer.ConnID, 2000, "+2000 نجا موكلك من الاتهام")
	}
}

func ruleSpyMimicry(t *tally, sb scoreboard) {
	if t.spy == nil || t.witness == nil {
		return
	}
	spyQuality := t.quality[t.spy.ConnID]
	witnessQuality := t.quality[t.witness.ConnID]
	diff := spyQuality - witnessQuality
	if diff < 0 {
		diff = -diff
	}
	if diff <= 1 && spyQuality > 0 {
		sb.add(t.spy.ConnID, 1500, "+1500 نسخت الشاهد بنجاح")
	}
}

func ruleTricksterPayoff(t *tally, sb scoreboard) {
	if t.trickster == nil {
		return
	}
	if t.quality[t.trickster.ConnID] > 0 {
		sb.add(t.trickster.ConnID, 1500, "+1500 مررت الكلمة الدخيلة")
	}
}

func ruleCitizenGuess(t *tally, sb scoreboard) {
	if t.witness == nil {
		return
	}
	for _, p := range t.players {
		if p.Role != RoleCitizen {
			continue
		}
		if t.votes[p.ConnID].Identity == t.witness.ConnID {
			sb.add(p.ConnID, 1000, "+1000 كشفت الشاهد")
		}
	}
}
