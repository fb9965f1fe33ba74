package game

import (
	"fmt"
)

// Player actions. Phase-gated mutations outside their window are silent
// no-ops; only authorization and self-vote violations surface as errors.

func (g *Registry) SubmitAnswer(code, connID, text string) error {
	r, err := g.Get(code)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.player(connID) == nil {
		return ErrNotInRoom
	}
	g.recordAnswer(r, connID, text)
	return nil
}

// recordAnswer is the shared mutation path for humans and bots. Caller
// holds r.mu.
func (g *Registry) recordAnswer(r *Room, connID, text string) {
	if r.Phase != PhaseDrafting {
		return
	}
	r.Answers[connID] = text
	if p := r.player(connID); p != nil {
		g.emit.ToConn(r.HostConnID, "playerSubmitted", PlayerSubmittedPayload{PlayerID: connID, PlayerName: p.Name})
	}
	if len(r.Answers) >= len(r.Players) {
		g.startPresentation(r)
	}
}

// UpdateDraft mirrors in-progress text, feeding the spy's peek ability.
func (g *Registry) UpdateDraft(code, connID, text string) error {
	r, err := g.Get(code)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Phase != PhaseDrafting {
		return nil
	}
	if r.player(connID) == nil {
		return ErrNotInRoom
	}
	r.Drafts[connID] = text
	return nil
}

func (g *Registry) SubmitVote(code, connID, qualityTarget, identityTarget string) error {
	r, err := g.Get(code)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.player(connID) == nil {
		return ErrNotInRoom
	}
	return g.recordVote(r, connID, qualityTarget, identityTarget)
}

// recordVote is the shared mutation path for humans and bots. Caller holds
// r.mu.
func (g *Registry) recordVote(r *Room, connID, qualityTarget, identityTarget string) error {
	if r.Phase != PhaseVoting {
		return nil
	}
	if qualityTarget == connID {
		return ErrSelfVote
	}
	r.Votes[connID] = Vote{Quality: qualityTarget, Identity: identityTarget}
	if len(r.Votes) >= len(r.Players) {
		g.endRound(r)
	}
	return nil
}

// UseAbility runs a once-per-round role power, unlocked from round 2 (or
// immediately in tutorials).
func (g *Registry) UseAbility(code, connID string, ability AbilityType, targetID string) error {
	r, err := g.Get(code)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.player(connID)
	if p == nil {
		return ErrNotInRoom
	}
	if !r.IsTutorial && r.CurrentRound < 2 {
		return ErrAbilityLocked
	}
	if p.abilityUsed {
		return ErrAbilityUsed
	}

	var content string
	switch ability {
	case AbilityEagleEye:
		if p.Role != RoleSpy {
			return ErrInvalidAbility
		}
		if r.Phase != PhaseDrafting {
			return ErrInvalidPhase
		}
		content = "لم يكتب الشاهد شيئاً بعد..."
		if w := r.playerByRole(RoleWitness); w != nil {
			if draft := r.Drafts[w.ConnID]; draft != "" {
				content = draft
			}
		}
	case AbilityInterrogation:
		if p.Role != RoleDetective {
			return ErrInvalidAbility
		}
		target := r.player(targetID)
		if target == nil {
			return ErrNotInRoom
		}
		if target.Role == RoleWitness || target.Role == RoleArchitect {
			content = fmt.Sprintf("%s يبدو متوتراً ويخفي شيئاً ما.", target.Name)
		} else {
			content = fmt.Sprintf("%s يبدو هادئاً ولا تظهر عليه علامات الكذب.", target.Name)
		}
	default:
		return ErrInvalidAbility
	}

	p.abilityUsed = true
	g.emit.ToConn(connID, "abilityResult", AbilityResultPayload{Type: ability, Content: content})
	return nil
}
