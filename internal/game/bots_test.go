package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTutorialBotsPlayThroughRound(t *testing.T) {
	g, rec := newTestRegistry()
	r := seatedRoom(t, g, 1)

	// the lone human is the leader and may start their own tutorial
	require.NoError(t, g.StartGame("conn-1", true, RoleDetective))
	waitPhase(t, r, PhaseDrafting)

	r.mu.Lock()
	require.Len(t, r.Players, 4, "tutorial backfills to four seats")
	require.Equal(t, RoleDetective, r.player("conn-1").Role)
	bots := make([]string, 0, 3)
	for _, p := range r.Players {
		if p.IsBot {
			bots = append(bots, p.ConnID)
		}
	}
	r.mu.Unlock()
	require.Len(t, bots, 3)

	require.NoError(t, g.SubmitAnswer(r.Code, "conn-1", "لاحظت آثار أقدام قرب الباب."))

	// bot submissions complete the table without a timer expiry
	waitPhase(t, r, PhaseVoting)
	r.mu.Lock()
	for _, id := range bots {
		assert.NotEmpty(t, r.Answers[id], "bot %s never submitted", id)
	}
	r.mu.Unlock()

	require.NoError(t, g.SubmitVote(r.Code, "conn-1", bots[0], bots[0]))
	waitPhase(t, r, PhaseResults)

	r.mu.Lock()
	assert.Len(t, r.Votes, 4, "every bot must have voted")
	for voter, v := range r.Votes {
		assert.NotEqual(t, voter, v.Quality, "bot %s voted for its own answer", voter)
	}
	r.mu.Unlock()

	// a tutorial is a single round
	require.NoError(t, g.NextRound("conn-1"))
	waitPhase(t, r, PhaseEnd)
	assert.Equal(t, 1, rec.countTo(r.Code, "gameEnded"))
}

func TestBotDraftsVisibleDuringDrafting(t *testing.T) {
	g, _ := newTestRegistry()
	r := seatedRoom(t, g, 1)
	require.NoError(t, g.StartGame("conn-1", true, RoleDetective))
	waitPhase(t, r, PhaseDrafting)

	// by voting time every bot's full answer passed through the live draft
	require.NoError(t, g.SubmitAnswer(r.Code, "conn-1", "إجابتي"))
	waitPhase(t, r, PhaseVoting)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.Players {
		if !p.IsBot {
			continue
		}
		assert.NotEmpty(t, r.Drafts[p.ConnID], "bot %s typed nothing before submitting", p.ConnID)
	}
}

func TestBotAnswersFollowRoles(t *testing.T) {
	sc := &Scenario{
		ID:       1,
		Title:    "قضية",
		Story:    "القصة الكاملة كما وقعت.",
		Keywords: []string{"مفتاح", "نافذة", "قطة"},
		TrapWord: "زرافة",
	}
	r := &Room{CurrentScenario: sc}

	witness := &Player{ConnID: "w", Role: RoleWitness, IsBot: true}
	assert.Equal(t, sc.Story, botAnswerText(witness, r))

	architect := &Player{ConnID: "a", Role: RoleArchitect, IsBot: true}
	answer := botAnswerText(architect, r)
	assert.Contains(t, answer, "مفتاح")
	assert.Contains(t, answer, "نافذة")

	trickster := &Player{ConnID: "t", Role: RoleTrickster, IsBot: true}
	assert.Contains(t, botAnswerText(trickster, r), sc.TrapWord)

	citizen := &Player{ConnID: "c", Role: RoleCitizen, IsBot: true}
	assert.Contains(t, botAlibis, botAnswerText(citizen, r))
}

func TestJitterBounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := jitter(10, 30)
		assert.GreaterOrEqual(t, int64(d), int64(10))
		assert.Less(t, int64(d), int64(30))
	}
	assert.EqualValues(t, 10, jitter(10, 10))
}
