package game

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Bot seats flow through the same recordAnswer/recordVote paths as humans,
// so the phase machine needs no bot-specific branching beyond scheduling.

var botAlibis = []string{
	"كنت في المنزل طوال الليل أشاهد مسلسلاً قديماً.",
	"خرجت لشراء الخبز وعدت مباشرة، الجيران رأوني.",
	"كنت نائماً مبكراً ذلك اليوم، اسألوا أي أحد.",
	"كنت أساعد قريبي في نقل أثاث بيته الجديد.",
	"جلست في المقهى حتى وقت متأخر ثم عدت مشياً.",
}

var botSystemPrompt = "أنت لاعب في لعبة اجتماعية. اكتب جملة واحدة قصيرة بالعربية كحجة غياب مقنعة. لا تزد عن جملتين."

// botAnswerText picks a bot's drafted answer by role: informed roles write
// what they know, the rest fall back to a generic alibi.
func botAnswerText(p *Player, r *Room) string {
	sc := r.CurrentScenario
	switch p.Role {
	case RoleWitness:
		return sc.Story
	case RoleArchitect:
		k := sc.Keywords
		if len(k) >= 3 {
			return fmt.Sprintf("أتذكر أن القصة فيها %s و%s، وفي النهاية ظهر %s.", k[0], k[1], k[2])
		}
		return fmt.Sprintf("القصة كلها تدور حول %s.", joinKeywords(k))
	case RoleTrickster:
		return fmt.Sprintf("%s وفجأة ظهرت %s في المكان!", botAlibis[rand.Intn(len(botAlibis))], sc.TrapWord)
	}
	return botAlibis[rand.Intn(len(botAlibis))]
}

func joinKeywords(k []string) string {
	out := ""
	for i, w := range k {
		if i > 0 {
			out += " و"
		}
		out += w
	}
	return out
}

func jitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

// scheduleBotDrafts kicks off one typing goroutine per bot seat. Caller
// holds r.mu; the goroutines re-check phase and generation before touching
// room state.
func (g *Registry) scheduleBotDrafts(r *Room) {
	gen := r.timerGen
	for _, p := range r.Players {
		if !p.IsBot {
			continue
		}
		text := botAnswerText(p, r)
		genericRole := p.Role != RoleWitness && p.Role != RoleArchitect && p.Role != RoleTrickster
		go g.runBotDraft(r, gen, p.ConnID, text, genericRole)
	}
}

// runBotDraft reveals the answer into the shared drafts map one character at
// a time (feeding the spy's peek), then commits it after an independent
// jittered delay.
func (g *Registry) runBotDraft(r *Room, gen uint64, connID, text string, mayUseAI bool) {
	if mayUseAI && g.botAI != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
		generated, err := g.botAI.CompleteWithSystem(ctx, g.botModel, botSystemPrompt, "اكتب حجة غيابك.")
		cancel()
		if err == nil && generated != "" {
			text = generated
		}
	}

	submitDelay := jitter(g.settings.BotSubmitMin, g.settings.BotSubmitMax)
	submitAt := time.Now().Add(submitDelay)
	runes := []rune(text)
	// pace the reveal so the full text is visible shortly before the commit
	perChar := submitDelay * 3 / 4 / time.Duration(len(runes)+1)
	for i := 1; i <= len(runes); i++ {
		time.Sleep(jitter(perChar/2, perChar+perChar/2))
		r.mu.Lock()
		if r.timerGen != gen || r.Phase != PhaseDrafting {
			r.mu.Unlock()
			return
		}
		r.Drafts[connID] = string(runes[:i])
		r.mu.Unlock()
	}

	if d := time.Until(submitAt); d > 0 {
		time.Sleep(d)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timerGen != gen || r.Phase != PhaseDrafting {
		return
	}
	g.recordAnswer(r, connID, text)
}

// scheduleBotVotes schedules a randomized ballot per bot: a random other
// player for quality (the no-self-vote rule applies to bots too) and a
// random player, self included, for identity. Caller holds r.mu.
func (g *Registry) scheduleBotVotes(r *Room) {
	gen := r.timerGen
	for _, p := range r.Players {
		if !p.IsBot {
			continue
		}
		connID := p.ConnID
		delay := jitter(g.settings.BotVoteMin, g.settings.BotVoteMax)
		go func() {
			time.Sleep(delay)
			r.mu.Lock()
			defer r.mu.Unlock()
			if r.timerGen != gen || r.Phase != PhaseVoting {
				return
			}
			others := make([]string, 0, len(r.Players)-1)
			all := make([]string, 0, len(r.Players))
			for _, o := range r.Players {
				all = append(all, o.ConnID)
				if o.ConnID != connID {
					others = append(others, o.ConnID)
				}
			}
			if len(others) == 0 {
				return
			}
			quality := others[rand.Intn(len(others))]
			identity := all[rand.Intn(len(all))]
			_ = g.recordVote(r, connID, quality, identity)
		}()
	}
}
