package game

import (
	"fmt"
	"math/rand"
	"strings"
)

// rolePool builds the role list for n seated players: the three core roles
// always, bonus roles as the table grows, citizens for the rest.
func rolePool(n int) []Role {
	pool := []Role{RoleWitness, RoleArchitect, RoleDetective}
	if n > 3 {
		pool = append(pool, RoleSpy)
	}
	if n > 4 {
		pool = append(pool, RoleAccomplice)
	}
	if n > 5 {
		pool = append(pool, RoleLawyer)
	}
	if n > 6 {
		pool = append(pool, RoleTrickster)
	}
	for len(pool) < n {
		pool = append(pool, RoleCitizen)
	}
	return pool
}

// assignRoles shuffles the role pool onto the room's players. A tutorial pin
// guarantees one player a requested role; the pinned player and one matching
// role are pulled out of the shuffle, keeping counts balanced.
func assignRoles(players []*Player, pinnedConnID string, pinnedRole Role) {
	pool := rolePool(len(players))

	shuffled := make([]*Player, len(players))
	copy(shuffled, players)

	var pinned *Player
	if pinnedConnID != "" && pinnedRole != "" {
		for i, p := range shuffled {
			if p.ConnID == pinnedConnID {
				pinned = p
				shuffled = append(shuffled[:i], shuffled[i+1:]...)
				break
			}
		}
	}
	if pinned != nil {
		removed := false
		for i, role := range pool {
			if role == pinnedRole {
				pool = append(pool[:i], pool[i+1:]...)
				removed = true
				break
			}
		}
		if !removed {
			// the requested role is not in this table's pool; drop the
			// first role instead so counts still match seats
			pool = pool[1:]
		}
		pinned.Role = pinnedRole
	}

	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	for i, p := range shuffled {
		p.Role = pool[i]
		p.LawyerClient = ""
		p.abilityUsed = false
	}
	if pinned != nil {
		pinned.LawyerClient = ""
		pinned.abilityUsed = false
	}

	// the lawyer defends a random other player, chosen once the full roster
	// has its roles
	for _, p := range players {
		if p.Role != RoleLawyer {
			continue
		}
		others := make([]*Player, 0, len(players)-1)
		for _, o := range players {
			if o.ConnID != p.ConnID {
				others = append(others, o)
			}
		}
		if len(others) > 0 {
			p.LawyerClient = others[rand.Intn(len(others))].ConnID
		}
	}
}

func RoleName(role Role) string {
	switch role {
	case RoleWitness:
		return "الشاهد"
	case RoleArchitect:
		return "المهندس"
	case RoleDetective:
		return "المحقق"
	case RoleSpy:
		return "الجاسوس"
	case RoleAccomplice:
		return "الشريك"
	case RoleLawyer:
		return "المحامي"
	case RoleTrickster:
		return "المخادع"
	case RoleCitizen:
		return "مواطن"
	}
	return string(role)
}

func RoleDescription(role Role) string {
	switch role {
	case RoleWitness:
		return "أنت الوحيد الذي يعرف الحقيقة. اكتب تبريراً مقنعاً دون أن تكشف نفسك."
	case RoleArchitect:
		return "لديك كلمات مبعثرة. ابنِ كذبة متماسكة لتبدو كأنك تعرف القصة."
	case RoleDetective:
		return "مهمتك كشف الشاهد والمهندس. راقب الإجابات بدقة."
	case RoleSpy:
		return "حاول معرفة القصة ونسخها."
	case RoleAccomplice:
		return "احمِ الشاهد دون أن تفضح نفسك."
	case RoleLawyer:
		return "دافع عن موكلك وأبعد الشبهات عنه."
	case RoleTrickster:
		return "أدخل الكلمة الدخيلة في إجابتك بشكل مضحك."
	case RoleCitizen:
		return "حاول أن تبدو بريئاً."
	}
	return ""
}

// roleInfo builds the private briefing for one player. The scenario supplies
// the knowledge payloads; ACCOMPLICE and LAWYER get names off the roster.
func roleInfo(p *Player, r *Room) string {
	sc := r.CurrentScenario
	switch p.Role {
	case RoleWitness:
		return sc.Story
	case RoleArchitect:
		return fmt.Sprintf("كلماتك المفتاحية: %s", strings.Join(sc.Keywords, " - "))
	case RoleDetective:
		return fmt.Sprintf("عنوان القضية: %s", sc.Title)
	case RoleAccomplice:
		if w := r.playerByRole(RoleWitness); w != nil {
			return fmt.Sprintf("الشاهد هو: %s", w.Name)
		}
	case RoleLawyer:
		if c := r.player(p.LawyerClient); c != nil {
			return fmt.Sprintf("موكلك هو: %s", c.Name)
		}
	case RoleTrickster:
		return fmt.Sprintf("كلمتك الدخيلة: %s", sc.TrapWord)
	}
	return "انتظر التعليمات..."
}

// RolePayload is the private per-player packet sent on role assignment and
// replayed on reconnection.
type RolePayload struct {
	Role        Role   `json:"role"`
	RoleName    string `json:"roleName"`
	Description string `json:"description"`
	Info        string `json:"info"`
	Round       int    `json:"round"`
	TotalRounds int    `json:"totalRounds"`
	IsTutorial  bool   `json:"isTutorial"`
}

func rolePayload(p *Player, r *Room) RolePayload {
	return RolePayload{
		Role:        p.Role,
		RoleName:    RoleName(p.Role),
		Description: RoleDescription(p.Role),
		Info:        roleInfo(p, r),
		Round:       r.CurrentRound,
		TotalRounds: r.TotalRounds,
		IsTutorial:  r.IsTutorial,
	}
}
