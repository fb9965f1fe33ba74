package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
)

// ScenarioStore holds the static round content. Records are immutable after
// construction; per-match repeat exclusion lives on the Room.
type ScenarioStore struct {
	scenarios []Scenario
}

func DefaultScenarios() *ScenarioStore {
	return &ScenarioStore{scenarios: defaultScenarios}
}

// LoadScenarios reads a JSON array of scenario records from path.
func LoadScenarios(path string) (*ScenarioStore, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios file: %w", err)
	}
	var list []Scenario
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("failed to parse scenarios file: %w", err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("scenarios file %s contains no scenarios", path)
	}
	return &ScenarioStore{scenarios: list}, nil
}

func (s *ScenarioStore) Len() int { return len(s.scenarios) }

// Pick returns a random scenario whose id is not in used, marking it used.
// When every scenario has been used the set is reset and repeats begin.
func (s *ScenarioStore) Pick(used map[int]bool) *Scenario {
	candidates := make([]*Scenario, 0, len(s.scenarios))
	for i := range s.scenarios {
		if !used[s.scenarios[i].ID] {
			candidates = append(candidates, &s.scenarios[i])
		}
	}
	if len(candidates) == 0 {
		for id := range used {
			delete(used, id)
		}
		for i := range s.scenarios {
			candidates = append(candidates, &s.scenarios[i])
		}
	}
	sc := candidates[rand.Intn(len(candidates))]
	used[sc.ID] = true
	return sc
}

var defaultScenarios = []Scenario{
	{
		ID:       1,
		Title:    "سرقة منتصف الليل",
		Story:    "لص اقتحم متجراً لسرقة كعكة عيد ميلاد، لكنه نام داخل المتجر بسبب تعاطي دواء منوم بالخطأ.",
		Keywords: []string{"دواء", "نوم", "كعكة"},
		TrapWord: "زرافة",
	},
	{
		ID:       2,
		Title:    "الهروب الكبير",
		Story:    "حاول سجين الهروب بحفر نفق، لكنه انتهى به المطاف في غرفة استراحة الحراس يشاهد التلفاز معهم.",
		Keywords: []string{"نفق", "حراس", "تلفاز"},
		TrapWord: "بيتزا",
	},
	{
		ID:       3,
		Title:    "اختفاء التمثال",
		Story:    "اختفى تمثال من المتحف، ليتضح لاحقاً أن عامل النظافة نقله إلى المخزن ظناً منه أنه قطعة مكسورة.",
		Keywords: []string{"متحف", "مخزن", "نظافة"},
		TrapWord: "مظلة",
	},
	{
		ID:       4,
		Title:    "حريق المطبخ",
		Story:    "اندلع حريق صغير في مطبخ المطعم لأن الطاهي ترك هاتفه يشحن فوق الموقد أثناء انشغاله بمكالمة.",
		Keywords: []string{"هاتف", "موقد", "مكالمة"},
		TrapWord: "ببغاء",
	},
	{
		ID:       5,
		Title:    "لغز السيارة المقلوبة",
		Story:    "وجدت سيارة مقلوبة أمام البنك، والسبب أن السائق حاول تفادي قطة عبرت الطريق فجأة في منتصف الليل.",
		Keywords: []string{"بنك", "قطة", "طريق"},
		TrapWord: "شلال",
	},
	{
		ID:       6,
		Title:    "رسالة الطابق السابع",
		Story:    "عُثر على رسالة تهديد في مكتب المدير، وتبين أنها مسودة مزحة كتبها موظف لزميله ونسيها على الطابعة.",
		Keywords: []string{"مكتب", "طابعة", "مزحة"},
		TrapWord: "غواصة",
	},
}
