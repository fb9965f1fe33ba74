package game

// Wire payloads for the outbound events in the room protocol.

type JoinedRoomPayload struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
	IsLeader bool   `json:"isLeader"`
}

type GameStartedPayload struct {
	Title       string `json:"title"`
	Round       int    `json:"round"`
	TotalRounds int    `json:"totalRounds"`
	IsTutorial  bool   `json:"isTutorial"`
}

type StartDraftingPayload struct {
	Duration int `json:"duration"` // seconds
}

type PlayerSubmittedPayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// AnswerReveal is the named answer list for the host's presentation view.
type AnswerReveal struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Answer     string `json:"answer"`
}

// BallotAnswer is an anonymized answer shown during voting.
type BallotAnswer struct {
	ID     string `json:"id"`
	Answer string `json:"answer"`
}

type BallotPlayer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type VotingPayload struct {
	Answers []BallotAnswer `json:"answers"`
	Players []BallotPlayer `json:"players"`
}

type ResultEntry struct {
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	RoundScore int      `json:"roundScore"`
	TotalScore int      `json:"totalScore"`
	Breakdown  []string `json:"breakdown"`
}

type RoundResultsPayload struct {
	Results []ResultEntry `json:"results"`
}

type GameEndedPayload struct {
	Results     []ResultEntry `json:"results"`
	Leaderboard any           `json:"leaderboard"`
}

type AbilityResultPayload struct {
	Type    AbilityType `json:"type"`
	Content string      `json:"content"`
}
