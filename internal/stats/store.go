// Package stats is the durable per-player win/score ledger: a single JSON
// document rewritten wholesale on every update. Callers serialize access by
// construction (one registry goroutine per match end), the store's own mutex
// covers the rest.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"
)

type PlayerStats struct {
	Name        string         `json:"name"`
	GamesPlayed int            `json:"gamesPlayed"`
	Wins        int            `json:"wins"`
	TotalScore  int            `json:"totalScore"`
	RolesPlayed map[string]int `json:"rolesPlayed"`
}

type MatchPlayer struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Role  string `json:"role"`
}

type Match struct {
	RoomCode  string        `json:"roomCode"`
	Players   []MatchPlayer `json:"players"`
	Timestamp time.Time     `json:"timestamp"`
}

type document struct {
	Players map[string]PlayerStats `json:"players"`
	Matches []Match                `json:"matches"`
}

type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore opens the ledger at path, initializing an empty document when
// the file does not exist yet.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.write(document{Players: map[string]PlayerStats{}, Matches: []Match{}}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) read() (document, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return document{}, fmt.Errorf("failed to read stats file: %w", err)
	}
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return document{}, fmt.Errorf("failed to parse stats file: %w", err)
	}
	if doc.Players == nil {
		doc.Players = map[string]PlayerStats{}
	}
	return doc, nil
}

func (s *Store) write(doc document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0644); err != nil {
		return fmt.Errorf("failed to write stats file: %w", err)
	}
	return nil
}

// GetPlayer returns the ledger entry for name, or a zeroed one for new
// players.
func (s *Store) GetPlayer(name string) (PlayerStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return PlayerStats{}, err
	}
	if p, ok := doc.Players[name]; ok {
		return p, nil
	}
	return PlayerStats{Name: name, RolesPlayed: map[string]int{}}, nil
}

// UpdatePlayerStats folds one finished match into a player's totals.
func (s *Store) UpdatePlayerStats(name string, score int, role string, winner bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return err
	}
	p, ok := doc.Players[name]
	if !ok {
		p = PlayerStats{Name: name, RolesPlayed: map[string]int{}}
	}
	if p.RolesPlayed == nil {
		p.RolesPlayed = map[string]int{}
	}
	p.GamesPlayed++
	p.TotalScore += score
	if winner {
		p.Wins++
	}
	if role != "" {
		p.RolesPlayed[role]++
	}
	doc.Players[name] = p
	return s.write(doc)
}

// SaveMatch appends the match record with the current timestamp.
func (s *Store) SaveMatch(roomCode string, players []MatchPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Matches = append(doc.Matches, Match{
		RoomCode:  roomCode,
		Players:   players,
		Timestamp: time.Now().UTC(),
	})
	return s.write(doc)
}

// Leaderboard returns the top ten players by total score.
func (s *Store) Leaderboard() ([]PlayerStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make([]PlayerStats, 0, len(doc.Players))
	for _, p := range doc.Players {
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalScore > out[j].TotalScore })
	if len(out) > 10 {
		out = out[:10]
	}
	return out, nil
}
