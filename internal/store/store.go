// Package store persists the two flat collections the server keeps across
// restarts: the score leaderboard and per-name player profiles. Each
// collection lives in its own JSON document, loaded once at startup and
// rewritten in full on every mutation. A missing or corrupt file is
// replaced by an empty collection and logged; it is never fatal.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	leaderboardFile = "leaderboard.json"
	profilesFile    = "profiles.json"

	// MaxEntries caps the leaderboard after every insert.
	MaxEntries = 100

	// DefaultLimit applies to leaderboard queries without an explicit limit.
	DefaultLimit = 20

	// InitialRating is the rating assigned to a freshly created profile.
	InitialRating = 1000
)

// Entry is one leaderboard row, immutable once written.
type Entry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Mode  string `json:"mode"`
	Date  int64  `json:"date"`
}

// Profile is the persistent record for one display name. Names are not
// authenticated, so several connections may share a profile.
type Profile struct {
	Name        string `json:"name"`
	Rating      int    `json:"rating"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	Draws       int    `json:"draws"`
	GamesPlayed int    `json:"gamesPlayed"`
	BestScore   int    `json:"bestScore"`
	TotalScore  int    `json:"totalScore"`
	CreatedAt   int64  `json:"createdAt"`
}

// Store holds both collections in memory and mirrors them to disk.
type Store struct {
	mu          sync.Mutex
	dir         string
	log         *logrus.Logger
	leaderboard []Entry
	profiles    map[string]*Profile
}

// Open creates the data directory if needed and loads both collections.
func Open(dir string, logger *logrus.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	s := &Store{
		dir:      dir,
		log:      logger,
		profiles: make(map[string]*Profile),
	}
	loadJSON(filepath.Join(dir, leaderboardFile), &s.leaderboard, logger)
	loadJSON(filepath.Join(dir, profilesFile), &s.profiles, logger)
	if s.profiles == nil {
		s.profiles = make(map[string]*Profile)
	}
	return s, nil
}

// loadJSON fills out from the given file, leaving it untouched when the
// file is absent and logging when it cannot be parsed.
func loadJSON(path string, out any, logger *logrus.Logger) {
	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.WithError(err).Warnf("failed to read %s, starting empty", path)
		}
		return
	}
	if err := json.Unmarshal(b, out); err != nil {
		logger.WithError(err).Warnf("failed to parse %s, starting empty", path)
	}
}

// saveJSON rewrites the whole document, human-readable. Write failures are
// logged and swallowed so a full disk never takes the server down.
func (s *Store) saveJSON(name string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.log.WithError(err).Errorf("failed to marshal %s", name)
		return
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		s.log.WithError(err).Errorf("failed to write %s", name)
	}
}

// AddEntry appends a leaderboard row, re-sorts by score descending,
// truncates to the cap, and persists the whole list.
func (s *Store) AddEntry(name string, score int, mode string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leaderboard = append(s.leaderboard, Entry{
		Name:  name,
		Score: score,
		Mode:  mode,
		Date:  time.Now().UnixMilli(),
	})
	sort.SliceStable(s.leaderboard, func(i, j int) bool {
		return s.leaderboard[i].Score > s.leaderboard[j].Score
	})
	if len(s.leaderboard) > MaxEntries {
		s.leaderboard = s.leaderboard[:MaxEntries]
	}
	s.saveJSON(leaderboardFile, s.leaderboard)
}

// Leaderboard returns up to limit entries, optionally filtered by mode.
func (s *Store) Leaderboard(mode string, limit int) []Entry {
	if limit <= 0 {
		limit = DefaultLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, limit)
	for _, e := range s.leaderboard {
		if mode != "" && e.Mode != mode {
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out
}

// EntryCount reports how many leaderboard rows exist, which doubles as the
// lifetime games counter for server stats.
func (s *Store) EntryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.leaderboard)
}

// getOrCreate returns the live profile for name, creating it in memory on
// first reference. Caller holds the lock.
func (s *Store) getOrCreate(name string) *Profile {
	p, ok := s.profiles[name]
	if !ok {
		p = &Profile{
			Name:      name,
			Rating:    InitialRating,
			CreatedAt: time.Now().UnixMilli(),
		}
		s.profiles[name] = p
	}
	return p
}

// GetOrCreateProfile returns a copy of the profile for name, creating it on
// first reference. Creation alone is not persisted; the profile reaches
// disk with the next SaveProfiles.
func (s *Store) GetOrCreateProfile(name string) Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.getOrCreate(name)
}

// RecordResult folds one finished game into a profile: games played, score
// totals, best score, and the win/loss tally. The caller batches results
// and persists once via SaveProfiles.
func (s *Store) RecordResult(name string, score int, won bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.getOrCreate(name)
	p.GamesPlayed++
	p.TotalScore += score
	if score > p.BestScore {
		p.BestScore = score
	}
	if won {
		p.Wins++
	} else {
		p.Losses++
	}
}

// SetRating overwrites a profile's rating in memory.
func (s *Store) SetRating(name string, rating int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreate(name).Rating = rating
}

// SaveProfiles rewrites the profiles document with the current in-memory
// state.
func (s *Store) SaveProfiles() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveJSON(profilesFile, s.profiles)
}
