package services

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"clicker-backend/internal/models"

	"gorm.io/gorm"
)

const (
	MaxDisplayNameLen = 40
	TopSize           = 10
)

type LeaderboardEntry struct {
	Name   string `json:"name"`
	Clicks int64  `json:"clicks"`
}

// Snapshot is the full view a client receives on hello: the global total,
// its own count, and the top of the leaderboard.
type Snapshot struct {
	Total int64              `json:"total"`
	Mine  int64              `json:"mine"`
	Top   []LeaderboardEntry `json:"top"`
}

type CounterService struct {
	db *gorm.DB
}

func NewCounterService(db *gorm.DB) *CounterService {
	return &CounterService{db: db}
}

// IncrementAndRead bumps the global total and the user's own count by one
// inside a single transaction and returns both new values. Both updates are
// atomic read-modify-writes at the database, so concurrent presses from any
// number of connections serialize there; a failure on either side rolls the
// whole press back.
func (s *CounterService) IncrementAndRead(userID uint) (total, mine int64, err error) {
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Raw(
			`INSERT INTO user_stats (user_id, clicks) VALUES (?, 1)
			 ON CONFLICT (user_id) DO UPDATE SET clicks = user_stats.clicks + 1
			 RETURNING clicks`,
			userID,
		).Scan(&mine).Error; err != nil {
			return err
		}

		return tx.Raw(
			`UPDATE globals SET value = value + 1 WHERE key = ? RETURNING value`,
			models.GlobalTotalKey,
		).Scan(&total).Error
	})
	if err != nil {
		return 0, 0, fmt.Errorf("increment clicks for user %d: %w", userID, err)
	}
	return total, mine, nil
}

// ReadSnapshot never mutates: a user with no stats row yet reads as zero.
// userID 0 means an unauthenticated spectator.
func (s *CounterService) ReadSnapshot(userID uint) (*Snapshot, error) {
	var global models.GlobalCounter
	if err := s.db.Where("key = ?", models.GlobalTotalKey).First(&global).Error; err != nil {
		return nil, fmt.Errorf("read global total: %w", err)
	}

	var mine int64
	if userID != 0 {
		var stats models.UserStats
		err := s.db.First(&stats, "user_id = ?", userID).Error
		switch {
		case err == nil:
			mine = stats.Clicks
		case errors.Is(err, gorm.ErrRecordNotFound):
			// first visit, no presses yet
		default:
			return nil, fmt.Errorf("read stats for user %d: %w", userID, err)
		}
	}

	top, err := s.GetTop(TopSize)
	if err != nil {
		return nil, err
	}

	return &Snapshot{Total: global.Value, Mine: mine, Top: top}, nil
}

type rankedRow struct {
	UserID      uint
	DisplayName string
	Clicks      int64
	CreatedAt   int64
}

func (s *CounterService) GetTop(n int) ([]LeaderboardEntry, error) {
	var rows []rankedRow
	err := s.db.Raw(
		`SELECT users.id AS user_id, users.display_name, user_stats.clicks,
		        EXTRACT(EPOCH FROM users.created_at)::bigint AS created_at
		 FROM user_stats
		 JOIN users ON users.id = user_stats.user_id
		 ORDER BY user_stats.clicks DESC, users.created_at ASC
		 LIMIT ?`,
		n,
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	return rankEntries(rows), nil
}

// rankEntries orders by clicks descending with ties going to the older
// account, so equal scores never churn positions between refreshes.
func rankEntries(rows []rankedRow) []LeaderboardEntry {
	sort.SliceStable(rows, func(a, b int) bool {
		if rows[a].Clicks != rows[b].Clicks {
			return rows[a].Clicks > rows[b].Clicks
		}
		return rows[a].CreatedAt < rows[b].CreatedAt
	})

	entries := make([]LeaderboardEntry, len(rows))
	for i, r := range rows {
		name := r.DisplayName
		if name == "" {
			name = anonName(r.UserID)
		}
		entries[i] = LeaderboardEntry{Name: name, Clicks: r.Clicks}
	}
	return entries
}

// UpsertDisplayName trims and stores a new display name. An empty result
// after trimming is a deliberate no-op, not an error; overlong names are
// cut to MaxDisplayNameLen characters.
func (s *CounterService) UpsertDisplayName(userID uint, name string) error {
	name = sanitizeDisplayName(name)
	if name == "" {
		return nil
	}

	res := s.db.Model(&models.User{}).Where("id = ?", userID).Update("display_name", name)
	if res.Error != nil {
		return fmt.Errorf("update display name for user %d: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update display name: user %d not found", userID)
	}
	return nil
}

func sanitizeDisplayName(name string) string {
	name = strings.TrimSpace(name)
	if runes := []rune(name); len(runes) > MaxDisplayNameLen {
		name = string(runes[:MaxDisplayNameLen])
	}
	return name
}

// anonName derives a stable label for users without a display name, so the
// leaderboard shows the same pseudonym for the same account every time.
func anonName(userID uint) string {
	h := fnv.New32a()
	fmt.Fprintf(h, "%d", userID)
	return fmt.Sprintf("player-%06x", h.Sum32()&0xffffff)
}
