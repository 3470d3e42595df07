package daily

import (
	"context"
	"database/sql"
)

// Result is one scored daily-challenge attempt.
type Result struct {
	UserID    string `json:"userId"`
	Date      string `json:"date"`
	Won       bool   `json:"won"`
	Mistakes  int    `json:"mistakes"`
	Stars     int    `json:"stars"`
	ElapsedMs int64  `json:"elapsedMs"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?",
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, won, mistakes, stars, elapsed_ms)
		 VALUES(?,?,?,?,?,?)`, r.UserID, r.Date, r.Won, r.Mistakes, r.Stars, r.ElapsedMs,
	)
	return err
}

type LBRow struct {
	UserID    string `json:"userId"`
	Mistakes  int    `json:"mistakes"`
	Stars     int    `json:"stars"`
	ElapsedMs int64  `json:"elapsedMs"`
}

func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, mistakes, stars, elapsed_ms
		 FROM daily_results
		 WHERE date=? AND won=1
		 ORDER BY elapsed_ms ASC, mistakes ASC, created_at ASC
		 LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LBRow
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.Mistakes, &r.Stars, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
