package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"shell_game/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoundRepository struct {
	db *pgxpool.Pool
}

func NewRoundRepository(db *pgxpool.Pool) *RoundRepository {
	return &RoundRepository{db: db}
}

// Create сохраняет завершённый раунд
func (r *RoundRepository) Create(ctx context.Context, rec *domain.RoundRecord) error {
	detailsJSON, err := json.Marshal(rec.Details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	err = r.db.QueryRow(ctx,
		`INSERT INTO shell_rounds
			(round_id, player_id, outcome, guessed_slot, ball_slot, shuffles, details, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (round_id) DO NOTHING
		 RETURNING id, created_at`,
		rec.RoundID,
		rec.PlayerID,
		rec.Result,
		rec.GuessedSlot,
		rec.BallSlot,
		rec.Shuffles,
		detailsJSON,
		rec.StartedAt,
	).Scan(&rec.ID, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// already recorded
		return nil
	}
	return err
}

// GetByPlayer возвращает последние раунды игрока
func (r *RoundRepository) GetByPlayer(ctx context.Context, playerID string, limit int) ([]*domain.RoundRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, round_id, player_id, outcome, guessed_slot, ball_slot, shuffles,
				details, started_at, created_at
		 FROM shell_rounds
		 WHERE player_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		playerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanRows(rows)
}

// PlayerStats - статистика игрока
type PlayerStats struct {
	PlayerID    string  `json:"player_id"`
	TotalRounds int     `json:"total_rounds"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WinRate     float64 `json:"win_rate"`
}

// GetPlayerStats возвращает статистику игрока за период
func (r *RoundRepository) GetPlayerStats(ctx context.Context, playerID string, since time.Time) (*PlayerStats, error) {
	stats := &PlayerStats{PlayerID: playerID}

	err := r.db.QueryRow(ctx,
		`SELECT
			COUNT(*) as total_rounds,
			COUNT(*) FILTER (WHERE outcome = 'win') as wins,
			COUNT(*) FILTER (WHERE outcome = 'lose') as losses
		 FROM shell_rounds
		 WHERE player_id = $1 AND created_at >= $2`,
		playerID, since,
	).Scan(&stats.TotalRounds, &stats.Wins, &stats.Losses)
	if err != nil {
		return nil, err
	}

	if stats.TotalRounds > 0 {
		stats.WinRate = float64(stats.Wins) / float64(stats.TotalRounds)
	}
	return stats, nil
}

func (r *RoundRepository) scanRows(rows pgx.Rows) ([]*domain.RoundRecord, error) {
	var res []*domain.RoundRecord
	for rows.Next() {
		rec := &domain.RoundRecord{GameType: domain.GameTypeShell, Mode: domain.GameModeSolo}
		var detailsBytes []byte

		if err := rows.Scan(
			&rec.ID, &rec.RoundID, &rec.PlayerID, &rec.Result, &rec.GuessedSlot,
			&rec.BallSlot, &rec.Shuffles, &detailsBytes, &rec.StartedAt, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}

		if len(detailsBytes) > 0 {
			_ = json.Unmarshal(detailsBytes, &rec.Details)
		}
		res = append(res, rec)
	}

	return res, rows.Err()
}
