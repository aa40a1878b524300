package domain

import "time"

// GameType - тип игры
type GameType string

const (
	GameTypeShell GameType = "shell"
)

// GameMode - режим игры
type GameMode string

const (
	GameModeSolo GameMode = "solo"
)

// GameResult - результат раунда
type GameResult string

const (
	GameResultWin  GameResult = "win"
	GameResultLose GameResult = "lose"
)

// RoundRecord - запись завершённого раунда.
// GuessedSlot и BallSlot - позиции слева направо (1..3) на момент угадывания
type RoundRecord struct {
	ID          int64                  `db:"id" json:"id"`
	RoundID     string                 `db:"round_id" json:"round_id"`
	PlayerID    string                 `db:"player_id" json:"player_id"`
	GameType    GameType               `db:"-" json:"game_type"`
	Mode        GameMode               `db:"-" json:"mode"`
	Result      GameResult             `db:"outcome" json:"result"`
	GuessedSlot int                    `db:"guessed_slot" json:"guessed_slot"`
	BallSlot    int                    `db:"ball_slot" json:"ball_slot"`
	Shuffles    int                    `db:"shuffles" json:"shuffles"`
	Details     map[string]interface{} `db:"details" json:"details,omitempty"`
	StartedAt   time.Time              `db:"started_at" json:"started_at"`
	CreatedAt   time.Time              `db:"created_at" json:"created_at"`
}

// ResultFromOutcome maps a round outcome ("won"/"lost") to a stored result
func ResultFromOutcome(outcome string) GameResult {
	if outcome == "won" {
		return GameResultWin
	}
	return GameResultLose
}
