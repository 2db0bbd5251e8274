package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vctt94/holdem-engine/internal/domain"
	"github.com/vctt94/holdem-engine/internal/pokererr"
)

// execer is the subset of *sql.DB / *sql.Tx that queries needs. Both
// SQLiteStore and sqliteTx embed a *queries built over one of these, so
// every Querier method is written once and works inside or outside a
// transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type queries struct {
	ex execer
}

// --- Game ---

func (q *queries) CreateGame(ctx context.Context, g *domain.Game) error {
	_, err := q.ex.ExecContext(ctx, `
		INSERT INTO games (id, blind_time, level, chips, start_time, end_time)
		VALUES (?, ?, ?, ?, ?, ?)`,
		g.ID, g.BlindTime, g.Level, g.Chips, g.StartTime, g.EndTime)
	if err != nil {
		return pokererr.Wrap("CreateGame", err)
	}
	return nil
}

func (q *queries) GetGame(ctx context.Context, id string) (*domain.Game, error) {
	row := q.ex.QueryRowContext(ctx, `
		SELECT id, blind_time, level, chips, start_time, end_time
		FROM games WHERE id = ?`, id)
	return scanGame(row, "Game", id)
}

func (q *queries) GetActiveGame(ctx context.Context) (*domain.Game, error) {
	row := q.ex.QueryRowContext(ctx, `
		SELECT id, blind_time, level, chips, start_time, end_time
		FROM games WHERE end_time IS NULL ORDER BY start_time DESC LIMIT 1`)
	return scanGame(row, "Game", "active")
}

func scanGame(row *sql.Row, entity, id string) (*domain.Game, error) {
	var g domain.Game
	var endTime sql.NullTime
	if err := row.Scan(&g.ID, &g.BlindTime, &g.Level, &g.Chips, &g.StartTime, &endTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pokererr.NewNotFound(entity, id)
		}
		return nil, pokererr.Wrap("GetGame", err)
	}
	if endTime.Valid {
		g.EndTime = &endTime.Time
	}
	return &g, nil
}

func (q *queries) UpdateGame(ctx context.Context, g *domain.Game) error {
	res, err := q.ex.ExecContext(ctx, `
		UPDATE games SET blind_time = ?, level = ?, chips = ?, end_time = ?
		WHERE id = ?`, g.BlindTime, g.Level, g.Chips, g.EndTime, g.ID)
	if err != nil {
		return pokererr.Wrap("UpdateGame", err)
	}
	return checkRowsAffected(res, "Game", g.ID)
}

// --- GameBlind ---

func (q *queries) GetGameBlind(ctx context.Context, level int) (*domain.GameBlind, error) {
	row := q.ex.QueryRowContext(ctx, `
		SELECT level, small_blind_amount, big_blind_amount, ante
		FROM game_blinds WHERE level = ?`, level)
	var b domain.GameBlind
	if err := row.Scan(&b.Level, &b.SmallBlindAmount, &b.BigBlindAmount, &b.Ante); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pokererr.NewNotFound("GameBlind", fmt.Sprintf("level %d", level))
		}
		return nil, pokererr.Wrap("GetGameBlind", err)
	}
	return &b, nil
}

func (q *queries) UpsertGameBlind(ctx context.Context, b *domain.GameBlind) error {
	_, err := q.ex.ExecContext(ctx, `
		INSERT INTO game_blinds (level, small_blind_amount, big_blind_amount, ante)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(level) DO UPDATE SET
			small_blind_amount = excluded.small_blind_amount,
			big_blind_amount = excluded.big_blind_amount,
			ante = excluded.ante`,
		b.Level, b.SmallBlindAmount, b.BigBlindAmount, b.Ante)
	if err != nil {
		return pokererr.Wrap("UpsertGameBlind", err)
	}
	return nil
}

// --- Player ---

func (q *queries) CreatePlayer(ctx context.Context, p *domain.Player) error {
	_, err := q.ex.ExecContext(ctx, `
		INSERT INTO players (id, game_id, name, amount, is_online, is_active,
			action, action_amount, all_bet_sum, inactive_time_hand_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.GameID, p.Name, p.Amount, p.IsOnline, p.IsActive,
		string(p.Action), p.ActionAmount, p.AllBetSum, p.InactiveHandID, p.CreatedAt)
	if err != nil {
		return pokererr.Wrap("CreatePlayer", err)
	}
	return nil
}

func (q *queries) GetPlayer(ctx context.Context, id string) (*domain.Player, error) {
	row := q.ex.QueryRowContext(ctx, `
		SELECT id, game_id, name, amount, is_online, is_active, action,
			action_amount, all_bet_sum, inactive_time_hand_id, created_at
		FROM players WHERE id = ?`, id)
	return scanPlayer(row, id)
}

func scanPlayer(row *sql.Row, id string) (*domain.Player, error) {
	var p domain.Player
	var action string
	var inactive sql.NullString
	if err := row.Scan(&p.ID, &p.GameID, &p.Name, &p.Amount, &p.IsOnline, &p.IsActive,
		&action, &p.ActionAmount, &p.AllBetSum, &inactive, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pokererr.NewNotFound("Player", id)
		}
		return nil, pokererr.Wrap("GetPlayer", err)
	}
	p.Action = domain.ActionType(action)
	if inactive.Valid {
		v := inactive.String
		p.InactiveHandID = &v
	}
	return &p, nil
}

func (q *queries) ListPlayersByGame(ctx context.Context, gameID string) ([]*domain.Player, error) {
	rows, err := q.ex.QueryContext(ctx, `
		SELECT id, game_id, name, amount, is_online, is_active, action,
			action_amount, all_bet_sum, inactive_time_hand_id, created_at
		FROM players WHERE game_id = ? ORDER BY created_at ASC, id ASC`, gameID)
	if err != nil {
		return nil, pokererr.Wrap("ListPlayersByGame", err)
	}
	defer rows.Close()

	var out []*domain.Player
	for rows.Next() {
		var p domain.Player
		var action string
		var inactive sql.NullString
		if err := rows.Scan(&p.ID, &p.GameID, &p.Name, &p.Amount, &p.IsOnline, &p.IsActive,
			&action, &p.ActionAmount, &p.AllBetSum, &inactive, &p.CreatedAt); err != nil {
			return nil, pokererr.Wrap("ListPlayersByGame", err)
		}
		p.Action = domain.ActionType(action)
		if inactive.Valid {
			v := inactive.String
			p.InactiveHandID = &v
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, pokererr.Wrap("ListPlayersByGame", err)
	}
	return out, nil
}

func (q *queries) UpdatePlayer(ctx context.Context, p *domain.Player) error {
	res, err := q.ex.ExecContext(ctx, `
		UPDATE players SET name = ?, amount = ?, is_online = ?, is_active = ?,
			action = ?, action_amount = ?, all_bet_sum = ?, inactive_time_hand_id = ?
		WHERE id = ?`,
		p.Name, p.Amount, p.IsOnline, p.IsActive, string(p.Action),
		p.ActionAmount, p.AllBetSum, p.InactiveHandID, p.ID)
	if err != nil {
		return pokererr.Wrap("UpdatePlayer", err)
	}
	return checkRowsAffected(res, "Player", p.ID)
}

func (q *queries) IncrementPlayerAmount(ctx context.Context, playerID string, delta int64) error {
	res, err := q.ex.ExecContext(ctx, `
		UPDATE players SET amount = amount + ? WHERE id = ?`, delta, playerID)
	if err != nil {
		return pokererr.Wrap("IncrementPlayerAmount", err)
	}
	return checkRowsAffected(res, "Player", playerID)
}

func (q *queries) ResetStreetState(ctx context.Context, gameID string) error {
	_, err := q.ex.ExecContext(ctx, `
		UPDATE players SET action = '', action_amount = 0
		WHERE game_id = ? AND is_active = TRUE AND action NOT IN (?, ?)`,
		gameID, string(domain.ActionAllIn), string(domain.ActionFold))
	if err != nil {
		return pokererr.Wrap("ResetStreetState", err)
	}
	return nil
}

// --- Hand ---

func (q *queries) CreateHand(ctx context.Context, h *domain.Hand) error {
	_, err := q.ex.ExecContext(ctx, `
		INSERT INTO hands (id, game_id, level, dealer, small_blind, big_blind,
			current_player_turn_id, pot_amount, ante, small_blind_amount,
			big_blind_amount, last_call_amount, current_max_bet, last_raise_amount,
			current_round, is_changed_current_round, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.GameID, h.Level, h.Dealer, h.SmallBlind, h.BigBlind,
		h.CurrentPlayerTurnID, h.PotAmount, h.Ante, h.SmallBlindAmount,
		h.BigBlindAmount, h.LastCallAmount, h.CurrentMaxBet, h.LastRaiseAmount,
		string(h.CurrentRound), h.IsChangedCurrentRound, h.CreatedAt)
	if err != nil {
		return pokererr.Wrap("CreateHand", err)
	}
	return nil
}

func (q *queries) GetHand(ctx context.Context, id string) (*domain.Hand, error) {
	row := q.ex.QueryRowContext(ctx, `
		SELECT id, game_id, level, dealer, small_blind, big_blind,
			current_player_turn_id, pot_amount, ante, small_blind_amount,
			big_blind_amount, last_call_amount, current_max_bet, last_raise_amount,
			current_round, is_changed_current_round, created_at
		FROM hands WHERE id = ?`, id)
	return scanHand(row, id)
}

func scanHand(row *sql.Row, id string) (*domain.Hand, error) {
	var h domain.Hand
	var round string
	var smallBlind sql.NullString
	if err := row.Scan(&h.ID, &h.GameID, &h.Level, &h.Dealer, &smallBlind, &h.BigBlind,
		&h.CurrentPlayerTurnID, &h.PotAmount, &h.Ante, &h.SmallBlindAmount,
		&h.BigBlindAmount, &h.LastCallAmount, &h.CurrentMaxBet, &h.LastRaiseAmount,
		&round, &h.IsChangedCurrentRound, &h.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pokererr.NewNotFound("Hand", id)
		}
		return nil, pokererr.Wrap("GetHand", err)
	}
	h.CurrentRound = domain.Round(round)
	if smallBlind.Valid {
		v := smallBlind.String
		h.SmallBlind = &v
	}
	return &h, nil
}

func (q *queries) UpdateHand(ctx context.Context, h *domain.Hand) error {
	res, err := q.ex.ExecContext(ctx, `
		UPDATE hands SET current_player_turn_id = ?, pot_amount = ?,
			last_call_amount = ?, current_max_bet = ?, last_raise_amount = ?,
			current_round = ?, is_changed_current_round = ?
		WHERE id = ?`,
		h.CurrentPlayerTurnID, h.PotAmount, h.LastCallAmount, h.CurrentMaxBet,
		h.LastRaiseAmount, string(h.CurrentRound), h.IsChangedCurrentRound, h.ID)
	if err != nil {
		return pokererr.Wrap("UpdateHand", err)
	}
	return checkRowsAffected(res, "Hand", h.ID)
}

func (q *queries) LastHandForGame(ctx context.Context, gameID string) (*domain.Hand, error) {
	row := q.ex.QueryRowContext(ctx, `
		SELECT id, game_id, level, dealer, small_blind, big_blind,
			current_player_turn_id, pot_amount, ante, small_blind_amount,
			big_blind_amount, last_call_amount, current_max_bet, last_raise_amount,
			current_round, is_changed_current_round, created_at
		FROM hands WHERE game_id = ? ORDER BY created_at DESC LIMIT 1`, gameID)
	return scanHand(row, fmt.Sprintf("last hand of game %s", gameID))
}

// --- Action log ---

func (q *queries) AppendAction(ctx context.Context, a *domain.Action) error {
	_, err := q.ex.ExecContext(ctx, `
		INSERT INTO actions (id, hand_id, player_id, round, betting_round,
			action_order, action_type, bet_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.HandID, a.PlayerID, string(a.Round), a.BettingRound,
		a.ActionOrder, string(a.ActionType), a.BetAmount, a.CreatedAt)
	if err != nil {
		return pokererr.Wrap("AppendAction", err)
	}
	return nil
}

func (q *queries) LastAction(ctx context.Context, handID string) (*domain.Action, error) {
	row := q.ex.QueryRowContext(ctx, `
		SELECT id, hand_id, player_id, round, betting_round, action_order,
			action_type, bet_amount, created_at
		FROM actions WHERE hand_id = ? ORDER BY action_order DESC LIMIT 1`, handID)
	var a domain.Action
	var round, actionType string
	if err := row.Scan(&a.ID, &a.HandID, &a.PlayerID, &round, &a.BettingRound,
		&a.ActionOrder, &actionType, &a.BetAmount, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pokererr.NewNotFound("Action", fmt.Sprintf("last action of hand %s", handID))
		}
		return nil, pokererr.Wrap("LastAction", err)
	}
	a.Round = domain.Round(round)
	a.ActionType = domain.ActionType(actionType)
	return &a, nil
}

func (q *queries) SumBetAmount(ctx context.Context, handID, playerID string, round *domain.Round) (int64, error) {
	var rows *sql.Rows
	var err error
	if round != nil {
		rows, err = q.ex.QueryContext(ctx, `
			SELECT COALESCE(SUM(bet_amount), 0) FROM actions
			WHERE hand_id = ? AND player_id = ? AND round = ?`, handID, playerID, string(*round))
	} else {
		rows, err = q.ex.QueryContext(ctx, `
			SELECT COALESCE(SUM(bet_amount), 0) FROM actions
			WHERE hand_id = ? AND player_id = ?`, handID, playerID)
	}
	if err != nil {
		return 0, pokererr.Wrap("SumBetAmount", err)
	}
	defer rows.Close()

	var sum int64
	if rows.Next() {
		if err := rows.Scan(&sum); err != nil {
			return 0, pokererr.Wrap("SumBetAmount", err)
		}
	}
	return sum, nil
}

func (q *queries) BetsThisStreet(ctx context.Context, handID string, round domain.Round) (map[string]int64, error) {
	rows, err := q.ex.QueryContext(ctx, `
		SELECT player_id, COALESCE(SUM(bet_amount), 0) FROM actions
		WHERE hand_id = ? AND round = ? GROUP BY player_id`, handID, string(round))
	if err != nil {
		return nil, pokererr.Wrap("BetsThisStreet", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var playerID string
		var amount int64
		if err := rows.Scan(&playerID, &amount); err != nil {
			return nil, pokererr.Wrap("BetsThisStreet", err)
		}
		out[playerID] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, pokererr.Wrap("BetsThisStreet", err)
	}
	return out, nil
}

func (q *queries) DistinctActionTypes(ctx context.Context, handID string, round domain.Round) (map[domain.ActionType]bool, error) {
	rows, err := q.ex.QueryContext(ctx, `
		SELECT DISTINCT action_type FROM actions WHERE hand_id = ? AND round = ?`,
		handID, string(round))
	if err != nil {
		return nil, pokererr.Wrap("DistinctActionTypes", err)
	}
	defer rows.Close()

	out := make(map[domain.ActionType]bool)
	for rows.Next() {
		var actionType string
		if err := rows.Scan(&actionType); err != nil {
			return nil, pokererr.Wrap("DistinctActionTypes", err)
		}
		out[domain.ActionType(actionType)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, pokererr.Wrap("DistinctActionTypes", err)
	}
	return out, nil
}

func (q *queries) HasActedThisStreet(ctx context.Context, handID, playerID string, round domain.Round) (bool, error) {
	row := q.ex.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM actions WHERE hand_id = ? AND player_id = ? AND round = ?`,
		handID, playerID, string(round))
	var count int
	if err := row.Scan(&count); err != nil {
		return false, pokererr.Wrap("HasActedThisStreet", err)
	}
	return count > 0, nil
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return pokererr.Wrap("RowsAffected", err)
	}
	if n == 0 {
		return pokererr.NewNotFound(entity, id)
	}
	return nil
}
