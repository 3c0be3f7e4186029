package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alejandrodnm/truthbounty/internal/domain"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

const betColumns = `id, platform, user_id, market_id, question, outcome, outcome_label,
	amount, price, status, pnl, created_at, resolved_at`

// SaveBet inserta una apuesta nueva. Si ya existe una del usuario en el mismo
// mercado devuelve domain.ErrDuplicateBet.
func (s *SQLStore) SaveBet(ctx context.Context, bet domain.Bet) error {
	var resolvedAt *string
	if bet.ResolvedAt != nil {
		t := formatTime(*bet.ResolvedAt)
		resolvedAt = &t
	}
	status := bet.Status
	if status == "" {
		status = domain.BetPending
	}

	_, err := s.exec(ctx, `
		INSERT INTO bets (`+betColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bet.ID, string(bet.Platform), bet.User, bet.MarketID, bet.Question,
		bet.Outcome, bet.OutcomeLabel, bet.Amount, bet.Price, string(status),
		bet.PnL, formatTime(bet.CreatedAt), resolvedAt,
	)
	if err != nil {
		return fmt.Errorf("storage.SaveBet: %w", classify(err))
	}
	return nil
}

// GetBet devuelve la apuesta o domain.ErrNotFound.
func (s *SQLStore) GetBet(ctx context.Context, id string) (domain.Bet, error) {
	row := s.queryRow(ctx, `SELECT `+betColumns+` FROM bets WHERE id = ?`, id)
	bet, err := scanBet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Bet{}, fmt.Errorf("storage.GetBet: %w: bet %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return domain.Bet{}, fmt.Errorf("storage.GetBet: %w", classify(err))
	}
	return bet, nil
}

// ListBets devuelve las apuestas que cumplen el filtro, las más recientes primero.
func (s *SQLStore) ListBets(ctx context.Context, f domain.BetFilter) ([]domain.Bet, error) {
	var where []string
	var args []any
	if f.Platform != "" {
		where = append(where, "platform = ?")
		args = append(args, string(f.Platform))
	}
	if f.User != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.User)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}

	q := `SELECT ` + betColumns + ` FROM bets`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, listLimit(f.Limit))

	bets, err := s.queryBets(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("storage.ListBets: %w", err)
	}
	return bets, nil
}

// PendingBets devuelve apuestas pendientes de la plataforma posteriores al
// cursor (created_at, id), las más antiguas primero.
func (s *SQLStore) PendingBets(ctx context.Context, platform domain.Platform, after domain.BetCursor, limit int) ([]domain.Bet, error) {
	q := `SELECT ` + betColumns + ` FROM bets WHERE status = ? AND platform = ?`
	args := []any{string(domain.BetPending), string(platform)}
	if !after.IsZero() {
		ts := formatTime(after.CreatedAt)
		q += ` AND (created_at > ? OR (created_at = ? AND id > ?))`
		args = append(args, ts, ts, after.ID)
	}
	q += ` ORDER BY created_at ASC, id LIMIT ?`
	args = append(args, listLimit(limit))

	bets, err := s.queryBets(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("storage.PendingBets: %w", err)
	}
	return bets, nil
}

// ResolveBet marca una apuesta pendiente como resuelta. Resolver dos veces la
// misma apuesta no la modifica y devuelve domain.ErrNotFound.
func (s *SQLStore) ResolveBet(ctx context.Context, id string, status domain.BetStatus, pnl float64, resolvedAt time.Time) error {
	res, err := s.exec(ctx, `
		UPDATE bets SET status = ?, pnl = ?, resolved_at = ?
		WHERE id = ? AND status = ?`,
		string(status), pnl, formatTime(resolvedAt), id, string(domain.BetPending),
	)
	if err != nil {
		return fmt.Errorf("storage.ResolveBet: %w", classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage.ResolveBet: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("storage.ResolveBet: %w: pending bet %s", domain.ErrNotFound, id)
	}
	return nil
}

// UserStats agrega todas las apuestas del usuario por plataforma.
func (s *SQLStore) UserStats(ctx context.Context, user string) ([]domain.UserStats, error) {
	bets, err := s.queryBets(ctx, `SELECT `+betColumns+` FROM bets WHERE user_id = ?`, user)
	if err != nil {
		return nil, fmt.Errorf("storage.UserStats: %w", err)
	}
	return domain.StatsFromBets(bets), nil
}

func (s *SQLStore) queryBets(ctx context.Context, q string, args ...any) ([]domain.Bet, error) {
	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var bets []domain.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		bets = append(bets, b)
	}
	return bets, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBet(r rowScanner) (domain.Bet, error) {
	var b domain.Bet
	var platform, status, createdAt string
	var question, label, resolvedAt sql.NullString

	if err := r.Scan(
		&b.ID, &platform, &b.User, &b.MarketID, &question, &b.Outcome, &label,
		&b.Amount, &b.Price, &status, &b.PnL, &createdAt, &resolvedAt,
	); err != nil {
		return domain.Bet{}, err
	}

	b.Platform = domain.Platform(platform)
	b.Status = domain.BetStatus(status)
	b.Question = question.String
	b.OutcomeLabel = label.String
	b.CreatedAt = parseTime(createdAt)
	if resolvedAt.Valid && resolvedAt.String != "" {
		t := parseTime(resolvedAt.String)
		b.ResolvedAt = &t
	}
	return b, nil
}

func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return min(limit, maxListLimit)
}
