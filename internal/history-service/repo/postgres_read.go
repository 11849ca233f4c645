package repo

import (
	"context"
	"database/sql"

	"github.com/radieske/crypto-wager-platform-poc/internal/history-service/dto"
)

type ReadRepo struct {
	DB *sql.DB
}

const betColumns = `
	bet_id, requester, acceptor, token, amount, predicted_price, is_gt,
	to_char(specified_date, 'YYYY-MM-DD"T"HH24:MI:SSZ'),
	to_char(expiration_date, 'YYYY-MM-DD"T"HH24:MI:SSZ'),
	status, winner,
	to_char(updated_at, 'YYYY-MM-DD"T"HH24:MI:SSZ')`

func scanBet(rows interface{ Scan(...any) error }) (dto.BetRow, error) {
	var b dto.BetRow
	err := rows.Scan(&b.BetID, &b.Requester, &b.Acceptor, &b.Token, &b.Amount,
		&b.PredictedPrice, &b.IsGt, &b.SpecifiedDate, &b.ExpirationDate,
		&b.Status, &b.Winner, &b.UpdatedAt)
	return b, err
}

// ListBets retorna as apostas mais recentes da projeção
func (r *ReadRepo) ListBets(ctx context.Context, limit int) ([]dto.BetRow, error) {
	const q = `
		SELECT ` + betColumns + `
		FROM bets_current
		ORDER BY bet_id DESC
		LIMIT $1;
	`
	rows, err := r.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dto.BetRow
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetBet retorna uma aposta pelo id
func (r *ReadRepo) GetBet(ctx context.Context, betID int64) (dto.BetRow, error) {
	const q = `
		SELECT ` + betColumns + `
		FROM bets_current
		WHERE bet_id = $1;
	`
	return scanBet(r.DB.QueryRowContext(ctx, q, betID))
}

// ListBetsByAccount retorna as apostas em que a conta participa, como
// requester ou acceptor
func (r *ReadRepo) ListBetsByAccount(ctx context.Context, account string) ([]dto.BetRow, error) {
	const q = `
		SELECT ` + betColumns + `
		FROM bets_current
		WHERE requester = $1 OR acceptor = $1
		ORDER BY bet_id DESC;
	`
	rows, err := r.DB.QueryContext(ctx, q, account)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dto.BetRow
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetStatusHistory retorna as transições registradas de uma aposta
func (r *ReadRepo) GetStatusHistory(ctx context.Context, betID int64) ([]dto.StatusChange, error) {
	const q = `
		SELECT bet_id, event_type, COALESCE(old_status,''), new_status,
		       COALESCE(winner,''), COALESCE(payout,0), COALESCE(fee,0), COALESCE(refunded,0),
		       to_char(event_ts, 'YYYY-MM-DD"T"HH24:MI:SSZ')
		FROM bet_status_history
		WHERE bet_id = $1
		ORDER BY event_ts;
	`
	rows, err := r.DB.QueryContext(ctx, q, betID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dto.StatusChange
	for rows.Next() {
		var s dto.StatusChange
		if err := rows.Scan(&s.BetID, &s.EventType, &s.OldStatus, &s.NewStatus,
			&s.Winner, &s.Payout, &s.Fee, &s.Refunded, &s.EventTs); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetPriceHistory retorna as últimas amostras de preço de um ativo
func (r *ReadRepo) GetPriceHistory(ctx context.Context, token string, limit int) ([]dto.PricePoint, error) {
	const q = `
		SELECT token, price, version, to_char(updated_at, 'YYYY-MM-DD"T"HH24:MI:SSZ')
		FROM price_history
		WHERE token = $1
		ORDER BY updated_at DESC
		LIMIT $2;
	`
	rows, err := r.DB.QueryContext(ctx, q, token, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dto.PricePoint
	for rows.Next() {
		var p dto.PricePoint
		if err := rows.Scan(&p.Token, &p.Price, &p.Version, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
