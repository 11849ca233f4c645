package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/radieske/crypto-wager-platform-poc/pkg/contracts/events"
)

// PostgresRepo materializa a projeção de leitura das apostas e o histórico
// de preços. A projeção é só para exibição: o estado autoritativo vive no
// ledger do engine, nunca aqui.
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// ApplyBetEvent atualiza bets_current e grava a linha de histórico
// correspondente ao evento, na mesma transação
func (r *PostgresRepo) ApplyBetEvent(ctx context.Context, ev events.BetEvent) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ts := time.UnixMilli(ev.TsUnixMs).UTC()

	switch ev.Type {
	case events.TypeBetCreated:
		if ev.Created == nil {
			return fmt.Errorf("bet_created without payload")
		}
		c := ev.Created
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO bets_current
			  (bet_id, requester, acceptor, token, amount, predicted_price, is_gt,
			   specified_date, expiration_date, status, winner, updated_at)
			VALUES ($1,$2,'',$3,$4,$5,$6,$7,$8,'PENDING','UNKNOWN',$9)
			ON CONFLICT (bet_id) DO NOTHING`,
			ev.BetID, c.Requester, c.Token, c.Amount, c.PredictedPrice, c.IsGt,
			c.SpecifiedDate, c.ExpirationDate, ts,
		); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO bet_status_history (bet_id, event_type, new_status, event_ts)
			VALUES ($1,$2,'PENDING',$3)`, ev.BetID, ev.Type, ts); err != nil {
			return err
		}

	case events.TypeBetAccepted:
		if ev.Accepted == nil {
			return fmt.Errorf("bet_accepted without payload")
		}
		if _, err = tx.ExecContext(ctx, `
			UPDATE bets_current SET acceptor=$1, status='ACCEPTED', updated_at=$2
			WHERE bet_id=$3`, ev.Accepted.Acceptor, ts, ev.BetID); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO bet_status_history (bet_id, event_type, old_status, new_status, event_ts)
			VALUES ($1,$2,'PENDING','ACCEPTED',$3)`, ev.BetID, ev.Type, ts); err != nil {
			return err
		}

	case events.TypeBetCanceled:
		if ev.Canceled == nil {
			return fmt.Errorf("bet_canceled without payload")
		}
		if _, err = tx.ExecContext(ctx, `
			UPDATE bets_current SET status='CANCELED', updated_at=$1
			WHERE bet_id=$2`, ts, ev.BetID); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO bet_status_history (bet_id, event_type, old_status, new_status, refunded, event_ts)
			VALUES ($1,$2,'PENDING','CANCELED',$3,$4)`,
			ev.BetID, ev.Type, ev.Canceled.Refunded, ts); err != nil {
			return err
		}

	case events.TypeBetStatusChanged:
		if ev.Status == nil {
			return fmt.Errorf("bet_status_changed without payload")
		}
		st := ev.Status
		winner := st.Winner
		if winner == "" {
			winner = "UNKNOWN"
		}
		if _, err = tx.ExecContext(ctx, `
			UPDATE bets_current SET status=$1, winner=$2, updated_at=$3
			WHERE bet_id=$4`, st.NewStatus, winner, ts, ev.BetID); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO bet_status_history
			  (bet_id, event_type, old_status, new_status, winner, payout, fee, refunded, event_ts)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			ev.BetID, ev.Type, st.OldStatus, st.NewStatus, winner,
			st.Payout, st.Fee, st.Refunded, ts); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown bet event type %q", ev.Type)
	}

	return tx.Commit()
}

// UpsertPriceCurrent insere ou atualiza o preço corrente do ativo
func (r *PostgresRepo) UpsertPriceCurrent(ctx context.Context, e events.PriceUpdate) error {
	const q = `
		INSERT INTO prices_current (token, price, version, updated_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (token) DO UPDATE SET
		  price      = EXCLUDED.price,
		  version    = EXCLUDED.version,
		  updated_at = EXCLUDED.updated_at
	`
	_, err := r.DB.ExecContext(ctx, q, e.Token, e.Price, e.Version, e.UpdatedAt)
	return err
}

// InsertPriceHistory grava o tick no histórico de preços
func (r *PostgresRepo) InsertPriceHistory(ctx context.Context, e events.PriceUpdate) error {
	const q = `
		INSERT INTO price_history (token, price, version, updated_at)
		VALUES ($1,$2,$3,$4)
	`
	_, err := r.DB.ExecContext(ctx, q, e.Token, e.Price, e.Version, e.UpdatedAt)
	return err
}
