package repo

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/radieske/sports-bet-sync/internal/shared/apperr"
	"github.com/radieske/sports-bet-sync/pkg/contracts/events"
)

//go:embed migrations/*.sql
var Migrations embed.FS

const betColumns = `id, event_id, amount, status, created_at, updated_at`

// Postgres implementa o espelho de eventos e o livro de apostas.
// Cada método é um único statement; não há transação envolvendo mais de um.
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório do bet-maker
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// ListMirror retorna todas as entradas do espelho
func (p *Postgres) ListMirror(ctx context.Context) ([]MirrorEntry, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT event_id, coefficient, created_at FROM mirror_events ORDER BY event_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MirrorEntry{}
	for rows.Next() {
		var m MirrorEntry
		if err := rows.Scan(&m.EventID, &m.Coefficient, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMirror busca a entrada do espelho para um evento
func (p *Postgres) GetMirror(ctx context.Context, eventID int64) (MirrorEntry, error) {
	var m MirrorEntry
	err := p.db.QueryRowContext(ctx,
		`SELECT event_id, coefficient, created_at FROM mirror_events WHERE event_id=$1`, eventID,
	).Scan(&m.EventID, &m.Coefficient, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return MirrorEntry{}, fmt.Errorf("event %d: %w", eventID, apperr.ErrNotFound)
	}
	return m, err
}

// InsertMirror insere as entradas novas. Entrada já existente é mantida
// como está (ON CONFLICT DO NOTHING): coeficiente não é atualizado.
func (p *Postgres) InsertMirror(ctx context.Context, entries []MirrorEntry) error {
	for _, m := range entries {
		if _, err := p.db.ExecContext(ctx, `
			INSERT INTO mirror_events (event_id, coefficient)
			VALUES ($1,$2)
			ON CONFLICT (event_id) DO NOTHING`,
			m.EventID, m.Coefficient,
		); err != nil {
			return fmt.Errorf("insert mirror event %d: %w", m.EventID, err)
		}
	}
	return nil
}

// DeleteMirror remove as entradas dos eventos informados.
// Idempotente: ids ausentes são ignorados.
func (p *Postgres) DeleteMirror(ctx context.Context, eventIDs ...int64) (int64, error) {
	if len(eventIDs) == 0 {
		return 0, nil
	}
	res, err := p.db.ExecContext(ctx, `DELETE FROM mirror_events WHERE event_id = ANY($1)`, pq.Array(eventIDs))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CreateBet insere uma aposta pending e preenche id e timestamps
func (p *Postgres) CreateBet(ctx context.Context, b *Bet) error {
	b.Status = events.BetPending
	return p.db.QueryRowContext(ctx, `
		INSERT INTO bets (event_id, amount, status)
		VALUES ($1,$2,$3)
		RETURNING id, created_at, updated_at`,
		b.EventID, b.Amount, string(b.Status),
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

// ListBets retorna todas as apostas
func (p *Postgres) ListBets(ctx context.Context) ([]Bet, error) {
	return p.queryBets(ctx, `SELECT `+betColumns+` FROM bets ORDER BY id`)
}

// BetsByEvent retorna as apostas de um evento
func (p *Postgres) BetsByEvent(ctx context.Context, eventID int64) ([]Bet, error) {
	return p.queryBets(ctx, `SELECT `+betColumns+` FROM bets WHERE event_id=$1 ORDER BY id`, eventID)
}

// SetBetsStatus sobrescreve o status de todas as apostas do evento num único UPDATE
// (todas mudam juntas ou nenhuma) e retorna os ids afetados.
// Sem compare-and-set: reaplicar o mesmo veredito é inofensivo.
func (p *Postgres) SetBetsStatus(ctx context.Context, eventID int64, st events.BetStatus) ([]int64, error) {
	rows, err := p.db.QueryContext(ctx, `
		UPDATE bets SET status=$1, updated_at=NOW()
		WHERE event_id=$2
		RETURNING id`, string(st), eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (p *Postgres) queryBets(ctx context.Context, q string, args ...any) ([]Bet, error) {
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Bet{}
	for rows.Next() {
		var b Bet
		var st string
		if err := rows.Scan(&b.ID, &b.EventID, &b.Amount, &st, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		b.Status = events.BetStatus(st)
		out = append(out, b)
	}
	return out, rows.Err()
}
