package repo

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/radieske/sports-bet-sync/internal/shared/apperr"
	"github.com/radieske/sports-bet-sync/pkg/contracts/events"
)

//go:embed migrations/*.sql
var Migrations embed.FS

const eventColumns = `id, coefficient, deadline, status, created_at, updated_at`

// Postgres implementa o catálogo de eventos em banco Postgres
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de eventos
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Create insere o evento e preenche ID e timestamps gerados pelo banco
func (p *Postgres) Create(ctx context.Context, e *Event) error {
	return p.db.QueryRowContext(ctx, `
		INSERT INTO events (coefficient, deadline, status)
		VALUES ($1,$2,$3)
		RETURNING id, created_at, updated_at`,
		e.Coefficient, e.Deadline, string(e.Status),
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// List retorna todos os eventos, em ordem de criação
func (p *Postgres) List(ctx context.Context) ([]Event, error) {
	return p.query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY id`)
}

// Active retorna os eventos ainda abertos para aposta em now
func (p *Postgres) Active(ctx context.Context, now time.Time) ([]Event, error) {
	return p.query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE status = $1 AND deadline > $2
		ORDER BY id`, string(events.EventUnfinished), now)
}

// Get busca um evento pelo id
func (p *Postgres) Get(ctx context.Context, id int64) (Event, error) {
	e, err := scanEvent(p.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, fmt.Errorf("event %d: %w", id, apperr.ErrNotFound)
	}
	return e, err
}

// SetStatus grava o novo status num único UPDATE condicional:
// aceita evento em aberto ou re-set para o mesmo status terminal.
// Qualquer outra transição devolve ErrConflict.
func (p *Postgres) SetStatus(ctx context.Context, id int64, st events.EventStatus) (Event, error) {
	e, err := scanEvent(p.db.QueryRowContext(ctx, `
		UPDATE events SET status=$1, updated_at=NOW()
		WHERE id=$2 AND (status=$3 OR status=$1)
		RETURNING `+eventColumns,
		string(st), id, string(events.EventUnfinished),
	))
	if !errors.Is(err, sql.ErrNoRows) {
		return e, err
	}

	// nenhuma linha: ou o evento não existe, ou a transição é inválida
	var cur string
	err = p.db.QueryRowContext(ctx, `SELECT status FROM events WHERE id=$1`, id).Scan(&cur)
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, fmt.Errorf("event %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return Event{}, err
	}
	return Event{}, fmt.Errorf("event %d is already %s, cannot move to %s: %w", id, cur, st, apperr.ErrConflict)
}

func (p *Postgres) query(ctx context.Context, q string, args ...any) ([]Event, error) {
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (Event, error) {
	var e Event
	var st string
	if err := s.Scan(&e.ID, &e.Coefficient, &e.Deadline, &st, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return Event{}, err
	}
	e.Status = events.EventStatus(st)
	return e, nil
}
