// Package catalog é a fonte da verdade dos eventos: criação, consulta,
// snapshot de eventos abertos e a máquina de status com publicação
// síncrona de cada transição aceita.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/sports-bet-sync/internal/line-provider/repo"
	"github.com/radieske/sports-bet-sync/internal/shared/apperr"
	"github.com/radieske/sports-bet-sync/pkg/contracts/events"
)

// maxCoefficient respeita NUMERIC(5,2)
var maxCoefficient = decimal.RequireFromString("999.99")

// Store define a persistência usada pelo catálogo
type Store interface {
	Create(ctx context.Context, e *repo.Event) error
	List(ctx context.Context) ([]repo.Event, error)
	Get(ctx context.Context, id int64) (repo.Event, error)
	Active(ctx context.Context, now time.Time) ([]repo.Event, error)
	SetStatus(ctx context.Context, id int64, st events.EventStatus) (repo.Event, error)
}

// Publisher envia uma notificação por transição aceita
type Publisher interface {
	PublishStatusChanged(ctx context.Context, e events.EventStatusChanged) error
}

// SnapshotCache guarda o resultado de Store.Active por um curto período
type SnapshotCache interface {
	Get(ctx context.Context) ([]repo.Event, bool, error)
	Set(ctx context.Context, evs []repo.Event) error
	Invalidate(ctx context.Context) error
}

// CreateInput são os campos aceitos na criação de um evento
type CreateInput struct {
	Coefficient decimal.Decimal
	Deadline    time.Time
	Status      events.EventStatus
}

type Catalog struct {
	Log   *zap.Logger
	Store Store
	Publ  Publisher
	Cache SnapshotCache // opcional
	Now   func() time.Time

	OnTransition   func(events.EventStatus) // métricas
	OnPublishError func()                   // métricas
}

func New(log *zap.Logger, s Store, p Publisher, c SnapshotCache) *Catalog {
	return &Catalog{Log: log, Store: s, Publ: p, Cache: c, Now: time.Now}
}

// Create valida e persiste um novo evento
func (c *Catalog) Create(ctx context.Context, in CreateInput) (repo.Event, error) {
	if err := validateCoefficient(in.Coefficient); err != nil {
		return repo.Event{}, err
	}
	if in.Deadline.IsZero() {
		return repo.Event{}, fmt.Errorf("deadline is required: %w", apperr.ErrInvalidArgument)
	}
	if in.Status == "" {
		in.Status = events.EventUnfinished
	}
	if _, err := events.ParseEventStatus(string(in.Status)); err != nil {
		return repo.Event{}, fmt.Errorf("%v: %w", err, apperr.ErrInvalidArgument)
	}

	e := repo.Event{Coefficient: in.Coefficient, Deadline: in.Deadline.UTC(), Status: in.Status}
	if err := c.Store.Create(ctx, &e); err != nil {
		return repo.Event{}, fmt.Errorf("create event: %w", err)
	}
	c.invalidate(ctx)

	c.Log.Info("event created",
		zap.Int64("event_id", e.ID),
		zap.String("coefficient", e.Coefficient.StringFixed(2)),
		zap.Time("deadline", e.Deadline),
		zap.String("status", string(e.Status)),
	)
	return e, nil
}

func (c *Catalog) List(ctx context.Context) ([]repo.Event, error) {
	return c.Store.List(ctx)
}

func (c *Catalog) Get(ctx context.Context, id int64) (repo.Event, error) {
	return c.Store.Get(ctx, id)
}

// ActiveSnapshot devolve os eventos abertos (status unfinished e deadline > agora)
// reduzidos a {id, coefficient}. Store vazio resulta em slice vazio.
func (c *Catalog) ActiveSnapshot(ctx context.Context) ([]events.ActiveEvent, error) {
	now := c.Now()

	evs, err := c.active(ctx, now)
	if err != nil {
		return nil, err
	}

	out := make([]events.ActiveEvent, 0, len(evs))
	for _, e := range evs {
		// o cache pode ter entradas cujo deadline venceu depois de gravadas
		if !e.OpenAt(now) {
			continue
		}
		out = append(out, events.ActiveEvent{ID: e.ID, Coefficient: e.Coefficient})
	}
	return out, nil
}

func (c *Catalog) active(ctx context.Context, now time.Time) ([]repo.Event, error) {
	if c.Cache != nil {
		evs, ok, err := c.Cache.Get(ctx)
		if err != nil {
			c.Log.Warn("snapshot cache get failed", zap.Error(err))
		} else if ok {
			return evs, nil
		}
	}

	evs, err := c.Store.Active(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("load active events: %w", err)
	}

	if c.Cache != nil {
		if err := c.Cache.Set(ctx, evs); err != nil {
			c.Log.Warn("snapshot cache set failed", zap.Error(err))
		}
	}
	return evs, nil
}

// UpdateStatus aplica a transição e publica a notificação antes de retornar.
// Prazo não importa: o operador pode resolver antes ou depois do deadline.
// Se a publicação falhar, o status já está gravado; o erro (ErrTransport)
// volta para o chamador junto com o evento atualizado. Repetir a mesma
// transição republica a notificação.
func (c *Catalog) UpdateStatus(ctx context.Context, id int64, st events.EventStatus) (repo.Event, error) {
	if _, err := events.ParseEventStatus(string(st)); err != nil {
		return repo.Event{}, fmt.Errorf("%v: %w", err, apperr.ErrInvalidArgument)
	}

	e, err := c.Store.SetStatus(ctx, id, st)
	if err != nil {
		return repo.Event{}, err
	}
	c.invalidate(ctx)
	if c.OnTransition != nil {
		c.OnTransition(st)
	}

	if err := c.Publ.PublishStatusChanged(ctx, events.EventStatusChanged{EventID: id, Status: st}); err != nil {
		if c.OnPublishError != nil {
			c.OnPublishError()
		}
		c.Log.Error("status saved but notification failed",
			zap.Int64("event_id", id),
			zap.String("status", string(st)),
			zap.Error(err),
		)
		return e, fmt.Errorf("publish status of event %d: %w: %w", id, apperr.ErrTransport, err)
	}

	c.Log.Info("event status updated", zap.Int64("event_id", id), zap.String("status", string(st)))
	return e, nil
}

func (c *Catalog) invalidate(ctx context.Context) {
	if c.Cache == nil {
		return
	}
	if err := c.Cache.Invalidate(ctx); err != nil {
		c.Log.Warn("snapshot cache invalidate failed", zap.Error(err))
	}
}

func validateCoefficient(v decimal.Decimal) error {
	switch {
	case !v.IsPositive():
		return fmt.Errorf("coefficient must be greater than 0: %w", apperr.ErrInvalidArgument)
	case !v.Equal(v.Round(2)):
		return fmt.Errorf("coefficient supports at most 2 decimal places: %w", apperr.ErrInvalidArgument)
	case v.GreaterThan(maxCoefficient):
		return fmt.Errorf("coefficient must not exceed %s: %w", maxCoefficient, apperr.ErrInvalidArgument)
	}
	return nil
}
