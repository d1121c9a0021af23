// Package mirror mantém o espelho local de eventos apostáveis alinhado com
// o snapshot de eventos abertos do line-provider.
package mirror

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/sports-bet-sync/internal/bet-maker/repo"
	"github.com/radieske/sports-bet-sync/pkg/contracts/events"
)

// Source entrega o snapshot completo de eventos abertos
type Source interface {
	ActiveEvents(ctx context.Context) ([]events.ActiveEvent, error)
}

type Store interface {
	ListMirror(ctx context.Context) ([]repo.MirrorEntry, error)
	InsertMirror(ctx context.Context, entries []repo.MirrorEntry) error
	DeleteMirror(ctx context.Context, eventIDs ...int64) (int64, error)
}

// DefaultInterval vale quando Interval não é positivo
const DefaultInterval = 5 * time.Second

// maxCoefficient respeita NUMERIC(5,2) da tabela do espelho
var maxCoefficient = decimal.RequireFromString("999.99")

// Result resume um ciclo de reconciliação
type Result struct {
	Pulled   int
	Inserted int
	Deleted  int
	Skipped  int // entradas do snapshot que o espelho não aceita
}

type Reconciler struct {
	Log      *zap.Logger
	Source   Source
	Store    Store
	Interval time.Duration
	Timeout  time.Duration // limite de cada ciclo (pull + escrita)

	OnCycle func(Result, error) // métricas
}

func New(log *zap.Logger, src Source, s Store, interval, timeout time.Duration) *Reconciler {
	return &Reconciler{Log: log, Source: src, Store: s, Interval: interval, Timeout: timeout}
}

// Run executa um ciclo a cada Interval até o contexto ser cancelado.
// O primeiro ciclo acontece após um Interval; use Reconcile para um
// ciclo imediato. Ciclos nunca se sobrepõem: ticks perdidos durante um
// ciclo lento são descartados pelo ticker.
func (r *Reconciler) Run(ctx context.Context) error {
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if _, err := r.Reconcile(ctx); err != nil && ctx.Err() == nil {
				// próximo tick tenta de novo
				r.Log.Warn("mirror reconcile failed", zap.Error(err))
			}
		}
	}
}

// Reconcile faz um ciclo: puxa o snapshot, remove do espelho o que saiu
// e insere o que entrou. Entradas presentes nos dois lados ficam intactas.
// Se o pull falhar, nada é alterado.
func (r *Reconciler) Reconcile(ctx context.Context) (res Result, err error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	defer func() {
		if r.OnCycle != nil {
			r.OnCycle(res, err)
		}
	}()

	snapshot, err := r.Source.ActiveEvents(ctx)
	if err != nil {
		return res, err
	}
	res.Pulled = len(snapshot)

	current, err := r.Store.ListMirror(ctx)
	if err != nil {
		return res, fmt.Errorf("load mirror: %w", err)
	}

	stale, fresh, skipped := diff(current, snapshot)
	for _, e := range skipped {
		r.Log.Warn("skipping invalid snapshot entry",
			zap.Int64("event_id", e.ID),
			zap.String("coefficient", e.Coefficient.String()),
		)
	}
	res.Skipped = len(skipped)

	if len(stale) > 0 {
		n, err := r.Store.DeleteMirror(ctx, stale...)
		if err != nil {
			return res, fmt.Errorf("delete stale mirror entries: %w", err)
		}
		res.Deleted = int(n)
	}
	if len(fresh) > 0 {
		if err := r.Store.InsertMirror(ctx, fresh); err != nil {
			return res, fmt.Errorf("insert mirror entries: %w", err)
		}
		res.Inserted = len(fresh)
	}

	if res.Inserted > 0 || res.Deleted > 0 {
		r.Log.Info("mirror reconciled",
			zap.Int("pulled", res.Pulled),
			zap.Int("inserted", res.Inserted),
			zap.Int("deleted", res.Deleted),
		)
	} else {
		r.Log.Debug("mirror up to date", zap.Int("pulled", res.Pulled))
	}
	return res, nil
}

// diff devolve os ids do espelho ausentes no snapshot, as entradas do
// snapshot ausentes no espelho e as entradas inválidas. Uma entrada
// inválida ainda conta como aberta (não remove o que já está espelhado),
// mas nunca é inserida.
func diff(current []repo.MirrorEntry, snapshot []events.ActiveEvent) (stale []int64, fresh []repo.MirrorEntry, skipped []events.ActiveEvent) {
	open := make(map[int64]struct{}, len(snapshot))
	for _, e := range snapshot {
		open[e.ID] = struct{}{}
	}
	have := make(map[int64]struct{}, len(current))
	for _, m := range current {
		have[m.EventID] = struct{}{}
		if _, ok := open[m.EventID]; !ok {
			stale = append(stale, m.EventID)
		}
	}
	for _, e := range snapshot {
		if _, ok := have[e.ID]; ok {
			continue
		}
		if !valid(e) {
			skipped = append(skipped, e)
			continue
		}
		have[e.ID] = struct{}{} // ids repetidos no snapshot
		fresh = append(fresh, repo.MirrorEntry{EventID: e.ID, Coefficient: e.Coefficient})
	}
	return stale, fresh, skipped
}

func valid(e events.ActiveEvent) bool {
	c := e.Coefficient
	return e.ID > 0 && c.IsPositive() && c.Equal(c.Round(2)) && !c.GreaterThan(maxCoefficient)
}
