// Package ledger guarda as apostas do bet-maker e aplica o veredito
// de um evento resolvido a todas as apostas dele.
package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/sports-bet-sync/internal/bet-maker/repo"
	"github.com/radieske/sports-bet-sync/internal/shared/apperr"
	"github.com/radieske/sports-bet-sync/pkg/contracts/events"
)

// maxAmount respeita NUMERIC(10,2)
var maxAmount = decimal.RequireFromString("99999999.99")

type Store interface {
	ListMirror(ctx context.Context) ([]repo.MirrorEntry, error)
	GetMirror(ctx context.Context, eventID int64) (repo.MirrorEntry, error)
	DeleteMirror(ctx context.Context, eventIDs ...int64) (int64, error)
	CreateBet(ctx context.Context, b *repo.Bet) error
	ListBets(ctx context.Context) ([]repo.Bet, error)
	BetsByEvent(ctx context.Context, eventID int64) ([]repo.Bet, error)
	SetBetsStatus(ctx context.Context, eventID int64, st events.BetStatus) ([]int64, error)
}

// Settlement descreve o efeito de um veredito aplicado
type Settlement struct {
	EventID      int64
	Status       events.BetStatus
	BetIDs       []int64
	MirrorPruned bool
}

type Ledger struct {
	Log   *zap.Logger
	Store Store
}

func New(log *zap.Logger, s Store) *Ledger {
	return &Ledger{Log: log, Store: s}
}

// Events lista os eventos apostáveis (o espelho local)
func (l *Ledger) Events(ctx context.Context) ([]repo.MirrorEntry, error) {
	return l.Store.ListMirror(ctx)
}

// CreateBet registra uma aposta pending. O evento precisa estar no espelho;
// a checagem e o insert não são atômicos contra uma poda concorrente.
func (l *Ledger) CreateBet(ctx context.Context, eventID int64, amount decimal.Decimal) (repo.Bet, error) {
	if err := validateAmount(amount); err != nil {
		return repo.Bet{}, err
	}
	if _, err := l.Store.GetMirror(ctx, eventID); err != nil {
		return repo.Bet{}, err
	}

	b := repo.Bet{EventID: eventID, Amount: amount}
	if err := l.Store.CreateBet(ctx, &b); err != nil {
		return repo.Bet{}, fmt.Errorf("create bet: %w", err)
	}

	l.Log.Info("bet placed",
		zap.Int64("bet_id", b.ID),
		zap.Int64("event_id", eventID),
		zap.String("amount", amount.StringFixed(2)),
	)
	return b, nil
}

func (l *Ledger) ListBets(ctx context.Context) ([]repo.Bet, error) {
	return l.Store.ListBets(ctx)
}

func (l *Ledger) BetsByEvent(ctx context.Context, eventID int64) ([]repo.Bet, error) {
	return l.Store.BetsByEvent(ctx, eventID)
}

// Settle remove o evento do espelho e grava o veredito em todas as suas
// apostas. Cada passo é idempotente; reaplicar a mesma mensagem resulta no
// mesmo estado. Os dois passos não formam uma transação: se o segundo
// falhar, a reentrega refaz ambos.
func (l *Ledger) Settle(ctx context.Context, eventID int64, verdict events.BetStatus) (Settlement, error) {
	if verdict != events.BetWon && verdict != events.BetLost {
		return Settlement{}, fmt.Errorf("verdict %q: %w", verdict, apperr.ErrInvalidArgument)
	}

	pruned, err := l.Store.DeleteMirror(ctx, eventID)
	if err != nil {
		return Settlement{}, fmt.Errorf("prune mirror event %d: %w", eventID, err)
	}

	ids, err := l.Store.SetBetsStatus(ctx, eventID, verdict)
	if err != nil {
		return Settlement{}, fmt.Errorf("settle bets of event %d: %w", eventID, err)
	}

	s := Settlement{EventID: eventID, Status: verdict, BetIDs: ids, MirrorPruned: pruned > 0}
	l.Log.Info("event settled",
		zap.Int64("event_id", eventID),
		zap.String("verdict", string(verdict)),
		zap.Int("bets", len(ids)),
		zap.Bool("mirror_pruned", s.MirrorPruned),
	)
	return s, nil
}

func validateAmount(v decimal.Decimal) error {
	switch {
	case !v.IsPositive():
		return fmt.Errorf("amount must be greater than 0: %w", apperr.ErrInvalidArgument)
	case !v.Equal(v.Round(2)):
		return fmt.Errorf("amount supports at most 2 decimal places: %w", apperr.ErrInvalidArgument)
	case v.GreaterThan(maxAmount):
		return fmt.Errorf("amount must not exceed %s: %w", maxAmount, apperr.ErrInvalidArgument)
	}
	return nil
}
