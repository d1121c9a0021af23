// Package consumer aplica no livro de apostas as mudanças de status
// recebidas do tópico durável, uma mensagem por vez.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/sports-bet-sync/internal/bet-maker/ledger"
	"github.com/radieske/sports-bet-sync/internal/shared/apperr"
	"github.com/radieske/sports-bet-sync/internal/shared/kafka"
	"github.com/radieske/sports-bet-sync/pkg/contracts/events"
)

const (
	defaultRetryBackoff = 200 * time.Millisecond
	defaultMaxBackoff   = 10 * time.Second
	readErrorPause      = 500 * time.Millisecond
)

// Settler aplica o veredito de um evento resolvido
type Settler interface {
	Settle(ctx context.Context, eventID int64, verdict events.BetStatus) (ledger.Settlement, error)
}

// Processor consome event_status_updates com commit manual.
// O offset só é confirmado depois que a mensagem foi aplicada, ignorada
// (status não terminal) ou enviada à DLQ. Falhas transitórias são
// repetidas no lugar, sem commit, até o contexto ser cancelado.
type Processor struct {
	Log    *zap.Logger
	Reader kafka.MessageReader
	Ledger Settler
	DLQ    kafka.MessageWriter // opcional; sem DLQ a mensagem inválida só é logada

	RetryBackoff time.Duration
	MaxBackoff   time.Duration

	OnConsumed   func()                  // métricas
	OnSettled    func(ledger.Settlement) // métricas e broadcast
	OnIgnored    func()                  // métricas
	OnDeadLetter func()                  // métricas
	OnError      func(string)            // métricas por fase
}

// Run inicia o loop de consumo; retorna quando o contexto é cancelado
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka fetch failed", zap.Error(err))
			p.onError("read")
			if err := sleep(ctx, readErrorPause); err != nil {
				return err
			}
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		if err := p.Handle(ctx, m); err != nil {
			// só acontece com o contexto cancelado; a mensagem será reentregue
			return err
		}

		if err := p.Reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// a reentrega é absorvida pela idempotência do settle
			p.Log.Warn("kafka commit failed",
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
				zap.Error(err),
			)
			p.onError("commit")
		}
	}
}

// Handle processa uma mensagem até o fim. Erro só é devolvido quando o
// contexto é cancelado antes da conclusão; nesse caso não se deve commitar.
func (p *Processor) Handle(ctx context.Context, m kafka.Message) error {
	if v := kafka.Header(m, kafka.HeaderContractVersion); v != "" && v != events.ContractVersion {
		p.Log.Warn("unexpected contract version", zap.String("version", v), zap.Int64("offset", m.Offset))
	}

	msg, err := decode(m.Value)
	if err != nil {
		p.Log.Warn("invalid status message",
			zap.ByteString("key", m.Key),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
			zap.Error(err),
		)
		p.onError("decode")
		return p.deadLetter(ctx, m, err)
	}

	verdict, ok := msg.Status.Verdict()
	if !ok {
		p.Log.Debug("non-terminal status ignored", zap.Int64("event_id", msg.EventID), zap.String("status", string(msg.Status)))
		if p.OnIgnored != nil {
			p.OnIgnored()
		}
		return nil
	}

	return p.retry(ctx, "settle", zap.Int64("event_id", msg.EventID), func() error {
		s, err := p.Ledger.Settle(ctx, msg.EventID, verdict)
		if err != nil {
			return err
		}
		if p.OnSettled != nil {
			p.OnSettled(s)
		}
		return nil
	})
}

func decode(b []byte) (events.EventStatusChanged, error) {
	var msg events.EventStatusChanged
	if err := json.Unmarshal(b, &msg); err != nil {
		return msg, fmt.Errorf("%w: %w", apperr.ErrParse, err)
	}
	if msg.EventID <= 0 {
		return msg, fmt.Errorf("%w: event_id must be positive, got %d", apperr.ErrParse, msg.EventID)
	}
	if msg.Status == "" {
		return msg, fmt.Errorf("%w: status is required", apperr.ErrParse)
	}
	return msg, nil
}

// deadLetter copia a mensagem para a DLQ com o motivo no header
func (p *Processor) deadLetter(ctx context.Context, m kafka.Message, reason error) error {
	if p.DLQ == nil {
		return nil
	}

	headers := make([]kafka.MessageHeader, 0, len(m.Headers)+1)
	headers = append(headers, m.Headers...)
	headers = append(headers, kafka.MessageHeader{Key: kafka.HeaderDLQReason, Value: []byte(reason.Error())})

	// sem Topic: o writer da DLQ já define o destino
	dl := kafka.Message{Key: m.Key, Value: m.Value, Headers: headers, Time: time.Now()}

	return p.retry(ctx, "dlq", zap.Int64("offset", m.Offset), func() error {
		if err := p.DLQ.WriteMessages(ctx, dl); err != nil {
			return err
		}
		if p.OnDeadLetter != nil {
			p.OnDeadLetter()
		}
		return nil
	})
}

// retry repete fn com backoff exponencial limitado até sucesso ou cancelamento
func (p *Processor) retry(ctx context.Context, stage string, field zap.Field, fn func() error) error {
	backoff := p.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	maxBackoff := p.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = defaultMaxBackoff
	}

	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		p.Log.Warn(stage+" failed, retrying",
			field,
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		p.onError(stage)

		if err := sleep(ctx, backoff); err != nil {
			return err
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (p *Processor) onError(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
