// Package ledgertest fornece um Store em memória para testes do bet-maker.
package ledgertest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/radieske/sports-bet-sync/internal/bet-maker/repo"
	"github.com/radieske/sports-bet-sync/internal/shared/apperr"
	"github.com/radieske/sports-bet-sync/pkg/contracts/events"
)

// MemStore segue as mesmas regras do repositório Postgres
type MemStore struct {
	mu        sync.Mutex
	nextBetID int64
	Mirror    map[int64]repo.MirrorEntry
	Bets      map[int64]repo.Bet

	// SettleErr, quando não nil, é devolvido por SetBetsStatus
	SettleErr error
}

func NewMemStore() *MemStore {
	return &MemStore{Mirror: map[int64]repo.MirrorEntry{}, Bets: map[int64]repo.Bet{}}
}

func (m *MemStore) ListMirror(context.Context) ([]repo.MirrorEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []repo.MirrorEntry{}
	for _, e := range m.Mirror {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventID < out[j].EventID })
	return out, nil
}

func (m *MemStore) GetMirror(_ context.Context, eventID int64) (repo.MirrorEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Mirror[eventID]
	if !ok {
		return repo.MirrorEntry{}, fmt.Errorf("event %d: %w", eventID, apperr.ErrNotFound)
	}
	return e, nil
}

func (m *MemStore) InsertMirror(_ context.Context, entries []repo.MirrorEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if _, ok := m.Mirror[e.EventID]; ok {
			continue
		}
		e.CreatedAt = time.Now()
		m.Mirror[e.EventID] = e
	}
	return nil
}

func (m *MemStore) DeleteMirror(_ context.Context, eventIDs ...int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range eventIDs {
		if _, ok := m.Mirror[id]; ok {
			delete(m.Mirror, id)
			n++
		}
	}
	return n, nil
}

func (m *MemStore) CreateBet(_ context.Context, b *repo.Bet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextBetID++
	b.ID = m.nextBetID
	b.Status = events.BetPending
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	m.Bets[b.ID] = *b
	return nil
}

func (m *MemStore) ListBets(context.Context) ([]repo.Bet, error) {
	return m.bets(func(repo.Bet) bool { return true }), nil
}

func (m *MemStore) BetsByEvent(_ context.Context, eventID int64) ([]repo.Bet, error) {
	return m.bets(func(b repo.Bet) bool { return b.EventID == eventID }), nil
}

func (m *MemStore) SetBetsStatus(_ context.Context, eventID int64, st events.BetStatus) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SettleErr != nil {
		return nil, m.SettleErr
	}
	ids := []int64{}
	for id, b := range m.Bets {
		if b.EventID != eventID {
			continue
		}
		b.Status = st
		b.UpdatedAt = time.Now()
		m.Bets[id] = b
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// SetSettleErr troca o erro de SetBetsStatus com segurança entre goroutines
func (m *MemStore) SetSettleErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SettleErr = err
}

func (m *MemStore) bets(keep func(repo.Bet) bool) []repo.Bet {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []repo.Bet{}
	for _, b := range m.Bets {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
