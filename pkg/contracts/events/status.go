package events

import (
	"encoding/json"
	"fmt"
)

// ContractVersion vai no header "contract-version" de cada mensagem publicada.
const ContractVersion = "1"

// EventStatus é o conjunto fechado de códigos de status de um evento.
type EventStatus string

const (
	EventUnfinished EventStatus = "unfinished"
	EventWinA       EventStatus = "A" // vitória do primeiro time
	EventWinB       EventStatus = "B" // vitória do segundo time
)

// ParseEventStatus valida um código recebido de fora (HTTP ou fila).
func ParseEventStatus(s string) (EventStatus, error) {
	switch st := EventStatus(s); st {
	case EventUnfinished, EventWinA, EventWinB:
		return st, nil
	}
	return "", fmt.Errorf("unknown event status %q", s)
}

// Terminal indica se o status representa um resultado final.
func (s EventStatus) Terminal() bool {
	return s == EventWinA || s == EventWinB
}

// Verdict traduz o resultado do evento no status das apostas.
// ok=false para status não terminais: apostas ficam intocadas.
func (s EventStatus) Verdict() (BetStatus, bool) {
	switch s {
	case EventWinA:
		return BetWon, true
	case EventWinB:
		return BetLost, true
	}
	return "", false
}

func (s *EventStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	st, err := ParseEventStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// BetStatus é o status de uma aposta no bet-maker.
type BetStatus string

const (
	BetPending BetStatus = "pending"
	BetWon     BetStatus = "won"
	BetLost    BetStatus = "lost"
)
