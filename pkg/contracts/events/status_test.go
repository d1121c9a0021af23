package events

import (
	"encoding/json"
	"testing"
)

func TestParseEventStatus(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    EventStatus
		wantErr bool
	}{
		{"unfinished", EventUnfinished, false},
		{"A", EventWinA, false},
		{"B", EventWinB, false},
		{"a", "", true},
		{"", "", true},
		{"завершено выигрышем первой команды", "", true},
	} {
		got, err := ParseEventStatus(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseEventStatus(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseEventStatus(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestVerdict(t *testing.T) {
	if v, ok := EventWinA.Verdict(); !ok || v != BetWon {
		t.Errorf("A.Verdict() = %q,%v, want won,true", v, ok)
	}
	if v, ok := EventWinB.Verdict(); !ok || v != BetLost {
		t.Errorf("B.Verdict() = %q,%v, want lost,true", v, ok)
	}
	if _, ok := EventUnfinished.Verdict(); ok {
		t.Error("unfinished must not produce a verdict")
	}
	if EventUnfinished.Terminal() {
		t.Error("unfinished must not be terminal")
	}
}

func TestEventStatusChanged_Wire(t *testing.T) {
	b, err := json.Marshal(EventStatusChanged{EventID: 1, Status: EventWinA})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"event_id":1,"status":"A"}` {
		t.Errorf("wire = %s", b)
	}

	var msg EventStatusChanged
	if err := json.Unmarshal([]byte(`{"event_id":7,"status":"B"}`), &msg); err != nil {
		t.Fatal(err)
	}
	if msg.EventID != 7 || msg.Status != EventWinB {
		t.Errorf("decoded = %+v", msg)
	}

	if err := json.Unmarshal([]byte(`{"event_id":7,"status":"draw"}`), &msg); err == nil {
		t.Error("expected error for unknown status code")
	}
}

func TestActiveEvent_CoefficientAsNumber(t *testing.T) {
	var e ActiveEvent
	if err := json.Unmarshal([]byte(`{"id":1,"coefficient":1.50}`), &e); err != nil {
		t.Fatal(err)
	}
	b, _ := json.Marshal(e)
	if string(b) != `{"id":1,"coefficient":1.5}` {
		t.Errorf("wire = %s", b)
	}
}
