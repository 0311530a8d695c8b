package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestDiff(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	e1 := NewMemoryEntry("hello", "welcome", t0)
	e2 := NewMemoryEntry("add a latte", "added", t0.Add(time.Minute))
	e3 := NewMemoryEntry("confirm", "confirmed", t0.Add(2*time.Minute))
	one := 1

	tests := []struct {
		name     string
		old      *Session
		new      *Session
		wantDiff *SessionDiff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new: &Session{
				ID:     "sess-1",
				Cart:   []CartLine{{ItemKey: "latte", Quantity: 1}},
				Memory: []MemoryEntry{e1},
			},
			wantDiff: &SessionDiff{
				SessionID: "sess-1",
				Cart:      map[string]int{"latte": 1},
				Memory:    &MemoryDelta{Appended: []MemoryEntry{e1}},
			},
		},
		{
			name:     "No Changes",
			old:      &Session{ID: "sess-1", Cart: []CartLine{{ItemKey: "latte", Quantity: 1}}, Memory: []MemoryEntry{e1}},
			new:      &Session{ID: "sess-1", Cart: []CartLine{{ItemKey: "latte", Quantity: 1}}, Memory: []MemoryEntry{e1}},
			wantDiff: nil,
		},
		{
			name: "Quantity Changed and Line Added",
			old:  &Session{ID: "sess-1", Cart: []CartLine{{ItemKey: "latte", Quantity: 1}}},
			new: &Session{ID: "sess-1", Cart: []CartLine{
				{ItemKey: "latte", Quantity: 2},
				{ItemKey: "mocha", Quantity: 1},
			}},
			wantDiff: &SessionDiff{
				SessionID: "sess-1",
				Cart:      map[string]int{"latte": 2, "mocha": 1},
			},
		},
		{
			name: "Confirmation Clears Cart",
			old:  &Session{ID: "sess-1", Cart: []CartLine{{ItemKey: "latte", Quantity: 1}}, Memory: []MemoryEntry{e1, e2}},
			new:  &Session{ID: "sess-1", Cart: []CartLine{}, Memory: []MemoryEntry{e1, e2, e3}, Orders: 1},
			wantDiff: &SessionDiff{
				SessionID: "sess-1",
				Cart:      map[string]int{"latte": 0},
				Memory:    &MemoryDelta{Appended: []MemoryEntry{e3}},
				Orders:    &one,
			},
		},
		{
			name: "Memory Trimmed at Head",
			old:  &Session{ID: "sess-1", Memory: []MemoryEntry{e1, e2}},
			new:  &Session{ID: "sess-1", Memory: []MemoryEntry{e2, e3}},
			wantDiff: &SessionDiff{
				SessionID: "sess-1",
				Memory:    &MemoryDelta{Appended: []MemoryEntry{e3}, Evicted: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if !reflect.DeepEqual(got, tt.wantDiff) {
				gotJSON, _ := json.MarshalIndent(got, "", "  ")
				wantJSON, _ := json.MarshalIndent(tt.wantDiff, "", "  ")
				t.Errorf("Diff() mismatch\ngot:\n%s\nwant:\n%s", gotJSON, wantJSON)
			}
		})
	}
}

func TestDiff_Serialization(t *testing.T) {
	diff := Diff(nil, &Session{ID: "s", Cart: []CartLine{{ItemKey: "mocha", Quantity: 3}}})
	data, err := json.Marshal(diff)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"cart":{"mocha":3}`) {
		t.Errorf("expected cart delta in %s", out)
	}
	if strings.Contains(out, `"memory"`) {
		t.Errorf("expected memory to be omitted in %s", out)
	}
}
