package capacity

import "testing"

func TestHasFreeSlot(t *testing.T) {
	m := NewManager(10)
	if !m.HasFreeSlot(9) {
		t.Error("expected a free slot at 9/10")
	}
	if m.HasFreeSlot(10) {
		t.Error("expected no free slot at 10/10")
	}
}

func TestObserve_LatestPositiveWins(t *testing.T) {
	m := NewManager(10)

	m.Observe(7)
	if m.Limit() != 7 {
		t.Fatalf("expected limit 7, got %d", m.Limit())
	}
	if m.HasFreeSlot(7) {
		t.Error("expected no free slot at 7/7")
	}

	m.Observe(5)
	if m.Limit() != 5 {
		t.Fatalf("expected limit 5 after later observation, got %d", m.Limit())
	}
}

func TestObserve_ClampAndIgnore(t *testing.T) {
	m := NewManager(10)

	m.Observe(25)
	if m.Limit() != 10 {
		t.Errorf("expected limit clamped to hard cap 10, got %d", m.Limit())
	}

	m.Observe(4)
	m.Observe(0)
	m.Observe(-3)
	if m.Limit() != 4 {
		t.Errorf("expected zero/negative observations ignored, limit 4, got %d", m.Limit())
	}
}

func TestWeightOf(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		capital  float64
		expected float64
	}{
		{"tenth of capital", 1000, 10000, 10},
		{"zero capital", 1000, 0, 0},
		{"negative capital", 1000, -5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeightOf(tt.value, tt.capital); got != tt.expected {
				t.Errorf("WeightOf(%v, %v) = %v, want %v", tt.value, tt.capital, got, tt.expected)
			}
		})
	}
}
