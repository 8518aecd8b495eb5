package calculator

import (
	"math"
	"testing"
	"time"

	"PrismTracker/internal/model"
)

func barsFromCloses(closes []float64) []model.OHLCV {
	base := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:  base.AddDate(0, 0, i),
			Open:  c,
			High:  c * 1.01,
			Low:   c * 0.99,
			Close: c,
		}
	}
	return bars
}

func TestCalculateDailyVolatility(t *testing.T) {
	// Alternating +1%/-1% daily moves: stddev of returns is about 1%.
	closes := []float64{100}
	for i := 0; i < 40; i++ {
		last := closes[len(closes)-1]
		if i%2 == 0 {
			closes = append(closes, last*1.01)
		} else {
			closes = append(closes, last*0.99)
		}
	}
	vol, err := CalculateDailyVolatility(barsFromCloses(closes))
	if err != nil {
		t.Fatalf("volatility: %v", err)
	}
	if vol < 0.9 || vol > 1.1 {
		t.Errorf("expected ~1%% volatility, got %v", vol)
	}
}

func TestCalculateDailyVolatility_NotEnoughData(t *testing.T) {
	if _, err := CalculateDailyVolatility(barsFromCloses([]float64{100})); err == nil {
		t.Fatal("expected error on a single bar")
	}
}

func TestDefaultLevels_Clamps(t *testing.T) {
	tests := []struct {
		name       string
		volatility float64
		stopPct    float64
		targetPct  float64
	}{
		{"calm market hits floors", 1, 3, 5},
		{"reference volatility", 15, 5, 10},
		{"wild market hits ceilings", 60, 15, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buy := 10000.0
			stop := DefaultStopLoss(buy, tt.volatility)
			target := DefaultTargetPrice(buy, tt.volatility)

			wantStop := buy * (1 - tt.stopPct/100)
			wantTarget := buy * (1 + tt.targetPct/100)
			if math.Abs(stop-wantStop) > 1e-9 {
				t.Errorf("stop = %v, want %v", stop, wantStop)
			}
			if math.Abs(target-wantTarget) > 1e-9 {
				t.Errorf("target = %v, want %v", target, wantTarget)
			}
		})
	}
}

func TestCalculateTrend(t *testing.T) {
	up := make([]float64, 30)
	down := make([]float64, 30)
	flat := make([]float64, 30)
	for i := range up {
		up[i] = 100 + float64(i)*2
		down[i] = 160 - float64(i)*2
		flat[i] = 100 + math.Sin(float64(i))*0.5
	}

	tests := []struct {
		name     string
		closes   []float64
		expected int
	}{
		{"steady climb", up, 2},
		{"steady decline", down, -2},
		{"sideways", flat, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateTrend(barsFromCloses(tt.closes))
			if err != nil {
				t.Fatalf("trend: %v", err)
			}
			if got != tt.expected {
				t.Errorf("trend = %d, want %d", got, tt.expected)
			}
		})
	}
}
