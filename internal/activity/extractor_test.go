package activity

import (
	"math"
	"testing"
)

func TestExtractUnitConversion(t *testing.T) {
	s := Summary{
		"distance":       12345.0,
		"movingDuration": 1918.1,
		"averageSpeed":   6.5,
		"maxSpeed":       13.2,
	}

	stat, err := Extract(s)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if stat.TotalKm != 12.345 {
		t.Fatalf("unexpected total km: %v", stat.TotalKm)
	}
	if stat.TotalTimeSeconds != 1918.1 {
		t.Fatalf("unexpected duration: %v", stat.TotalTimeSeconds)
	}
	if stat.AvgSpeed == nil || math.Abs(*stat.AvgSpeed-23.4) > 1e-9 {
		t.Fatalf("unexpected avg speed: %v", stat.AvgSpeed)
	}
	if stat.MaxSpeed == nil || math.Abs(*stat.MaxSpeed-47.52) > 1e-9 {
		t.Fatalf("unexpected max speed: %v", stat.MaxSpeed)
	}
}

func TestExtractMovingDurationFallback(t *testing.T) {
	s := Summary{
		"distance":     1000.0,
		"duration":     600.0,
		"averageSpeed": 1.0,
		"maxSpeed":     2.0,
	}

	stat, err := Extract(s)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if stat.TotalTimeSeconds != 600.0 {
		t.Fatalf("expected plain duration fallback, got %v", stat.TotalTimeSeconds)
	}

	// movingDuration present but zero falls back as well
	s["movingDuration"] = 0.0
	stat, err = Extract(s)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if stat.TotalTimeSeconds != 600.0 {
		t.Fatalf("expected fallback on zero movingDuration, got %v", stat.TotalTimeSeconds)
	}
}

func TestExtractRequiredFieldMissing(t *testing.T) {
	cases := []Summary{
		{"duration": 1.0, "averageSpeed": 1.0, "maxSpeed": 1.0},
		{"distance": 1.0, "averageSpeed": 1.0, "maxSpeed": 1.0},
		{"distance": 1.0, "duration": 1.0, "maxSpeed": 1.0},
		{"distance": 1.0, "duration": 1.0, "averageSpeed": 1.0},
		{"distance": "far", "duration": 1.0, "averageSpeed": 1.0, "maxSpeed": 1.0},
	}

	for i, s := range cases {
		if _, err := Extract(s); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestExtractOptionalFieldsDegradeGracefully(t *testing.T) {
	s := Summary{
		"distance":       2000.0,
		"movingDuration": 300.0,
		"averageSpeed":   5.0,
		"maxSpeed":       8.0,
		"calories":       438.0,
		"elevationGain":  112.0,
		"elevationLoss":  nil,
		"averageHR":      "none",
		"maxHR":          160.0,
	}

	stat, err := Extract(s)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if stat.Calories == nil || *stat.Calories != 438 {
		t.Fatalf("unexpected calories: %v", stat.Calories)
	}
	if stat.Ascent == nil || *stat.Ascent != 112.0 {
		t.Fatalf("unexpected ascent: %v", stat.Ascent)
	}
	if stat.Descent != nil {
		t.Fatalf("expected nil descent")
	}
	if stat.AvgHeart != nil {
		t.Fatalf("expected nil avg heart on bad value")
	}
	if stat.MaxHeart == nil || *stat.MaxHeart != 160.0 {
		t.Fatalf("unexpected max heart: %v", stat.MaxHeart)
	}
	if stat.AvgTemperature != nil {
		t.Fatalf("avg temperature has no source field, expected nil")
	}
}
