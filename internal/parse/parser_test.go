package parse

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/nezinomas/maps/internal/shared/geo"
)

func TestForFile(t *testing.T) {
	p, err := ForFile("/media/tracks/1/123.tcx")
	if err != nil {
		t.Fatalf("tcx: %v", err)
	}
	if _, ok := p.(TCX); !ok {
		t.Fatalf("expected TCX parser, got %T", p)
	}

	p, err = ForFile("/media/tracks/1/123.FIT")
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if _, ok := p.(FIT); !ok {
		t.Fatalf("expected FIT parser, got %T", p)
	}

	if _, err := ForFile("/media/tracks/1/123.gpx"); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
}

func TestSemicircleConversion(t *testing.T) {
	// 2^31 semicircles == 180 degrees
	got := float64(1<<30) * semicirclesToDeg
	if math.Abs(got-90.0) > 1e-9 {
		t.Fatalf("unexpected conversion: %v", got)
	}
	if v := geo.Round5(float64(1<<29) * semicirclesToDeg); v != 45.0 {
		t.Fatalf("unexpected degrees: %v", v)
	}
}

func TestFITMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.fit")

	if _, err := (FIT{}).TrackPath(missing); err == nil {
		t.Fatalf("expected error for missing file")
	}

	before := time.Now().UTC()
	got := FIT{}.TrackDate(missing)
	if got.Before(before.Add(-time.Minute)) {
		t.Fatalf("expected fallback to current time, got %v", got)
	}
}
