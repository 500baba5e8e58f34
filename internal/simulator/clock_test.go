package simulator

import (
	"errors"
	"math"
	"testing"
)

func TestClockTick(t *testing.T) {
	c, err := NewClock("07:30", 60)
	if err != nil {
		t.Fatal(err)
	}
	if c.Minutes() != 450 || c.TimeString() != "07:30" {
		t.Fatalf("start = %v %s", c.Minutes(), c.TimeString())
	}
	dt, err := c.Tick(0.5)
	if err != nil {
		t.Fatal(err)
	}
	if dt != 30 || c.TimeString() != "08:00" {
		t.Errorf("dt = %v, time = %s", dt, c.TimeString())
	}
	if _, err := c.Tick(-1); !errors.Is(err, ErrNegativeTimeDelta) {
		t.Errorf("negative tick error = %v", err)
	}
	if c.Minutes() != 480 {
		t.Errorf("a rejected tick must not move the clock, minutes = %v", c.Minutes())
	}
	if dt, _ := c.Tick(0); dt != 0 {
		t.Errorf("zero tick dt = %v", dt)
	}
}

func TestClockPastMidnight(t *testing.T) {
	c, err := NewClock("23:30", 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Tick(45); err != nil {
		t.Fatal(err)
	}
	if c.Minutes() != 1455 || c.Day() != 1 || c.TimeString() != "00:15" {
		t.Errorf("minutes %v day %d time %s", c.Minutes(), c.Day(), c.TimeString())
	}
	c.Reset()
	if c.Minutes() != 1410 || c.Day() != 0 {
		t.Errorf("after reset minutes %v day %d", c.Minutes(), c.Day())
	}
}

func TestNewClockRejects(t *testing.T) {
	for _, tc := range []struct {
		start string
		scale float64
	}{
		{"7am", 1},
		{"25:00", 1},
		{"07:00", 0},
		{"07:00", -2},
	} {
		if _, err := NewClock(tc.start, tc.scale); err == nil {
			t.Errorf("NewClock(%q, %v) should fail", tc.start, tc.scale)
		}
	}
}

func TestClockRejectsNonFiniteTicks(t *testing.T) {
	c, err := NewClock("07:30", 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, dt := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		got, err := c.Tick(dt)
		if err == nil || got != 0 {
			t.Errorf("Tick(%v) = %v, %v", dt, got, err)
		}
	}
	if _, err := c.Tick(math.NaN()); !errors.Is(err, ErrInvalidTimeDelta) {
		t.Errorf("NaN tick error = %v", err)
	}
	if c.Minutes() != 450 {
		t.Errorf("rejected ticks moved the clock to %v", c.Minutes())
	}
}
