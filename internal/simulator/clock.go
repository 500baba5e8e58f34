package simulator

import (
	"errors"
	"fmt"
	"math"

	"github.com/chrisdamba/campussim/internal/schedule"
)

var (
	ErrNegativeTimeDelta = errors.New("negative time delta")
	ErrInvalidTimeDelta  = errors.New("time delta is not a finite number")
)

// Clock converts real seconds into simulated minutes. Simulated time is
// unbounded and only moves forward; TimeString wraps it for display.
type Clock struct {
	start   float64
	minutes float64
	scale   float64
}

// NewClock starts at an HH:MM time; scale is simulated minutes per real second.
func NewClock(start string, scale float64) (*Clock, error) {
	minutes, err := schedule.ParseClock(start)
	if err != nil {
		return nil, err
	}
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("clock scale must be positive, got %v", scale)
	}
	return &Clock{start: minutes, minutes: minutes, scale: scale}, nil
}

// Tick advances the clock by dtReal seconds and returns the simulated delta.
func (c *Clock) Tick(dtReal float64) (float64, error) {
	if dtReal < 0 {
		return 0, fmt.Errorf("tick %v: %w", dtReal, ErrNegativeTimeDelta)
	}
	if math.IsNaN(dtReal) || math.IsInf(dtReal, 0) {
		return 0, fmt.Errorf("tick %v: %w", dtReal, ErrInvalidTimeDelta)
	}
	dt := dtReal * c.scale
	c.minutes += dt
	return dt, nil
}

func (c *Clock) Minutes() float64 { return c.minutes }
func (c *Clock) Scale() float64   { return c.scale }

// Day is the zero-based simulated day.
func (c *Clock) Day() int {
	return int(math.Floor(c.minutes / schedule.MinutesPerDay))
}

func (c *Clock) TimeString() string {
	return schedule.FormatClock(c.minutes)
}

func (c *Clock) Reset() {
	c.minutes = c.start
}
