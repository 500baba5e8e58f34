package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const MinutesPerDay = 24 * 60

var (
	ErrInvalidTimeFormat = errors.New("invalid time format")
	ErrInvalidTimeRange  = errors.New("time outside a single day")
)

// ParseClock converts "HH:MM" into minutes since midnight.
func ParseClock(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeRange, s)
	}
	return float64(hour*60 + minute), nil
}

// FormatClock renders minutes as HH:MM, wrapping past midnight.
func FormatClock(minutes float64) string {
	total := int(minutes)
	if total < 0 {
		total = 0
	}
	total %= MinutesPerDay
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// Event is one timed destination of a class.
type Event struct {
	Start    float64
	Location string
	Duration float64
}

func (e Event) End() float64 {
	return e.Start + e.Duration
}

func (e Event) Clock() string {
	return FormatClock(e.Start)
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s (%gm)", e.Clock(), e.Location, e.Duration)
}

// Schedule is the list of events for one class, always sorted by start.
type Schedule struct {
	Class  string
	events []Event
}

func New(class string) *Schedule {
	return &Schedule{Class: class}
}

// Add parses the start time and inserts the event.
func (s *Schedule) Add(clock, location string, duration float64) error {
	start, err := ParseClock(clock)
	if err != nil {
		return err
	}
	if location == "" {
		return fmt.Errorf("%s event at %s: empty location", s.Class, clock)
	}
	if duration < 0 {
		return fmt.Errorf("%s event at %s: negative duration %v", s.Class, clock, duration)
	}
	s.Insert(Event{Start: start, Location: location, Duration: duration})
	return nil
}

// Insert places e after every event with the same or earlier start.
func (s *Schedule) Insert(e Event) {
	i := sort.Search(len(s.events), func(i int) bool {
		return s.events[i].Start > e.Start
	})
	s.events = append(s.events, Event{})
	copy(s.events[i+1:], s.events[i:])
	s.events[i] = e
}

// Next returns the first event starting strictly after now.
func (s *Schedule) Next(now float64) (Event, bool) {
	i := s.after(now)
	if i == len(s.events) {
		return Event{}, false
	}
	return s.events[i], true
}

// Upcoming returns every event starting strictly after now.
func (s *Schedule) Upcoming(now float64) []Event {
	return append([]Event(nil), s.events[s.after(now):]...)
}

// NextDeadline is the start of the next event minus buffer.
func (s *Schedule) NextDeadline(now, buffer float64) (float64, bool) {
	e, ok := s.Next(now)
	if !ok {
		return 0, false
	}
	return e.Start - buffer, true
}

func (s *Schedule) Events() []Event {
	return append([]Event(nil), s.events...)
}

func (s *Schedule) Len() int {
	return len(s.events)
}

func (s *Schedule) after(now float64) int {
	return sort.Search(len(s.events), func(i int) bool {
		return s.events[i].Start > now
	})
}
