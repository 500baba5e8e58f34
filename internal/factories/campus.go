package factories

import (
	"github.com/chrisdamba/campussim/internal/models"
	"github.com/samber/lo"
)

// DefaultCampusMap is a campus split by a river. Teaching buildings and the
// library sit on the north bank, the canteen, sports area and dormitories on
// the south bank. Four bridges cross the river; the two middle ones are
// narrow and hold 15 people at a time.
func DefaultCampusMap() *models.MapConfig {
	loc := func(id, name string, x, y float64) models.LocationConfig {
		return models.LocationConfig{ID: id, Name: name, X: x, Y: y}
	}
	path := func(from, to string, length float64) models.RouteConfig {
		return models.RouteConfig{From: from, To: to, Length: length}
	}
	wideBridge := func(from, to string) models.RouteConfig {
		return models.RouteConfig{From: from, To: to, Length: 120, Constrained: true, CongestionFactor: lo.ToPtr(0.0)}
	}
	narrowBridge := func(from, to string) models.RouteConfig {
		return models.RouteConfig{From: from, To: to, Length: 120, Capacity: 15, Constrained: true, CongestionFactor: lo.ToPtr(1.5)}
	}

	return &models.MapConfig{
		Locations: []models.LocationConfig{
			loc("D3a", "Room D3a", 160, 150),
			loc("D3b", "Room D3b", 320, 150),
			loc("D3c", "Room D3c", 480, 150),
			loc("D3d", "Room D3d", 640, 150),
			loc("F3a", "Room F3a", 800, 150),
			loc("F3b", "Room F3b", 960, 150),
			loc("F3c", "Room F3c", 1120, 150),
			loc("library", "Library", 640, 230),
			loc("F3d", "Room F3d", 1120, 230),

			loc("bridge_west_n", "West Bridge (N)", 160, 300),
			loc("bridge_west_s", "West Bridge (S)", 160, 420),
			loc("bridge_midwest_n", "Mid-West Bridge (N)", 480, 300),
			loc("bridge_midwest_s", "Mid-West Bridge (S)", 480, 420),
			loc("bridge_mideast_n", "Mid-East Bridge (N)", 800, 300),
			loc("bridge_mideast_s", "Mid-East Bridge (S)", 800, 420),
			loc("bridge_east_n", "East Bridge (N)", 1120, 300),
			loc("bridge_east_s", "East Bridge (S)", 1120, 420),

			loc("canteen", "Canteen", 160, 520),
			loc("gym", "Gym", 480, 520),
			loc("playground", "Playground", 480, 600),
			loc("D5a", "Dorm D5a", 800, 520),
			loc("D5b", "Dorm D5b", 960, 520),
			loc("D5c", "Dorm D5c", 800, 600),
			loc("D5d", "Dorm D5d", 960, 600),
		},
		Routes: []models.RouteConfig{
			// north bank
			path("D3a", "D3b", 80),
			path("D3b", "D3c", 80),
			path("D3c", "D3d", 80),
			path("F3a", "F3b", 80),
			path("F3b", "F3c", 80),
			path("F3c", "F3d", 80),
			path("D3d", "library", 120),
			path("F3a", "library", 120),
			path("D3a", "bridge_west_n", 150),
			path("D3b", "bridge_west_n", 200),
			path("D3c", "bridge_midwest_n", 180),
			path("D3d", "bridge_midwest_n", 150),
			path("library", "bridge_midwest_n", 150),
			path("library", "bridge_mideast_n", 150),
			path("F3a", "bridge_mideast_n", 150),
			path("F3b", "bridge_mideast_n", 180),
			path("F3c", "bridge_east_n", 200),
			path("F3d", "bridge_east_n", 150),

			// riverside roads
			path("bridge_west_n", "bridge_midwest_n", 320),
			path("bridge_midwest_n", "bridge_mideast_n", 320),
			path("bridge_mideast_n", "bridge_east_n", 320),
			path("bridge_west_s", "bridge_midwest_s", 320),
			path("bridge_midwest_s", "bridge_mideast_s", 320),
			path("bridge_mideast_s", "bridge_east_s", 320),

			wideBridge("bridge_west_n", "bridge_west_s"),
			narrowBridge("bridge_midwest_n", "bridge_midwest_s"),
			narrowBridge("bridge_mideast_n", "bridge_mideast_s"),
			wideBridge("bridge_east_n", "bridge_east_s"),

			// south bank
			path("bridge_west_s", "canteen", 150),
			path("bridge_midwest_s", "canteen", 120),
			path("bridge_midwest_s", "gym", 150),
			path("bridge_mideast_s", "gym", 150),
			path("bridge_mideast_s", "D5a", 120),
			path("bridge_east_s", "D5b", 150),
			path("canteen", "gym", 200),
			path("gym", "playground", 80),
			path("gym", "D5a", 180),
			path("playground", "D5c", 180),
			path("D5a", "D5b", 80),
			path("D5c", "D5d", 80),
			path("D5a", "D5c", 80),
			path("D5b", "D5d", 80),
			path("canteen", "playground", 250),
		},
	}
}

const (
	// travelAllowance is kept free between the end of one event and the
	// start of the next.
	travelAllowance = 15.0
	minDuration     = 5.0
	lastDuration    = 60.0
)

// timetable turns alternating "HH:MM", location pairs into events whose
// durations leave travelAllowance before the next start.
func timetable(class, home string, slots ...string) models.ScheduleConfig {
	sc := models.ScheduleConfig{Class: class, Home: home}
	for i := 0; i+1 < len(slots); i += 2 {
		sc.Events = append(sc.Events, models.EventConfig{Time: slots[i], Location: slots[i+1]})
	}
	for i := range sc.Events {
		if i == len(sc.Events)-1 {
			sc.Events[i].Duration = lastDuration
			continue
		}
		gap := clockGap(sc.Events[i].Time, sc.Events[i+1].Time)
		sc.Events[i].Duration = lo.Max([]float64{gap - travelAllowance, minDuration})
	}
	return sc
}

// DefaultSchedules are the timetables of five classes over one day.
func DefaultSchedules() []models.ScheduleConfig {
	return []models.ScheduleConfig{
		timetable("CS1", "D5a",
			"07:00", "D5a", "07:30", "canteen", "08:00", "D3a", "10:00", "D3b",
			"12:00", "canteen", "12:40", "library", "14:00", "F3a", "16:00", "F3b",
			"18:00", "canteen", "18:30", "library", "21:30", "D5a"),
		timetable("MATH", "D5b",
			"07:00", "D5b", "07:40", "canteen", "08:20", "F3c", "10:10", "F3d",
			"12:00", "canteen", "12:35", "playground", "14:00", "library", "16:00", "D3c",
			"18:00", "canteen", "18:40", "library", "22:00", "D5b"),
		timetable("PHYS", "D5c",
			"07:00", "D5c", "07:30", "canteen", "08:10", "D3d", "10:00", "F3a",
			"12:00", "canteen", "12:40", "D5c", "14:00", "library", "15:30", "gym",
			"17:30", "playground", "18:00", "canteen", "18:35", "library", "21:00", "D5c"),
		timetable("ENG", "D5d",
			"07:00", "D5d", "07:35", "canteen", "08:15", "F3b", "10:10", "library",
			"12:00", "canteen", "12:40", "playground", "14:00", "D3b", "16:00", "D3c",
			"18:00", "canteen", "18:30", "library", "20:30", "D5d"),
		timetable("CHEM", "D5a",
			"07:00", "D5a", "07:30", "canteen", "08:00", "F3d", "10:00", "D3a",
			"12:00", "canteen", "12:30", "library", "14:00", "F3c", "16:00", "library",
			"18:00", "canteen", "18:40", "gym", "19:30", "library", "21:30", "D5a"),
	}
}
