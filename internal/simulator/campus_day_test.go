package simulator_test

import (
	"testing"

	"github.com/chrisdamba/campussim/internal/factories"
	"github.com/chrisdamba/campussim/internal/models"
	"github.com/chrisdamba/campussim/internal/student"
)

func runDay(t *testing.T, cfg *models.Config) models.RunSummary {
	t.Helper()
	sim, err := factories.NewSimulation(cfg)
	if err != nil {
		t.Fatal(err)
	}
	_, end := cfg.Window()
	for sim.Clock.Minutes() < end {
		if _, err := sim.Step(cfg.TickSeconds); err != nil {
			t.Fatalf("step at %s: %v", sim.Clock.TimeString(), err)
		}
		for _, e := range sim.Graph.Edges() {
			if e.Capacitated() && sim.Graph.Occupancy(e.ID) > e.Capacity {
				t.Fatalf("%s over capacity at %s: %d/%d", e, sim.Clock.TimeString(), sim.Graph.Occupancy(e.ID), e.Capacity)
			}
		}
	}
	for _, st := range sim.Students {
		if _, queued := st.Queued(); queued && st.State() != student.Waiting {
			t.Errorf("%s is queued but %s", st.ID(), st.State())
		}
	}
	return sim.Summary()
}

func TestCampusDayRespectsCapacity(t *testing.T) {
	if testing.Short() {
		t.Skip("full day run")
	}
	tests := []struct {
		name     string
		queueing bool
		policy   string
	}{
		{"queues", true, models.PolicyShortestPath},
		{"self throttle", false, models.PolicyShortestPath},
		{"stepwise policy", true, models.PolicyStepwise},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := models.DefaultConfig()
			cfg.StudentsPerClass = 20
			cfg.TickSeconds = 0.25
			cfg.EndTime = "23:00"
			cfg.Queueing = tt.queueing
			cfg.Policy = tt.policy

			sum := runDay(t, cfg)
			if sum.Students != 100 {
				t.Errorf("students = %d", sum.Students)
			}
			if sum.Arrivals < sum.Students {
				t.Errorf("arrivals = %d for %d students", sum.Arrivals, sum.Students)
			}
			if sum.RouteFailures != 0 {
				t.Errorf("route failures = %d on a connected campus", sum.RouteFailures)
			}
			if sum.Released == 0 || sum.Released > sum.Arrivals {
				t.Errorf("released %d of %d arrivals", sum.Released, sum.Arrivals)
			}
		})
	}
}

func TestCampusDayIsDeterministic(t *testing.T) {
	if testing.Short() {
		t.Skip("full day run")
	}
	cfg := models.DefaultConfig()
	cfg.StudentsPerClass = 10
	cfg.TickSeconds = 0.5
	cfg.EndTime = "13:00"

	first, second := runDay(t, cfg), runDay(t, cfg)
	if first != second {
		t.Errorf("runs differ:\n%+v\n%+v", first, second)
	}
}
