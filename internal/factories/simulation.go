package factories

import (
	"fmt"

	"github.com/chrisdamba/campussim/internal/models"
	"github.com/chrisdamba/campussim/internal/queue"
	"github.com/chrisdamba/campussim/internal/release"
	"github.com/chrisdamba/campussim/internal/simulator"
	"github.com/chrisdamba/campussim/internal/student"
)

// NewSimulation assembles a simulation from config. Without a map or
// schedules in the config the default campus and timetables are used.
func NewSimulation(cfg *models.Config) (*simulator.Simulation, error) {
	mapConfig := cfg.Map
	if mapConfig == nil || len(mapConfig.Locations) == 0 {
		mapConfig = DefaultCampusMap()
	}
	g, err := BuildGraph(mapConfig)
	if err != nil {
		return nil, err
	}

	schedules := cfg.Schedules
	if len(schedules) == 0 {
		schedules = DefaultSchedules()
	}
	plans, err := BuildSchedules(g, schedules)
	if err != nil {
		return nil, err
	}

	policy, err := PolicyFor(cfg.Policy, g)
	if err != nil {
		return nil, err
	}

	clock, err := simulator.NewClock(cfg.StartTime, cfg.TimeScale)
	if err != nil {
		return nil, fmt.Errorf("clock: %w", err)
	}

	var q *student.Queues
	if cfg.Queueing {
		q = queue.NewManager[*student.Student](cfg.Queue)
	}
	rel := release.NewController[*student.Student](cfg.Release)

	sim := simulator.NewSimulation(g, clock, q, rel)
	factory := NewStudentFactory(cfg.Seed, cfg.Student, policy)
	for _, plan := range plans {
		students, err := factory.CreateClass(g, plan, cfg.StudentsPerClass)
		if err != nil {
			return nil, err
		}
		sim.AddStudents(students...)
	}
	return sim, nil
}
