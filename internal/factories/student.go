package factories

import (
	"fmt"
	"math/rand"

	"github.com/chrisdamba/campussim/internal/graph"
	"github.com/chrisdamba/campussim/internal/student"
	"github.com/jaswdr/faker"
)

// StudentFactory creates the students of each class. Names come from a
// seeded faker so a seed always yields the same population.
type StudentFactory struct {
	fake   faker.Faker
	opts   student.Options
	policy student.Policy
}

func NewStudentFactory(seed int64, opts student.Options, policy student.Policy) *StudentFactory {
	return &StudentFactory{
		fake:   faker.NewWithSeed(rand.NewSource(seed)),
		opts:   opts,
		policy: policy,
	}
}

// CreateClass returns n students sharing plan's schedule, with ids
// "<class>-000" upwards.
func (f *StudentFactory) CreateClass(g *graph.Graph, plan ClassPlan, n int) ([]*student.Student, error) {
	students := make([]*student.Student, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-%03d", plan.Schedule.Class, i)
		s, err := student.New(id, plan.Schedule.Class, plan.Schedule, plan.Home, g, f.opts)
		if err != nil {
			return nil, err
		}
		s.Name = f.fake.Person().Name()
		s.Policy = f.policy
		students = append(students, s)
	}
	return students, nil
}
