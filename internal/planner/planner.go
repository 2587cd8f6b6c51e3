package planner

import (
	"fmt"

	"github.com/eugenenazirov/lesson-condenser/internal/balancer"
	"github.com/eugenenazirov/lesson-condenser/internal/lessons"
)

const (
	// DefaultAlreadyComplete is the number of lessons assumed finished when none is given.
	DefaultAlreadyComplete = 7
	// DefaultTotalDays is the number of days to spread the remaining lessons over.
	DefaultTotalDays = 13
)

type greedyPlanner struct{}

// New creates a Planner backed by the greedy balancer.
func New() Planner {
	return &greedyPlanner{}
}

// DefaultRequest returns the request used when the caller supplies nothing.
func DefaultRequest() Request {
	return Request{
		AlreadyComplete: DefaultAlreadyComplete,
		TotalDays:       DefaultTotalDays,
	}
}

func (p *greedyPlanner) Plan(catalog []lessons.Lesson, req Request) (Schedule, error) {
	if req.AlreadyComplete < 0 {
		return Schedule{}, ErrInvalidAlreadyComplete
	}

	remaining := lessons.Skip(catalog, req.AlreadyComplete)
	groups, average, err := balancer.BalanceWithAverage(remaining, lessons.Lesson.Weight, req.TotalDays)
	if err != nil {
		return Schedule{}, fmt.Errorf("balance lessons: %w", err)
	}

	days := make([]Day, len(groups))
	for i, group := range groups {
		days[i] = Day{
			Number:  i + 1,
			Minutes: lessons.TotalMinutes(group),
			Lessons: group,
		}
	}

	return Schedule{
		AlreadyComplete: req.AlreadyComplete,
		TotalDays:       req.TotalDays,
		Remaining:       len(remaining),
		TotalMinutes:    lessons.TotalMinutes(remaining),
		Average:         average,
		Days:            days,
	}, nil
}
