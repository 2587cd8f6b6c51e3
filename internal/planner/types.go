package planner

import "github.com/eugenenazirov/lesson-condenser/internal/lessons"

// Request selects which part of the catalog to plan and over how many days.
type Request struct {
	AlreadyComplete int
	TotalDays       int
}

// Day is one balanced group of consecutive lessons.
type Day struct {
	Number  int              `json:"day"`
	Minutes int              `json:"minutes"`
	Lessons []lessons.Lesson `json:"lessons"`
}

// Schedule is the outcome of planning. The number of Days is not guaranteed
// to equal TotalDays; see balancer.Balance.
type Schedule struct {
	AlreadyComplete int   `json:"alreadyComplete"`
	TotalDays       int   `json:"totalDays"`
	Remaining       int   `json:"remaining"`
	TotalMinutes    int   `json:"totalMinutes"`
	Average         int   `json:"average"`
	Days            []Day `json:"days"`
}

// Planner describes the behaviour required from a schedule planner.
type Planner interface {
	Plan(catalog []lessons.Lesson, req Request) (Schedule, error)
}
