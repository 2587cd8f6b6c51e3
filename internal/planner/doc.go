// Package planner turns a lesson catalog into a day-by-day schedule by
// skipping lessons already completed and balancing the rest.
package planner
