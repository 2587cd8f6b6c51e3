package lessons

import "errors"

var (
	// ErrMalformedDuration is returned when a duration is not in "H:MM" form.
	ErrMalformedDuration = errors.New("duration must be in H:MM format with non-negative parts")
	// ErrInvalidLesson is returned when a lesson is missing its id or has a negative duration.
	ErrInvalidLesson = errors.New("invalid lesson")
)
