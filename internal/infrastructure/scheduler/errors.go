package scheduler

import "errors"

var (
	// ErrJobNotFound is returned by RunNow for an unregistered job name
	ErrJobNotFound = errors.New("job not found")

	// ErrDuplicateJob is returned when a job name is registered twice
	ErrDuplicateJob = errors.New("job already registered")

	// ErrInvalidSchedule wraps cron expression parse errors
	ErrInvalidSchedule = errors.New("invalid cron schedule")
)
