package timeclock

import "errors"

var (
	ErrNotScheduled       = errors.New("no schedule for today")
	ErrTooEarlyForBreak   = errors.New("too early to clock out for break")
	ErrDayAlreadyComplete = errors.New("day already complete")
	ErrTooLateToReopen    = errors.New("too late to reopen the day")
	ErrConcurrentScan     = errors.New("concurrent scan rejected")
	ErrInvalidDayState    = errors.New("clock records for the day are inconsistent")
)
