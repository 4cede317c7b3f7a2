package leave

import "errors"

var (
	ErrPastDate              = errors.New("requested date is in the past")
	ErrDayUnavailable        = errors.New("requested date is unavailable")
	ErrMonthlyCapExceeded    = errors.New("monthly day-off cap exceeded")
	ErrInsufficientBalance   = errors.New("insufficient leave balance")
	ErrNotEligible           = errors.New("not yet eligible for service incentive leave")
	ErrAlreadyRequestedToday = errors.New("emergency leave already requested today")
	ErrConcurrentRequest     = errors.New("concurrent leave request rejected")
)
