package payroll

import "errors"

var (
	ErrNoEligibleEmployees = errors.New("no employee worked or took leave in this period")
	ErrAlreadyCommitted    = errors.New("payroll already committed for this employee and period")
	ErrMissingDailyRate    = errors.New("employee has no daily rate configured")
	ErrLineNotFound        = errors.New("payroll line not found")
	ErrRuleNotFound        = errors.New("salary rule not found")
	ErrInvalidStatus       = errors.New("invalid payroll status")
	ErrInvalidRuleWindow   = errors.New("salary rule end date precedes start date")
)
