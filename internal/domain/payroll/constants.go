package payroll

const (
	StatusPaid    = "paid"
	StatusDelayed = "delayed"
	StatusUnpaid  = "unpaid"
)

// BirthMonthBonusLabel is the fixed breakdown label for the birthday bonus.
const BirthMonthBonusLabel = "Birth Month Bonus"

func ValidStatus(s string) bool {
	switch s {
	case StatusPaid, StatusDelayed, StatusUnpaid:
		return true
	}
	return false
}
