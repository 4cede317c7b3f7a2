package employee

import "time"

type Employee struct {
	ID            string     `json:"id"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	Position      string     `json:"position"`
	Branch        string     `json:"branch"`
	TokenID       string     `json:"tokenId,omitempty"`
	DailyRate     float64    `json:"dailyRate"`
	DayOffBalance int        `json:"dayOffBalance"`
	SILBalance    int        `json:"silBalance"`
	HireDate      time.Time  `json:"hireDate"`
	BirthDate     *time.Time `json:"birthDate,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}
