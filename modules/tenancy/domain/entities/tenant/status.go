package tenant

type Status string

const (
	StatusTrial     Status = "trial"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusExpired   Status = "expired"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusTrial, StatusActive, StatusSuspended, StatusExpired:
		return true
	}
	return false
}

// IsOperational reports whether users of the tenant may act normally.
func (s Status) IsOperational() bool {
	return s == StatusTrial || s == StatusActive
}
