package reservation

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCommitted Status = "COMMITTED"
	StatusReleased  Status = "RELEASED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCommitted, StatusReleased:
		return true
	default:
		return false
	}
}

func (s Status) IsFinal() bool {
	return s == StatusCommitted || s == StatusReleased
}
