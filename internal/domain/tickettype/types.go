package tickettype

type Kind string

const (
	KindGeneral Kind = "GENERAL"
	KindTable   Kind = "TABLE"
	KindSeat    Kind = "SEAT"
)

func (k Kind) String() string {
	return string(k)
}

func (k Kind) IsValid() bool {
	switch k {
	case KindGeneral, KindTable, KindSeat:
		return true
	default:
		return false
	}
}

type TableMode string

const (
	// TableModeExclusive sells the table as a whole.
	TableModeExclusive TableMode = "EXCLUSIVE"
	// TableModeShared sells the table per seat.
	TableModeShared TableMode = "SHARED"
)

func (m TableMode) IsValid() bool {
	return m == TableModeExclusive || m == TableModeShared
}
