package tickettype

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrInvalidCapacity  = errors.New("table capacity must be positive")
	ErrInvalidTableMode = errors.New("invalid table mode")
)

type Table struct {
	id       uuid.UUID
	eventID  uuid.UUID
	name     string
	capacity int
	mode     TableMode
}

func NewTable(id, eventID uuid.UUID, name string, capacity int, mode TableMode) (*Table, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if !mode.IsValid() {
		return nil, ErrInvalidTableMode
	}
	return &Table{id: id, eventID: eventID, name: name, capacity: capacity, mode: mode}, nil
}

func (t *Table) ID() uuid.UUID      { return t.id }
func (t *Table) EventID() uuid.UUID { return t.eventID }
func (t *Table) Name() string       { return t.name }
func (t *Table) Capacity() int      { return t.capacity }
func (t *Table) Mode() TableMode    { return t.mode }
