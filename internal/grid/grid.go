package grid

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrOutOfRange        = errors.New("grid: coordinate out of range")
	ErrInvalidColor      = errors.New("grid: invalid color")
	ErrInvalidDescriptor = errors.New("grid: invalid descriptor")
)

// Descriptor identifies one cabinet grid and its dimensions.
// Fixed at node boot, read-only afterward.
type Descriptor struct {
	ID     string `json:"id"`
	RowLen int    `json:"row_len"`
	ColLen int    `json:"col_len"`
}

// Validate enforces the fields required before a descriptor may be served.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidDescriptor)
	}
	if d.RowLen <= 0 {
		return fmt.Errorf("%w: row_len=%d", ErrInvalidDescriptor, d.RowLen)
	}
	if d.ColLen <= 0 {
		return fmt.Errorf("%w: col_len=%d", ErrInvalidDescriptor, d.ColLen)
	}
	return nil
}

// CheckBounds rejects coordinates outside the declared grid.
func (d Descriptor) CheckBounds(row, col int) error {
	if row < 0 || row >= d.RowLen {
		return fmt.Errorf("%w: row=%d row_len=%d", ErrOutOfRange, row, d.RowLen)
	}
	if col < 0 || col >= d.ColLen {
		return fmt.Errorf("%w: col=%d col_len=%d", ErrOutOfRange, col, d.ColLen)
	}
	return nil
}

// Mark is one active (position, color) assignment on a cabinet grid.
type Mark struct {
	ID        string    `json:"id"`
	Row       int       `json:"row"`
	Col       int       `json:"col"`
	Color     Color     `json:"color"`
	UpdatedAt time.Time `json:"ts"`
}

// DeriveKey builds the stable coordinate-derived mark key used when a caller
// supplies no explicit id. Re-issuing the same coordinate updates in place.
func DeriveKey(row, col int) string {
	return fmt.Sprintf("r%dc%d", row, col)
}
