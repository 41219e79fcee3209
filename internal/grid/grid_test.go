package grid

import (
	"errors"
	"testing"

	"github.com/luisceladatrigo/hw-mockup/internal/testutil/testlog"
)

func TestDescriptorValidate(t *testing.T) {
	testlog.Start(t)

	if err := (Descriptor{ID: "cab-1", RowLen: 3, ColLen: 4}).Validate(); err != nil {
		t.Fatalf("valid descriptor rejected: %v", err)
	}
	if err := (Descriptor{ID: "  ", RowLen: 3, ColLen: 4}).Validate(); !errors.Is(err, ErrInvalidDescriptor) {
		t.Fatalf("expected ErrInvalidDescriptor for blank id, got %v", err)
	}
	if err := (Descriptor{ID: "cab-1", RowLen: 0, ColLen: 4}).Validate(); !errors.Is(err, ErrInvalidDescriptor) {
		t.Fatalf("expected ErrInvalidDescriptor for zero row_len, got %v", err)
	}
	if err := (Descriptor{ID: "cab-1", RowLen: 3, ColLen: -1}).Validate(); !errors.Is(err, ErrInvalidDescriptor) {
		t.Fatalf("expected ErrInvalidDescriptor for negative col_len, got %v", err)
	}
}

func TestDescriptorCheckBounds(t *testing.T) {
	testlog.Start(t)

	d := Descriptor{ID: "cab-1", RowLen: 3, ColLen: 3}
	if err := d.CheckBounds(0, 0); err != nil {
		t.Fatalf("origin rejected: %v", err)
	}
	if err := d.CheckBounds(2, 2); err != nil {
		t.Fatalf("last cell rejected: %v", err)
	}
	if err := d.CheckBounds(3, 0); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange for row=3, got %v", err)
	}
	if err := d.CheckBounds(0, 3); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange for col=3, got %v", err)
	}
	if err := d.CheckBounds(-1, 0); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange for negative row, got %v", err)
	}
}

func TestDeriveKeyStable(t *testing.T) {
	testlog.Start(t)

	if got := DeriveKey(1, 2); got != "r1c2" {
		t.Fatalf("unexpected derived key: %q", got)
	}
	if DeriveKey(1, 2) != DeriveKey(1, 2) {
		t.Fatalf("derived key not stable for same coordinate")
	}
	if DeriveKey(1, 2) == DeriveKey(2, 1) {
		t.Fatalf("derived key collides across transposed coordinates")
	}
}
