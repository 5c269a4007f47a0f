package schedule

import (
	"errors"
	"fmt"
	"strings"
)

// CycleError reports a previous-slot chain that loops back on itself.
// The day it occurs on cannot be tabled or checked for overlaps.
type CycleError struct {
	DayID   string
	SlotIDs []string // Slots on the cycle, in the order they were walked
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("slot chain on day '%s' contains a cycle: %s",
		e.DayID, strings.Join(e.SlotIDs, " -> "))
}

// MalformedSlotError reports a slot whose start time cannot be resolved.
type MalformedSlotError struct {
	DayID  string
	SlotID string
	Reason string
}

func (e *MalformedSlotError) Error() string {
	return fmt.Sprintf("slot '%s' on day '%s' is malformed: %s", e.SlotID, e.DayID, e.Reason)
}

// ReferenceError reports a snapshot that names an entity it does not contain,
// or contains the same id twice.
type ReferenceError struct {
	Kind   string // Entity kind holding the reference, e.g. "item"
	ID     string
	Field  string
	Target string
}

func (e *ReferenceError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s with empty id", e.Kind)
	}
	if e.Field == "" {
		return fmt.Sprintf("duplicate %s id '%s'", e.Kind, e.ID)
	}
	return fmt.Sprintf("%s '%s' references unknown %s '%s'", e.Kind, e.ID, e.Field, e.Target)
}

// IsCycle returns true if err is or wraps a CycleError.
func IsCycle(err error) bool {
	var target *CycleError
	return errors.As(err, &target)
}

// IsMalformedSlot returns true if err is or wraps a MalformedSlotError.
func IsMalformedSlot(err error) bool {
	var target *MalformedSlotError
	return errors.As(err, &target)
}

// IsReference returns true if err is or wraps a ReferenceError.
func IsReference(err error) bool {
	var target *ReferenceError
	return errors.As(err, &target)
}

// OffendingSlots returns the slot ids named by a structural error, for diagnostics.
func OffendingSlots(err error) []string {
	var cycle *CycleError
	if errors.As(err, &cycle) {
		return append([]string(nil), cycle.SlotIDs...)
	}
	var malformed *MalformedSlotError
	if errors.As(err, &malformed) {
		return []string{malformed.SlotID}
	}
	return nil
}
