package domain

import (
	"errors"
	"fmt"
)

// ConflictError: a caption is already reserved for the creator inside the
// cooldown window. Expected under concurrency; reported per item.
type ConflictError struct {
	CreatorID uint
	CaptionID uint64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("caption %d already reserved for creator %d", e.CaptionID, e.CreatorID)
}

// InsufficientPoolError: fewer eligible candidates than the requested quota.
// Surfaced as under-fill on the result, never as request failure.
type InsufficientPoolError struct {
	Tier      string
	Requested int
	Available int
}

func (e *InsufficientPoolError) Error() string {
	return fmt.Sprintf("tier %s: requested %d captions, only %d available", e.Tier, e.Requested, e.Available)
}

// StaleDataError: statistics older than the freshness threshold. Selection
// proceeds with cold-start defaults for the affected captions.
type StaleDataError struct {
	CreatorID  uint
	CaptionIDs []uint64
}

func (e *StaleDataError) Error() string {
	return fmt.Sprintf("stale statistics for creator %d (%d captions)", e.CreatorID, len(e.CaptionIDs))
}

// TransientStoreError: the backing store was unavailable. Retriable at the
// call site with bounded backoff.
type TransientStoreError struct {
	Op  string
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *TransientStoreError) Unwrap() error { return e.Err }

// IsConflict reports whether err is (or wraps) a reservation conflict.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
