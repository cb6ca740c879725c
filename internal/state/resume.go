package state

import "fmt"

// Resume prepares a saved run for continuation.
//
// Unless force is set, the queue file must still match the recorded hash;
// a changed queue means the class count and order may differ, so counts
// from the old run cannot be trusted. A completed run stays completed.
func Resume(existing *RunState, queueFile string, force bool) error {
	if !force {
		if err := Validate(existing, queueFile); err != nil {
			return fmt.Errorf("state validation failed: %w", err)
		}
	}
	if existing.Status != StatusComplete {
		existing.Status = StatusInProgress
	}
	existing.LastError = ""
	return nil
}
