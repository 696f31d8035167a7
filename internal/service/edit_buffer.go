package service

import (
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EditBuffer reconciles in-flight, not-yet-committed input text for
// weight/reps fields against the last known persisted values, so a view
// never flickers back to stale data while a write is in flight.
//
// It is a mapping setID -> pending textual overrides. Display rule: if a
// pending override exists for a field, show it verbatim (including the
// empty string); otherwise show the persisted numeric value formatted as
// text, or empty if null. Entries are dropped when their set is deleted;
// the buffer's lifetime is bound to one active session.
//
// The buffer also tracks the ephemeral "set done" flags. Completion is a
// pure client-side membership set driving the UI (locking inputs, rest
// timer); it is never persisted on the set itself.
type EditBuffer struct {
	pending map[primitive.ObjectID]pendingEdit
	done    map[primitive.ObjectID]bool
}

type pendingEdit struct {
	weight *string
	reps   *string
}

// NewEditBuffer creates an empty buffer.
func NewEditBuffer() *EditBuffer {
	return &EditBuffer{
		pending: make(map[primitive.ObjectID]pendingEdit),
		done:    make(map[primitive.ObjectID]bool),
	}
}

// SetWeightInput records the raw weight text for a set.
func (b *EditBuffer) SetWeightInput(setID primitive.ObjectID, text string) {
	edit := b.pending[setID]
	edit.weight = &text
	b.pending[setID] = edit
}

// SetRepsInput records the raw reps text for a set.
func (b *EditBuffer) SetRepsInput(setID primitive.ObjectID, text string) {
	edit := b.pending[setID]
	edit.reps = &text
	b.pending[setID] = edit
}

// DisplayWeight returns the text a weight field should show for the set.
func (b *EditBuffer) DisplayWeight(setID primitive.ObjectID, persisted *float64) string {
	if edit, ok := b.pending[setID]; ok && edit.weight != nil {
		return *edit.weight
	}
	return formatWeight(persisted)
}

// DisplayReps returns the text a reps field should show for the set.
func (b *EditBuffer) DisplayReps(setID primitive.ObjectID, persisted *int) string {
	if edit, ok := b.pending[setID]; ok && edit.reps != nil {
		return *edit.reps
	}
	if persisted == nil {
		return ""
	}
	return strconv.Itoa(*persisted)
}

// Resolve combines the pending overrides with the prior persisted values
// into the weight/reps pair to forward to the store. A field with no
// pending override keeps its prior value; blank or unparseable text
// resolves to null.
func (b *EditBuffer) Resolve(setID primitive.ObjectID, priorWeight *float64, priorReps *int) (*float64, *int) {
	weight := priorWeight
	reps := priorReps

	if edit, ok := b.pending[setID]; ok {
		if edit.weight != nil {
			weight = parseWeight(*edit.weight)
		}
		if edit.reps != nil {
			reps = parseReps(*edit.reps)
		}
	}
	return weight, reps
}

// Drop discards all buffered state for a set. Called when the set is deleted.
func (b *EditBuffer) Drop(setID primitive.ObjectID) {
	delete(b.pending, setID)
	delete(b.done, setID)
}

// ToggleDone flips the ephemeral completion flag and reports the new value.
func (b *EditBuffer) ToggleDone(setID primitive.ObjectID) bool {
	b.done[setID] = !b.done[setID]
	return b.done[setID]
}

// IsDone reports the ephemeral completion flag for a set.
func (b *EditBuffer) IsDone(setID primitive.ObjectID) bool {
	return b.done[setID]
}

func formatWeight(weight *float64) string {
	if weight == nil {
		return ""
	}
	return strconv.FormatFloat(*weight, 'f', -1, 64)
}

func parseWeight(text string) *float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || value < 0 {
		return nil
	}
	return &value
}

func parseReps(text string) *int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	value, err := strconv.Atoi(trimmed)
	if err != nil || value < 0 {
		return nil
	}
	return &value
}
