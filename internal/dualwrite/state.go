package dualwrite

import (
	"slices"
	"time"
)

// State is a position in the per-document write pipeline.
type State string

const (
	StateExtracting                 State = "EXTRACTING"
	StateAssembled                  State = "ASSEMBLED"
	StateRelationalCommittedPending State = "RELATIONAL_COMMITTED_PENDING"
	StateDocumentWritten            State = "DOCUMENT_WRITTEN"
	StateCommitted                  State = "COMMITTED"

	StateExtractionFailed         State = "EXTRACTION_FAILED"
	StateRelationalFailed         State = "RELATIONAL_FAILED"
	StateDocumentFailedRolledBack State = "DOCUMENT_FAILED_ROLLED_BACK"
)

var next = map[State][]State{
	StateExtracting:                 {StateAssembled, StateExtractionFailed},
	StateAssembled:                  {StateRelationalCommittedPending, StateRelationalFailed},
	StateRelationalCommittedPending: {StateDocumentWritten, StateDocumentFailedRolledBack},
	StateDocumentWritten:            {StateCommitted, StateRelationalFailed},
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	_, ok := next[s]
	return !ok
}

// Failed reports whether s is a failure terminal.
func (s State) Failed() bool {
	switch s {
	case StateExtractionFailed, StateRelationalFailed, StateDocumentFailedRolledBack:
		return true
	}
	return false
}

func (s State) allows(to State) bool {
	return slices.Contains(next[s], to)
}

// Transition records one state change.
type Transition struct {
	From   State     `json:"from"`
	To     State     `json:"to"`
	At     time.Time `json:"at"`
	Reason string    `json:"reason,omitempty"`
}
