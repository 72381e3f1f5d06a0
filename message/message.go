package message

import (
	"encoding/json"
	"errors"
)

// ErrMissingCommand is returned by Decode when the JSON object has no
// "command" field (or an empty one).
var ErrMissingCommand = errors.New("command is required")

// Submission is the JSON object accepted by the control surface's Enqueue
// operation: an optional caller-supplied id and a required command.
// Unknown fields are ignored.
type Submission struct {
	Id      string `json:"id,omitempty"`
	Command string `json:"command"`
}

// Decode parses raw JSON into a Submission and validates it.
//
// It returns ErrMissingCommand if the command field is absent or empty.
// Unknown fields in raw are silently ignored, matching encoding/json's
// default unmarshal behavior. Id generation, when absent, is left to the
// store package so that a single source of truth produces job ids.
func Decode(raw []byte) (Submission, error) {
	var sub Submission
	if err := json.Unmarshal(raw, &sub); err != nil {
		return Submission{}, err
	}
	if sub.Command == "" {
		return Submission{}, ErrMissingCommand
	}
	return sub, nil
}
