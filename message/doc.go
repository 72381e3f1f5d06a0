// Package message defines the JSON submission envelope accepted by the
// control surface's Enqueue operation.
//
// A Submission carries exactly the fields spec.md §6 recognizes: an
// optional caller-supplied id and a required command string. Unknown JSON
// fields are ignored by encoding/json's default decoding behavior; a
// missing command is rejected at decode time.
//
// This package replaces the teacher's generic metadata+payload envelope
// (github.com/romanqed/gqs/message.Message) with the narrower shape this
// domain actually needs: there is no metadata map and no binary payload,
// only an identifier and an opaque shell command.
package message
