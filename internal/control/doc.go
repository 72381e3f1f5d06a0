// Package control is the thin composition layer the CLI talks to: it turns
// each CLI verb into a call against the store, config, and supervisor
// packages, and maps their errors onto the taxonomy spec.md §7 defines.
//
// The teacher is a library with no CLI surface, so this package has no
// direct analogue there; it is grounded on the general shape gqs.Worker
// uses throughout — a thin struct that composes injected collaborators
// (Puller, Observer) rather than owning logic itself — generalized here
// from "worker-internal composition" to "CLI-facing composition".
package control
