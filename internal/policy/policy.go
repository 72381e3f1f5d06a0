// Package policy implements the pure retry/backoff decision at the heart
// of queuectl: given how many attempts a job has accumulated after a
// failure, decide whether to reschedule it (and after what delay) or give
// up on it for good.
//
// Grounded on the struct-plus-method shape of
// github.com/romanqed/gqs's backoff.go (backoffCounter.next), but the
// formula itself is replaced: the teacher computes a jittered
// initial*multiplier^(attempt-1) curve clamped to a max interval; this
// package computes the spec's exact backoffBase^attemptsAfterFailure, with
// no jitter, because the testable backoff-schedule property requires exact
// delays (2s, 4s, 8s for the defaults), not an approximation of them.
package policy

import (
	"math"
	"time"
)

// maxDelay is the overflow guard: however large backoffBase or the attempt
// count get, a computed delay is clamped to this sentinel.
const maxDelay = 7 * 24 * time.Hour

// Config holds the two recognized tunables from config.json.
type Config struct {
	MaxRetries  int
	BackoffBase int64
}

// Decide maps (attemptsAfterFailure, MaxRetries, BackoffBase) to either a
// reschedule delay or a give-up verdict.
//
// attemptsAfterFailure is the attempts counter value after the increment
// already performed by the caller (store.Reschedule / store.GiveUp): the
// count of attempted executions so far, including the one that just
// failed. The job gives up once that count exceeds MaxRetries; otherwise
// the delay before the next attempt is BackoffBase raised to
// attemptsAfterFailure.
func Decide(attemptsAfterFailure, maxRetries int, backoffBase int64) (delay time.Duration, giveUp bool) {
	if attemptsAfterFailure > maxRetries {
		return 0, true
	}
	return backoffDelay(backoffBase, attemptsAfterFailure), false
}

func backoffDelay(base int64, exponent int) time.Duration {
	if base <= 0 {
		base = 1
	}
	seconds := math.Pow(float64(base), float64(exponent))
	if seconds <= 0 || math.IsInf(seconds, 1) || seconds > float64(maxDelay/time.Second) {
		return maxDelay
	}
	return time.Duration(seconds) * time.Second
}
