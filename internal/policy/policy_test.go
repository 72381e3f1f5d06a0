package policy_test

import (
	"testing"
	"time"

	"github.com/kkpjssks/queuectl/internal/policy"
)

func TestDecideDefaultSchedule(t *testing.T) {
	cases := []struct {
		attempts int
		wantGive bool
		wantSecs int
	}{
		{1, false, 2},
		{2, false, 4},
		{3, false, 8},
		{4, true, 0},
	}
	for _, c := range cases {
		delay, giveUp := policy.Decide(c.attempts, 3, 2)
		if giveUp != c.wantGive {
			t.Fatalf("attempt %d: giveUp=%v, want %v", c.attempts, giveUp, c.wantGive)
		}
		if !giveUp && delay != time.Duration(c.wantSecs)*time.Second {
			t.Fatalf("attempt %d: delay=%v, want %ds", c.attempts, delay, c.wantSecs)
		}
	}
}

func TestDecideExceedingMaxRetriesGivesUp(t *testing.T) {
	_, giveUp := policy.Decide(5, 2, 2)
	if !giveUp {
		t.Fatal("expected give up once attempts exceed max retries")
	}
}

func TestDecideZeroMaxRetriesGivesUpImmediately(t *testing.T) {
	_, giveUp := policy.Decide(1, 0, 2)
	if !giveUp {
		t.Fatal("with max_retries=0 the first failure must give up")
	}
}

func TestDecideClampsOverflow(t *testing.T) {
	delay, giveUp := policy.Decide(10, 1000, 1000)
	if giveUp {
		t.Fatal("should not give up within retry budget")
	}
	if delay != 7*24*time.Hour {
		t.Fatalf("expected delay clamped to 7 days, got %v", delay)
	}
}
