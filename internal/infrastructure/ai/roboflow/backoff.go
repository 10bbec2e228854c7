package roboflow

import "time"

// RetryPolicy controls the cold-start retry loop: how many workflow attempts
// are made and how long to wait between them. The schedule is linear:
// BaseWait after the first attempt, 2*BaseWait after the second, and so on.
type RetryPolicy struct {
	MaxAttempts int
	BaseWait    time.Duration
}

// DefaultRetryPolicy waits 5s then 10s across three attempts, matching the
// warm-up time of the serverless detection workflow.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseWait:    5 * time.Second,
	}
}

// Wait returns the backoff duration after the given zero-based attempt.
func (p RetryPolicy) Wait(attempt int) time.Duration {
	return time.Duration(attempt+1) * p.BaseWait
}
