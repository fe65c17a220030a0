package health

import (
	"context"
	"time"
)

const DefaultTimeout = 3 * time.Second

type Status string

const (
	StatusUp Status = "up"
	// StatusDegraded means an optional dependency (audit, events, the
	// processor API) is failing. The gateway still takes traffic.
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}

func resultOf(err error) Result {
	if err != nil {
		return Result{Status: StatusDown, Message: err.Error()}
	}
	return Result{Status: StatusUp}
}
