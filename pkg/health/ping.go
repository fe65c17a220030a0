package health

import "context"

// Pinger is satisfied by the pgx pool, the processor client and the audit sink.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingChecker struct {
	name   string
	pinger Pinger
}

func NewPingChecker(name string, p Pinger) *PingChecker {
	return &PingChecker{name: name, pinger: p}
}

func (c *PingChecker) Name() string {
	return c.name
}

func (c *PingChecker) Check(ctx context.Context) Result {
	return resultOf(c.pinger.Ping(ctx))
}
