package discovery

import (
	"context"
	"time"
)

// Cooperative drives the same Discovery state machine as Blocking, but
// exposes its suspension points explicitly (§4.9, §5): the caller's own
// task runs Run, whose select statement is the only place execution
// suspends — on the refresh timer, on a submitted command, or on ctx
// cancellation. The socket receive loop still runs on its own goroutine
// (UDP reads have no non-blocking Go API), but never touches the store
// except through Discovery's own locking, so it never contends with Run.
type Cooperative struct {
	d        *Discovery
	commands chan func()
}

// NewCooperative starts d's receive loop and returns a handle whose Run
// method the caller drives.
func NewCooperative(d *Discovery) *Cooperative {
	c := &Cooperative{d: d, commands: make(chan func(), 64)}
	go d.Serve()
	return c
}

// Run pumps the refresh timer and any submitted commands until ctx is
// canceled. It is meant to be called from the caller's own event-loop
// goroutine; each loop iteration suspends at exactly one of: the timer
// firing, a command arriving, or ctx.Done().
func (c *Cooperative) Run(ctx context.Context) {
	ticker := time.NewTicker(RefreshPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.d.RefreshOnce()
		case cmd := <-c.commands:
			cmd()
		}
	}
}

// submit enqueues fn to run on the Run goroutine and blocks until it has,
// so it composes with a caller-driven Run the same way Blocking's mailbox
// composes with its own worker goroutine.
func (c *Cooperative) submit(fn func()) {
	done := make(chan struct{})
	c.commands <- func() { fn(); close(done) }
	<-done
}

// AddServiceInfo advertises info on the Run goroutine.
func (c *Cooperative) AddServiceInfo(info ServiceInfo) (err error) {
	c.submit(func() { err = c.d.Advertise(info) })
	return err
}

// RemoveServiceType withdraws every locally-advertised instance of service
// on the Run goroutine.
func (c *Cooperative) RemoveServiceType(service string) (err error) {
	c.submit(func() { err = c.d.Withdraw(service) })
	return err
}

// Track begins periodic queries for service on the Run goroutine.
func (c *Cooperative) Track(service string) (err error) {
	c.submit(func() { err = c.d.Track(service) })
	return err
}

// GetKnownServices returns the current peer view, computed on the Run
// goroutine.
func (c *Cooperative) GetKnownServices() []InstanceInfo {
	var out []InstanceInfo
	c.submit(func() { out = c.d.GetKnownServices() })
	return out
}

// Close releases the underlying Discovery engine. Run must be stopped
// (its ctx canceled) separately by the caller.
func (c *Cooperative) Close() error {
	return c.d.Close()
}
