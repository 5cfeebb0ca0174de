package discovery

import "time"

// RefreshPeriod is the interval at which Blocking and Cooperative check
// refresh checkpoints and expire stale peer records (§4.8).
const RefreshPeriod = 1 * time.Second

// mailboxRequest is one queued operation for the Blocking worker (§4.9): a
// closure and the channel its result is delivered on.
type mailboxRequest struct {
	run  func()
	done chan struct{}
}

// Blocking runs a Discovery engine's receive loop and refresh timer on
// background goroutines. Public operations are not called directly against
// the engine; they are queued on a mailbox and executed by the worker
// goroutine, so callers never contend with the receive loop for the store
// lock beyond what the mailbox serializes.
type Blocking struct {
	d       *Discovery
	mailbox chan mailboxRequest
	stop    chan struct{}
}

// NewBlocking starts the worker, receive loop, and refresh timer for d and
// returns a handle to it.
func NewBlocking(d *Discovery) *Blocking {
	b := &Blocking{d: d, mailbox: make(chan mailboxRequest, 64), stop: make(chan struct{})}
	go d.Serve()
	go b.worker()
	return b
}

func (b *Blocking) worker() {
	ticker := time.NewTicker(RefreshPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			b.d.RefreshOnce()
		case req := <-b.mailbox:
			req.run()
			close(req.done)
		}
	}
}

func (b *Blocking) call(fn func()) {
	req := mailboxRequest{run: fn, done: make(chan struct{})}
	select {
	case b.mailbox <- req:
	case <-b.stop:
		return
	}
	<-req.done
}

// AddServiceInfo advertises info via the worker goroutine.
func (b *Blocking) AddServiceInfo(info ServiceInfo) (err error) {
	b.call(func() { err = b.d.Advertise(info) })
	return err
}

// RemoveServiceType withdraws every locally-advertised instance of service
// via the worker goroutine.
func (b *Blocking) RemoveServiceType(service string) (err error) {
	b.call(func() { err = b.d.Withdraw(service) })
	return err
}

// Track begins periodic queries for service via the worker goroutine.
func (b *Blocking) Track(service string) (err error) {
	b.call(func() { err = b.d.Track(service) })
	return err
}

// GetKnownServices returns the current peer view, computed on the worker
// goroutine so it never races the receive loop's updates.
func (b *Blocking) GetKnownServices() []InstanceInfo {
	var out []InstanceInfo
	b.call(func() { out = b.d.GetKnownServices() })
	return out
}

// Close stops the worker and receive loop and releases the transport.
func (b *Blocking) Close() error {
	close(b.stop)
	return b.d.Close()
}
