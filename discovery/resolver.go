package discovery

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/opendisco/dnswire"
)

// pollInterval is how often Lookup re-checks the peer store while waiting
// for a query to be answered.
const pollInterval = 25 * time.Millisecond

// Resolver is a one-shot lookup view over a Discovery engine (§4.9). Lookup
// tracks the service (sending a PTR query) and waits up to timeout for a resolvable
// instance to appear in the peer view; concurrent lookups for the same
// service are coalesced by singleflight so a burst of local callers
// produces a single outstanding multicast query.
type Resolver struct {
	d     *Discovery
	group singleflight.Group
}

// NewResolver returns a Resolver backed by d.
func NewResolver(d *Discovery) *Resolver {
	return &Resolver{d: d}
}

// Lookup resolves the first known instance of service. It always calls
// Discovery.Track first, which sends a PTR query and keeps service in the
// periodic query set, then waits for the peer view to hold an instance
// (returning at once if it already does). Per §5's documented
// timeout semantics, expiry of ctx or timeout returns (InstanceInfo{},
// false, nil) rather than an error: absence of an answer is not a failure.
func (r *Resolver) Lookup(ctx context.Context, service string, timeout time.Duration) (InstanceInfo, bool, error) {
	v, err, _ := r.group.Do(service, func() (interface{}, error) {
		return r.lookupOnce(ctx, service, timeout)
	})
	if err != nil {
		return InstanceInfo{}, false, err
	}
	res := v.(lookupResult)
	return res.info, res.ok, nil
}

type lookupResult struct {
	info InstanceInfo
	ok   bool
}

func (r *Resolver) lookupOnce(ctx context.Context, service string, timeout time.Duration) (lookupResult, error) {
	if err := r.d.Track(service); err != nil {
		return lookupResult{}, err
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	if info, ok := r.findFirst(service); ok {
		return lookupResult{info, true}, nil
	}

	for {
		select {
		case <-ctx.Done():
			return lookupResult{}, nil
		case <-deadline.C:
			return lookupResult{}, nil
		case <-ticker.C:
			if info, ok := r.findFirst(service); ok {
				return lookupResult{info, true}, nil
			}
		}
	}
}

func (r *Resolver) findFirst(service string) (InstanceInfo, bool) {
	for _, info := range r.d.GetKnownServices() {
		if info.Service == service {
			return info, true
		}
	}
	return InstanceInfo{}, false
}

// LookupName queries a bare name's A/AAAA records directly, with no DNS-SD
// PTR/SRV chain in front of it — resolving "printer.local" the way a plain
// mDNS hostname query does. It returns every address that arrives before
// timeout, or nil if none does.
func (r *Resolver) LookupName(ctx context.Context, name string, timeout time.Duration) ([]net.IP, error) {
	v, err, _ := r.group.Do("name:"+name, func() (interface{}, error) {
		return r.lookupNameOnce(ctx, name, timeout)
	})
	if err != nil {
		return nil, err
	}
	return v.([]net.IP), nil
}

func (r *Resolver) lookupNameOnce(ctx context.Context, name string, timeout time.Duration) ([]net.IP, error) {
	n, err := dnswire.ParseNameString(name)
	if err != nil {
		return nil, fmt.Errorf("discovery: %w", err)
	}
	if err := r.d.query(n, dnswire.TypeA); err != nil {
		return nil, err
	}
	if err := r.d.query(n, dnswire.TypeAAAA); err != nil {
		return nil, err
	}
	return r.pollAddrs(ctx, n, timeout)
}

func (r *Resolver) pollAddrs(ctx context.Context, n dnswire.Name, timeout time.Duration) ([]net.IP, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	if addrs := r.findAddrs(n); len(addrs) > 0 {
		return addrs, nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil, nil
		case <-deadline.C:
			return nil, nil
		case <-ticker.C:
			if addrs := r.findAddrs(n); len(addrs) > 0 {
				return addrs, nil
			}
		}
	}
}

func (r *Resolver) findAddrs(n dnswire.Name) []net.IP {
	now := time.Now()
	var out []net.IP
	for _, rr := range r.d.peerSt.Find(n, dnswire.TypeA, dnswire.ClassIN, now) {
		if rd, ok := rr.RData.(*dnswire.RDataA); ok {
			out = append(out, rd.Address)
		}
	}
	for _, rr := range r.d.peerSt.Find(n, dnswire.TypeAAAA, dnswire.ClassIN, now) {
		if rd, ok := rr.RData.(*dnswire.RDataAAAA); ok {
			out = append(out, rd.Address)
		}
	}
	return out
}

// LookupSRV queries name's SRV record directly rather than walking a
// service's PTR list first, then waits for an address of the target to
// reach the peer view (normally as an additional record of the SRV
// answer). Unlike LookupName it sends no A/AAAA query of its own.
func (r *Resolver) LookupSRV(ctx context.Context, name string, timeout time.Duration) (host string, port uint16, addrs []net.IP, err error) {
	v, err, _ := r.group.Do("srv:"+name, func() (interface{}, error) {
		return r.lookupSRVOnce(ctx, name, timeout)
	})
	if err != nil {
		return "", 0, nil, err
	}
	res := v.(srvLookupResult)
	return res.host, res.port, res.addrs, nil
}

type srvLookupResult struct {
	host  string
	port  uint16
	addrs []net.IP
}

func (r *Resolver) lookupSRVOnce(ctx context.Context, name string, timeout time.Duration) (srvLookupResult, error) {
	n, err := dnswire.ParseNameString(name)
	if err != nil {
		return srvLookupResult{}, fmt.Errorf("discovery: %w", err)
	}
	if err := r.d.query(n, dnswire.TypeSRV); err != nil {
		return srvLookupResult{}, err
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	findSRV := func() (*dnswire.RDataSRV, bool) {
		now := time.Now()
		for _, rr := range r.d.peerSt.Find(n, dnswire.TypeSRV, dnswire.ClassIN, now) {
			if srv, ok := rr.RData.(*dnswire.RDataSRV); ok {
				return srv, true
			}
		}
		return nil, false
	}

	srv, ok := findSRV()
	for !ok {
		select {
		case <-ctx.Done():
			return srvLookupResult{}, nil
		case <-deadline.C:
			return srvLookupResult{}, nil
		case <-ticker.C:
			srv, ok = findSRV()
		}
	}

	addrs := r.findAddrs(srv.Target)
	if len(addrs) == 0 {
		addrs, _ = r.pollAddrs(ctx, srv.Target, timeout)
	}
	return srvLookupResult{host: srv.Target.String(), port: srv.Port, addrs: addrs}, nil
}
