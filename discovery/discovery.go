package discovery

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"strings"
	"time"

	"github.com/linkdata/deadlock"
	"golang.org/x/time/rate"

	"github.com/opendisco/dnswire"
	"github.com/opendisco/dnswire/mdns"
	"github.com/opendisco/dnswire/store"
)

// dnsSDMetaQuery is the RFC 6763 §9 service-enumeration name: querying its
// PTR records enumerates every service type a responder advertises.
var dnsSDMetaQuery = mustParseName("_services._dns-sd._udp.local.")

func mustParseName(s string) dnswire.Name {
	n, err := dnswire.ParseNameString(s)
	if err != nil {
		panic(err)
	}
	return n
}

// refreshCheckpoints are the RFC 6762 §5.2 fractions of a record's TTL at
// which discovery re-queries for it.
var refreshCheckpoints = [...]float64{0.80, 0.85, 0.90, 0.95}

// peerTracking remembers when a peer record was (re)learned so RefreshOnce
// can decide when it crosses the next 80/85/90/95% checkpoint, and what to
// re-query for it.
type peerTracking struct {
	rr          dnswire.ResourceRecord
	originalTTL uint32
	insertedAt  time.Time
	nextIdx     int
}

// Discovery is the shared protocol state machine behind both concurrency
// surfaces (§4.9): it owns a local store answered by an mdns.Responder, a
// separate peer store populated from observed responses, and a periodic
// query/refresh loop.
type Discovery struct {
	Observer mdns.Observer
	DebugLog io.Writer

	transport mdns.Transport
	localSt   *store.Store
	peerSt    *store.Store
	responder *mdns.Responder
	pacer     *rate.Limiter

	mu       deadlock.RWMutex
	services map[string]ServiceInfo // keyed by instance FQDN's canonical key
	tracked  map[string]*peerTracking
	queried  map[string]dnswire.Name // service type canonical key -> name

	closing chan struct{}
	closed  bool
}

// NewWithOptions builds a Discovery engine bound to scope, opening real
// multicast sockets.
func NewWithOptions(scope mdns.NetworkScope) (*Discovery, error) {
	transport, err := mdns.NewUDPTransport(scope)
	if err != nil {
		return nil, err
	}
	return newWithTransport(transport), nil
}

// NewWithTransport builds a Discovery engine over a caller-supplied
// transport, bypassing real socket setup. Production callers use
// NewWithOptions; tests use this with a loopback fake (see mdnstest).
func NewWithTransport(transport mdns.Transport) *Discovery {
	return newWithTransport(transport)
}

func newWithTransport(transport mdns.Transport) *Discovery {
	d := &Discovery{
		transport: transport,
		localSt:   store.New(),
		peerSt:    store.New(),
		services:  make(map[string]ServiceInfo),
		tracked:   make(map[string]*peerTracking),
		queried:   make(map[string]dnswire.Name),
		pacer:     rate.NewLimiter(rate.Every(time.Second), 1),
		closing:   make(chan struct{}),
	}
	d.responder = mdns.NewResponder(transport, d.localSt)
	d.responder.DiscoveryMode = true
	d.responder.OnRecord = d.observeRecord
	return d
}

// Advertise composes info's records (PTR, SRV, A/AAAA, TXT) and adds them
// to the local store so the responder answers matching queries (§4.8).
func (d *Discovery) Advertise(info ServiceInfo) error {
	instName, err := info.instanceName()
	if err != nil {
		return fmt.Errorf("discovery: %w", err)
	}
	svcName, err := info.serviceName()
	if err != nil {
		return fmt.Errorf("discovery: %w", err)
	}
	hostName, err := info.hostName()
	if err != nil {
		return fmt.Errorf("discovery: %w", err)
	}
	if info.Port == 0 {
		return errors.Join(dnswire.ErrInvalidServiceName, errors.New("discovery: service port must be nonzero"))
	}

	ttl := info.ttlOrDefault()
	now := time.Now()

	ptr := dnswire.ResourceRecord{Name: svcName, Class: dnswire.ClassIN, Type: dnswire.TypePTR, TTL: ttl,
		RData: &dnswire.RDataPTR{Target: instName}}
	srv := dnswire.ResourceRecord{Name: instName, Class: dnswire.ClassIN, Type: dnswire.TypeSRV, TTL: ttl,
		RData: &dnswire.RDataSRV{Port: info.Port, Target: hostName}}.WithCacheFlush(true)
	txt := dnswire.ResourceRecord{Name: instName, Class: dnswire.ClassIN, Type: dnswire.TypeTXT, TTL: ttl,
		RData: dnswire.NewRDataTXTFromPairs(info.Attrs)}.WithCacheFlush(true)
	meta := dnswire.ResourceRecord{Name: dnsSDMetaQuery, Class: dnswire.ClassIN, Type: dnswire.TypePTR, TTL: 4500,
		RData: &dnswire.RDataPTR{Target: svcName}}

	d.localSt.Add(ptr, now)
	d.localSt.Add(srv, now)
	d.localSt.Add(txt, now)
	d.localSt.Add(meta, now)
	for _, ip := range info.Addrs {
		if ip4 := ip.To4(); ip4 != nil {
			d.localSt.Add(dnswire.ResourceRecord{Name: hostName, Class: dnswire.ClassIN, Type: dnswire.TypeA, TTL: ttl,
				RData: &dnswire.RDataA{Address: ip4}}.WithCacheFlush(true), now)
		} else {
			d.localSt.Add(dnswire.ResourceRecord{Name: hostName, Class: dnswire.ClassIN, Type: dnswire.TypeAAAA, TTL: ttl,
				RData: &dnswire.RDataAAAA{Address: ip}}.WithCacheFlush(true), now)
		}
	}

	d.mu.Lock()
	d.services[instName.CanonicalKey()] = info
	d.mu.Unlock()
	return nil
}

// Withdraw removes the local records of service (a service type such as
// "_http._tcp.local."): its PTR record and each instance's SRV and TXT
// records. It multicasts a goodbye (TTL=0) for those SRV and TXT records
// first (RFC 6762 §10.1), so peers evict the instance immediately instead
// of waiting out the TTL. Host address records and the service-enumeration
// PTR stay in the local store.
func (d *Discovery) Withdraw(service string) error {
	svcName, err := dnswire.ParseNameString(service)
	if err != nil {
		return fmt.Errorf("discovery: %w", err)
	}
	d.mu.Lock()
	for key, info := range d.services {
		if info.Service != service {
			continue
		}
		delete(d.services, key)
		if instName, err := info.instanceName(); err == nil {
			d.sendGoodbye(instName, dnswire.TypeSRV)
			d.sendGoodbye(instName, dnswire.TypeTXT)
			d.localSt.Remove(instName, nil)
		}
	}
	d.mu.Unlock()
	d.localSt.Remove(svcName, nil)
	return nil
}

func (d *Discovery) sendGoodbye(name dnswire.Name, typ dnswire.Type) {
	matches := d.localSt.Find(name, typ, dnswire.ClassIN, time.Now())
	for _, rr := range matches {
		rr.TTL = 0
		p := &dnswire.Packet{Answers: []dnswire.ResourceRecord{rr}}
		p.Header.SetQR(true)
		p.Header.SetAA(true)
		if b, err := p.BuildBytesCompressed(); err == nil {
			if d.transport.HasV4() {
				_ = d.transport.WriteMulticast(b, false)
			}
			if d.transport.HasV6() {
				_ = d.transport.WriteMulticast(b, true)
			}
		}
	}
}

// Track begins periodic PTR queries for service and folds matching
// responses into the peer view (§4.8's "Probe/Query").
func (d *Discovery) Track(service string) error {
	svcName, err := dnswire.ParseNameString(service)
	if err != nil {
		return fmt.Errorf("discovery: %w", err)
	}
	d.mu.Lock()
	d.queried[svcName.CanonicalKey()] = svcName
	d.mu.Unlock()
	return d.queryPTR(svcName)
}

func (d *Discovery) dbg() bool { return d.DebugLog != nil }

func (d *Discovery) log(format string, args ...any) bool {
	fmt.Fprintf(d.DebugLog, format, args...)
	return false
}

func (d *Discovery) queryPTR(name dnswire.Name) error {
	return d.query(name, dnswire.TypePTR)
}

func (d *Discovery) query(name dnswire.Name, typ dnswire.Type) error {
	if !d.pacer.Allow() {
		_ = d.dbg() && d.log("QUERY %s %s rate-limited\n", name, typ)
		return nil
	}
	_ = d.dbg() && d.log("QUERY %s %s\n", name, typ)
	q := dnswire.Question{Name: name, QType: typ, QClass: dnswire.ClassIN}
	p := &dnswire.Packet{Questions: []dnswire.Question{q}}
	var err error
	if d.transport.HasV4() {
		var b []byte
		if b, err = p.BuildBytesCompressed(); err == nil {
			err = d.transport.WriteMulticast(b, false)
		}
	}
	if d.transport.HasV6() {
		var b []byte
		if b, err = p.BuildBytesCompressed(); err == nil {
			err = d.transport.WriteMulticast(b, true)
		}
	}
	return err
}

// observeRecord is the mdns.Responder.OnRecord callback fed every answer in
// packets received while DiscoveryMode is set.
func (d *Discovery) observeRecord(rr dnswire.ResourceRecord, from net.Addr) {
	now := time.Now()
	d.peerSt.Add(rr, now)
	_ = d.dbg() && d.log("OBSERVED %s %s from %s ttl=%d\n", rr.Name, rr.Type, from, rr.TTL)

	d.mu.Lock()
	key := rr.IdentityKey()
	if rr.TTL == 0 {
		delete(d.tracked, key)
	} else {
		d.tracked[key] = &peerTracking{rr: rr, originalTTL: rr.TTL, insertedAt: now}
	}
	d.mu.Unlock()

	if d.Observer != nil {
		d.Observer.OnAnswer(rr, false)
	}
}

// RunRefreshLoop drives the §4.8 refresh schedule and TTL expiry until
// Close is called. cmd/mdnsctl runs it in a goroutine; Blocking and
// Cooperative do not use it and call RefreshOnce from their own
// RefreshPeriod ticker instead.
func (d *Discovery) RunRefreshLoop(period time.Duration) {
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-d.closing:
			return
		case <-t.C:
			d.RefreshOnce()
		}
	}
}

// RefreshOnce performs one pass of expiry and refresh-checkpoint queries,
// suitable for cooperative-mode callers to invoke from their own timer.
func (d *Discovery) RefreshOnce() {
	now := time.Now()
	d.peerSt.Expire(now)

	d.mu.Lock()
	var toRequery []dnswire.ResourceRecord
	for _, tr := range d.tracked {
		for tr.nextIdx < len(refreshCheckpoints) {
			checkpoint := refreshCheckpoints[tr.nextIdx] * float64(tr.originalTTL)
			checkpoint *= 0.98 + 0.04*rand.Float64()
			if now.Sub(tr.insertedAt).Seconds() < checkpoint {
				break
			}
			tr.nextIdx++
			toRequery = append(toRequery, tr.rr)
		}
	}
	var services []dnswire.Name
	for _, name := range d.queried {
		services = append(services, name)
	}
	d.mu.Unlock()

	for _, rr := range toRequery {
		_ = d.query(rr.Name, rr.Type)
	}
	for _, svc := range services {
		_ = d.queryPTR(svc)
	}
}

// GetKnownServices returns the currently valid (non-expired, fully
// resolved) peers across every tracked service type (§4.8's peer view).
func (d *Discovery) GetKnownServices() []InstanceInfo {
	now := time.Now()
	var out []InstanceInfo

	for _, ptr := range d.peerSt.FindSubtree(dnswire.RootName, dnswire.TypePTR, dnswire.ClassIN, now) {
		if ptr.Name.Equal(dnsSDMetaQuery) {
			continue
		}
		rd, ok := ptr.RData.(*dnswire.RDataPTR)
		if !ok {
			continue
		}
		if info, ok := d.resolveInstance(rd.Target, now); ok {
			out = append(out, info)
		}
	}
	return out
}

func (d *Discovery) resolveInstance(instName dnswire.Name, now time.Time) (InstanceInfo, bool) {
	srvRecs := d.peerSt.Find(instName, dnswire.TypeSRV, dnswire.ClassIN, now)
	if len(srvRecs) == 0 {
		return InstanceInfo{}, false
	}
	srv, ok := srvRecs[0].RData.(*dnswire.RDataSRV)
	if !ok {
		return InstanceInfo{}, false
	}

	var addrs []net.IP
	for _, a := range d.peerSt.Find(srv.Target, dnswire.TypeA, dnswire.ClassIN, now) {
		if rd, ok := a.RData.(*dnswire.RDataA); ok {
			addrs = append(addrs, rd.Address)
		}
	}
	for _, a := range d.peerSt.Find(srv.Target, dnswire.TypeAAAA, dnswire.ClassIN, now) {
		if rd, ok := a.RData.(*dnswire.RDataAAAA); ok {
			addrs = append(addrs, rd.Address)
		}
	}
	if len(addrs) == 0 {
		return InstanceInfo{}, false
	}

	attrs := map[string]string{}
	for _, t := range d.peerSt.Find(instName, dnswire.TypeTXT, dnswire.ClassIN, now) {
		if txt, ok := t.RData.(*dnswire.RDataTXT); ok {
			for k, v := range parseTXTPairs(txt) {
				attrs[k] = v
			}
		}
	}

	ttl, _ := d.peerSt.TTLRemaining(srvRecs[0], now)
	instanceLabel, service := splitInstanceName(instName)
	return InstanceInfo{
		Instance: instanceLabel,
		Service:  service,
		Host:     srv.Target.String(),
		Port:     srv.Port,
		Addrs:    addrs,
		Attrs:    attrs,
		TTL:      uint32(ttl.Seconds()),
	}, true
}

// Serve runs the responder's receive loop until Close is called. It blocks
// and is meant to be run in its own goroutine; NewBlocking and
// NewCooperative both start it that way.
func (d *Discovery) Serve() {
	d.responder.Serve()
}

// Close signals every background loop to stop, sends a goodbye for each
// advertised instance's SRV and TXT records, and releases the transport (§5's cancellation
// semantics: best-effort, in-flight sends may be lost).
func (d *Discovery) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	services := make(map[string]ServiceInfo, len(d.services))
	for k, v := range d.services {
		services[k] = v
	}
	d.mu.Unlock()

	for _, info := range services {
		if instName, err := info.instanceName(); err == nil {
			d.sendGoodbye(instName, dnswire.TypeSRV)
			d.sendGoodbye(instName, dnswire.TypeTXT)
		}
	}
	close(d.closing)
	return d.responder.Close()
}

func parseTXTPairs(txt *dnswire.RDataTXT) map[string]string {
	out := map[string]string{}
	for _, cs := range txt.Strings {
		s := cs.String()
		if s == "" {
			continue
		}
		if i := strings.IndexByte(s, '='); i >= 0 {
			out[s[:i]] = s[i+1:]
		} else {
			out[s] = ""
		}
	}
	return out
}

// splitInstanceName reverses ServiceInfo.instanceName: the first label is
// the instance, the remainder the service type.
func splitInstanceName(n dnswire.Name) (instance, service string) {
	labels := n.Labels()
	if len(labels) == 0 {
		return "", n.String()
	}
	instName, _ := dnswire.NewName(labels[0])
	svcName, _ := dnswire.NewName(labels[1:]...)
	return instName.String(), svcName.String()
}
