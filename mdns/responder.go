package mdns

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"syscall"
	"time"

	"github.com/linkdata/deadlock"

	"github.com/opendisco/dnswire"
	"github.com/opendisco/dnswire/store"
)

// DefaultTTL is the TTL new local records are given when the caller does
// not specify one, matching common mDNS responder practice for hostname and
// service records (RFC 6762 §10).
const DefaultTTL = 120

// responseJitterMin/Max bound the RFC 6762 §6 randomized delay applied to
// multicast responses (never to unicast ones).
const (
	responseJitterMin = 20 * time.Millisecond
	responseJitterMax = 120 * time.Millisecond
)

// Responder owns a multicast transport and a resource store (§4.7): it
// answers questions from the store, adds known-additional records (a PTR's
// target SRV; an SRV's target address and TXT), and can operate in
// DiscoveryMode to additionally hand every observed answer to OnRecord for
// a discovery engine to consume.
type Responder struct {
	Transport Transport
	Store     *store.Store
	Observer  Observer
	DebugLog  io.Writer

	// DiscoveryMode, when true, does not ignore QR=1 response packets;
	// every answer in them is passed to OnRecord instead (§4.7 step 3).
	DiscoveryMode bool
	OnRecord      func(rr dnswire.ResourceRecord, from net.Addr)

	mu      deadlock.Mutex
	closing chan struct{}
	closed  bool
}

// NewResponder builds a Responder over an already-configured transport and
// store. Callers that also want automatic socket setup should use
// NewUDPTransport to build transport first.
func NewResponder(transport Transport, st *store.Store) *Responder {
	return &Responder{Transport: transport, Store: st, closing: make(chan struct{})}
}

func (r *Responder) dbg() bool { return r.DebugLog != nil }

func (r *Responder) log(format string, args ...any) bool {
	fmt.Fprintf(r.DebugLog, format, args...)
	return false
}

// Serve runs the receive loop for every family the transport has open,
// blocking until Close is called or the sockets fail terminally. It is
// meant to be run in its own goroutine; discovery.Blocking and
// discovery.Cooperative both start it that way through Discovery.Serve.
func (r *Responder) Serve() {
	done := make(chan struct{}, 2)
	if r.Transport.HasV4() {
		go func() { r.serveFamily(false); done <- struct{}{} }()
	} else {
		done <- struct{}{}
	}
	if r.Transport.HasV6() {
		go func() { r.serveFamily(true); done <- struct{}{} }()
	} else {
		done <- struct{}{}
	}
	<-done
	<-done
}

func (r *Responder) serveFamily(v6 bool) {
	buf := make([]byte, MaxPacketSize)
	for {
		var pkt InboundPacket
		var err error
		if v6 {
			pkt, err = r.Transport.ReadV6(buf)
		} else {
			pkt, err = r.Transport.ReadV4(buf)
		}
		if err != nil {
			select {
			case <-r.closing:
				return
			default:
			}
			if isTransientReadError(err) {
				continue
			}
			if r.Observer != nil {
				r.Observer.OnSocketError(err)
			}
			return
		}
		r.handleDatagram(pkt)
	}
}

// isTransientReadError reports whether err is a momentary condition
// (EAGAIN, EINTR, a read deadline) that should be retried rather than
// treated as the socket having died, per §7's classification contract.
func isTransientReadError(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, syscall.EINTR) || errors.Is(err, syscall.EAGAIN)
}

// Close stops the receive loop and releases the transport.
func (r *Responder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.closing)
	r.mu.Unlock()
	return r.Transport.Close()
}

// handleDatagram implements the §4.7 receive-loop steps for one datagram.
func (r *Responder) handleDatagram(pkt InboundPacket) {
	// Outside DiscoveryMode responses are never used, so they are dropped on
	// the header's QR bit (0x8000) alone, before a full parse.
	if !r.DiscoveryMode {
		if isResponse, err := dnswire.HeaderHasFlags(pkt.Data, 0x8000); err == nil && isResponse {
			return
		}
	}
	p, err := dnswire.ParsePacket(pkt.Data)
	if err != nil {
		_ = r.dbg() && r.log("PARSE ERROR from %s: %v\n", pkt.Src, err)
		if r.Observer != nil {
			r.Observer.OnParseError(err)
		}
		return
	}

	if p.Header.Opcode() == dnswire.OpcodeUpdate {
		_ = r.dbg() && r.log("UPDATE from %s ignored\n", pkt.Src)
		if r.Observer != nil {
			r.Observer.OnUpdate(pkt.Src.String())
		}
		return
	}

	if p.Header.QR() {
		if r.DiscoveryMode && r.OnRecord != nil {
			for _, rr := range p.Answers {
				r.OnRecord(rr, pkt.Src)
			}
			for _, rr := range p.Additionals {
				r.OnRecord(rr, pkt.Src)
			}
		}
		return
	}

	now := time.Now()
	var answers []dnswire.ResourceRecord
	seen := make(map[string]struct{})
	addAnswer := func(rr dnswire.ResourceRecord) {
		key := rr.IdentityKey()
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		if ttl, ok := r.Store.TTLRemaining(rr, now); ok {
			rr.TTL = uint32(ttl.Seconds())
		}
		answers = append(answers, rr)
	}

	anyUnicastRequested := false
	for _, q := range p.Questions {
		if q.UnicastResponseRequested() {
			anyUnicastRequested = true
		}
		matches := r.Store.FindSubtree(q.Name, q.QType, q.QClass.Value(), now)
		for _, rr := range matches {
			if knownAnswerSuppresses(p, rr, now) {
				continue
			}
			addAnswer(rr)
			r.addKnownAdditionals(rr, now, addAnswer)
		}
	}

	if len(answers) == 0 {
		return
	}

	resp := &dnswire.Packet{Header: dnswire.Header{}, Answers: answers}
	resp.Header.SetQR(true)
	resp.Header.SetAA(true)

	unicast := anyUnicastRequested
	if !unicast {
		resp.Header.ID = 0
	} else {
		resp.Header.ID = p.Header.ID
	}

	bytes, err := resp.BuildBytesCompressed()
	if err != nil {
		if r.Observer != nil {
			r.Observer.OnSocketError(err)
		}
		return
	}

	send := func() {
		var sendErr error
		if unicast {
			sendErr = r.Transport.WriteUnicast(bytes, pkt.Src)
		} else {
			sendErr = r.Transport.WriteMulticast(bytes, pkt.V6)
		}
		_ = r.dbg() && r.log("REPLY to %s unicast=%v answers=%d err=%v\n", pkt.Src, unicast, len(answers), sendErr)
		if sendErr != nil && r.Observer != nil {
			r.Observer.OnSocketError(sendErr)
		}
		if r.Observer != nil {
			for _, rr := range answers {
				r.Observer.OnAnswer(rr, unicast)
			}
		}
	}

	// Multicast replies are delayed by RFC 6762 §6 jitter; run the wait and
	// send off the receive loop so serveFamily keeps draining the socket
	// instead of stalling for up to 120ms per reply.
	if unicast {
		send()
	} else {
		go func() {
			time.Sleep(jitter())
			send()
		}()
	}
}

// addKnownAdditionals attaches the records a resolver would otherwise have
// to look up separately: for a PTR, its target's SRV together with that
// SRV's own additionals; for an SRV, its target's A/AAAA and the TXT for
// the same name.
func (r *Responder) addKnownAdditionals(rr dnswire.ResourceRecord, now time.Time, add func(dnswire.ResourceRecord)) {
	if ptr, ok := rr.RData.(*dnswire.RDataPTR); ok {
		for _, srv := range r.Store.Find(ptr.Target, dnswire.TypeSRV, dnswire.ClassIN, now) {
			add(srv)
			r.addKnownAdditionals(srv, now, add)
		}
		return
	}
	srv, ok := rr.RData.(*dnswire.RDataSRV)
	if !ok {
		return
	}
	for _, extra := range r.Store.Find(srv.Target, dnswire.TypeA, dnswire.ClassIN, now) {
		add(extra)
	}
	for _, extra := range r.Store.Find(srv.Target, dnswire.TypeAAAA, dnswire.ClassIN, now) {
		add(extra)
	}
	for _, extra := range r.Store.Find(rr.Name, dnswire.TypeTXT, dnswire.ClassIN, now) {
		add(extra)
	}
}

// knownAnswerSuppresses implements RFC 6762 §7.1: a querier that already has
// a fresh copy of an answer lists it in the packet's Answer section as a
// "known answer"; if its remaining TTL there is at least half of ours, we
// must not repeat it.
func knownAnswerSuppresses(p *dnswire.Packet, rr dnswire.ResourceRecord, now time.Time) bool {
	for _, known := range p.Answers {
		if known.IdentityKey() != rr.IdentityKey() {
			continue
		}
		if uint64(known.TTL)*2 >= uint64(rr.TTL) {
			return true
		}
	}
	return false
}

func jitter() time.Duration {
	span := responseJitterMax - responseJitterMin
	return responseJitterMin + time.Duration(rand.Int63n(int64(span)))
}
