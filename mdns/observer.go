package mdns

import "github.com/opendisco/dnswire"

// Observer receives best-effort diagnostics from a Responder's background
// loop. All background errors are surfaced through it (§7); a nil Observer
// means silent best-effort operation.
type Observer interface {
	// OnParseError is called when a received datagram failed to parse as a
	// Packet. The malformed datagram is discarded, never treated as fatal.
	OnParseError(err error)
	// OnSocketError is called when a read or write on the underlying socket
	// failed. Transient errors (EAGAIN, EINTR) are retried without a call
	// here; only errors that terminate or degrade the loop are reported.
	OnSocketError(err error)
	// OnUpdate is called when a packet with Opcode=UPDATE is received. Per
	// the documented Open Question decision, UPDATE packets are logged and
	// otherwise ignored.
	OnUpdate(from string)
	// OnAnswer is called by a Responder for each record placed on the wire
	// in a response. discovery.Discovery also calls it, with unicast false,
	// for each record it observes from a peer.
	OnAnswer(rr dnswire.ResourceRecord, unicast bool)
}

// NopObserver implements Observer with no-op methods, useful as an embedded
// default for callers that only want to override one callback.
type NopObserver struct{}

func (NopObserver) OnParseError(error)                       {}
func (NopObserver) OnSocketError(error)                       {}
func (NopObserver) OnUpdate(string)                            {}
func (NopObserver) OnAnswer(dnswire.ResourceRecord, bool) {}
