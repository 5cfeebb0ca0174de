package mdns

import (
	"errors"
	"net"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/opendisco/dnswire"
	"github.com/opendisco/dnswire/store"
)

type fakeTransport struct {
	mu              sync.Mutex
	multicastWrites [][]byte
	unicastWrites   [][]byte
	v4              bool
	v6              bool
}

func (f *fakeTransport) ReadV4(p []byte) (InboundPacket, error) { select {} }
func (f *fakeTransport) ReadV6(p []byte) (InboundPacket, error) { select {} }
func (f *fakeTransport) HasV4() bool                            { return f.v4 }
func (f *fakeTransport) HasV6() bool                            { return f.v6 }
func (f *fakeTransport) WriteMulticast(p []byte, v6 bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.multicastWrites = append(f.multicastWrites, append([]byte(nil), p...))
	return nil
}

// waitMulticast waits out the responder's jittered multicast send (at most
// 120ms) and returns the multicast writes seen so far.
func (f *fakeTransport) waitMulticast(t *testing.T) [][]byte {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		f.mu.Lock()
		n := len(f.multicastWrites)
		f.mu.Unlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.multicastWrites...)
}
func (f *fakeTransport) WriteUnicast(p []byte, dst net.Addr) error {
	f.unicastWrites = append(f.unicastWrites, append([]byte(nil), p...))
	return nil
}
func (f *fakeTransport) Close() error { return nil }

func mustName(t *testing.T, s string) dnswire.Name {
	t.Helper()
	n, err := dnswire.ParseNameString(s)
	if err != nil {
		t.Fatalf("ParseNameString(%q): %v", s, err)
	}
	return n
}

func buildQueryPacket(t *testing.T, name string, qtype dnswire.Type, unicastBit bool) []byte {
	t.Helper()
	q := dnswire.Question{Name: mustName(t, name), QType: qtype, QClass: dnswire.ClassIN}
	q = q.WithUnicastResponseRequested(unicastBit)
	p := &dnswire.Packet{Questions: []dnswire.Question{q}}
	p.Header.SetRD(false)
	b, err := p.BuildBytes()
	if err != nil {
		t.Fatalf("BuildBytes: %v", err)
	}
	return b
}

func TestResponderAnswersMulticastQuery(t *testing.T) {
	st := store.New()
	now := time.Now()
	st.Add(dnswire.ResourceRecord{
		Name:  mustName(t, "host.local."),
		Class: dnswire.ClassIN,
		Type:  dnswire.TypeA,
		TTL:   120,
		RData: &dnswire.RDataA{Address: net.ParseIP("192.0.2.7")},
	}, now)

	ft := &fakeTransport{v4: true}
	r := NewResponder(ft, st)

	data := buildQueryPacket(t, "host.local.", dnswire.TypeA, false)
	r.handleDatagram(InboundPacket{Data: data, Src: &net.UDPAddr{IP: net.ParseIP("192.0.2.99"), Port: 5353}})

	writes := ft.waitMulticast(t)
	if len(writes) != 1 {
		t.Fatalf("want 1 multicast response, got %d", len(writes))
	}
	resp, err := dnswire.ParsePacket(writes[0])
	if err != nil {
		t.Fatalf("ParsePacket(response): %v", err)
	}
	if !resp.Header.QR() || !resp.Header.AA() {
		t.Fatal("response must have QR=1, AA=1")
	}
	if resp.Header.ID != 0 {
		t.Fatalf("multicast response must use id=0, got %d", resp.Header.ID)
	}
	if len(resp.Answers) != 1 {
		t.Fatalf("want 1 answer, got %d", len(resp.Answers))
	}
}

func TestResponderAnswersUnicastRequest(t *testing.T) {
	st := store.New()
	now := time.Now()
	st.Add(dnswire.ResourceRecord{
		Name:  mustName(t, "host.local."),
		Class: dnswire.ClassIN,
		Type:  dnswire.TypeA,
		TTL:   120,
		RData: &dnswire.RDataA{Address: net.ParseIP("192.0.2.7")},
	}, now)

	ft := &fakeTransport{v4: true}
	r := NewResponder(ft, st)

	data := buildQueryPacket(t, "host.local.", dnswire.TypeA, true)
	r.handleDatagram(InboundPacket{Data: data, Src: &net.UDPAddr{IP: net.ParseIP("192.0.2.99"), Port: 5353}})

	if len(ft.unicastWrites) != 1 {
		t.Fatalf("want 1 unicast response, got %d", len(ft.unicastWrites))
	}
	if len(ft.multicastWrites) != 0 {
		t.Fatal("unicast-requested query must not also get a multicast response")
	}
}

func TestResponderNoAnswerNoReply(t *testing.T) {
	st := store.New()
	ft := &fakeTransport{v4: true}
	r := NewResponder(ft, st)

	data := buildQueryPacket(t, "nowhere.local.", dnswire.TypeA, false)
	r.handleDatagram(InboundPacket{Data: data, Src: &net.UDPAddr{IP: net.ParseIP("192.0.2.99"), Port: 5353}})

	if len(ft.multicastWrites)+len(ft.unicastWrites) != 0 {
		t.Fatal("no matching records should produce no reply")
	}
}

func TestResponderIgnoresResponsesOutsideDiscoveryMode(t *testing.T) {
	st := store.New()
	ft := &fakeTransport{v4: true}
	r := NewResponder(ft, st)

	p := &dnswire.Packet{}
	p.Header.SetQR(true)
	b, _ := p.BuildBytes()
	r.handleDatagram(InboundPacket{Data: b, Src: &net.UDPAddr{}})

	if len(ft.multicastWrites)+len(ft.unicastWrites) != 0 {
		t.Fatal("responses must be ignored when not in discovery mode")
	}
}

func TestKnownAnswerSuppression(t *testing.T) {
	rr := dnswire.ResourceRecord{
		Name:  mustName(t, "host.local."),
		Class: dnswire.ClassIN,
		Type:  dnswire.TypeA,
		TTL:   120,
		RData: &dnswire.RDataA{Address: net.ParseIP("192.0.2.7")},
	}
	fresh := rr
	fresh.TTL = 100 // >= half of 120
	p := &dnswire.Packet{Answers: []dnswire.ResourceRecord{fresh}}
	if !knownAnswerSuppresses(p, rr, time.Unix(0, 0)) {
		t.Fatal("known answer with TTL >= half should suppress")
	}

	stale := rr
	stale.TTL = 10 // < half of 120
	p2 := &dnswire.Packet{Answers: []dnswire.ResourceRecord{stale}}
	if knownAnswerSuppresses(p2, rr, time.Unix(0, 0)) {
		t.Fatal("known answer with TTL < half should not suppress")
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTransientReadError(t *testing.T) {
	if !isTransientReadError(timeoutErr{}) {
		t.Fatal("a net.Error reporting Timeout() should be treated as transient")
	}
	if !isTransientReadError(&net.OpError{Op: "read", Err: syscall.EINTR}) {
		t.Fatal("EINTR should be treated as transient")
	}
	if !isTransientReadError(&net.OpError{Op: "read", Err: syscall.EAGAIN}) {
		t.Fatal("EAGAIN should be treated as transient")
	}
	if isTransientReadError(errors.New("connection permanently closed")) {
		t.Fatal("an unrecognized error should be treated as terminal")
	}
}

func TestSRVPullsKnownAdditionals(t *testing.T) {
	st := store.New()
	now := time.Now()
	st.Add(dnswire.ResourceRecord{
		Name:  mustName(t, "My Printer._http._tcp.local."),
		Class: dnswire.ClassIN,
		Type:  dnswire.TypeSRV,
		TTL:   120,
		RData: &dnswire.RDataSRV{Priority: 0, Weight: 0, Port: 8080, Target: mustName(t, "host.local.")},
	}, now)
	st.Add(dnswire.ResourceRecord{
		Name:  mustName(t, "host.local."),
		Class: dnswire.ClassIN,
		Type:  dnswire.TypeA,
		TTL:   120,
		RData: &dnswire.RDataA{Address: net.ParseIP("192.0.2.7")},
	}, now)

	ft := &fakeTransport{v4: true}
	r := NewResponder(ft, st)
	data := buildQueryPacket(t, "My Printer._http._tcp.local.", dnswire.TypeSRV, false)
	r.handleDatagram(InboundPacket{Data: data, Src: &net.UDPAddr{IP: net.ParseIP("192.0.2.99"), Port: 5353}})

	writes := ft.waitMulticast(t)
	resp, err := dnswire.ParsePacket(writes[0])
	if err != nil {
		t.Fatalf("ParsePacket: %v", err)
	}
	if len(resp.Answers) != 2 {
		t.Fatalf("want SRV + known-additional A record, got %d answers", len(resp.Answers))
	}
}
