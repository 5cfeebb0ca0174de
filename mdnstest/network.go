// Package mdnstest provides an in-process loopback multicast simulator for
// tests, in the spirit of the recursive resolver's dnstest.Server: instead
// of opening real sockets, member transports exchange datagrams over
// channels within a single Network, so Responder/Discovery tests run
// deterministically and without real network access.
package mdnstest

import (
	"errors"
	"net"

	"github.com/linkdata/deadlock"

	"github.com/opendisco/dnswire/mdns"
)

// Network is a shared virtual multicast domain. Every Transport created
// with NewTransport on the same Network receives every other member's
// WriteMulticast calls, and can be addressed directly via WriteUnicast.
type Network struct {
	mu      deadlock.Mutex
	members []*Transport
	nextIP  byte
}

// NewNetwork returns an empty virtual multicast domain.
func NewNetwork() *Network {
	return &Network{nextIP: 1}
}

// Transport is a mdns.Transport backed by a Network instead of a real
// socket. Reads block on an internal channel fed by other members' writes.
type Transport struct {
	net    *Network
	addr   *net.UDPAddr
	inbox  chan mdns.InboundPacket
	closed chan struct{}
	v4     bool
	v6     bool
}

// NewTransport registers a new member on n and returns its transport. Each
// member gets a distinct loopback address on the 127.0.0.0/8 range so
// WriteUnicast can address them individually.
func (n *Network) NewTransport() *Transport {
	n.mu.Lock()
	ip := net.IPv4(127, 0, 0, n.nextIP)
	n.nextIP++
	t := &Transport{
		net:    n,
		addr:   &net.UDPAddr{IP: ip, Port: mdns.MulticastPort},
		inbox:  make(chan mdns.InboundPacket, 64),
		closed: make(chan struct{}),
		v4:     true,
	}
	n.members = append(n.members, t)
	n.mu.Unlock()
	return t
}

func (n *Network) deliver(from *Transport, p []byte, dst net.Addr, multicast bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	pkt := func() mdns.InboundPacket {
		return mdns.InboundPacket{Data: append([]byte(nil), p...), Src: from.addr, Multicast: multicast}
	}
	if multicast {
		for _, m := range n.members {
			if m == from {
				continue
			}
			select {
			case m.inbox <- pkt():
			default:
			}
		}
		return
	}
	for _, m := range n.members {
		if m.addr.String() == dst.String() {
			select {
			case m.inbox <- pkt():
			default:
			}
			return
		}
	}
}

func (t *Transport) remove() {
	t.net.mu.Lock()
	defer t.net.mu.Unlock()
	for i, m := range t.net.members {
		if m == t {
			t.net.members = append(t.net.members[:i], t.net.members[i+1:]...)
			return
		}
	}
}

// Addr returns the transport's synthetic loopback address, suitable as a
// WriteUnicast destination from another member on the same Network.
func (t *Transport) Addr() net.Addr { return t.addr }

func (t *Transport) HasV4() bool { return t.v4 }
func (t *Transport) HasV6() bool { return t.v6 }

func (t *Transport) ReadV4(p []byte) (mdns.InboundPacket, error) { return t.read() }
func (t *Transport) ReadV6(p []byte) (mdns.InboundPacket, error) { return t.read() }

func (t *Transport) read() (mdns.InboundPacket, error) {
	select {
	case pkt := <-t.inbox:
		return pkt, nil
	case <-t.closed:
		return mdns.InboundPacket{}, errors.New("mdnstest: transport closed")
	}
}

func (t *Transport) WriteMulticast(p []byte, v6 bool) error {
	t.net.deliver(t, p, nil, true)
	return nil
}

func (t *Transport) WriteUnicast(p []byte, dst net.Addr) error {
	t.net.deliver(t, p, dst, false)
	return nil
}

func (t *Transport) Close() error {
	select {
	case <-t.closed:
		return nil
	default:
		close(t.closed)
	}
	t.remove()
	return nil
}
