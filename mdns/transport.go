package mdns

import (
	"context"
	"errors"
	"net"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// InboundPacket is one received datagram, tagged with whether it arrived on
// the multicast group (as opposed to being unicast directly to us) so the
// responder can decide where an answer belongs.
type InboundPacket struct {
	Data      []byte
	Src       net.Addr
	Multicast bool
	V6        bool
}

// Transport is the socket abstraction the Responder drives. udpTransport is
// the real implementation; tests substitute a loopback fake.
type Transport interface {
	// ReadV4 and ReadV6 each block until a datagram arrives on their
	// respective family's socket, or return an error once the socket is
	// closed. Responder only calls the Read method of a family that
	// HasV4/HasV6 reports; udpTransport returns an error from the Read of a
	// family it has no socket for.
	ReadV4(p []byte) (InboundPacket, error)
	ReadV6(p []byte) (InboundPacket, error)
	HasV4() bool
	HasV6() bool
	WriteMulticast(p []byte, v6 bool) error
	WriteUnicast(p []byte, dst net.Addr) error
	Close() error
}

// udpTransport is a dual-stack mDNS multicast socket built on
// golang.org/x/net/ipv4 and ipv6, configured per §6: SO_REUSEADDR, TTL 255,
// loopback enabled, and IP_MULTICAST_IF/IPV6_MULTICAST_IF chosen per scope.
type udpTransport struct {
	pc4 *ipv4.PacketConn
	pc6 *ipv6.PacketConn
}

// NewUDPTransport opens and configures multicast sockets for scope.
func NewUDPTransport(scope NetworkScope) (Transport, error) {
	t := &udpTransport{}
	var err4, err6 error
	if scope.useIPv4() {
		t.pc4, err4 = joinV4(scope)
	}
	if scope.useIPv6() {
		t.pc6, err6 = joinV6(scope)
	}
	if t.pc4 == nil && t.pc6 == nil {
		return nil, errors.Join(err4, err6, errors.New("mdns: no usable multicast socket for scope"))
	}
	return t, nil
}

func joinV4(scope NetworkScope) (*ipv4.PacketConn, error) {
	lc := net.ListenConfig{Control: reusePortControl}
	conn, err := lc.ListenPacket(context.Background(), "udp4", (&net.UDPAddr{Port: MulticastPort}).String())
	if err != nil {
		return nil, err
	}
	pc := ipv4.NewPacketConn(conn)
	_ = pc.SetMulticastTTL(255)
	_ = pc.SetMulticastLoopback(true)
	_ = pc.SetControlMessage(ipv4.FlagInterface|ipv4.FlagDst, true)

	ifaces, err := scope.interfaces(false)
	if err != nil {
		conn.Close()
		return nil, err
	}
	group := &net.UDPAddr{IP: GroupV4}
	joined := 0
	for i := range ifaces {
		if pc.JoinGroup(&ifaces[i], group) == nil {
			joined++
			if scope.kind == scopeV4Iface {
				_ = pc.SetMulticastInterface(&ifaces[i])
			}
		}
	}
	if joined == 0 {
		conn.Close()
		return nil, errors.New("mdns: joined no IPv4 multicast interface")
	}
	return pc, nil
}

func joinV6(scope NetworkScope) (*ipv6.PacketConn, error) {
	lc := net.ListenConfig{Control: reusePortControl}
	conn, err := lc.ListenPacket(context.Background(), "udp6", (&net.UDPAddr{Port: MulticastPort}).String())
	if err != nil {
		return nil, err
	}
	pc := ipv6.NewPacketConn(conn)
	_ = pc.SetMulticastHopLimit(255)
	_ = pc.SetMulticastLoopback(true)
	_ = pc.SetControlMessage(ipv6.FlagInterface|ipv6.FlagDst, true)

	ifaces, err := scope.interfaces(true)
	if err != nil {
		conn.Close()
		return nil, err
	}
	group := &net.UDPAddr{IP: GroupV6}
	joined := 0
	for i := range ifaces {
		if pc.JoinGroup(&ifaces[i], group) == nil {
			joined++
			if scope.kind == scopeV6Iface {
				_ = pc.SetMulticastInterface(&ifaces[i])
			}
		}
	}
	if joined == 0 {
		conn.Close()
		return nil, errors.New("mdns: joined no IPv6 multicast interface")
	}
	return pc, nil
}

func (t *udpTransport) HasV4() bool { return t.pc4 != nil }
func (t *udpTransport) HasV6() bool { return t.pc6 != nil }

func (t *udpTransport) ReadV4(p []byte) (InboundPacket, error) {
	if t.pc4 == nil {
		return InboundPacket{}, errors.New("mdns: no IPv4 socket")
	}
	n, cm, src, err := t.pc4.ReadFrom(p)
	if err != nil {
		return InboundPacket{}, err
	}
	pkt := InboundPacket{Data: append([]byte(nil), p[:n]...), Src: src}
	if cm != nil {
		pkt.Multicast = cm.Dst != nil && cm.Dst.IsMulticast()
	}
	return pkt, nil
}

func (t *udpTransport) ReadV6(p []byte) (InboundPacket, error) {
	if t.pc6 == nil {
		return InboundPacket{}, errors.New("mdns: no IPv6 socket")
	}
	n, cm, src, err := t.pc6.ReadFrom(p)
	if err != nil {
		return InboundPacket{}, err
	}
	pkt := InboundPacket{Data: append([]byte(nil), p[:n]...), Src: src, V6: true}
	if cm != nil {
		pkt.Multicast = cm.Dst != nil && cm.Dst.IsMulticast()
	}
	return pkt, nil
}

func (t *udpTransport) WriteMulticast(p []byte, v6 bool) error {
	if v6 {
		if t.pc6 == nil {
			return nil
		}
		_, err := t.pc6.WriteTo(p, nil, &net.UDPAddr{IP: GroupV6, Port: MulticastPort})
		return err
	}
	if t.pc4 == nil {
		return nil
	}
	_, err := t.pc4.WriteTo(p, nil, &net.UDPAddr{IP: GroupV4, Port: MulticastPort})
	return err
}

func (t *udpTransport) WriteUnicast(p []byte, dst net.Addr) error {
	udpAddr, ok := dst.(*net.UDPAddr)
	if !ok {
		return errors.New("mdns: unicast destination is not a *net.UDPAddr")
	}
	if udpAddr.IP.To4() != nil {
		if t.pc4 == nil {
			return errors.New("mdns: no IPv4 socket for unicast reply")
		}
		_, err := t.pc4.WriteTo(p, nil, udpAddr)
		return err
	}
	if t.pc6 == nil {
		return errors.New("mdns: no IPv6 socket for unicast reply")
	}
	_, err := t.pc6.WriteTo(p, nil, udpAddr)
	return err
}

func (t *udpTransport) Close() error {
	var err error
	if t.pc4 != nil {
		err = errors.Join(err, t.pc4.Close())
	}
	if t.pc6 != nil {
		err = errors.Join(err, t.pc6.Close())
	}
	return err
}
