// Package mdns implements the multicast DNS responder: a socket bound to
// UDP/5353 on 224.0.0.251 and/or ff02::fb, backed by a store.Store, that
// answers questions and emits announcements per RFC 6762.
package mdns

import "net"

// MulticastPort is the well-known mDNS UDP port (RFC 6762 §3).
const MulticastPort = 5353

// MaxPacketSize is the largest datagram the responder will attempt to read
// or emit, per §6's mDNS payload ceiling.
const MaxPacketSize = 9000

var (
	// GroupV4 is the IPv4 mDNS multicast group.
	GroupV4 = net.IPv4(224, 0, 0, 251)
	// GroupV6 is the IPv6 mDNS multicast group (link-local).
	GroupV6 = net.ParseIP("ff02::fb")
)

type scopeKind uint8

const (
	scopeV4 scopeKind = iota
	scopeV6
	scopeV4Iface
	scopeV6Iface
	scopeBoth
)

// NetworkScope selects which IP families and interfaces a Responder or
// Discovery instance binds to, per §6.
type NetworkScope struct {
	kind  scopeKind
	iface *net.Interface
}

// V4 binds IPv4 only, on any/default interface.
func V4() NetworkScope { return NetworkScope{kind: scopeV4} }

// V6 binds IPv6 only, on any/default interface.
func V6() NetworkScope { return NetworkScope{kind: scopeV6} }

// V4WithInterface binds IPv4 only, restricted to ifi.
func V4WithInterface(ifi *net.Interface) NetworkScope {
	return NetworkScope{kind: scopeV4Iface, iface: ifi}
}

// V6WithInterface binds IPv6 only, restricted to ifi (its link-local scope).
func V6WithInterface(ifi *net.Interface) NetworkScope {
	return NetworkScope{kind: scopeV6Iface, iface: ifi}
}

// Both binds dual-stack, on any/default interface.
func Both() NetworkScope { return NetworkScope{kind: scopeBoth} }

func (s NetworkScope) useIPv4() bool {
	return s.kind == scopeV4 || s.kind == scopeV4Iface || s.kind == scopeBoth
}

func (s NetworkScope) useIPv6() bool {
	return s.kind == scopeV6 || s.kind == scopeV6Iface || s.kind == scopeBoth
}

// interfaces returns the interfaces to join the multicast group on for the
// given family: the pinned interface if one was given, otherwise every
// multicast-capable interface on the host.
func (s NetworkScope) interfaces(v6 bool) ([]net.Interface, error) {
	if v6 && s.kind == scopeV6Iface && s.iface != nil {
		return []net.Interface{*s.iface}, nil
	}
	if !v6 && s.kind == scopeV4Iface && s.iface != nil {
		return []net.Interface{*s.iface}, nil
	}
	all, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	var out []net.Interface
	for _, ifi := range all {
		if ifi.Flags&net.FlagUp == 0 || ifi.Flags&net.FlagMulticast == 0 {
			continue
		}
		out = append(out, ifi)
	}
	return out, nil
}
