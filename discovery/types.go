// Package discovery implements RFC 6763 DNS-based service discovery on top
// of dnswire/mdns: advertising local service instances, querying for and
// tracking remote ones, and refreshing/expiring the resulting peer view.
package discovery

import (
	"net"

	"github.com/opendisco/dnswire"
	"github.com/opendisco/dnswire/mdns"
)

// ServiceInfo describes a locally-advertised service instance (§4.8): its
// instance name, service type (e.g. "_http._tcp.local."), hostname, port,
// and optional TXT attributes.
type ServiceInfo struct {
	Instance string
	Service  string // e.g. "_http._tcp.local."
	Host     string // e.g. "myhost.local."
	Port     uint16
	TTL      uint32 // 0 means mdns.DefaultTTL
	Addrs    []net.IP
	Attrs    map[string]*string
}

func (s ServiceInfo) ttlOrDefault() uint32 {
	if s.TTL == 0 {
		return mdns.DefaultTTL
	}
	return s.TTL
}

// instanceName returns "Instance.Service", e.g. "My Printer._http._tcp.local.".
func (s ServiceInfo) instanceName() (dnswire.Name, error) {
	inst, err := dnswire.ParseNameString(s.Instance)
	if err != nil {
		return dnswire.Name{}, err
	}
	svc, err := dnswire.ParseNameString(s.Service)
	if err != nil {
		return dnswire.Name{}, err
	}
	return inst.Append(svc)
}

func (s ServiceInfo) serviceName() (dnswire.Name, error) {
	return dnswire.ParseNameString(s.Service)
}

func (s ServiceInfo) hostName() (dnswire.Name, error) {
	return dnswire.ParseNameString(s.Host)
}

// InstanceInfo is the caller-facing view of a peer discovered on the
// network (§4.8's "get_known_services"): non-expired and resolved through
// its SRV record to a port and at least one address. Instances without an
// SRV record or without an address are not reported.
type InstanceInfo struct {
	Instance string
	Service  string
	Host     string
	Port     uint16
	Addrs    []net.IP
	Attrs    map[string]string
	TTL      uint32
}
