package dnswire

import "net"

// SVCB well-known parameter keys (RFC 9460 §14.3.2).
const (
	SVCBKeyMandatory     uint16 = 0
	SVCBKeyALPN          uint16 = 1
	SVCBKeyNoDefaultALPN uint16 = 2
	SVCBKeyPort          uint16 = 3
	SVCBKeyIPv4Hint      uint16 = 4
	SVCBKeyECH           uint16 = 5
	SVCBKeyIPv6Hint      uint16 = 6
)

// SVCBParam is one {key, value} SvcParam (RFC 9460 §2.1). Value holds the
// raw wire bytes; typed accessors below interpret well-known keys.
type SVCBParam struct {
	Key   uint16
	Value []byte
}

// ALPNProtocols decodes an alpn (key 1) parameter's list of protocol IDs.
func (p SVCBParam) ALPNProtocols() ([]string, error) {
	buf := NewBuffer(p.Value)
	var out []string
	for buf.Remaining() > 0 {
		cs, err := ParseCharacterString(buf)
		if err != nil {
			return nil, err
		}
		out = append(out, cs.String())
	}
	return out, nil
}

// Port decodes a port (key 3) parameter.
func (p SVCBParam) Port() (uint16, error) {
	if len(p.Value) != 2 {
		return 0, newWireError(ErrInvalidDnsPacket, "SVCB port param must be 2 bytes")
	}
	return uint16(p.Value[0])<<8 | uint16(p.Value[1]), nil
}

// IPv4Hints decodes an ipv4hint (key 4) parameter.
func (p SVCBParam) IPv4Hints() ([]net.IP, error) {
	if len(p.Value)%4 != 0 {
		return nil, newWireError(ErrInvalidDnsPacket, "SVCB ipv4hint length %d not a multiple of 4", len(p.Value))
	}
	var out []net.IP
	for i := 0; i < len(p.Value); i += 4 {
		ip := make(net.IP, 4)
		copy(ip, p.Value[i:i+4])
		out = append(out, ip)
	}
	return out, nil
}

// IPv6Hints decodes an ipv6hint (key 6) parameter.
func (p SVCBParam) IPv6Hints() ([]net.IP, error) {
	if len(p.Value)%16 != 0 {
		return nil, newWireError(ErrInvalidDnsPacket, "SVCB ipv6hint length %d not a multiple of 16", len(p.Value))
	}
	var out []net.IP
	for i := 0; i < len(p.Value); i += 16 {
		ip := make(net.IP, 16)
		copy(ip, p.Value[i:i+16])
		out = append(out, ip)
	}
	return out, nil
}

// rdataSVCB is shared by RDataSVCB and RDataHTTPS, which are wire-identical
// apart from their TYPE (RFC 9460 §9).
type rdataSVCB struct {
	rrType   Type
	Priority uint16
	Target   Name
	Params   []SVCBParam
}

func (r *rdataSVCB) Type() Type { return r.rrType }

func (r *rdataSVCB) encodeRData(buf *Buffer, _ compressionMap) error {
	if err := buf.WriteUint16(r.Priority); err != nil {
		return err
	}
	if err := r.Target.WriteUncompressed(buf); err != nil {
		return err
	}
	lastKey := int32(-1)
	for _, p := range r.Params {
		if int32(p.Key) <= lastKey {
			return newWireError(ErrInvalidDnsPacket, "SVCB params must be strictly ascending by key")
		}
		lastKey = int32(p.Key)
		if err := buf.WriteUint16(p.Key); err != nil {
			return err
		}
		if len(p.Value) > 0xFFFF {
			return newWireError(ErrInvalidDnsPacket, "SVCB param %d value too long", p.Key)
		}
		if err := buf.WriteUint16(uint16(len(p.Value))); err != nil {
			return err
		}
		if err := buf.WriteBytes(p.Value); err != nil {
			return err
		}
	}
	return nil
}

func parseSVCBLike(rrType Type, buf *Buffer, rdlength int) (RData, error) {
	start := buf.Position()
	prio, err := buf.ReadUint16()
	if err != nil {
		return nil, err
	}
	target, err := ParseName(buf)
	if err != nil {
		return nil, err
	}
	end := start + rdlength
	var params []SVCBParam
	lastKey := int32(-1)
	for buf.Position() < end {
		key, err := buf.ReadUint16()
		if err != nil {
			return nil, err
		}
		if int32(key) <= lastKey {
			return nil, newWireError(ErrInvalidDnsPacket, "SVCB params out of order: key %d after %d", key, lastKey)
		}
		lastKey = int32(key)
		length, err := buf.ReadUint16()
		if err != nil {
			return nil, err
		}
		if buf.Position()+int(length) > end {
			return nil, newWireError(ErrInvalidDnsPacket, "SVCB param %d length overruns rdata", key)
		}
		val, err := buf.ReadBytes(int(length))
		if err != nil {
			return nil, err
		}
		params = append(params, SVCBParam{Key: key, Value: append([]byte(nil), val...)})
	}
	if buf.Position() != end {
		return nil, newWireError(ErrInvalidDnsPacket, "SVCB params overran rdlength")
	}
	return &rdataSVCB{rrType: rrType, Priority: prio, Target: target, Params: params}, nil
}

// RDataSVCB is a Service Binding record (RFC 9460 §2).
type RDataSVCB struct{ *rdataSVCB }

func parseSVCB(buf *Buffer, rdlength int) (RData, error) {
	rd, err := parseSVCBLike(TypeSVCB, buf, rdlength)
	if err != nil {
		return nil, err
	}
	return &RDataSVCB{rd.(*rdataSVCB)}, nil
}

// RDataHTTPS is an HTTPS Service Binding record (RFC 9460 §9), wire-
// identical to SVCB apart from its TYPE.
type RDataHTTPS struct{ *rdataSVCB }

func parseHTTPS(buf *Buffer, rdlength int) (RData, error) {
	rd, err := parseSVCBLike(TypeHTTPS, buf, rdlength)
	if err != nil {
		return nil, err
	}
	return &RDataHTTPS{rd.(*rdataSVCB)}, nil
}
