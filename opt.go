package dnswire

// OPT is the EDNS0 pseudo-record (RFC 6891 §6.1). It is never a plain
// member of a packet's Additional section as seen by callers: Packet
// extracts it from (or injects it into) Additional on parse/serialize, per
// §4.4 of spec.md.
//
// EDNS0 overloads the RR header fields: CLASS carries the requestor's UDP
// payload size, and TTL is split into an extended RCODE octet, a version
// octet, and a 16-bit flags word (of which only the top bit, DO, is
// currently assigned).
type OPT struct {
	UDPPayloadSize uint16
	ExtendedRCode  uint8
	Version        uint8
	DO             bool
	Options        []OptOption
}

const optDOFlag uint16 = 0x8000

// asResourceRecord converts an OPT into the wire ResourceRecord form.
func (o OPT) asResourceRecord() ResourceRecord {
	var flags uint16
	if o.DO {
		flags = optDOFlag
	}
	ttl := uint32(o.ExtendedRCode)<<24 | uint32(o.Version)<<16 | uint32(flags)
	return ResourceRecord{
		Name:  RootName,
		Type:  TypeOPT,
		Class: Class(o.UDPPayloadSize),
		TTL:   ttl,
		RData: &RDataOPT{Options: o.Options},
	}
}

// optFromResourceRecord extracts an OPT from a TYPE=OPT ResourceRecord.
func optFromResourceRecord(rr ResourceRecord) (OPT, error) {
	rd, ok := rr.RData.(*RDataOPT)
	if !ok {
		return OPT{}, newWireError(ErrInvalidDnsPacket, "OPT record has non-OPT rdata")
	}
	return OPT{
		UDPPayloadSize: uint16(rr.Class),
		ExtendedRCode:  uint8(rr.TTL >> 24),
		Version:        uint8(rr.TTL >> 16),
		DO:             uint16(rr.TTL)&optDOFlag != 0,
		Options:        rd.Options,
	}, nil
}

// Option returns the first option with the given code, if any.
func (o OPT) Option(code uint16) (OptOption, bool) {
	for _, opt := range o.Options {
		if opt.Code == code {
			return opt, true
		}
	}
	return OptOption{}, false
}
