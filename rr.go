package dnswire

// ResourceRecord is (Name, CLASS, TYPE, TTL, RDLENGTH, RData) per RFC 1035
// §4.1.3. RDLENGTH is never stored explicitly; it is always derived from
// RData on write and validated against the wire value on parse.
type ResourceRecord struct {
	Name  Name
	Class Class
	Type  Type
	TTL   uint32
	RData RData
}

// CacheFlush reports the mDNS cache-flush bit (RFC 6762 §10.2): the high
// bit of CLASS on a response record, meaning the responder is authoritative
// for this name/type/class and peers should flush stale cached records of
// the same identity. It does not affect record equality for store lookup.
func (rr ResourceRecord) CacheFlush() bool { return rr.Class.FlushOrUnicast() }

// WithCacheFlush returns rr with the cache-flush bit set or cleared.
func (rr ResourceRecord) WithCacheFlush(set bool) ResourceRecord {
	rr.Class = rr.Class.WithFlushOrUnicast(set)
	return rr
}

// IdentityKey groups the fields that must be unique for two records to
// count as "the same record" in the resource store (§4.6): name, class
// value (ignoring the cache-flush bit), type, and rdata bytes.
func (rr ResourceRecord) IdentityKey() string {
	buf := NewBufferSize(64)
	_ = rr.RData.encodeRData(buf, nil)
	return rr.Name.CanonicalKey() + "\x00" + uitoa(uint16(rr.Class.Value())) + "\x00" + uitoa(uint16(rr.Type)) + "\x00" + string(buf.Bytes())
}

func (rr ResourceRecord) writeTo(buf *Buffer, comp compressionMap) error {
	if err := writeCompressibleName(buf, rr.Name, comp); err != nil {
		return err
	}
	if err := buf.WriteUint16(uint16(rr.Type)); err != nil {
		return err
	}
	if err := buf.WriteUint16(uint16(rr.Class)); err != nil {
		return err
	}
	if err := buf.WriteUint32(rr.TTL); err != nil {
		return err
	}
	lengthOffset := buf.Position()
	if err := buf.WriteUint16(0); err != nil {
		return err
	}
	rdataStart := buf.Position()
	if err := rr.RData.encodeRData(buf, comp); err != nil {
		return err
	}
	rdlength := buf.Position() - rdataStart
	if rdlength > 0xFFFF {
		return newWireError(ErrInvalidDnsPacket, "%s rdata too long: %d bytes", rr.Type, rdlength)
	}
	return buf.PatchUint16(lengthOffset, uint16(rdlength))
}

func parseResourceRecord(buf *Buffer) (ResourceRecord, error) {
	name, err := ParseName(buf)
	if err != nil {
		return ResourceRecord{}, err
	}
	typ, err := buf.ReadUint16()
	if err != nil {
		return ResourceRecord{}, err
	}
	class, err := buf.ReadUint16()
	if err != nil {
		return ResourceRecord{}, err
	}
	ttl, err := buf.ReadUint32()
	if err != nil {
		return ResourceRecord{}, err
	}
	rdlength, err := buf.ReadUint16()
	if err != nil {
		return ResourceRecord{}, err
	}
	rdata, err := parseRData(buf, Type(typ), int(rdlength))
	if err != nil {
		return ResourceRecord{}, err
	}
	return ResourceRecord{Name: name, Class: Class(class), Type: Type(typ), TTL: ttl, RData: rdata}, nil
}
