package dnswire

const maxPacketLength = 65535

// Packet is a full DNS message: header, four sections, and an optional
// EDNS0 OPT pseudo-record (RFC 1035 §4, RFC 6891 §6.1). The OPT record, if
// present on the wire, is removed from Additionals and exposed separately
// as Opt, per §4.4 of spec.md.
type Packet struct {
	Header      Header
	Questions   []Question
	Answers     []ResourceRecord
	Authorities []ResourceRecord
	Additionals []ResourceRecord
	Opt         *OPT
}

// Rcode combines the header's low 4 RCODE bits with the OPT extended RCODE
// byte, per RFC 6891 §6.1.3, reconstructing the full 12-bit response code.
func (p *Packet) Rcode() Rcode {
	rc := p.Header.RcodeLow()
	if p.Opt != nil {
		rc |= Rcode(p.Opt.ExtendedRCode) << 4
	}
	return rc
}

// SetRcode splits rc across the header's low 4 bits and, if an OPT record
// is present, its extended RCODE byte. If rc needs the extended byte but no
// OPT is present, it is truncated to its low 4 bits (callers that need
// extended RCODEs must attach an OPT first).
func (p *Packet) SetRcode(rc Rcode) {
	p.Header.SetRcodeLow(rc & rcodeMask)
	if p.Opt != nil {
		p.Opt.ExtendedRCode = uint8(rc >> 4)
	}
}

// ParsePacket decodes a full DNS message from data.
func ParsePacket(data []byte) (*Packet, error) {
	buf := NewBuffer(data)
	h, err := parseHeader(buf)
	if err != nil {
		return nil, err
	}
	p := &Packet{Header: h}

	// Every question takes at least 5 bytes (root name, QTYPE, QCLASS) and
	// every record at least 11 (root name, TYPE, CLASS, TTL, RDLENGTH), so
	// counts that need more bytes than remain are inconsistent.
	minLen := 5*int(h.QDCount) + 11*(int(h.ANCount)+int(h.NSCount)+int(h.ARCount))
	if buf.Remaining() < minLen {
		return nil, newWireError(ErrInvalidHeaderData, "section counts need at least %d bytes, %d remain", minLen, buf.Remaining())
	}

	p.Questions = make([]Question, 0, h.QDCount)
	for i := 0; i < int(h.QDCount); i++ {
		q, err := parseQuestion(buf)
		if err != nil {
			return nil, err
		}
		p.Questions = append(p.Questions, q)
	}

	if p.Answers, err = parseRRSection(buf, h.ANCount); err != nil {
		return nil, err
	}
	if p.Authorities, err = parseRRSection(buf, h.NSCount); err != nil {
		return nil, err
	}

	rawAdditionals, err := parseRRSection(buf, h.ARCount)
	if err != nil {
		return nil, err
	}
	p.Additionals = make([]ResourceRecord, 0, len(rawAdditionals))
	for _, rr := range rawAdditionals {
		if rr.Type != TypeOPT {
			p.Additionals = append(p.Additionals, rr)
			continue
		}
		if p.Opt != nil {
			return nil, newWireError(ErrInvalidDnsPacket, "more than one OPT record")
		}
		opt, err := optFromResourceRecord(rr)
		if err != nil {
			return nil, err
		}
		p.Opt = &opt
	}
	return p, nil
}

func parseRRSection(buf *Buffer, count uint16) ([]ResourceRecord, error) {
	out := make([]ResourceRecord, 0, count)
	for i := 0; i < int(count); i++ {
		rr, err := parseResourceRecord(buf)
		if err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, nil
}

// WriteTo serializes p into buf without name compression.
func (p *Packet) WriteTo(buf *Buffer) error {
	return p.writeTo(buf, nil)
}

// WriteToCompressed serializes p into buf using DNS name compression
// (RFC 1035 §4.1.4) shared across every section.
func (p *Packet) WriteToCompressed(buf *Buffer) error {
	return p.writeTo(buf, newCompressionMap())
}

func (p *Packet) writeTo(buf *Buffer, comp compressionMap) error {
	arCount := len(p.Additionals)
	if p.Opt != nil {
		arCount++
	}
	if len(p.Questions) > 0xFFFF || len(p.Answers) > 0xFFFF || len(p.Authorities) > 0xFFFF || arCount > 0xFFFF {
		return newWireError(ErrInvalidDnsPacket, "section too large to encode in a uint16 count")
	}
	h := p.Header
	h.QDCount = uint16(len(p.Questions))
	h.ANCount = uint16(len(p.Answers))
	h.NSCount = uint16(len(p.Authorities))
	h.ARCount = uint16(arCount)
	if err := h.writeTo(buf); err != nil {
		return err
	}

	for _, q := range p.Questions {
		if err := q.writeTo(buf, comp); err != nil {
			return err
		}
	}
	for _, rr := range p.Answers {
		if err := rr.writeTo(buf, comp); err != nil {
			return err
		}
	}
	for _, rr := range p.Authorities {
		if err := rr.writeTo(buf, comp); err != nil {
			return err
		}
	}
	for _, rr := range p.Additionals {
		if err := rr.writeTo(buf, comp); err != nil {
			return err
		}
	}
	if p.Opt != nil {
		if err := p.Opt.asResourceRecord().writeTo(buf, comp); err != nil {
			return err
		}
	}
	if buf.Position() > maxPacketLength {
		return newWireError(ErrInvalidDnsPacket, "packet exceeds %d bytes", maxPacketLength)
	}
	return nil
}

// BuildBytes serializes p uncompressed into a freshly allocated slice.
func (p *Packet) BuildBytes() ([]byte, error) {
	buf := NewBufferSize(512)
	if err := p.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildBytesCompressed serializes p with name compression into a freshly
// allocated slice.
func (p *Packet) BuildBytesCompressed() ([]byte, error) {
	buf := NewBufferSize(512)
	if err := p.WriteToCompressed(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
