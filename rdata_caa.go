package dnswire

// RDataCAA is a Certification Authority Authorization record (RFC 6844):
// a flags octet, a tag CharacterString, and the raw value bytes running to
// the end of rdata (no length octet prefixes the value).
type RDataCAA struct {
	Flags uint8
	Tag   CharacterString
	Value []byte
}

func (r *RDataCAA) Type() Type { return TypeCAA }

func (r *RDataCAA) encodeRData(buf *Buffer, _ compressionMap) error {
	if err := buf.WriteUint8(r.Flags); err != nil {
		return err
	}
	if err := r.Tag.WriteTo(buf); err != nil {
		return err
	}
	return buf.WriteBytes(r.Value)
}

func parseCAA(buf *Buffer, rdlength int) (RData, error) {
	end := buf.Position() + rdlength
	flags, err := buf.ReadUint8()
	if err != nil {
		return nil, err
	}
	tag, err := ParseCharacterString(buf)
	if err != nil {
		return nil, err
	}
	if buf.Position() > end {
		return nil, newWireError(ErrInvalidDnsPacket, "CAA tag overruns rdlength")
	}
	value, err := buf.ReadBytes(end - buf.Position())
	if err != nil {
		return nil, err
	}
	return &RDataCAA{Flags: flags, Tag: tag, Value: append([]byte(nil), value...)}, nil
}
