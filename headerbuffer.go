// Package-level in-place header inspection: cheap operations on the first
// 12 bytes of a wire packet that never parse names or resource records.
// mdns.Responder uses HeaderHasFlags to drop response datagrams outside
// discovery mode before paying for a full parse.
package dnswire

const HeaderSize = 12

// HeaderID returns the transaction ID from raw wire bytes without parsing.
func HeaderID(data []byte) (uint16, error) {
	if len(data) < HeaderSize {
		return 0, newWireError(ErrInvalidHeaderData, "packet shorter than %d bytes", HeaderSize)
	}
	return uint16(data[0])<<8 | uint16(data[1]), nil
}

// SetHeaderID overwrites the transaction ID in-place.
func SetHeaderID(data []byte, id uint16) error {
	if len(data) < HeaderSize {
		return newWireError(ErrInvalidHeaderData, "packet shorter than %d bytes", HeaderSize)
	}
	data[0] = byte(id >> 8)
	data[1] = byte(id)
	return nil
}

// HeaderFlags returns the raw 16-bit flags word without parsing.
func HeaderFlags(data []byte) (uint16, error) {
	if len(data) < HeaderSize {
		return 0, newWireError(ErrInvalidHeaderData, "packet shorter than %d bytes", HeaderSize)
	}
	return uint16(data[2])<<8 | uint16(data[3]), nil
}

// HeaderHasFlags reports whether every bit set in mask is also set in the
// wire flags word, without parsing.
func HeaderHasFlags(data []byte, mask uint16) (bool, error) {
	flags, err := HeaderFlags(data)
	if err != nil {
		return false, err
	}
	return flags&mask == mask, nil
}

// HeaderRcode returns only the header's low 4 RCODE bits, in place.
//
// Caveat (documented, not hidden): because EDNS0 spreads the full 12-bit
// RCODE across the header and the OPT pseudo-record's TTL field (RFC 6891
// §6.1.3), this is NOT the packet's effective RCODE when an OPT record is
// present with a non-zero extended byte. Callers that need the effective
// RCODE must fully parse the packet and call Packet.Rcode.
func HeaderRcode(data []byte) (Rcode, error) {
	flags, err := HeaderFlags(data)
	if err != nil {
		return 0, err
	}
	return Rcode(flags & rcodeMask), nil
}

// HeaderCounts returns the four section counts in place, without parsing
// names or records.
func HeaderCounts(data []byte) (qd, an, ns, ar uint16, err error) {
	if len(data) < HeaderSize {
		return 0, 0, 0, 0, newWireError(ErrInvalidHeaderData, "packet shorter than %d bytes", HeaderSize)
	}
	qd = uint16(data[4])<<8 | uint16(data[5])
	an = uint16(data[6])<<8 | uint16(data[7])
	ns = uint16(data[8])<<8 | uint16(data[9])
	ar = uint16(data[10])<<8 | uint16(data[11])
	return
}
