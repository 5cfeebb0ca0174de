package dnswire

// OptOption is one EDNS0 {option-code, option-data} pair (RFC 6891 §6.1.2).
type OptOption struct {
	Code uint16
	Data []byte
}

// RDataOPT is the OPT pseudo-record's RDATA: an ordered list of options.
// The surrounding CLASS/TTL fields (UDP payload size, extended RCODE,
// version, DO flag) are modeled separately by the OPT type in opt.go, since
// they live outside RDATA in the wire format (RFC 6891 §6.1.2).
type RDataOPT struct {
	Options []OptOption
}

func (r *RDataOPT) Type() Type { return TypeOPT }

func (r *RDataOPT) encodeRData(buf *Buffer, _ compressionMap) error {
	for _, o := range r.Options {
		if err := buf.WriteUint16(o.Code); err != nil {
			return err
		}
		if len(o.Data) > 0xFFFF {
			return newWireError(ErrInvalidDnsPacket, "OPT option %d data too long: %d", o.Code, len(o.Data))
		}
		if err := buf.WriteUint16(uint16(len(o.Data))); err != nil {
			return err
		}
		if err := buf.WriteBytes(o.Data); err != nil {
			return err
		}
	}
	return nil
}

func parseOPTRData(buf *Buffer, rdlength int) (RData, error) {
	end := buf.Position() + rdlength
	var opts []OptOption
	for buf.Position() < end {
		code, err := buf.ReadUint16()
		if err != nil {
			return nil, err
		}
		length, err := buf.ReadUint16()
		if err != nil {
			return nil, err
		}
		if buf.Position()+int(length) > end {
			return nil, newWireError(ErrInvalidDnsPacket, "OPT option %d length overruns rdata", code)
		}
		data, err := buf.ReadBytes(int(length))
		if err != nil {
			return nil, err
		}
		opts = append(opts, OptOption{Code: code, Data: append([]byte(nil), data...)})
	}
	if buf.Position() != end {
		return nil, newWireError(ErrInvalidDnsPacket, "OPT options overran rdlength")
	}
	return &RDataOPT{Options: opts}, nil
}
