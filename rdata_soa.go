package dnswire

// RDataSOA is a start-of-authority record (RFC 1035 §3.3.13).
type RDataSOA struct {
	MName   Name
	RName   Name
	Serial  uint32
	Refresh uint32
	Retry   uint32
	Expire  uint32
	Minimum uint32
}

func (r *RDataSOA) Type() Type { return TypeSOA }

func (r *RDataSOA) encodeRData(buf *Buffer, comp compressionMap) error {
	if err := writeCompressibleName(buf, r.MName, comp); err != nil {
		return err
	}
	if err := writeCompressibleName(buf, r.RName, comp); err != nil {
		return err
	}
	for _, v := range []uint32{r.Serial, r.Refresh, r.Retry, r.Expire, r.Minimum} {
		if err := buf.WriteUint32(v); err != nil {
			return err
		}
	}
	return nil
}

func parseSOA(buf *Buffer, _ int) (RData, error) {
	mname, err := ParseName(buf)
	if err != nil {
		return nil, err
	}
	rname, err := ParseName(buf)
	if err != nil {
		return nil, err
	}
	var vals [5]uint32
	for i := range vals {
		v, err := buf.ReadUint32()
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return &RDataSOA{
		MName: mname, RName: rname,
		Serial: vals[0], Refresh: vals[1], Retry: vals[2], Expire: vals[3], Minimum: vals[4],
	}, nil
}
