package dnswire

// This file holds the RData families whose payload is chiefly a single
// (optionally compressible) Name: CNAME, NS, PTR, DNAME, MX, and SRV.

// RDataPTR is a domain-name pointer (RFC 1035 §3.3.12).
type RDataPTR struct{ Target Name }

func (r *RDataPTR) Type() Type { return TypePTR }
func (r *RDataPTR) encodeRData(buf *Buffer, comp compressionMap) error {
	return writeCompressibleName(buf, r.Target, comp)
}
func parsePTR(buf *Buffer, _ int) (RData, error) {
	n, err := ParseName(buf)
	if err != nil {
		return nil, err
	}
	return &RDataPTR{Target: n}, nil
}

// RDataCNAME is a canonical name record (RFC 1035 §3.3.1).
type RDataCNAME struct{ Target Name }

func (r *RDataCNAME) Type() Type { return TypeCNAME }
func (r *RDataCNAME) encodeRData(buf *Buffer, comp compressionMap) error {
	return writeCompressibleName(buf, r.Target, comp)
}
func parseCNAME(buf *Buffer, _ int) (RData, error) {
	n, err := ParseName(buf)
	if err != nil {
		return nil, err
	}
	return &RDataCNAME{Target: n}, nil
}

// RDataNS is a name-server record (RFC 1035 §3.3.11).
type RDataNS struct{ NSDName Name }

func (r *RDataNS) Type() Type { return TypeNS }
func (r *RDataNS) encodeRData(buf *Buffer, comp compressionMap) error {
	return writeCompressibleName(buf, r.NSDName, comp)
}
func parseNS(buf *Buffer, _ int) (RData, error) {
	n, err := ParseName(buf)
	if err != nil {
		return nil, err
	}
	return &RDataNS{NSDName: n}, nil
}

// RDataDNAME is a non-terminal name redirection record (RFC 6672). It never
// compresses on write, per RFC 6672 §2.4.
type RDataDNAME struct{ Target Name }

func (r *RDataDNAME) Type() Type { return TypeDNAME }
func (r *RDataDNAME) encodeRData(buf *Buffer, _ compressionMap) error {
	return r.Target.WriteUncompressed(buf)
}
func parseDNAME(buf *Buffer, _ int) (RData, error) {
	n, err := ParseName(buf)
	if err != nil {
		return nil, err
	}
	return &RDataDNAME{Target: n}, nil
}

// RDataMX is a mail-exchange record (RFC 1035 §3.3.9).
type RDataMX struct {
	Preference uint16
	Exchange   Name
}

func (r *RDataMX) Type() Type { return TypeMX }
func (r *RDataMX) encodeRData(buf *Buffer, comp compressionMap) error {
	if err := buf.WriteUint16(r.Preference); err != nil {
		return err
	}
	return writeCompressibleName(buf, r.Exchange, comp)
}
func parseMX(buf *Buffer, _ int) (RData, error) {
	pref, err := buf.ReadUint16()
	if err != nil {
		return nil, err
	}
	exch, err := ParseName(buf)
	if err != nil {
		return nil, err
	}
	return &RDataMX{Preference: pref, Exchange: exch}, nil
}

// RDataSRV is a service location record (RFC 2782). Its target compresses
// on write when the enclosing packet is being written in compressed mode,
// per this package's documented default (interop for this bit is
// historically contentious; see SPEC_FULL.md).
type RDataSRV struct {
	Priority uint16
	Weight   uint16
	Port     uint16
	Target   Name
}

func (r *RDataSRV) Type() Type { return TypeSRV }
func (r *RDataSRV) encodeRData(buf *Buffer, comp compressionMap) error {
	if err := buf.WriteUint16(r.Priority); err != nil {
		return err
	}
	if err := buf.WriteUint16(r.Weight); err != nil {
		return err
	}
	if err := buf.WriteUint16(r.Port); err != nil {
		return err
	}
	return writeCompressibleName(buf, r.Target, comp)
}
func parseSRV(buf *Buffer, _ int) (RData, error) {
	prio, err := buf.ReadUint16()
	if err != nil {
		return nil, err
	}
	weight, err := buf.ReadUint16()
	if err != nil {
		return nil, err
	}
	port, err := buf.ReadUint16()
	if err != nil {
		return nil, err
	}
	target, err := ParseName(buf)
	if err != nil {
		return nil, err
	}
	return &RDataSRV{Priority: prio, Weight: weight, Port: port, Target: target}, nil
}

// writeCompressibleName writes n using compression when comp is non-nil,
// uncompressed otherwise.
func writeCompressibleName(buf *Buffer, n Name, comp compressionMap) error {
	if comp != nil {
		return n.WriteCompressed(buf, comp)
	}
	return n.WriteUncompressed(buf)
}
