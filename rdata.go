package dnswire

// RData is implemented by every record-data codec. Types this package does
// not structurally understand still implement it via RDataUnknown, so
// round-tripping never loses data.
type RData interface {
	// Type returns the RR TYPE this RData was parsed as, or will be written
	// as.
	Type() Type
	// encodeRData writes just the record-data payload (not RDLENGTH) to buf.
	// comp is nil when the packet is being written uncompressed.
	encodeRData(buf *Buffer, comp compressionMap) error
}

// rdataParser parses exactly rdlength bytes of record data starting at
// buf's current position. Name fields within rdata may still follow
// compression pointers into the rest of the packet via buf.Bytes().
type rdataParser func(buf *Buffer, rdlength int) (RData, error)

var rdataParsers = map[Type]rdataParser{
	TypeA:       parseA,
	TypeAAAA:    parseAAAA,
	TypeSRV:     parseSRV,
	TypeTXT:     parseTXT,
	TypePTR:     parsePTR,
	TypeCNAME:   parseCNAME,
	TypeNS:      parseNS,
	TypeDNAME:   parseDNAME,
	TypeSOA:     parseSOA,
	TypeMX:      parseMX,
	TypeOPT:     parseOPTRData,
	TypeCAA:     parseCAA,
	TypeNSEC:    parseNSEC,
	TypeSVCB:    parseSVCB,
	TypeHTTPS:   parseHTTPS,
	TypeNAPTR:   parseNAPTR,
	TypeRRSIG:   parseRRSIG,
	TypeDNSKEY:  parseDNSKEY,
	TypeDS:      parseDS,
	TypeCDS:     parseCDS,
	TypeKX:      parseKX,
	TypeIPSECKEY: parseIPSECKEY,
	TypeCERT:    parseCERT,
	TypeEUI48:   parseEUI48,
	TypeEUI64:   parseEUI64,
	TypeLOC:     parseLOC,
	TypeHINFO:   parseHINFO,
	TypeRP:      parseRP,
	TypeAFSDB:   parseAFSDB,
	TypeISDN:    parseISDN,
	TypeRT:      parseRT,
	TypeWKS:     parseWKS,
	TypeDHCID:   parseDHCID,
	TypeZONEMD:  parseZONEMD,
	TypeNSAP:    parseNSAP,
	TypeNSAPPTR: parseNSAPPTR,
}

// parseRData dispatches to the registered parser for typ, falling back to
// an opaque RDataUnknown for anything this package does not structurally
// understand. rdlength == 0 never panics: TXT, OPT and opaque types accept
// it, and types with required fields return an error.
func parseRData(buf *Buffer, typ Type, rdlength int) (RData, error) {
	start := buf.Position()
	if buf.Remaining() < rdlength {
		return nil, newWireError(ErrInsufficientData, "rdlength %d exceeds remaining %d", rdlength, buf.Remaining())
	}
	parser, ok := rdataParsers[typ]
	if !ok {
		return parseUnknown(buf, typ, rdlength)
	}
	rd, err := parser(buf, rdlength)
	if err != nil {
		return nil, err
	}
	if got := buf.Position() - start; got != rdlength {
		return nil, newWireError(ErrInvalidDnsPacket, "%s rdata consumed %d bytes, rdlength said %d", typ, got, rdlength)
	}
	return rd, nil
}

// RDataUnknown preserves the raw bytes of a record type this package does
// not structurally parse, so it can be serialized back out verbatim.
type RDataUnknown struct {
	RRType Type
	Bytes  []byte
}

func (u *RDataUnknown) Type() Type { return u.RRType }

func (u *RDataUnknown) encodeRData(buf *Buffer, _ compressionMap) error {
	return buf.WriteBytes(u.Bytes)
}

func parseUnknown(buf *Buffer, typ Type, rdlength int) (RData, error) {
	b, err := buf.ReadBytes(rdlength)
	if err != nil {
		return nil, err
	}
	return &RDataUnknown{RRType: typ, Bytes: append([]byte(nil), b...)}, nil
}
