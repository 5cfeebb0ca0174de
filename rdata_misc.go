package dnswire

import "net"

// This file covers the lower-traffic legacy and special-purpose record
// families named in spec.md §4.3's final bullet, each kept to its RFC's
// minimal wire contract.

// RDataNAPTR is a Naming Authority Pointer record (RFC 3403 §4.1).
// Replacement never compresses, per RFC 3403 §4.1.
type RDataNAPTR struct {
	Order       uint16
	Preference  uint16
	Flags       CharacterString
	Services    CharacterString
	Regexp      CharacterString
	Replacement Name
}

func (r *RDataNAPTR) Type() Type { return TypeNAPTR }
func (r *RDataNAPTR) encodeRData(buf *Buffer, _ compressionMap) error {
	if err := buf.WriteUint16(r.Order); err != nil {
		return err
	}
	if err := buf.WriteUint16(r.Preference); err != nil {
		return err
	}
	for _, cs := range []CharacterString{r.Flags, r.Services, r.Regexp} {
		if err := cs.WriteTo(buf); err != nil {
			return err
		}
	}
	return r.Replacement.WriteUncompressed(buf)
}
func parseNAPTR(buf *Buffer, _ int) (RData, error) {
	order, err := buf.ReadUint16()
	if err != nil {
		return nil, err
	}
	pref, err := buf.ReadUint16()
	if err != nil {
		return nil, err
	}
	flags, err := ParseCharacterString(buf)
	if err != nil {
		return nil, err
	}
	services, err := ParseCharacterString(buf)
	if err != nil {
		return nil, err
	}
	regexp, err := ParseCharacterString(buf)
	if err != nil {
		return nil, err
	}
	repl, err := ParseName(buf)
	if err != nil {
		return nil, err
	}
	return &RDataNAPTR{Order: order, Preference: pref, Flags: flags, Services: services, Regexp: regexp, Replacement: repl}, nil
}

// RDataKX is a Key Exchanger record (RFC 2230).
type RDataKX struct {
	Preference uint16
	Exchanger  Name
}

func (r *RDataKX) Type() Type { return TypeKX }
func (r *RDataKX) encodeRData(buf *Buffer, _ compressionMap) error {
	if err := buf.WriteUint16(r.Preference); err != nil {
		return err
	}
	return r.Exchanger.WriteUncompressed(buf)
}
func parseKX(buf *Buffer, _ int) (RData, error) {
	pref, err := buf.ReadUint16()
	if err != nil {
		return nil, err
	}
	exch, err := ParseName(buf)
	if err != nil {
		return nil, err
	}
	return &RDataKX{Preference: pref, Exchanger: exch}, nil
}

// IPSECKEY gateway types (RFC 4025 §2.3).
const (
	IPSECKeyGatewayNone   uint8 = 0
	IPSECKeyGatewayIPv4   uint8 = 1
	IPSECKeyGatewayIPv6   uint8 = 2
	IPSECKeyGatewayDomain uint8 = 3
)

// RDataIPSECKEY is an IPsec keying material record (RFC 4025 §2). The
// gateway domain name (gateway type 3), if present, never compresses.
type RDataIPSECKEY struct {
	Precedence  uint8
	GatewayType uint8
	Algorithm   uint8
	GatewayIP   net.IP
	GatewayName Name
	PublicKey   []byte
}

func (r *RDataIPSECKEY) Type() Type { return TypeIPSECKEY }
func (r *RDataIPSECKEY) encodeRData(buf *Buffer, _ compressionMap) error {
	for _, v := range []uint8{r.Precedence, r.GatewayType, r.Algorithm} {
		if err := buf.WriteUint8(v); err != nil {
			return err
		}
	}
	switch r.GatewayType {
	case IPSECKeyGatewayIPv4:
		if err := buf.WriteBytes(r.GatewayIP.To4()); err != nil {
			return err
		}
	case IPSECKeyGatewayIPv6:
		if err := buf.WriteBytes(r.GatewayIP.To16()); err != nil {
			return err
		}
	case IPSECKeyGatewayDomain:
		if err := r.GatewayName.WriteUncompressed(buf); err != nil {
			return err
		}
	}
	return buf.WriteBytes(r.PublicKey)
}
func parseIPSECKEY(buf *Buffer, rdlength int) (RData, error) {
	start := buf.Position()
	precedence, err := buf.ReadUint8()
	if err != nil {
		return nil, err
	}
	gwType, err := buf.ReadUint8()
	if err != nil {
		return nil, err
	}
	algo, err := buf.ReadUint8()
	if err != nil {
		return nil, err
	}
	rd := &RDataIPSECKEY{Precedence: precedence, GatewayType: gwType, Algorithm: algo}
	switch gwType {
	case IPSECKeyGatewayIPv4:
		b, err := buf.ReadBytes(4)
		if err != nil {
			return nil, err
		}
		rd.GatewayIP = net.IP(append([]byte(nil), b...))
	case IPSECKeyGatewayIPv6:
		b, err := buf.ReadBytes(16)
		if err != nil {
			return nil, err
		}
		rd.GatewayIP = net.IP(append([]byte(nil), b...))
	case IPSECKeyGatewayDomain:
		n, err := ParseName(buf)
		if err != nil {
			return nil, err
		}
		rd.GatewayName = n
	}
	key, err := buf.ReadBytes(rdlength - (buf.Position() - start))
	if err != nil {
		return nil, err
	}
	rd.PublicKey = append([]byte(nil), key...)
	return rd, nil
}

// RDataCERT is a certificate record (RFC 4398).
type RDataCERT struct {
	CertType    uint16
	KeyTag      uint16
	Algorithm   uint8
	Certificate []byte
}

func (r *RDataCERT) Type() Type { return TypeCERT }
func (r *RDataCERT) encodeRData(buf *Buffer, _ compressionMap) error {
	if err := buf.WriteUint16(r.CertType); err != nil {
		return err
	}
	if err := buf.WriteUint16(r.KeyTag); err != nil {
		return err
	}
	if err := buf.WriteUint8(r.Algorithm); err != nil {
		return err
	}
	return buf.WriteBytes(r.Certificate)
}
func parseCERT(buf *Buffer, rdlength int) (RData, error) {
	start := buf.Position()
	certType, err := buf.ReadUint16()
	if err != nil {
		return nil, err
	}
	keyTag, err := buf.ReadUint16()
	if err != nil {
		return nil, err
	}
	algo, err := buf.ReadUint8()
	if err != nil {
		return nil, err
	}
	cert, err := buf.ReadBytes(rdlength - (buf.Position() - start))
	if err != nil {
		return nil, err
	}
	return &RDataCERT{CertType: certType, KeyTag: keyTag, Algorithm: algo, Certificate: append([]byte(nil), cert...)}, nil
}

// RDataEUI48 is a 48-bit EUI record (RFC 7043 §3.1).
type RDataEUI48 struct{ Address [6]byte }

func (r *RDataEUI48) Type() Type { return TypeEUI48 }
func (r *RDataEUI48) encodeRData(buf *Buffer, _ compressionMap) error { return buf.WriteBytes(r.Address[:]) }
func parseEUI48(buf *Buffer, rdlength int) (RData, error) {
	if rdlength != 6 {
		return nil, newWireError(ErrInvalidDnsPacket, "EUI48 rdlength must be 6, got %d", rdlength)
	}
	b, err := buf.ReadBytes(6)
	if err != nil {
		return nil, err
	}
	var rd RDataEUI48
	copy(rd.Address[:], b)
	return &rd, nil
}

// RDataEUI64 is a 64-bit EUI record (RFC 7043 §4.1).
type RDataEUI64 struct{ Address [8]byte }

func (r *RDataEUI64) Type() Type { return TypeEUI64 }
func (r *RDataEUI64) encodeRData(buf *Buffer, _ compressionMap) error { return buf.WriteBytes(r.Address[:]) }
func parseEUI64(buf *Buffer, rdlength int) (RData, error) {
	if rdlength != 8 {
		return nil, newWireError(ErrInvalidDnsPacket, "EUI64 rdlength must be 8, got %d", rdlength)
	}
	b, err := buf.ReadBytes(8)
	if err != nil {
		return nil, err
	}
	var rd RDataEUI64
	copy(rd.Address[:], b)
	return &rd, nil
}

// RDataLOC is a geographical location record (RFC 1876 §2), fixed at 16
// bytes: version, size, horizontal/vertical precision, then latitude,
// longitude, altitude as raw RFC 1876 §2 encoded 32-bit values.
type RDataLOC struct {
	Version   uint8
	Size      uint8
	HorizPre  uint8
	VertPre   uint8
	Latitude  uint32
	Longitude uint32
	Altitude  uint32
}

func (r *RDataLOC) Type() Type { return TypeLOC }
func (r *RDataLOC) encodeRData(buf *Buffer, _ compressionMap) error {
	for _, v := range []uint8{r.Version, r.Size, r.HorizPre, r.VertPre} {
		if err := buf.WriteUint8(v); err != nil {
			return err
		}
	}
	for _, v := range []uint32{r.Latitude, r.Longitude, r.Altitude} {
		if err := buf.WriteUint32(v); err != nil {
			return err
		}
	}
	return nil
}
func parseLOC(buf *Buffer, rdlength int) (RData, error) {
	if rdlength != 16 {
		return nil, newWireError(ErrInvalidDnsPacket, "LOC rdlength must be 16, got %d", rdlength)
	}
	var rd RDataLOC
	var err error
	if rd.Version, err = buf.ReadUint8(); err != nil {
		return nil, err
	}
	if rd.Size, err = buf.ReadUint8(); err != nil {
		return nil, err
	}
	if rd.HorizPre, err = buf.ReadUint8(); err != nil {
		return nil, err
	}
	if rd.VertPre, err = buf.ReadUint8(); err != nil {
		return nil, err
	}
	if rd.Latitude, err = buf.ReadUint32(); err != nil {
		return nil, err
	}
	if rd.Longitude, err = buf.ReadUint32(); err != nil {
		return nil, err
	}
	if rd.Altitude, err = buf.ReadUint32(); err != nil {
		return nil, err
	}
	return &rd, nil
}

// RDataHINFO is a host-information record (RFC 1035 §3.3.2).
type RDataHINFO struct {
	CPU CharacterString
	OS  CharacterString
}

func (r *RDataHINFO) Type() Type { return TypeHINFO }
func (r *RDataHINFO) encodeRData(buf *Buffer, _ compressionMap) error {
	if err := r.CPU.WriteTo(buf); err != nil {
		return err
	}
	return r.OS.WriteTo(buf)
}
func parseHINFO(buf *Buffer, _ int) (RData, error) {
	cpu, err := ParseCharacterString(buf)
	if err != nil {
		return nil, err
	}
	os, err := ParseCharacterString(buf)
	if err != nil {
		return nil, err
	}
	return &RDataHINFO{CPU: cpu, OS: os}, nil
}

// RDataRP is a responsible-person record (RFC 1183 §2.2). Neither name
// compresses.
type RDataRP struct {
	Mailbox   Name
	TXTDomain Name
}

func (r *RDataRP) Type() Type { return TypeRP }
func (r *RDataRP) encodeRData(buf *Buffer, _ compressionMap) error {
	if err := r.Mailbox.WriteUncompressed(buf); err != nil {
		return err
	}
	return r.TXTDomain.WriteUncompressed(buf)
}
func parseRP(buf *Buffer, _ int) (RData, error) {
	mbox, err := ParseName(buf)
	if err != nil {
		return nil, err
	}
	txt, err := ParseName(buf)
	if err != nil {
		return nil, err
	}
	return &RDataRP{Mailbox: mbox, TXTDomain: txt}, nil
}

// RDataAFSDB is an AFS database location record (RFC 1183 §1).
type RDataAFSDB struct {
	Subtype  uint16
	Hostname Name
}

func (r *RDataAFSDB) Type() Type { return TypeAFSDB }
func (r *RDataAFSDB) encodeRData(buf *Buffer, comp compressionMap) error {
	if err := buf.WriteUint16(r.Subtype); err != nil {
		return err
	}
	return writeCompressibleName(buf, r.Hostname, comp)
}
func parseAFSDB(buf *Buffer, _ int) (RData, error) {
	subtype, err := buf.ReadUint16()
	if err != nil {
		return nil, err
	}
	host, err := ParseName(buf)
	if err != nil {
		return nil, err
	}
	return &RDataAFSDB{Subtype: subtype, Hostname: host}, nil
}

// RDataISDN is an ISDN address record (RFC 1183 §3.2). SubAddress is
// optional; its CharacterString is empty when absent.
type RDataISDN struct {
	Address    CharacterString
	SubAddress CharacterString
}

func (r *RDataISDN) Type() Type { return TypeISDN }
func (r *RDataISDN) encodeRData(buf *Buffer, _ compressionMap) error {
	if err := r.Address.WriteTo(buf); err != nil {
		return err
	}
	if len(r.SubAddress) == 0 {
		return nil
	}
	return r.SubAddress.WriteTo(buf)
}
func parseISDN(buf *Buffer, rdlength int) (RData, error) {
	start := buf.Position()
	addr, err := ParseCharacterString(buf)
	if err != nil {
		return nil, err
	}
	rd := &RDataISDN{Address: addr}
	if buf.Position()-start < rdlength {
		sub, err := ParseCharacterString(buf)
		if err != nil {
			return nil, err
		}
		rd.SubAddress = sub
	}
	return rd, nil
}

// RDataRT is a route-through record (RFC 1183 §3.3).
type RDataRT struct {
	Preference        uint16
	IntermediateHost Name
}

func (r *RDataRT) Type() Type { return TypeRT }
func (r *RDataRT) encodeRData(buf *Buffer, comp compressionMap) error {
	if err := buf.WriteUint16(r.Preference); err != nil {
		return err
	}
	return writeCompressibleName(buf, r.IntermediateHost, comp)
}
func parseRT(buf *Buffer, _ int) (RData, error) {
	pref, err := buf.ReadUint16()
	if err != nil {
		return nil, err
	}
	host, err := ParseName(buf)
	if err != nil {
		return nil, err
	}
	return &RDataRT{Preference: pref, IntermediateHost: host}, nil
}

// RDataWKS is a well-known-services record (RFC 1035 §3.4.2).
type RDataWKS struct {
	Address  net.IP
	Protocol uint8
	Bitmap   []byte
}

func (r *RDataWKS) Type() Type { return TypeWKS }
func (r *RDataWKS) encodeRData(buf *Buffer, _ compressionMap) error {
	if err := buf.WriteBytes(r.Address.To4()); err != nil {
		return err
	}
	if err := buf.WriteUint8(r.Protocol); err != nil {
		return err
	}
	return buf.WriteBytes(r.Bitmap)
}
func parseWKS(buf *Buffer, rdlength int) (RData, error) {
	if rdlength < 5 {
		return nil, newWireError(ErrInvalidDnsPacket, "WKS rdlength %d too short", rdlength)
	}
	addr, err := buf.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	proto, err := buf.ReadUint8()
	if err != nil {
		return nil, err
	}
	bitmap, err := buf.ReadBytes(rdlength - 5)
	if err != nil {
		return nil, err
	}
	ip := make(net.IP, 4)
	copy(ip, addr)
	return &RDataWKS{Address: ip, Protocol: proto, Bitmap: append([]byte(nil), bitmap...)}, nil
}

// RDataDHCID is a DHCP identifier record (RFC 4701), kept as opaque data
// per its RFC's binary, identifier-type-agnostic encoding.
type RDataDHCID struct{ Data []byte }

func (r *RDataDHCID) Type() Type { return TypeDHCID }
func (r *RDataDHCID) encodeRData(buf *Buffer, _ compressionMap) error { return buf.WriteBytes(r.Data) }
func parseDHCID(buf *Buffer, rdlength int) (RData, error) {
	b, err := buf.ReadBytes(rdlength)
	if err != nil {
		return nil, err
	}
	return &RDataDHCID{Data: append([]byte(nil), b...)}, nil
}

// RDataZONEMD is a zone message digest record (RFC 8976 §2).
type RDataZONEMD struct {
	Serial uint32
	Scheme uint8
	Algo   uint8
	Digest []byte
}

func (r *RDataZONEMD) Type() Type { return TypeZONEMD }
func (r *RDataZONEMD) encodeRData(buf *Buffer, _ compressionMap) error {
	if err := buf.WriteUint32(r.Serial); err != nil {
		return err
	}
	if err := buf.WriteUint8(r.Scheme); err != nil {
		return err
	}
	if err := buf.WriteUint8(r.Algo); err != nil {
		return err
	}
	return buf.WriteBytes(r.Digest)
}
func parseZONEMD(buf *Buffer, rdlength int) (RData, error) {
	start := buf.Position()
	serial, err := buf.ReadUint32()
	if err != nil {
		return nil, err
	}
	scheme, err := buf.ReadUint8()
	if err != nil {
		return nil, err
	}
	algo, err := buf.ReadUint8()
	if err != nil {
		return nil, err
	}
	digest, err := buf.ReadBytes(rdlength - (buf.Position() - start))
	if err != nil {
		return nil, err
	}
	return &RDataZONEMD{Serial: serial, Scheme: scheme, Algo: algo, Digest: append([]byte(nil), digest...)}, nil
}

// RDataNSAP is a Network Service Access Point address record (RFC 1706),
// kept as its opaque variable-length NSAP address.
type RDataNSAP struct{ Address []byte }

func (r *RDataNSAP) Type() Type { return TypeNSAP }
func (r *RDataNSAP) encodeRData(buf *Buffer, _ compressionMap) error { return buf.WriteBytes(r.Address) }
func parseNSAP(buf *Buffer, rdlength int) (RData, error) {
	b, err := buf.ReadBytes(rdlength)
	if err != nil {
		return nil, err
	}
	return &RDataNSAP{Address: append([]byte(nil), b...)}, nil
}

// RDataNSAPPTR is an NSAP-PTR record (RFC 1706 §5), structurally a PTR.
type RDataNSAPPTR struct{ Target Name }

func (r *RDataNSAPPTR) Type() Type { return TypeNSAPPTR }
func (r *RDataNSAPPTR) encodeRData(buf *Buffer, _ compressionMap) error {
	return r.Target.WriteUncompressed(buf)
}
func parseNSAPPTR(buf *Buffer, _ int) (RData, error) {
	n, err := ParseName(buf)
	if err != nil {
		return nil, err
	}
	return &RDataNSAPPTR{Target: n}, nil
}
