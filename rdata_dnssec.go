package dnswire

// This file covers the DNSSEC record families this package parses (but
// does not validate, per spec.md's Non-goals): RRSIG, DNSKEY, and DS/CDS.

// RDataRRSIG is a resource-record signature (RFC 4034 §3.1). SignerName
// never compresses (RFC 4034 §6.2).
type RDataRRSIG struct {
	TypeCovered Type
	Algorithm   uint8
	Labels      uint8
	OriginalTTL uint32
	Expiration  uint32
	Inception   uint32
	KeyTag      uint16
	SignerName  Name
	Signature   []byte
}

func (r *RDataRRSIG) Type() Type { return TypeRRSIG }

func (r *RDataRRSIG) encodeRData(buf *Buffer, _ compressionMap) error {
	if err := buf.WriteUint16(uint16(r.TypeCovered)); err != nil {
		return err
	}
	for _, v := range []uint8{r.Algorithm, r.Labels} {
		if err := buf.WriteUint8(v); err != nil {
			return err
		}
	}
	for _, v := range []uint32{r.OriginalTTL, r.Expiration, r.Inception} {
		if err := buf.WriteUint32(v); err != nil {
			return err
		}
	}
	if err := buf.WriteUint16(r.KeyTag); err != nil {
		return err
	}
	if err := r.SignerName.WriteUncompressed(buf); err != nil {
		return err
	}
	return buf.WriteBytes(r.Signature)
}

func parseRRSIG(buf *Buffer, rdlength int) (RData, error) {
	start := buf.Position()
	typeCovered, err := buf.ReadUint16()
	if err != nil {
		return nil, err
	}
	algo, err := buf.ReadUint8()
	if err != nil {
		return nil, err
	}
	labels, err := buf.ReadUint8()
	if err != nil {
		return nil, err
	}
	origTTL, err := buf.ReadUint32()
	if err != nil {
		return nil, err
	}
	expiration, err := buf.ReadUint32()
	if err != nil {
		return nil, err
	}
	inception, err := buf.ReadUint32()
	if err != nil {
		return nil, err
	}
	keyTag, err := buf.ReadUint16()
	if err != nil {
		return nil, err
	}
	signer, err := ParseName(buf)
	if err != nil {
		return nil, err
	}
	end := start + rdlength
	if buf.Position() > end {
		return nil, newWireError(ErrInvalidDnsPacket, "RRSIG signer name overruns rdlength")
	}
	sig, err := buf.ReadBytes(end - buf.Position())
	if err != nil {
		return nil, err
	}
	return &RDataRRSIG{
		TypeCovered: Type(typeCovered), Algorithm: algo, Labels: labels,
		OriginalTTL: origTTL, Expiration: expiration, Inception: inception,
		KeyTag: keyTag, SignerName: signer, Signature: append([]byte(nil), sig...),
	}, nil
}

// RDataDNSKEY is a DNS public key record (RFC 4034 §2.1).
type RDataDNSKEY struct {
	Flags     uint16
	Protocol  uint8
	Algorithm uint8
	PublicKey []byte
}

func (r *RDataDNSKEY) Type() Type { return TypeDNSKEY }

func (r *RDataDNSKEY) encodeRData(buf *Buffer, _ compressionMap) error {
	if err := buf.WriteUint16(r.Flags); err != nil {
		return err
	}
	if err := buf.WriteUint8(r.Protocol); err != nil {
		return err
	}
	if err := buf.WriteUint8(r.Algorithm); err != nil {
		return err
	}
	return buf.WriteBytes(r.PublicKey)
}

func parseDNSKEY(buf *Buffer, rdlength int) (RData, error) {
	start := buf.Position()
	flags, err := buf.ReadUint16()
	if err != nil {
		return nil, err
	}
	proto, err := buf.ReadUint8()
	if err != nil {
		return nil, err
	}
	algo, err := buf.ReadUint8()
	if err != nil {
		return nil, err
	}
	key, err := buf.ReadBytes(rdlength - (buf.Position() - start))
	if err != nil {
		return nil, err
	}
	return &RDataDNSKEY{Flags: flags, Protocol: proto, Algorithm: algo, PublicKey: append([]byte(nil), key...)}, nil
}

// RDataDS is a Delegation Signer record (RFC 4034 §5.1); also used for CDS
// (RFC 7344), which is wire-identical apart from its TYPE.
type RDataDS struct {
	rrType     Type
	KeyTag     uint16
	Algorithm  uint8
	DigestType uint8
	Digest     []byte
}

func (r *RDataDS) Type() Type { return r.rrType }

func (r *RDataDS) encodeRData(buf *Buffer, _ compressionMap) error {
	if err := buf.WriteUint16(r.KeyTag); err != nil {
		return err
	}
	if err := buf.WriteUint8(r.Algorithm); err != nil {
		return err
	}
	if err := buf.WriteUint8(r.DigestType); err != nil {
		return err
	}
	return buf.WriteBytes(r.Digest)
}

func parseDS(buf *Buffer, rdlength int) (RData, error) {
	start := buf.Position()
	keyTag, err := buf.ReadUint16()
	if err != nil {
		return nil, err
	}
	algo, err := buf.ReadUint8()
	if err != nil {
		return nil, err
	}
	digestType, err := buf.ReadUint8()
	if err != nil {
		return nil, err
	}
	digest, err := buf.ReadBytes(rdlength - (buf.Position() - start))
	if err != nil {
		return nil, err
	}
	return &RDataDS{rrType: TypeDS, KeyTag: keyTag, Algorithm: algo, DigestType: digestType, Digest: append([]byte(nil), digest...)}, nil
}

func parseCDS(buf *Buffer, rdlength int) (RData, error) {
	rd, err := parseDS(buf, rdlength)
	if err != nil {
		return nil, err
	}
	ds := rd.(*RDataDS)
	ds.rrType = TypeCDS
	return ds, nil
}
