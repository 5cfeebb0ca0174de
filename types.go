package dnswire

// Type is a 16-bit DNS RR TYPE (or QTYPE, a superset that also allows ANY
// and similar wildcards).
type Type uint16

// Class is a 16-bit DNS CLASS (or QCLASS). In mDNS contexts the high bit is
// overloaded as the cache-flush bit (on a response CLASS) or the
// unicast-response bit (on a question's QCLASS); Class.Value strips it.
type Class uint16

// classHighBit is the one bit position (0x8000) that serves as the
// cache-flush bit on an answer and the unicast-response bit on a question.
// It is preserved verbatim through parse/serialize.
const classHighBit Class = 0x8000

// Registered TYPE values. Only the types with a parser in rdata.go's
// registry are decoded structurally; every other value, listed here or
// not, round-trips as RDataUnknown.
const (
	TypeA          Type = 1
	TypeNS         Type = 2
	TypeMD         Type = 3
	TypeMF         Type = 4
	TypeCNAME      Type = 5
	TypeSOA        Type = 6
	TypeMB         Type = 7
	TypeMG         Type = 8
	TypeMR         Type = 9
	TypeNULL       Type = 10
	TypeWKS        Type = 11
	TypePTR        Type = 12
	TypeHINFO      Type = 13
	TypeMINFO      Type = 14
	TypeMX         Type = 15
	TypeTXT        Type = 16
	TypeRP         Type = 17
	TypeAFSDB      Type = 18
	TypeISDN       Type = 20
	TypeRT         Type = 21
	TypeNSAP       Type = 22
	TypeNSAPPTR    Type = 23
	TypeSIG        Type = 24
	TypeKEY        Type = 25
	TypeAAAA       Type = 28
	TypeLOC        Type = 29
	TypeNXT        Type = 30
	TypeSRV        Type = 33
	TypeNAPTR      Type = 35
	TypeKX         Type = 36
	TypeCERT       Type = 37
	TypeDNAME      Type = 39
	TypeOPT        Type = 41
	TypeAPL        Type = 42
	TypeDS         Type = 43
	TypeSSHFP      Type = 44
	TypeIPSECKEY   Type = 45
	TypeRRSIG      Type = 46
	TypeNSEC       Type = 47
	TypeDNSKEY     Type = 48
	TypeDHCID      Type = 49
	TypeNSEC3      Type = 50
	TypeNSEC3PARAM Type = 51
	TypeTLSA       Type = 52
	TypeSMIMEA     Type = 53
	TypeHIP        Type = 55
	TypeCDS        Type = 59
	TypeCDNSKEY    Type = 60
	TypeEUI48      Type = 108
	TypeEUI64      Type = 109
	TypeTKEY       Type = 249
	TypeTSIG       Type = 250
	TypeAXFR       Type = 252
	TypeMAILB      Type = 253
	TypeMAILA      Type = 254
	TypeANY        Type = 255
	TypeURI        Type = 256
	TypeCAA        Type = 257
	TypeSVCB       Type = 64
	TypeHTTPS      Type = 65
	TypeZONEMD     Type = 63
)

// Registered CLASS values.
const (
	ClassIN  Class = 1
	ClassCS  Class = 2
	ClassCH  Class = 3
	ClassHS  Class = 4
	ClassANY Class = 255
)

// Value strips the mDNS cache-flush / unicast-response high bit, returning
// the plain CLASS/QCLASS value.
func (c Class) Value() Class { return c &^ classHighBit }

// FlushOrUnicast reports whether the high bit is set. Its meaning depends
// on context: cache-flush on a response RR, unicast-response request on a
// question's QCLASS.
func (c Class) FlushOrUnicast() bool { return c&classHighBit != 0 }

// WithFlushOrUnicast returns c with the high bit set or cleared.
func (c Class) WithFlushOrUnicast(set bool) Class {
	if set {
		return c | classHighBit
	}
	return c &^ classHighBit
}

var typeNames = map[Type]string{
	TypeA: "A", TypeNS: "NS", TypeMD: "MD", TypeMF: "MF", TypeCNAME: "CNAME",
	TypeSOA: "SOA", TypeMB: "MB", TypeMG: "MG", TypeMR: "MR", TypeNULL: "NULL",
	TypeWKS: "WKS", TypePTR: "PTR", TypeHINFO: "HINFO", TypeMINFO: "MINFO",
	TypeMX: "MX", TypeTXT: "TXT", TypeRP: "RP", TypeAFSDB: "AFSDB",
	TypeISDN: "ISDN", TypeRT: "RT", TypeNSAP: "NSAP", TypeNSAPPTR: "NSAP-PTR",
	TypeSIG: "SIG", TypeKEY: "KEY", TypeAAAA: "AAAA", TypeLOC: "LOC",
	TypeNXT: "NXT", TypeSRV: "SRV", TypeNAPTR: "NAPTR", TypeKX: "KX",
	TypeCERT: "CERT", TypeDNAME: "DNAME", TypeOPT: "OPT", TypeAPL: "APL",
	TypeDS: "DS", TypeSSHFP: "SSHFP", TypeIPSECKEY: "IPSECKEY", TypeRRSIG: "RRSIG",
	TypeNSEC: "NSEC", TypeDNSKEY: "DNSKEY", TypeDHCID: "DHCID", TypeNSEC3: "NSEC3",
	TypeNSEC3PARAM: "NSEC3PARAM", TypeTLSA: "TLSA", TypeSMIMEA: "SMIMEA", TypeHIP: "HIP",
	TypeCDS: "CDS", TypeCDNSKEY: "CDNSKEY", TypeEUI48: "EUI48", TypeEUI64: "EUI64",
	TypeTKEY: "TKEY", TypeTSIG: "TSIG", TypeAXFR: "AXFR", TypeMAILB: "MAILB",
	TypeMAILA: "MAILA", TypeANY: "ANY", TypeURI: "URI", TypeCAA: "CAA",
	TypeSVCB: "SVCB", TypeHTTPS: "HTTPS", TypeZONEMD: "ZONEMD",
}

// String returns the mnemonic for well-known types, or "TYPE<n>" otherwise.
func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "TYPE" + uitoa(uint16(t))
}

func uitoa(v uint16) string {
	if v == 0 {
		return "0"
	}
	var buf [5]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
