package dnswire

// RDataTXT is a sequence of CharacterStrings covering exactly RDLENGTH bytes
// (RFC 1035 §3.3.14). A zero-length TXT rdata is valid (RDLENGTH 0) and
// parses to an empty, nil Strings list.
type RDataTXT struct {
	Strings []CharacterString
}

func (r *RDataTXT) Type() Type { return TypeTXT }

func (r *RDataTXT) encodeRData(buf *Buffer, _ compressionMap) error {
	for _, s := range r.Strings {
		if err := s.WriteTo(buf); err != nil {
			return err
		}
	}
	return nil
}

func parseTXT(buf *Buffer, rdlength int) (RData, error) {
	if rdlength == 0 {
		return &RDataTXT{}, nil
	}
	end := buf.Position() + rdlength
	var strs []CharacterString
	for buf.Position() < end {
		cs, err := ParseCharacterString(buf)
		if err != nil {
			return nil, err
		}
		strs = append(strs, cs)
	}
	if buf.Position() != end {
		return nil, newWireError(ErrInvalidCharacterString, "TXT strings overran rdlength")
	}
	return &RDataTXT{Strings: strs}, nil
}

// NewRDataTXTFromString splits s into <=255-byte CharacterStrings, joined
// back together by concatenating their payloads.
func NewRDataTXTFromString(s string) *RDataTXT {
	return &RDataTXT{Strings: SplitCharacterStrings([]byte(s))}
}

// NewRDataTXTFromPairs builds a TXT record from key/value attributes
// (RFC 6763 §6), one CharacterString per "key=value" (or bare "key" when
// value is nil), in map iteration order. Splitting an overlong entry across
// multiple CharacterStrings would violate RFC 6763's "one attribute per
// string" convention, so an entry longer than 255 bytes is truncated to its
// first 255 bytes instead.
func NewRDataTXTFromPairs(pairs map[string]*string) *RDataTXT {
	rd := &RDataTXT{}
	for k, v := range pairs {
		entry := k
		if v != nil {
			entry += "=" + *v
		}
		cs, err := NewCharacterString([]byte(entry))
		if err != nil {
			cs = CharacterString(entry[:MaxCharacterStringLength])
		}
		rd.Strings = append(rd.Strings, cs)
	}
	return rd
}

// JoinedString concatenates every CharacterString's payload, reversing
// SplitCharacterStrings.
func (r *RDataTXT) JoinedString() string {
	var out []byte
	for _, s := range r.Strings {
		out = append(out, s...)
	}
	return string(out)
}
