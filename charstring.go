package dnswire

// CharacterString is a length-prefixed byte string as defined by RFC 1035
// §3.3: a single length octet followed by that many bytes, length <= 255.
type CharacterString []byte

// MaxCharacterStringLength is the largest payload a CharacterString can
// carry (the length octet is a single byte).
const MaxCharacterStringLength = 255

// NewCharacterString builds a CharacterString from a byte slice, failing if
// it is too long.
func NewCharacterString(b []byte) (CharacterString, error) {
	if len(b) > MaxCharacterStringLength {
		return nil, newWireError(ErrInvalidCharacterString, "length %d exceeds %d", len(b), MaxCharacterStringLength)
	}
	return CharacterString(append([]byte(nil), b...)), nil
}

// SplitCharacterStrings splits s into a sequence of CharacterStrings of at
// most 255 bytes each, in order, so that joining their payloads reproduces
// s exactly. An empty s yields a single empty CharacterString.
func SplitCharacterStrings(s []byte) []CharacterString {
	if len(s) == 0 {
		return []CharacterString{{}}
	}
	var out []CharacterString
	for len(s) > 0 {
		n := len(s)
		if n > MaxCharacterStringLength {
			n = MaxCharacterStringLength
		}
		out = append(out, CharacterString(append([]byte(nil), s[:n]...)))
		s = s[n:]
	}
	return out
}

// WriteTo writes the CharacterString as a length byte followed by its bytes.
func (cs CharacterString) WriteTo(buf *Buffer) error {
	if len(cs) > MaxCharacterStringLength {
		return newWireError(ErrInvalidCharacterString, "length %d exceeds %d", len(cs), MaxCharacterStringLength)
	}
	if err := buf.WriteUint8(uint8(len(cs))); err != nil {
		return err
	}
	return buf.WriteBytes(cs)
}

// ParseCharacterString reads one length-prefixed CharacterString from buf.
func ParseCharacterString(buf *Buffer) (CharacterString, error) {
	n, err := buf.ReadUint8()
	if err != nil {
		return nil, newWireError(ErrInvalidCharacterString, "reading length octet: %v", err)
	}
	b, err := buf.ReadBytes(int(n))
	if err != nil {
		return nil, newWireError(ErrInvalidCharacterString, "reading %d payload bytes: %v", n, err)
	}
	return CharacterString(append([]byte(nil), b...)), nil
}

// String returns the payload as a Go string.
func (cs CharacterString) String() string { return string(cs) }
