package dnswire

// Buffer is a cursor over a byte slice with bounded, position-tracked reads
// and writes. It is the sole primitive that converts between wire bytes and
// typed values; every other codec in this package is built on top of it.
//
// The zero Buffer is empty and growable, like NewBufferSize(0).
type Buffer struct {
	b   []byte
	pos int
	fix bool // fixed-size backing: writes past len(b) fail instead of growing
}

// NewBuffer returns a Buffer reading from (and, if needed, writing into) b.
// Writes beyond len(b) grow the backing slice.
func NewBuffer(b []byte) *Buffer {
	return &Buffer{b: b}
}

// NewBufferSize returns an empty, growable Buffer with capacity hint size.
func NewBufferSize(size int) *Buffer {
	return &Buffer{b: make([]byte, 0, size)}
}

// NewFixedBuffer returns a Buffer over b whose writes never grow b; writing
// past len(b) fails with ErrInsufficientData.
func NewFixedBuffer(b []byte) *Buffer {
	return &Buffer{b: b, fix: true}
}

// Bytes returns the full backing slice (not just what remains unread).
func (buf *Buffer) Bytes() []byte { return buf.b }

// Len returns the length of the backing slice: every byte written, plus
// any bytes the Buffer was created over.
func (buf *Buffer) Len() int { return len(buf.b) }

// Position returns the current cursor offset.
func (buf *Buffer) Position() int { return buf.pos }

// Remaining returns the number of unread bytes.
func (buf *Buffer) Remaining() int {
	if n := len(buf.b) - buf.pos; n > 0 {
		return n
	}
	return 0
}

// Seek moves the cursor to an absolute offset. It fails if offset is
// negative or past the end of the buffer.
func (buf *Buffer) Seek(offset int) error {
	if offset < 0 || offset > len(buf.b) {
		return newWireError(ErrInsufficientData, "seek to %d out of range [0,%d]", offset, len(buf.b))
	}
	buf.pos = offset
	return nil
}

// SeekForward advances the cursor by n bytes.
func (buf *Buffer) SeekForward(n int) error {
	return buf.Seek(buf.pos + n)
}

// Peek returns the next n bytes without advancing the cursor.
func (buf *Buffer) Peek(n int) ([]byte, error) {
	if n < 0 || buf.Remaining() < n {
		return nil, newWireError(ErrInsufficientData, "peek %d bytes, %d remaining", n, buf.Remaining())
	}
	return buf.b[buf.pos : buf.pos+n], nil
}

// ReadBytes reads and returns the next n bytes, advancing the cursor.
func (buf *Buffer) ReadBytes(n int) ([]byte, error) {
	p, err := buf.Peek(n)
	if err != nil {
		return nil, err
	}
	buf.pos += n
	return p, nil
}

// ReadUint8 reads a single byte.
func (buf *Buffer) ReadUint8() (uint8, error) {
	b, err := buf.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint16 reads a big-endian uint16.
func (buf *Buffer) ReadUint16() (uint16, error) {
	b, err := buf.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// ReadUint32 reads a big-endian uint32.
func (buf *Buffer) ReadUint32() (uint32, error) {
	b, err := buf.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

// ReadInt32 reads a big-endian two's-complement int32.
func (buf *Buffer) ReadInt32() (int32, error) {
	v, err := buf.ReadUint32()
	return int32(v), err
}

func (buf *Buffer) ensure(n int) error {
	if !buf.fix {
		return nil
	}
	if len(buf.b)-buf.pos < n {
		return newWireError(ErrInsufficientData, "write %d bytes, %d remaining in fixed buffer", n, len(buf.b)-buf.pos)
	}
	return nil
}

func (buf *Buffer) writeAt(p []byte) {
	end := buf.pos + len(p)
	if end > len(buf.b) {
		if cap(buf.b) >= end {
			buf.b = buf.b[:end]
		} else {
			grown := make([]byte, end)
			copy(grown, buf.b)
			buf.b = grown
		}
	}
	copy(buf.b[buf.pos:end], p)
	buf.pos = end
}

// WriteBytes appends p at the cursor, overwriting or growing as needed.
func (buf *Buffer) WriteBytes(p []byte) error {
	if err := buf.ensure(len(p)); err != nil {
		return err
	}
	buf.writeAt(p)
	return nil
}

// WriteUint8 writes a single byte.
func (buf *Buffer) WriteUint8(v uint8) error {
	return buf.WriteBytes([]byte{v})
}

// WriteUint16 writes a big-endian uint16.
func (buf *Buffer) WriteUint16(v uint16) error {
	return buf.WriteBytes([]byte{byte(v >> 8), byte(v)})
}

// WriteUint32 writes a big-endian uint32.
func (buf *Buffer) WriteUint32(v uint32) error {
	return buf.WriteBytes([]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}

// WriteInt32 writes a big-endian two's-complement int32.
func (buf *Buffer) WriteInt32(v int32) error {
	return buf.WriteUint32(uint32(v))
}

// PatchUint16 overwrites the uint16 at offset without moving the cursor.
func (buf *Buffer) PatchUint16(offset int, v uint16) error {
	if offset < 0 || offset+2 > len(buf.b) {
		return newWireError(ErrInsufficientData, "patch at %d out of range", offset)
	}
	buf.b[offset] = byte(v >> 8)
	buf.b[offset+1] = byte(v)
	return nil
}
