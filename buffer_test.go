package dnswire

import "testing"

func TestBufferReadWriteRoundTrip(t *testing.T) {
	buf := NewBufferSize(16)
	if err := buf.WriteUint8(7); err != nil {
		t.Fatalf("WriteUint8: %v", err)
	}
	if err := buf.WriteUint16(0x1234); err != nil {
		t.Fatalf("WriteUint16: %v", err)
	}
	if err := buf.WriteUint32(0xDEADBEEF); err != nil {
		t.Fatalf("WriteUint32: %v", err)
	}
	if err := buf.WriteInt32(-1); err != nil {
		t.Fatalf("WriteInt32: %v", err)
	}
	if err := buf.WriteBytes([]byte("hi")); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}

	r := NewBuffer(buf.Bytes())
	if v, err := r.ReadUint8(); err != nil || v != 7 {
		t.Fatalf("ReadUint8 = %d, %v", v, err)
	}
	if v, err := r.ReadUint16(); err != nil || v != 0x1234 {
		t.Fatalf("ReadUint16 = %x, %v", v, err)
	}
	if v, err := r.ReadUint32(); err != nil || v != 0xDEADBEEF {
		t.Fatalf("ReadUint32 = %x, %v", v, err)
	}
	if v, err := r.ReadInt32(); err != nil || v != -1 {
		t.Fatalf("ReadInt32 = %d, %v", v, err)
	}
	if b, err := r.ReadBytes(2); err != nil || string(b) != "hi" {
		t.Fatalf("ReadBytes = %q, %v", b, err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("want 0 remaining, got %d", r.Remaining())
	}
}

func TestBufferPatchUint16DoesNotMoveCursor(t *testing.T) {
	buf := NewBufferSize(4)
	_ = buf.WriteUint16(0)
	_ = buf.WriteUint16(0xAAAA)
	before := buf.Position()
	if err := buf.PatchUint16(0, 0xBEEF); err != nil {
		t.Fatalf("PatchUint16: %v", err)
	}
	if buf.Position() != before {
		t.Fatalf("PatchUint16 moved cursor from %d to %d", before, buf.Position())
	}
	r := NewBuffer(buf.Bytes())
	v, _ := r.ReadUint16()
	if v != 0xBEEF {
		t.Fatalf("want patched 0xBEEF, got %x", v)
	}
}

func TestFixedBufferRejectsOverflow(t *testing.T) {
	buf := NewFixedBuffer(make([]byte, 2))
	if err := buf.WriteUint16(1); err != nil {
		t.Fatalf("first write should fit: %v", err)
	}
	if err := buf.WriteUint8(1); err == nil {
		t.Fatal("write past fixed buffer's end should fail")
	}
}

func TestBufferSeek(t *testing.T) {
	buf := NewBuffer([]byte{1, 2, 3, 4})
	if err := buf.Seek(2); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if buf.Position() != 2 {
		t.Fatalf("want position 2, got %d", buf.Position())
	}
	if err := buf.Seek(-1); err == nil {
		t.Fatal("negative seek should fail")
	}
	if err := buf.Seek(5); err == nil {
		t.Fatal("seek past end should fail")
	}
	if err := buf.SeekForward(1); err != nil {
		t.Fatalf("SeekForward: %v", err)
	}
	if buf.Position() != 3 {
		t.Fatalf("want position 3, got %d", buf.Position())
	}
}

func TestBufferPeekDoesNotAdvance(t *testing.T) {
	buf := NewBuffer([]byte{9, 8, 7})
	p, err := buf.Peek(2)
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if string(p) != "\x09\x08" {
		t.Fatalf("unexpected peek bytes: %v", p)
	}
	if buf.Position() != 0 {
		t.Fatalf("Peek must not move cursor, got position %d", buf.Position())
	}
	if _, err := buf.Peek(10); err == nil {
		t.Fatal("peek past end should fail")
	}
}
