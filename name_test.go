package dnswire

import "testing"

func TestParseNameStringRoundTrip(t *testing.T) {
	n, err := ParseNameString("www.example.com.")
	if err != nil {
		t.Fatalf("ParseNameString: %v", err)
	}
	if got := n.String(); got != "www.example.com." {
		t.Fatalf("String() = %q, want %q", got, "www.example.com.")
	}
	if len(n.Labels()) != 3 {
		t.Fatalf("want 3 labels, got %d", len(n.Labels()))
	}
}

func TestParseNameStringTrailingDotOptional(t *testing.T) {
	a, err := ParseNameString("example.com")
	if err != nil {
		t.Fatalf("ParseNameString: %v", err)
	}
	b, err := ParseNameString("example.com.")
	if err != nil {
		t.Fatalf("ParseNameString: %v", err)
	}
	if !a.Equal(b) {
		t.Fatal("trailing dot must not affect the parsed name")
	}
}

func TestParseNameStringEscapedDot(t *testing.T) {
	n, err := ParseNameString(`My\.Printer._http._tcp.local.`)
	if err != nil {
		t.Fatalf("ParseNameString: %v", err)
	}
	labels := n.Labels()
	if len(labels) != 4 {
		t.Fatalf("want 4 labels, got %d: %v", len(labels), labels)
	}
	if string(labels[0]) != "My.Printer" {
		t.Fatalf("want escaped dot preserved in first label, got %q", labels[0])
	}
}

func TestParseNameStringRoot(t *testing.T) {
	n, err := ParseNameString(".")
	if err != nil {
		t.Fatalf("ParseNameString: %v", err)
	}
	if !n.IsRoot() {
		t.Fatal("\".\" should parse to the root name")
	}
	if n.String() != "." {
		t.Fatalf("String() = %q, want \".\"", n.String())
	}
}

func TestNameEqualIsCaseInsensitive(t *testing.T) {
	a, _ := ParseNameString("Host.Local.")
	b, _ := ParseNameString("host.local.")
	if !a.Equal(b) {
		t.Fatal("Equal must fold case per RFC 1035")
	}
}

func TestNewNameRejectsOversizedLabel(t *testing.T) {
	oversized := make([]byte, 64)
	if _, err := NewName(oversized); err == nil {
		t.Fatal("label longer than 63 bytes should be rejected")
	}
}

func TestNewNameRejectsOversizedName(t *testing.T) {
	label := make([]byte, 63)
	for i := range label {
		label[i] = 'a'
	}
	labels := make([][]byte, 5)
	for i := range labels {
		labels[i] = label
	}
	if _, err := NewName(labels...); err == nil {
		t.Fatal("name exceeding 255 bytes should be rejected")
	}
}

// IsSubdomainOf edge cases named by the codec's testable-properties: a name
// is never a subdomain of itself, a strict suffix relationship holds one way
// only.
func TestIsSubdomainOfEdgeCases(t *testing.T) {
	a, _ := ParseNameString("a.b.")
	ab, _ := ParseNameString("a.b.")
	b, _ := ParseNameString("b.")

	if IsSubdomainOf(a, ab) {
		t.Fatal("a name must never be a subdomain of itself")
	}
	if !IsSubdomainOf(a, b) {
		t.Fatal("a.b. should be a subdomain of b.")
	}
	if IsSubdomainOf(b, a) {
		t.Fatal("b. should not be a subdomain of a.b.")
	}
}

func TestNameWithoutRecoversPrefix(t *testing.T) {
	full, _ := ParseNameString("a.b.example.com.")
	parent, _ := ParseNameString("example.com.")
	prefix, ok := full.Without(parent)
	if !ok {
		t.Fatal("Without should succeed for an actual subdomain")
	}
	if prefix.String() != "a.b." {
		t.Fatalf("Without = %q, want \"a.b.\"", prefix.String())
	}

	unrelated, _ := ParseNameString("other.net.")
	if _, ok := full.Without(unrelated); ok {
		t.Fatal("Without should fail for an unrelated parent")
	}
}

func TestNameAppend(t *testing.T) {
	base, _ := ParseNameString("foo")
	suffix, _ := ParseNameString("_tcp.local.")
	joined, err := base.Append(suffix)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if joined.String() != "foo._tcp.local." {
		t.Fatalf("Append = %q, want \"foo._tcp.local.\"", joined.String())
	}
}

func TestNameUncompressedEncodedLenMatchesWrite(t *testing.T) {
	n, _ := ParseNameString("host.local.")
	buf := NewBufferSize(32)
	if err := n.WriteUncompressed(buf); err != nil {
		t.Fatalf("WriteUncompressed: %v", err)
	}
	if buf.Position() != n.EncodedLen() {
		t.Fatalf("EncodedLen() = %d, wrote %d bytes", n.EncodedLen(), buf.Position())
	}
}

func TestNameUncompressedRoundTrip(t *testing.T) {
	n, _ := ParseNameString("My Printer._http._tcp.local.")
	buf := NewBufferSize(64)
	if err := n.WriteUncompressed(buf); err != nil {
		t.Fatalf("WriteUncompressed: %v", err)
	}
	r := NewBuffer(buf.Bytes())
	got, err := ParseName(r)
	if err != nil {
		t.Fatalf("ParseName: %v", err)
	}
	if !got.Equal(n) {
		t.Fatalf("round trip mismatch: got %q, want %q", got.String(), n.String())
	}
	if r.Position() != buf.Position() {
		t.Fatalf("cursor left at %d, want %d", r.Position(), buf.Position())
	}
}

// TestSRVTargetCompressionBackPointer is scenario 3 of the codec's testable
// properties: two names sharing a "_srv._udp.local." suffix, written into
// one buffer with one compression map,
// must compress the second occurrence into a back-pointer, and decoding
// must reproduce the exact original names.
func TestSRVTargetCompressionBackPointer(t *testing.T) {
	first, _ := ParseNameString("_printer._srv._udp.local.")
	second, _ := ParseNameString("host._srv._udp.local.")

	buf := NewBufferSize(64)
	comp := newCompressionMap()
	if err := first.WriteCompressed(buf, comp); err != nil {
		t.Fatalf("WriteCompressed(first): %v", err)
	}
	secondStart := buf.Position()
	if err := second.WriteCompressed(buf, comp); err != nil {
		t.Fatalf("WriteCompressed(second): %v", err)
	}

	// second's own labels ("host") are written out, then a 2-byte pointer
	// back into first's "_srv._udp.local." suffix - strictly less than
	// writing "_srv._udp.local." out again in full.
	wireLen := buf.Position() - secondStart
	if wireLen >= second.EncodedLen() {
		t.Fatalf("compressed second name took %d bytes, expected fewer than uncompressed %d", wireLen, second.EncodedLen())
	}

	r := NewBuffer(buf.Bytes())
	gotFirst, err := ParseName(r)
	if err != nil {
		t.Fatalf("ParseName(first): %v", err)
	}
	if !gotFirst.Equal(first) {
		t.Fatalf("first name mismatch: got %q, want %q", gotFirst.String(), first.String())
	}
	if r.Position() != secondStart {
		t.Fatalf("cursor after first name = %d, want %d", r.Position(), secondStart)
	}
	gotSecond, err := ParseName(r)
	if err != nil {
		t.Fatalf("ParseName(second): %v", err)
	}
	if !gotSecond.Equal(second) {
		t.Fatalf("second name mismatch: got %q, want %q", gotSecond.String(), second.String())
	}
}

// TestCyclicCompressionPointerRejected is scenario 6: a name whose sole
// label is a pointer to itself must be rejected, not followed forever.
func TestCyclicCompressionPointerRejected(t *testing.T) {
	data := make([]byte, 12)
	data = append(data, 0xC0, 0x0C) // pointer to offset 12, i.e. itself
	buf := NewBuffer(data)
	if err := buf.Seek(12); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if _, err := ParseName(buf); err == nil {
		t.Fatal("self-referencing compression pointer must be rejected")
	}
}

// TestCompressionPointerMustPointStrictlyBackward covers a forward pointer,
// which decodeNameAt must also reject rather than follow.
func TestCompressionPointerMustPointStrictlyBackward(t *testing.T) {
	data := []byte{0xC0, 0x02, 0x00}
	buf := NewBuffer(data)
	if _, err := ParseName(buf); err == nil {
		t.Fatal("forward-pointing compression pointer must be rejected")
	}
}

func TestCompressionPointerHopBoundEnforced(t *testing.T) {
	// A chain of strictly-backward-pointing pointers, each referencing the
	// one immediately before it, longer than maxPointerHops. Every
	// individual hop is valid; only the chain's length must be rejected.
	numPointers := maxPointerHops + 8
	data := []byte{0} // root label at offset 0
	for i := 1; i <= numPointers; i++ {
		var target int
		if i == 1 {
			target = 0
		} else {
			target = 2*(i-1) - 1
		}
		data = append(data, pointerFlagBits|byte(target>>8), byte(target))
	}
	buf := NewBuffer(data)
	lastPointerOffset := 2*numPointers - 1
	if err := buf.Seek(lastPointerOffset); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if _, err := ParseName(buf); err == nil {
		t.Fatal("excessive compression-pointer chain must be rejected")
	}
}
