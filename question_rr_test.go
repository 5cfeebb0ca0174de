package dnswire

import (
	"net"
	"testing"
)

func TestQuestionUnicastResponseBitRoundTrip(t *testing.T) {
	q := Question{Name: mustParseName(t, "host.local."), QType: TypeA, QClass: ClassIN}
	q = q.WithUnicastResponseRequested(true)
	if !q.UnicastResponseRequested() {
		t.Fatal("unicast-response bit should be set")
	}
	if q.QClass.Value() != ClassIN {
		t.Fatalf("QClass.Value() = %v, want ClassIN with the high bit stripped", q.QClass.Value())
	}

	buf := NewBufferSize(32)
	if err := q.writeTo(buf, nil); err != nil {
		t.Fatalf("writeTo: %v", err)
	}
	r := NewBuffer(buf.Bytes())
	got, err := parseQuestion(r)
	if err != nil {
		t.Fatalf("parseQuestion: %v", err)
	}
	if !got.UnicastResponseRequested() {
		t.Fatal("unicast-response bit did not survive the wire round trip")
	}
}

func TestResourceRecordCacheFlushBitRoundTrip(t *testing.T) {
	rr := ResourceRecord{
		Name: mustParseName(t, "host.local."), Class: ClassIN, Type: TypeA, TTL: 120,
		RData: &RDataA{Address: net.ParseIP("192.0.2.1")},
	}
	rr = rr.WithCacheFlush(true)

	buf := NewBufferSize(32)
	if err := rr.writeTo(buf, nil); err != nil {
		t.Fatalf("writeTo: %v", err)
	}
	r := NewBuffer(buf.Bytes())
	got, err := parseResourceRecord(r)
	if err != nil {
		t.Fatalf("parseResourceRecord: %v", err)
	}
	if !got.CacheFlush() {
		t.Fatal("cache-flush bit did not survive the wire round trip")
	}
	if got.Class.Value() != ClassIN {
		t.Fatalf("Class.Value() = %v, want ClassIN", got.Class.Value())
	}
}

// TestCacheFlushBitDoesNotAffectIdentityKey covers a DESIGN NOTES invariant:
// the cache-flush bit is transport-layer and must not change what the store
// considers "the same record".
func TestCacheFlushBitDoesNotAffectIdentityKey(t *testing.T) {
	base := ResourceRecord{
		Name: mustParseName(t, "host.local."), Class: ClassIN, Type: TypeA, TTL: 120,
		RData: &RDataA{Address: net.ParseIP("192.0.2.1")},
	}
	flushed := base.WithCacheFlush(true)
	if base.IdentityKey() != flushed.IdentityKey() {
		t.Fatal("the cache-flush bit must not change a record's identity key")
	}
}

func TestIdentityKeyDiffersByRData(t *testing.T) {
	a := ResourceRecord{Name: mustParseName(t, "host.local."), Class: ClassIN, Type: TypeA, RData: &RDataA{Address: net.ParseIP("192.0.2.1")}}
	b := ResourceRecord{Name: mustParseName(t, "host.local."), Class: ClassIN, Type: TypeA, RData: &RDataA{Address: net.ParseIP("192.0.2.2")}}
	if a.IdentityKey() == b.IdentityKey() {
		t.Fatal("records with different rdata must have different identity keys")
	}
}
