package mdnstest

import "testing"

func TestMulticastReachesOtherMembersNotSelf(t *testing.T) {
	n := NewNetwork()
	a := n.NewTransport()
	b := n.NewTransport()
	defer a.Close()
	defer b.Close()

	if err := a.WriteMulticast([]byte("hello"), false); err != nil {
		t.Fatalf("WriteMulticast: %v", err)
	}

	pkt, err := b.ReadV4(nil)
	if err != nil {
		t.Fatalf("ReadV4: %v", err)
	}
	if string(pkt.Data) != "hello" {
		t.Fatalf("want %q, got %q", "hello", pkt.Data)
	}
	if !pkt.Multicast {
		t.Fatal("delivered packet should be marked multicast")
	}

	select {
	case got := <-a.inbox:
		t.Fatalf("sender should not receive its own multicast, got %v", got)
	default:
	}
}

func TestUnicastReachesOnlyAddressedMember(t *testing.T) {
	n := NewNetwork()
	a := n.NewTransport()
	b := n.NewTransport()
	c := n.NewTransport()
	defer a.Close()
	defer b.Close()
	defer c.Close()

	if err := a.WriteUnicast([]byte("hi"), b.Addr()); err != nil {
		t.Fatalf("WriteUnicast: %v", err)
	}

	pkt, err := b.ReadV4(nil)
	if err != nil {
		t.Fatalf("ReadV4: %v", err)
	}
	if pkt.Multicast {
		t.Fatal("unicast delivery should not be marked multicast")
	}

	select {
	case got := <-c.inbox:
		t.Fatalf("unaddressed member should not receive unicast, got %v", got)
	default:
	}
}

func TestCloseUnblocksRead(t *testing.T) {
	n := NewNetwork()
	a := n.NewTransport()

	done := make(chan error, 1)
	go func() {
		_, err := a.ReadV4(nil)
		done <- err
	}()

	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := <-done; err == nil {
		t.Fatal("ReadV4 should return an error once the transport is closed")
	}
}
