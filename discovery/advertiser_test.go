package discovery

import (
	"testing"
	"time"

	"github.com/opendisco/dnswire/mdnstest"
)

func TestAdvertiserAddAndRemove(t *testing.T) {
	netw := mdnstest.NewNetwork()

	d := NewWithTransport(netw.NewTransport())
	go d.Serve()
	defer d.Close()

	adv := NewAdvertiser(d)
	if err := adv.Add(advertisePrinterInfo(9400)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	client := NewWithTransport(netw.NewTransport())
	go client.Serve()
	defer client.Close()
	if err := client.Track("_http._tcp.local."); err != nil {
		t.Fatalf("Track: %v", err)
	}
	waitForServices(t, client, 1)

	if err := adv.Remove("_http._tcp.local."); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		client.RefreshOnce()
		if len(client.GetKnownServices()) == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("removed service should have been evicted from the peer view")
}
