package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/opendisco/dnswire/mdnstest"
)

func TestCooperativeAddAndGetKnownServices(t *testing.T) {
	netw := mdnstest.NewNetwork()

	advCtx, advCancel := context.WithCancel(context.Background())
	defer advCancel()
	advertiser := NewCooperative(NewWithTransport(netw.NewTransport()))
	go advertiser.Run(advCtx)
	if err := advertiser.AddServiceInfo(advertisePrinterInfo(9300)); err != nil {
		t.Fatalf("AddServiceInfo: %v", err)
	}
	defer advertiser.Close()

	cliCtx, cliCancel := context.WithCancel(context.Background())
	defer cliCancel()
	client := NewCooperative(NewWithTransport(netw.NewTransport()))
	go client.Run(cliCtx)
	defer client.Close()
	if err := client.Track("_http._tcp.local."); err != nil {
		t.Fatalf("Track: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(client.GetKnownServices()) == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("timed out waiting for cooperative client to observe advertised service")
}
