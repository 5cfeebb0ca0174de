// Command mdnsctl advertises, tracks, and looks up mDNS/DNS-SD services
// from the command line, exercising the dnswire/discovery package.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/linkdata/rate"

	"github.com/opendisco/dnswire/discovery"
	"github.com/opendisco/dnswire/mdns"
)

var (
	flagIface     = flag.String("iface", "", "network interface to bind to (default: all)")
	flag4         = flag.Bool("4", true, "use IPv4")
	flag6         = flag.Bool("6", false, "use IPv6")
	flagDebug     = flag.Bool("debug", false, "print debug output")
	flagTimeout   = flag.Int("timeout", 3, "lookup timeout in seconds")
	flagRatelimit = flag.Int("ratelimit", 0, "refresh ticks per second, 0 means one tick per discovery.RefreshPeriod")
)

func scopeFromFlags() (mdns.NetworkScope, error) {
	var ifi *net.Interface
	if *flagIface != "" {
		var err error
		if ifi, err = net.InterfaceByName(*flagIface); err != nil {
			return mdns.NetworkScope{}, fmt.Errorf("mdnsctl: %w", err)
		}
	}
	switch {
	case *flag4 && *flag6:
		return mdns.Both(), nil
	case *flag6:
		if ifi != nil {
			return mdns.V6WithInterface(ifi), nil
		}
		return mdns.V6(), nil
	default:
		if ifi != nil {
			return mdns.V4WithInterface(ifi), nil
		}
		return mdns.V4(), nil
	}
}

func newDiscovery() (*discovery.Discovery, error) {
	scope, err := scopeFromFlags()
	if err != nil {
		return nil, err
	}
	d, err := discovery.NewWithOptions(scope)
	if err != nil {
		return nil, fmt.Errorf("mdnsctl: %w", err)
	}
	if *flagDebug {
		d.DebugLog = os.Stderr
	}
	return d, nil
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "advertise":
		err = cmdAdvertise(args[1:])
	case "track":
		err = cmdTrack(args[1:])
	case "lookup":
		err = cmdLookup(args[1:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  mdnsctl advertise <instance> <service> <host> <port> [key=value ...]")
	fmt.Fprintln(os.Stderr, "  mdnsctl track <service>")
	fmt.Fprintln(os.Stderr, "  mdnsctl lookup <service>")
}

// cmdAdvertise registers a service instance and serves until interrupted.
func cmdAdvertise(args []string) error {
	if len(args) < 4 {
		usage()
		return fmt.Errorf("mdnsctl: advertise requires instance, service, host and port")
	}
	port, err := strconv.ParseUint(args[3], 10, 16)
	if err != nil {
		return fmt.Errorf("mdnsctl: invalid port %q: %w", args[3], err)
	}

	attrs := map[string]*string{}
	for _, kv := range args[4:] {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			attrs[kv] = nil
			continue
		}
		attrs[k] = &v
	}

	d, err := newDiscovery()
	if err != nil {
		return err
	}
	defer d.Close()

	info := discovery.ServiceInfo{
		Instance: args[0],
		Service:  args[1],
		Host:     args[2],
		Port:     uint16(port),
		Addrs:    localAddrs(),
		Attrs:    attrs,
	}
	if err := d.Advertise(info); err != nil {
		return fmt.Errorf("mdnsctl: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go d.Serve()
	go d.RunRefreshLoop(discovery.RefreshPeriod)
	fmt.Printf("advertising %s.%s on port %d, press Ctrl+C to withdraw and exit\n", info.Instance, info.Service, info.Port)
	<-ctx.Done()
	return nil
}

// cmdTrack watches a service type and prints known instances until
// interrupted, rate-limiting how often it re-queries.
func cmdTrack(args []string) error {
	if len(args) != 1 {
		usage()
		return fmt.Errorf("mdnsctl: track requires a service type")
	}
	d, err := newDiscovery()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Track(args[0]); err != nil {
		return fmt.Errorf("mdnsctl: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go d.Serve()

	var tick <-chan struct{}
	if maxrate := int32(*flagRatelimit); maxrate > 0 {
		tick = rate.NewTicker(nil, &maxrate).C
	} else {
		t := time.NewTicker(discovery.RefreshPeriod)
		defer t.Stop()
		ch := make(chan struct{})
		go func() {
			for range t.C {
				select {
				case ch <- struct{}{}:
				case <-ctx.Done():
					return
				}
			}
		}()
		tick = ch
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			d.RefreshOnce()
			printServices(os.Stdout, d.GetKnownServices())
		}
	}
}

// cmdLookup performs a single one-shot resolution with a timeout.
func cmdLookup(args []string) error {
	if len(args) != 1 {
		usage()
		return fmt.Errorf("mdnsctl: lookup requires a service type")
	}
	d, err := newDiscovery()
	if err != nil {
		return err
	}
	defer d.Close()
	go d.Serve()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*flagTimeout)*time.Second)
	defer cancel()

	info, ok, err := discovery.NewResolver(d).Lookup(ctx, args[0], time.Duration(*flagTimeout)*time.Second)
	if err != nil {
		return fmt.Errorf("mdnsctl: %w", err)
	}
	if !ok {
		fmt.Println("no answer")
		return nil
	}
	printServices(os.Stdout, []discovery.InstanceInfo{info})
	return nil
}

func printServices(w io.Writer, services []discovery.InstanceInfo) {
	for _, s := range services {
		fmt.Fprintf(w, "%s.%s -> %s:%d ttl=%ds addrs=%v attrs=%v\n",
			s.Instance, s.Service, s.Host, s.Port, s.TTL, s.Addrs, s.Attrs)
	}
}

func localAddrs() []net.IP {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil
	}
	var out []net.IP
	for _, a := range addrs {
		ipn, ok := a.(*net.IPNet)
		if !ok || ipn.IP.IsLoopback() {
			continue
		}
		out = append(out, ipn.IP)
	}
	return out
}
