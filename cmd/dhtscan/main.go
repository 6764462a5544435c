// Command dhtscan drives the dht package from the command line: scraper
// mode when given an info_hash, crawler mode otherwise.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/j4gl/bt-dht"
)

func main() {
	os.Exit(run())
}

func run() int {
	port := flag.Int("port", dht.DefaultPort, "UDP port to bind")
	timeout := flag.Duration("timeout", 0, "per-mode duration (0 = 30s in scraper mode, infinite in crawler mode)")
	queryInterval := flag.Int("query-interval", 3, "crawler active-query cadence in seconds")
	flag.Parse()

	if *queryInterval < 1 {
		fmt.Fprintln(os.Stderr, "dhtscan: --query-interval must be >= 1")
		return 1
	}
	if *port < 1 || *port > 65535 {
		fmt.Fprintln(os.Stderr, "dhtscan: --port must be in 1..65535")
		return 1
	}

	var ih dht.InfoHash
	scraping := false
	if args := flag.Args(); len(args) > 0 {
		var err error
		ih, err = dht.DecodeInfoHash(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "dhtscan: %v\n", err)
			return 1
		}
		scraping = true
	}

	d, err := dht.New(dht.Config{
		Port:         *port,
		BEP51Enabled: !scraping,
		OnDiscovery: func(ev dht.DiscoveryEvent) {
			fmt.Printf("discovered %s from %s (%s)\n", ev.InfoHash, ev.Source, ev.Tag)
		},
		OnProgress: func(s dht.Stats) {
			fmt.Printf("t=%s nodes=%d unique_ih=%d disc/min=%.1f\n",
				s.Elapsed.Round(time.Second), s.RoutingTableSize, s.UniqueInfoHashes, s.DiscoveriesPerMinute)
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "dhtscan: %v\n", err)
		return 2
	}
	if err := d.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "dhtscan: %v\n", err)
		return 2
	}
	defer d.Stop()

	fmt.Fprintf(os.Stderr, "dhtscan: listening on port %d, node id %s\n", d.Port(), d.NodeID())

	if scraping {
		t := *timeout
		if t == 0 {
			t = 30 * time.Second
		}
		peers := d.ScrapePeers(ih, t)
		for _, p := range peers {
			fmt.Println(p)
		}
		return 0
	}

	d.CrawlNetwork(*timeout, *queryInterval)
	return 0
}
