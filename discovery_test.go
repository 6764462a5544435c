package dht

import (
	"net"
	"testing"
	"time"
)

func TestObserveFirstSightingFiresEvent(t *testing.T) {
	d := newDiscoveryStore(100)
	ep, _ := NewEndpoint(net.ParseIP("10.0.0.1"), 6881)
	ih := mustID(0xaa)
	ev, ok := d.Observe(ih, ep, TagGetPeers, time.Now())
	if !ok {
		t.Fatalf("expected first sighting to report ok=true")
	}
	if ev.InfoHash != ih || ev.Tag != TagGetPeers {
		t.Fatalf("event = %+v", ev)
	}
	if d.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", d.Len())
	}
}

func TestObserveRepeatSightingDoesNotRefire(t *testing.T) {
	d := newDiscoveryStore(100)
	ep, _ := NewEndpoint(net.ParseIP("10.0.0.1"), 6881)
	ih := mustID(0xaa)
	now := time.Now()
	d.Observe(ih, ep, TagGetPeers, now)
	_, ok := d.Observe(ih, ep, TagGetPeers, now)
	if ok {
		t.Fatalf("expected repeat sighting to report ok=false")
	}
	rec, found := d.Get(ih)
	if !found {
		t.Fatalf("expected record to be found")
	}
	if rec.RequestCount != 2 {
		t.Fatalf("RequestCount = %d, want 2", rec.RequestCount)
	}
}

func TestObserveTracksMultipleSources(t *testing.T) {
	d := newDiscoveryStore(100)
	ih := mustID(0xaa)
	ep1, _ := NewEndpoint(net.ParseIP("10.0.0.1"), 6881)
	ep2, _ := NewEndpoint(net.ParseIP("10.0.0.2"), 6882)
	now := time.Now()
	d.Observe(ih, ep1, TagGetPeers, now)
	d.Observe(ih, ep2, TagBEP51, now)
	rec, _ := d.Get(ih)
	if len(rec.Sources) != 2 {
		t.Fatalf("Sources = %v, want 2 entries", rec.Sources)
	}
}

func TestDiscoveryStoreEvictsOldest(t *testing.T) {
	d := newDiscoveryStore(2)
	ep, _ := NewEndpoint(net.ParseIP("10.0.0.1"), 6881)
	now := time.Now()
	ih1 := mustID(0x01)
	ih2 := mustID(0x02)
	ih3 := mustID(0x03)
	d.Observe(ih1, ep, TagGetPeers, now)
	d.Observe(ih2, ep, TagGetPeers, now)
	d.Observe(ih3, ep, TagGetPeers, now)
	if d.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 after eviction", d.Len())
	}
	if _, ok := d.Get(ih1); ok {
		t.Fatalf("expected ih1 to have been evicted")
	}
	if len(d.keys) != 2 {
		t.Fatalf("shadow key set out of sync: len=%d, want 2", len(d.keys))
	}
}

func TestSampleWithoutReplacement(t *testing.T) {
	d := newDiscoveryStore(100)
	ep, _ := NewEndpoint(net.ParseIP("10.0.0.1"), 6881)
	now := time.Now()
	for i := 0; i < 50; i++ {
		d.Observe(mustID(byte(i)), ep, TagGetPeers, now)
	}
	samples := d.Sample(20)
	if len(samples) != 20 {
		t.Fatalf("Sample(20) returned %d hashes", len(samples))
	}
	seen := make(map[InfoHash]bool)
	for _, s := range samples {
		if seen[s] {
			t.Fatalf("Sample returned a duplicate: %x", s)
		}
		seen[s] = true
	}
}

func TestSampleClampsToAvailable(t *testing.T) {
	d := newDiscoveryStore(100)
	ep, _ := NewEndpoint(net.ParseIP("10.0.0.1"), 6881)
	d.Observe(mustID(0x01), ep, TagGetPeers, time.Now())
	samples := d.Sample(20)
	if len(samples) != 1 {
		t.Fatalf("Sample(20) with 1 known hash returned %d", len(samples))
	}
}
