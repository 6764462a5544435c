package dht

import (
	"net"
	"testing"
	"time"
)

func mustContact(t *testing.T, idByte byte, port int) Contact {
	t.Helper()
	var id NodeID
	for i := range id {
		id[i] = idByte
	}
	id[len(id)-1] ^= byte(port) // keep IDs distinct across a test's contacts
	ep, err := NewEndpoint(net.ParseIP("10.0.0.1"), port)
	if err != nil {
		t.Fatalf("NewEndpoint: %v", err)
	}
	return Contact{ID: id, Endpoint: ep, LastSeen: time.Now()}
}

func TestBucketIndexRange(t *testing.T) {
	own := mustID(0x00)
	rt := NewRoutingTable(own, DefaultK)
	for i := 1; i < 255; i++ {
		id := mustID(byte(i))
		idx, err := rt.BucketIndex(id)
		if err != nil {
			t.Fatalf("BucketIndex: %v", err)
		}
		if idx < 0 || idx >= NumBuckets {
			t.Fatalf("bucket index %d out of range", idx)
		}
	}
}

func TestBucketIndexRejectsOwnID(t *testing.T) {
	own := mustID(0x42)
	rt := NewRoutingTable(own, DefaultK)
	if _, err := rt.BucketIndex(own); err == nil {
		t.Fatalf("expected error bucketing own id")
	}
}

func TestInsertRejectsOwnID(t *testing.T) {
	own := mustID(0x42)
	rt := NewRoutingTable(own, DefaultK)
	ep, _ := NewEndpoint(net.ParseIP("10.0.0.1"), 6881)
	if out := rt.Insert(Contact{ID: own, Endpoint: ep}); out != Rejected {
		t.Fatalf("inserting own id = %v, want Rejected", out)
	}
}

func TestInsertNoDuplicateIDs(t *testing.T) {
	own := mustID(0x00)
	rt := NewRoutingTable(own, DefaultK)
	c := mustContact(t, 0x01, 6881)
	if out := rt.Insert(c); out != Inserted {
		t.Fatalf("first insert = %v, want Inserted", out)
	}
	if out := rt.Insert(c); out != Updated {
		t.Fatalf("re-insert of same id = %v, want Updated", out)
	}
	if rt.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", rt.Len())
	}
}

func TestInsertFillsAndOverflowsBucket(t *testing.T) {
	own := mustID(0x00)
	rt := NewRoutingTable(own, 2)
	c1 := mustContact(t, 0xff, 6001)
	c2 := mustContact(t, 0xff, 6002)
	c3 := mustContact(t, 0xff, 6003)

	if out := rt.Insert(c1); out != Inserted {
		t.Fatalf("insert 1 = %v", out)
	}
	if out := rt.Insert(c2); out != Inserted {
		t.Fatalf("insert 2 = %v", out)
	}
	// Bucket is now full (k=2): a third distinct ID must not replace
	// synchronously, it must come back as PendingPing (see DESIGN.md Open
	// Question (a)).
	out := rt.Insert(c3)
	if out != PendingPing {
		t.Fatalf("insert into full bucket = %v, want PendingPing", out)
	}
	if rt.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (no synchronous replacement)", rt.Len())
	}

	// Resolving with the LRU reachable drops the candidate.
	if out := rt.ResolvePendingReplacement(c3.ID, true); out != Rejected {
		t.Fatalf("resolve with reachable LRU = %v, want Rejected", out)
	}
	if rt.Len() != 2 {
		t.Fatalf("Len() after reachable resolve = %d, want 2", rt.Len())
	}

	// Now force another pending decision and resolve it as unreachable.
	rt.Insert(c3)
	lru, ok := rt.LRU(c3.ID)
	if !ok {
		t.Fatalf("expected an LRU contact")
	}
	if lru.ID != c1.ID {
		t.Fatalf("LRU = %x, want c1 %x", lru.ID, c1.ID)
	}
	if out := rt.ResolvePendingReplacement(c3.ID, false); out != Replaced {
		t.Fatalf("resolve with unreachable LRU = %v, want Replaced", out)
	}
	if rt.Len() != 2 {
		t.Fatalf("Len() after replacement = %d, want 2", rt.Len())
	}
	if _, ok := rt.LRU(c1.ID); ok {
		if lru2, _ := rt.LRU(c1.ID); lru2.ID == c1.ID {
			t.Fatalf("c1 should have been evicted")
		}
	}
}

func TestInsertRejectsDuplicateEndpoint(t *testing.T) {
	own := mustID(0x00)
	rt := NewRoutingTable(own, DefaultK)
	ep, _ := NewEndpoint(net.ParseIP("10.0.0.5"), 6881)
	id1 := mustID(0x01)
	id2 := mustID(0x02)
	rt.Insert(Contact{ID: id1, Endpoint: ep})
	out := rt.Insert(Contact{ID: id2, Endpoint: ep})
	if out != Rejected {
		t.Fatalf("second id on same endpoint = %v, want Rejected", out)
	}
}

func TestClosestNodesEmptyTable(t *testing.T) {
	own := mustID(0x00)
	rt := NewRoutingTable(own, DefaultK)
	target := mustID(0x99)
	if got := rt.ClosestNodes(target, 8); len(got) != 0 {
		t.Fatalf("ClosestNodes on empty table = %d results, want 0", len(got))
	}
}

func TestClosestNodesOrdering(t *testing.T) {
	own := mustID(0x00)
	rt := NewRoutingTable(own, DefaultK)
	for i := 1; i <= 20; i++ {
		rt.Insert(mustContact(t, byte(i), 6000+i))
	}
	target := mustID(0x00)
	got := rt.ClosestNodes(target, 5)
	if len(got) != 5 {
		t.Fatalf("got %d contacts, want 5", len(got))
	}
	for i := 1; i < len(got); i++ {
		d1 := Distance(got[i-1].ID, target)
		d2 := Distance(got[i].ID, target)
		if Less(d2, d1) {
			t.Fatalf("ClosestNodes not sorted ascending by distance at index %d", i)
		}
	}
}

func TestClosestNodesOversizedNOnEmptyTable(t *testing.T) {
	own := mustID(0x00)
	rt := NewRoutingTable(own, DefaultK)
	got := rt.ClosestNodes(own, 5000)
	if len(got) != 0 {
		t.Fatalf("expected no contacts, got %d", len(got))
	}
}

func TestRemove(t *testing.T) {
	own := mustID(0x00)
	rt := NewRoutingTable(own, DefaultK)
	c := mustContact(t, 0x01, 6881)
	rt.Insert(c)
	if !rt.Remove(c.ID) {
		t.Fatalf("Remove returned false for existing contact")
	}
	if rt.Len() != 0 {
		t.Fatalf("Len() = %d after remove, want 0", rt.Len())
	}
	if rt.Remove(c.ID) {
		t.Fatalf("Remove returned true for already-removed contact")
	}
}
