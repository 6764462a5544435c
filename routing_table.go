package dht

// Routing table: a fixed array of 160 K-buckets, keyed by the position of
// the leading 1-bit of the XOR distance between our own ID and a remote ID.
//
// The teacher (nictuku/dht) instead lays its routing table out as a
// compressed binary trie (see its routing.go, kept out of this tree — see
// DESIGN.md) plus a separate legacy map-based routing table. Neither gives
// the explicit, individually-bounded K-buckets this system's bucket
// overflow and closest-node invariants are defined in terms of, so this
// file builds the bucket array the original Python reference
// (routing_table.py) uses instead, with the teacher's logging and expvar
// instrumentation style.

import (
	"expvar"
	"fmt"
	"sort"

	log "github.com/golang/glog"
)

// DefaultK is the default number of contacts retained per bucket.
const DefaultK = 8

// MaxK is the largest bucket size this implementation accepts.
const MaxK = 100

// NumBuckets is the fixed bucket count, one per bit of ID space.
const NumBuckets = IDLen * 8

// InsertOutcome reports what insertion into a bucket actually did.
type InsertOutcome int

const (
	// Rejected means the insert was a no-op: own ID, a duplicate endpoint
	// under a different ID, or (when a bucket is full and no contact has
	// yet timed out) the new contact was dropped.
	Rejected InsertOutcome = iota
	// Updated means an existing contact's last-seen time was refreshed and
	// it moved to the most-recently-seen position.
	Updated
	// Inserted means the contact was appended to a bucket with spare room.
	Inserted
	// Replaced means a full bucket's least-recently-seen contact was
	// evicted in favor of the new one.
	Replaced
	// PendingPing means the bucket is full and the new contact is a
	// candidate replacement for the LRU entry, but BEP 5 requires pinging
	// that LRU contact first (see DESIGN.md Open Question (a)); the caller
	// (the engine) must ping it and call ResolvePendingReplacement once it
	// knows the outcome.
	PendingPing
)

type bucket struct {
	contacts []Contact // ordered oldest (index 0) to most-recently-seen
}

func (b *bucket) indexOf(id NodeID) int {
	for i, c := range b.contacts {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// RoutingTable is a Kademlia K-bucket store keyed by XOR-prefix distance
// from ownID. All mutation must be serialized by the caller (the DHT engine
// owns a single instance and never shares it across goroutines).
type RoutingTable struct {
	ownID   NodeID
	k       int
	buckets [NumBuckets]bucket

	// pendingReplacement holds, per bucket, a candidate contact waiting on
	// a ping of the bucket's LRU entry before it can replace it.
	pendingReplacement map[int]Contact
}

// NewRoutingTable constructs an empty table for ownID with up to k contacts
// per bucket. k is clamped to [1, MaxK].
func NewRoutingTable(ownID NodeID, k int) *RoutingTable {
	if k < 1 {
		k = 1
	}
	if k > MaxK {
		k = MaxK
	}
	return &RoutingTable{
		ownID:              ownID,
		k:                  k,
		pendingReplacement: make(map[int]Contact),
	}
}

// BucketIndex returns the bucket a remote ID belongs in, or an error if id
// equals ownID (identical IDs have no bucket). Bucket 0 holds IDs whose most
// significant bit differs from ownID's.
func (rt *RoutingTable) BucketIndex(id NodeID) (int, error) {
	d := Distance(rt.ownID, id)
	idx := leadingBucketIndex(d)
	if idx == -1 {
		return 0, fmt.Errorf("dht: routing table: cannot bucket own id")
	}
	return idx, nil
}

// Insert applies the routing table's insertion policy (see spec §4.3) for a
// sighting of contact c.
func (rt *RoutingTable) Insert(c Contact) InsertOutcome {
	if c.ID == rt.ownID || c.ID.IsZero() {
		return Rejected
	}
	idx, err := rt.BucketIndex(c.ID)
	if err != nil {
		return Rejected
	}
	b := &rt.buckets[idx]

	if i := b.indexOf(c.ID); i != -1 {
		b.contacts[i].Endpoint = c.Endpoint
		b.contacts[i].LastSeen = c.LastSeen
		rt.moveToMostRecentlySeen(b, i)
		return Updated
	}

	// Reject a duplicate endpoint already claimed by a different ID: this
	// would otherwise let one physical host occupy two routing slots.
	for i := range rt.buckets {
		for _, existing := range rt.buckets[i].contacts {
			if existing.Endpoint.Equal(c.Endpoint) {
				return Rejected
			}
		}
	}

	if len(b.contacts) < rt.k {
		b.contacts = append(b.contacts, c)
		totalNodesInserted.Add(1)
		return Inserted
	}

	// Bucket full. Per DESIGN.md's resolution of spec §9 Open Question
	// (a), we don't replace the LRU contact outright: the caller must ping
	// it first and only replace on timeout.
	rt.pendingReplacement[idx] = c
	return PendingPing
}

func (rt *RoutingTable) moveToMostRecentlySeen(b *bucket, i int) {
	c := b.contacts[i]
	b.contacts = append(b.contacts[:i], b.contacts[i+1:]...)
	b.contacts = append(b.contacts, c)
}

// LRU returns the least-recently-seen contact of the bucket id would land
// in, used by the engine to decide who to ping before a PendingPing
// replacement.
func (rt *RoutingTable) LRU(id NodeID) (Contact, bool) {
	idx, err := rt.BucketIndex(id)
	if err != nil {
		return Contact{}, false
	}
	b := &rt.buckets[idx]
	if len(b.contacts) == 0 {
		return Contact{}, false
	}
	return b.contacts[0], true
}

// ResolvePendingReplacement completes a PendingPing decision for the bucket
// that id falls in. If lruReachable is true, the pending candidate is
// dropped (Rejected); otherwise the LRU contact is evicted and the
// candidate takes its place (Replaced).
func (rt *RoutingTable) ResolvePendingReplacement(id NodeID, lruReachable bool) InsertOutcome {
	idx, err := rt.BucketIndex(id)
	if err != nil {
		return Rejected
	}
	candidate, ok := rt.pendingReplacement[idx]
	if !ok {
		return Rejected
	}
	delete(rt.pendingReplacement, idx)
	if lruReachable {
		return Rejected
	}
	b := &rt.buckets[idx]
	if len(b.contacts) > 0 {
		b.contacts = b.contacts[1:]
		totalKilledNodes.Add(1)
	}
	b.contacts = append(b.contacts, candidate)
	totalNodesInserted.Add(1)
	log.V(3).Infof("dht: routing table replaced LRU contact in bucket %d", idx)
	return Replaced
}

// Remove deletes a contact by ID and reports whether it was present. The
// engine does not call it: a failed send leaves the contact in place, and a
// contact leaves the table on timeout only via ResolvePendingReplacement.
func (rt *RoutingTable) Remove(id NodeID) bool {
	idx, err := rt.BucketIndex(id)
	if err != nil {
		return false
	}
	b := &rt.buckets[idx]
	i := b.indexOf(id)
	if i == -1 {
		return false
	}
	b.contacts = append(b.contacts[:i], b.contacts[i+1:]...)
	totalKilledNodes.Add(1)
	return true
}

// ClosestNodes scans every bucket and returns up to n contacts closest to
// target by XOR distance, ties broken by endpoint string for determinism.
// n is clamped to 1000.
func (rt *RoutingTable) ClosestNodes(target NodeID, n int) []Contact {
	if n > 1000 {
		n = 1000
	}
	if n <= 0 {
		return nil
	}
	all := rt.AllContacts()
	sort.Slice(all, func(i, j int) bool {
		di := Distance(all[i].ID, target)
		dj := Distance(all[j].ID, target)
		if di != dj {
			return Less(di, dj)
		}
		return all[i].Endpoint.String() < all[j].Endpoint.String()
	})
	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}

// Len returns the total number of contacts across all buckets.
func (rt *RoutingTable) Len() int {
	n := 0
	for i := range rt.buckets {
		n += len(rt.buckets[i].contacts)
	}
	return n
}

// AllContacts returns every contact in the table, unsorted, for callers
// that need a full snapshot (e.g. the crawl loop's active-query batch).
func (rt *RoutingTable) AllContacts() []Contact {
	all := make([]Contact, 0, rt.Len())
	for i := range rt.buckets {
		all = append(all, rt.buckets[i].contacts...)
	}
	return all
}

var (
	totalNodesInserted = expvar.NewInt("totalNodesInserted")
	totalKilledNodes    = expvar.NewInt("totalKilledNodes")
)
