package dht

// Discovery store: bookkeeping for info_hashes observed while crawling.
// Grounded on the teacher's peer_store.go, which bounds its own
// per-info_hash peer cache with groupcache/lru; this store repurposes the
// same mechanism to bound the discovered-info_hash pool itself (see spec
// §9 Open Question (c): the source leaves this unbounded, an explicit
// invitation to cap it). The per-hash record shape (first-seen time,
// request count, source set) mirrors the original Python reference's
// discovered_info_hashes dict.

import (
	"math/rand"
	"time"

	"github.com/golang/groupcache/lru"
)

// DiscoveryTag identifies how an info_hash was learned.
type DiscoveryTag string

const (
	TagGetPeers DiscoveryTag = "get_peers"
	TagBEP51    DiscoveryTag = "bep51"
)

// discoveryRecord is the per-info_hash bookkeeping kept while crawling.
type discoveryRecord struct {
	InfoHash     InfoHash
	FirstSeen    time.Time
	RequestCount int
	Sources      map[string]Endpoint // keyed by Endpoint.String(), de-duped
}

// DiscoveryEvent is delivered to the engine's discovery callback at most
// once per newly observed info_hash.
type DiscoveryEvent struct {
	InfoHash InfoHash
	Source   Endpoint
	Tag      DiscoveryTag
}

// DefaultMaxDiscoveredInfoHashes matches the teacher's old peer-store
// default cap (maxInfoHashes).
const DefaultMaxDiscoveredInfoHashes = 16384

// discoveryStore bounds the set of discovered info_hashes with an LRU so an
// unattended crawl doesn't grow without bound. groupcache/lru.Cache exposes
// no key-iteration API, so keys is kept as a shadow set, pruned via
// OnEvicted whenever the LRU drops an entry. Not safe for concurrent use:
// owned exclusively by the DHT engine's event loop goroutine.
type discoveryStore struct {
	cache *lru.Cache
	keys  map[string]struct{}
}

func newDiscoveryStore(maxInfoHashes int) *discoveryStore {
	if maxInfoHashes <= 0 {
		maxInfoHashes = DefaultMaxDiscoveredInfoHashes
	}
	d := &discoveryStore{
		cache: lru.New(maxInfoHashes),
		keys:  make(map[string]struct{}),
	}
	d.cache.OnEvicted = func(key lru.Key, _ interface{}) {
		delete(d.keys, key.(string))
	}
	return d
}

// Observe records a sighting of ih from source, tagged with how it was
// learned. It returns (event, true) the first time this info_hash is seen,
// and (zero, false) on every subsequent sighting (only the count and source
// set are updated).
func (d *discoveryStore) Observe(ih InfoHash, source Endpoint, tag DiscoveryTag, now time.Time) (DiscoveryEvent, bool) {
	key := string(ih[:])
	if v, ok := d.cache.Get(key); ok {
		rec := v.(*discoveryRecord)
		rec.RequestCount++
		rec.Sources[source.String()] = source
		return DiscoveryEvent{}, false
	}
	rec := &discoveryRecord{
		InfoHash:     ih,
		FirstSeen:    now,
		RequestCount: 1,
		Sources:      map[string]Endpoint{source.String(): source},
	}
	d.cache.Add(key, rec)
	d.keys[key] = struct{}{}
	return DiscoveryEvent{InfoHash: ih, Source: source, Tag: tag}, true
}

// Len reports how many distinct info_hashes are currently tracked.
func (d *discoveryStore) Len() int {
	return d.cache.Len()
}

// Sample draws up to n info_hashes at random, without replacement, from the
// discovered pool, for BEP 51 sample_infohashes responses.
func (d *discoveryStore) Sample(n int) []InfoHash {
	all := d.all()
	if n > len(all) {
		n = len(all)
	}
	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	return all[:n]
}

func (d *discoveryStore) all() []InfoHash {
	out := make([]InfoHash, 0, len(d.keys))
	for k := range d.keys {
		if v, ok := d.cache.Get(k); ok {
			out = append(out, v.(*discoveryRecord).InfoHash)
		}
	}
	return out
}

// Get returns the bookkeeping record for ih, if still tracked.
func (d *discoveryStore) Get(ih InfoHash) (*discoveryRecord, bool) {
	v, ok := d.cache.Get(string(ih[:]))
	if !ok {
		return nil, false
	}
	return v.(*discoveryRecord), true
}
