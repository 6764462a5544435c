// Package dht implements a participant in the BitTorrent Mainline DHT
// (BEP 5), plus the BEP 51 infohash-indexing extension, in both scraper and
// crawler modes.
package dht

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/hex"
	"expvar"
	"fmt"
	"io"
	"net"
	"sort"
	"time"
)

// Defaults for Config fields left unset.
const (
	DefaultPort         = 6881
	DefaultQueryTimeout = 5 * time.Second
	alpha               = 8 // candidates queried per lookup round
	activeQueryBatch    = 5 // contacts queried per active crawl tick
	reapEveryTicks      = 30
	secretRotateTicks   = 300
	bep51Interval       = 21600 // seconds, a refresh hint, not enforced
)

// defaultBootstrapNodes seeds the routing table on a fresh start. Both are
// long-lived public bootstrap routers for the mainline network.
var defaultBootstrapNodes = []string{
	"router.bittorrent.com:6881",
	"dht.transmissionbt.com:6881",
}

// Config configures a DHT engine. Zero-valued fields take the package
// defaults.
type Config struct {
	Port                    int
	NumTargetPeers          int
	BootstrapNodes          []string
	QueryTimeout            time.Duration
	MaxDiscoveredInfoHashes int
	K                       int
	BEP51Enabled            bool
	Logger                  Logger

	// OnDiscovery fires at most once per newly observed info_hash.
	OnDiscovery func(DiscoveryEvent)
	// OnProgress fires once per crawl tick (see CrawlNetwork).
	OnProgress func(Stats)
}

// Stats is delivered to Config.OnProgress once per crawl tick.
type Stats struct {
	Elapsed              time.Duration
	UniqueInfoHashes     int
	DiscoveriesPerMinute float64
	TotalInboundRequests int64
	RoutingTableSize     int
	SamplesSent          int64
	SamplesReceived      int64
}

// DHT is one participant in the network: a UDP socket, a routing table, an
// in-flight transaction registry and (in crawl mode) a discovered-info_hash
// store. All mutation happens on the goroutine that calls Start,
// ScrapePeers or CrawlNetwork; there is no internal locking, matching the
// single-writer model the package is built around.
type DHT struct {
	cfg    Config
	ownID  NodeID
	port   int
	conn   *net.UDPConn
	logger Logger

	rt        *RoutingTable
	tx        *transactionTable
	discovery *discoveryStore
	arena     *arena

	tokenSecrets [2]string
	// pendingProbes maps a ping transaction's tid to the LRU contact it is
	// probing, for bucket-overflow resolution (see routing_table.go's
	// PendingPing outcome).
	pendingProbes map[string]NodeID
	// activeScrape is non-nil only during a ScrapePeers call; inbound
	// get_peers responses feed it when their info_hash matches its target,
	// and every find_node response feeds it regardless of target.
	activeScrape *scrapeState

	stop       chan struct{}
	socketChan chan packetType
	startTime  time.Time
}

// New constructs a DHT engine with a freshly generated node ID. Call Start
// before ScrapePeers or CrawlNetwork.
func New(cfg Config) (*DHT, error) {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = DefaultQueryTimeout
	}
	if cfg.K <= 0 {
		cfg.K = DefaultK
	}
	ownID, err := GenerateNodeID()
	if err != nil {
		return nil, fmt.Errorf("dht: new: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = glogLogger{}
	}
	return &DHT{
		cfg:           cfg,
		ownID:         ownID,
		port:          cfg.Port,
		logger:        logger,
		rt:            NewRoutingTable(ownID, cfg.K),
		tx:            newTransactionTable(),
		discovery:     newDiscoveryStore(cfg.MaxDiscoveredInfoHashes),
		tokenSecrets:  [2]string{newTokenSecret(), newTokenSecret()},
		pendingProbes: make(map[string]NodeID),
		stop:          make(chan struct{}),
	}, nil
}

func newTokenSecret() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return string(b[:])
	}
	return string(b[:])
}

// Start binds the UDP socket (falling back to an ephemeral port if the
// configured one is taken) and sends the bootstrap find_node burst.
func (d *DHT) Start() error {
	conn, port, err := listenUDP(d.cfg.Port)
	if err != nil {
		return err
	}
	d.conn = conn
	d.port = port
	d.arena = newArena(maxUDPPacketSize, 3)
	d.socketChan = make(chan packetType, 64)
	go readFromSocket(d.conn, d.socketChan, d.arena, d.stop)
	d.startTime = time.Now()
	d.bootstrap()
	return nil
}

// Stop closes the socket and signals the read goroutine to exit. Idempotent.
func (d *DHT) Stop() {
	select {
	case <-d.stop:
		return
	default:
		close(d.stop)
	}
	if d.conn != nil {
		d.conn.Close()
	}
}

// Port returns the UDP port actually bound, which differs from Config.Port
// when Start had to fall back to an ephemeral port.
func (d *DHT) Port() int { return d.port }

// NodeID returns this engine's own node identity.
func (d *DHT) NodeID() NodeID { return d.ownID }

// RoutingTableSize returns the number of contacts currently known.
func (d *DHT) RoutingTableSize() int { return d.rt.Len() }

func (d *DHT) bootstrap() {
	nodes := d.cfg.BootstrapNodes
	if len(nodes) == 0 {
		nodes = defaultBootstrapNodes
	}
	for _, addr := range nodes {
		ep, err := resolveEndpoint(addr)
		if err != nil {
			d.logger.Warningf("dht: bootstrap address %q: %v", addr, err)
			continue
		}
		d.sendFindNode(ep, d.ownID)
	}
}

func resolveEndpoint(addr string) (Endpoint, error) {
	udpAddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return Endpoint{}, fmt.Errorf("dht: resolve %q: %w", addr, err)
	}
	return NewEndpoint(udpAddr.IP, udpAddr.Port)
}

// drainInbound processes inbound datagrams as they arrive for the whole of
// budget; it keeps waiting for more even while the channel is empty and
// returns only once the budget is spent.
func (d *DHT) drainInbound(budget time.Duration) {
	deadline := time.Now().Add(budget)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}
		timer := time.NewTimer(remaining)
		select {
		case pkt := <-d.socketChan:
			timer.Stop()
			d.handlePacket(pkt, time.Now())
			d.arena.Push(pkt.b)
		case <-timer.C:
			return
		}
	}
}

func (d *DHT) reapExpired(now time.Time) {
	for _, tx := range d.tx.ReapExpired(now) {
		totalTimeouts.Add(1)
		if lruID, ok := d.pendingProbes[tx.tid]; ok {
			delete(d.pendingProbes, tx.tid)
			d.rt.ResolvePendingReplacement(lruID, false)
		}
	}
}

func (d *DHT) rotateTokenSecret() {
	d.tokenSecrets = [2]string{newTokenSecret(), d.tokenSecrets[0]}
}

func (d *DHT) hostToken(ep Endpoint, secret string) string {
	h := sha1.New()
	io.WriteString(h, ep.String())
	io.WriteString(h, secret)
	return hex.EncodeToString(h.Sum(nil))
}

// --- outbound queries ---

// query registers a transaction, builds its payload with the allotted tid,
// and sends it. A build or send failure cancels the transaction immediately
// (spec's SendFailure policy), rather than leaving a doomed record to time
// out later.
func (d *DHT) query(method string, target NodeID, ih InfoHash, to Endpoint, build func(tid string) ([]byte, error)) (*transaction, bool) {
	tx, err := d.tx.Register(method, target, ih, to, d.cfg.QueryTimeout)
	if err != nil {
		d.logger.Warningf("dht: could not register %s transaction to %v: %v", method, to, err)
		return nil, false
	}
	payload, err := build(tx.tid)
	if err != nil {
		d.tx.Resolve(tx.tid)
		return nil, false
	}
	if err := sendMsg(d.conn, to, payload); err != nil {
		totalSendFailures.Add(1)
		d.tx.Resolve(tx.tid)
		d.logger.Debugf("dht: send %s to %v failed: %v", method, to, err)
		return nil, false
	}
	return tx, true
}

func (d *DHT) sendPing(to Endpoint) (*transaction, bool) {
	return d.query(MethodPing, NodeID{}, InfoHash{}, to, func(tid string) ([]byte, error) {
		return BuildPingQuery(tid, d.ownID)
	})
}

func (d *DHT) sendFindNode(to Endpoint, target NodeID) {
	d.query(MethodFindNode, target, InfoHash{}, to, func(tid string) ([]byte, error) {
		return BuildFindNodeQuery(tid, d.ownID, target)
	})
}

func (d *DHT) sendGetPeers(to Endpoint, ih InfoHash) {
	d.query(MethodGetPeers, NodeID{}, ih, to, func(tid string) ([]byte, error) {
		return BuildGetPeersQuery(tid, d.ownID, ih)
	})
}

func (d *DHT) sendSampleInfohashes(to Endpoint, target NodeID) {
	d.query(MethodSampleInfohashes, target, InfoHash{}, to, func(tid string) ([]byte, error) {
		return BuildSampleInfohashesQuery(tid, d.ownID, target)
	})
}

// probeLRU pings the least-recently-seen contact of the bucket newID would
// land in, resolving a PendingPing outcome from RoutingTable.Insert once the
// ping completes or times out.
func (d *DHT) probeLRU(newID NodeID) {
	lru, ok := d.rt.LRU(newID)
	if !ok {
		return
	}
	tx, ok := d.sendPing(lru.Endpoint)
	if !ok {
		return
	}
	d.pendingProbes[tx.tid] = lru.ID
}

// observeContact folds a sighting of id into the routing table, kicking off
// an LRU probe if the bucket was full.
func (d *DHT) observeContact(id NodeID, ep Endpoint, now time.Time) {
	outcome := d.rt.Insert(Contact{ID: id, Endpoint: ep, LastSeen: now})
	if outcome == PendingPing {
		d.probeLRU(id)
	}
}

func (d *DHT) fireDiscovery(ev DiscoveryEvent) {
	if d.cfg.OnDiscovery != nil {
		d.cfg.OnDiscovery(ev)
	}
}

// --- inbound dispatch ---

func (d *DHT) handlePacket(pkt packetType, now time.Time) {
	totalInboundPackets.Add(1)
	if len(pkt.b) == 0 || pkt.b[0] != 'd' {
		// Not bencode at all; some protocol extension we don't speak.
		totalMalformed.Add(1)
		return
	}
	msg, err := parseMessage(pkt.b)
	if err != nil {
		totalMalformed.Add(1)
		d.logger.Debugf("dht: malformed packet from %v: %v", pkt.raddr, err)
		return
	}
	from, err := endpointFromUDPAddr(pkt.raddr)
	if err != nil {
		totalMalformed.Add(1)
		return
	}
	switch msg.Type {
	case "q":
		d.handleQuery(msg, from, now)
	case "r":
		d.handleResponse(msg, from, now)
	case "e":
		d.handleError(msg, from)
	}
}

func (d *DHT) handleQuery(msg *message, from Endpoint, now time.Time) {
	totalInboundRequests.Add(1)
	id, err := dictID(msg.Args)
	if err != nil {
		totalTypeMismatchPkts.Add(1)
		return
	}
	d.observeContact(id, from, now)

	switch msg.Method {
	case MethodPing:
		d.replyPing(msg.TID, from)
	case MethodFindNode:
		d.replyFindNode(msg, from)
	case MethodGetPeers:
		d.replyGetPeers(msg, from, now)
	case MethodSampleInfohashes:
		d.replySampleInfohashes(msg, from)
	default:
		totalUnknownMethod.Add(1)
		b, err := BuildErrorResponse(msg.TID, ErrCodeMethodUnknown, "method unknown: "+msg.Method)
		if err == nil {
			d.sendRaw(from, b)
		}
	}
}

func (d *DHT) sendRaw(to Endpoint, payload []byte) {
	if err := sendMsg(d.conn, to, payload); err != nil {
		totalSendFailures.Add(1)
		d.logger.Debugf("dht: reply send to %v failed: %v", to, err)
	}
}

func (d *DHT) replyPing(tid string, to Endpoint) {
	b, err := BuildPingResponse(tid, d.ownID)
	if err != nil {
		return
	}
	d.sendRaw(to, b)
}

func (d *DHT) replyFindNode(msg *message, to Endpoint) {
	target, err := dictNodeID(msg.Args, "target")
	if err != nil {
		totalTypeMismatchPkts.Add(1)
		if b, berr := BuildErrorResponse(msg.TID, ErrCodeProtocol, "bad target"); berr == nil {
			d.sendRaw(to, b)
		}
		return
	}
	nodes := d.rt.ClosestNodes(target, DefaultK)
	b, err := BuildFindNodeResponse(msg.TID, d.ownID, nodes)
	if err != nil {
		return
	}
	d.sendRaw(to, b)
}

func (d *DHT) replyGetPeers(msg *message, to Endpoint, now time.Time) {
	ih, err := dictNodeID(msg.Args, "info_hash")
	if err != nil {
		totalTypeMismatchPkts.Add(1)
		if b, berr := BuildErrorResponse(msg.TID, ErrCodeProtocol, "bad info_hash"); berr == nil {
			d.sendRaw(to, b)
		}
		return
	}
	if ev, ok := d.discovery.Observe(ih, to, TagGetPeers, now); ok {
		d.fireDiscovery(ev)
	}
	token := d.hostToken(to, d.tokenSecrets[0])
	nodes := d.rt.ClosestNodes(ih, DefaultK)
	b, err := BuildGetPeersResponseWithNodes(msg.TID, d.ownID, token, nodes)
	if err != nil {
		return
	}
	d.sendRaw(to, b)
}

func (d *DHT) replySampleInfohashes(msg *message, to Endpoint) {
	target, err := dictNodeID(msg.Args, "target")
	if err != nil {
		totalTypeMismatchPkts.Add(1)
		if b, berr := BuildErrorResponse(msg.TID, ErrCodeProtocol, "bad target"); berr == nil {
			d.sendRaw(to, b)
		}
		return
	}
	nodes := d.rt.ClosestNodes(target, DefaultK)
	samples := d.discovery.Sample(MaxSamples)
	b, err := BuildSampleInfohashesResponse(msg.TID, d.ownID, nodes, samples, bep51Interval, int64(d.discovery.Len()))
	if err != nil {
		return
	}
	d.sendRaw(to, b)
	totalSamplesSent.Add(int64(len(samples)))
}

func (d *DHT) handleResponse(msg *message, from Endpoint, now time.Time) {
	tx, ok := d.tx.Resolve(msg.TID)
	if !ok {
		d.logger.Debugf("dht: unmatched response from %v", from)
		return
	}
	if !tx.to.Equal(from) {
		// Responses are matched by tid AND source endpoint; a mismatch here
		// means someone other than the queried node is answering.
		d.logger.Debugf("dht: response source mismatch for tid %q: expected %v got %v", tx.tid, tx.to, from)
		return
	}
	responderID, err := dictID(msg.Resp)
	if err != nil {
		totalTypeMismatchPkts.Add(1)
		return
	}
	d.observeContact(responderID, from, now)

	switch tx.method {
	case MethodPing:
		d.handlePingResponse(tx)
	case MethodFindNode:
		d.handleFindNodeResponse(tx, msg, now)
	case MethodGetPeers:
		d.handleGetPeersResponse(tx, msg, from, now)
	case MethodSampleInfohashes:
		d.handleSampleInfohashesResponse(tx, msg, now)
	}
}

func (d *DHT) handleError(msg *message, from Endpoint) {
	d.tx.Resolve(msg.TID)
	d.logger.Debugf("dht: error response from %v: %d %s", from, msg.ErrCode, msg.ErrMsg)
}

func (d *DHT) handlePingResponse(tx *transaction) {
	if lruID, ok := d.pendingProbes[tx.tid]; ok {
		delete(d.pendingProbes, tx.tid)
		d.rt.ResolvePendingReplacement(lruID, true)
	}
}

func (d *DHT) insertNodes(nodes []Contact, now time.Time) {
	for _, c := range nodes {
		c.LastSeen = now
		if out := d.rt.Insert(c); out == PendingPing {
			d.probeLRU(c.ID)
		}
	}
}

func (d *DHT) handleFindNodeResponse(tx *transaction, msg *message, now time.Time) {
	raw, err := dictBytes(msg.Resp, "nodes")
	if err != nil {
		return
	}
	nodes, err := unpackNodes(raw)
	if err != nil {
		totalTypeMismatchPkts.Add(1)
		return
	}
	d.insertNodes(nodes, now)
	if d.activeScrape != nil {
		d.activeScrape.addCandidates(nodes)
	}
}

func (d *DHT) handleGetPeersResponse(tx *transaction, msg *message, from Endpoint, now time.Time) {
	if valuesVal, ok := msg.Resp["values"]; ok {
		if list, err := valuesVal.AsList(); err == nil {
			raw := make([][]byte, 0, len(list))
			for _, v := range list {
				if b, err := v.AsBytes(); err == nil {
					raw = append(raw, b)
				}
			}
			if peers, err := unpackPeers(raw); err == nil {
				if d.activeScrape != nil && d.activeScrape.target == tx.ih {
					d.activeScrape.addPeers(peers)
				}
			}
		}
	}
	if rawNodes, err := dictBytes(msg.Resp, "nodes"); err == nil {
		if nodes, err := unpackNodes(rawNodes); err == nil {
			d.insertNodes(nodes, now)
			if d.activeScrape != nil && d.activeScrape.target == tx.ih {
				d.activeScrape.addCandidates(nodes)
			}
		}
	}
	if d.cfg.BEP51Enabled {
		if rawSamples, err := dictBytes(msg.Resp, "samples"); err == nil {
			d.absorbSamples(rawSamples, from, now)
		}
	}
}

func (d *DHT) handleSampleInfohashesResponse(tx *transaction, msg *message, now time.Time) {
	if rawNodes, err := dictBytes(msg.Resp, "nodes"); err == nil {
		if nodes, err := unpackNodes(rawNodes); err == nil {
			d.insertNodes(nodes, now)
		}
	}
	if rawSamples, err := dictBytes(msg.Resp, "samples"); err == nil {
		d.absorbSamples(rawSamples, tx.to, now)
	}
}

func (d *DHT) absorbSamples(raw []byte, from Endpoint, now time.Time) {
	samples, err := unpackSamples(raw)
	if err != nil {
		totalTypeMismatchPkts.Add(1)
		return
	}
	totalSamplesReceived.Add(int64(len(samples)))
	for _, ih := range samples {
		if ev, ok := d.discovery.Observe(ih, from, TagBEP51, now); ok {
			d.fireDiscovery(ev)
		}
	}
}

// --- scrape mode ---

// scrapeState tracks one ScrapePeers call's candidate/queried/peer sets. It
// is attached to DHT.activeScrape for the duration of the call so inbound
// response handling can feed results back without threading extra state
// through every dispatch function.
type scrapeState struct {
	target    InfoHash
	queried   map[NodeID]bool
	known     map[NodeID]Contact
	order     []NodeID // known IDs, kept sorted by distance to target
	peersSeen map[string]bool
	peers     []Endpoint
}

func newScrapeState(target InfoHash, seed []Contact) *scrapeState {
	s := &scrapeState{
		target:    target,
		queried:   make(map[NodeID]bool),
		known:     make(map[NodeID]Contact),
		peersSeen: make(map[string]bool),
	}
	s.addCandidates(seed)
	return s
}

func (s *scrapeState) addCandidates(cs []Contact) {
	changed := false
	for _, c := range cs {
		if c.ID == s.target {
			continue
		}
		if _, ok := s.known[c.ID]; ok {
			continue
		}
		s.known[c.ID] = c
		s.order = append(s.order, c.ID)
		changed = true
	}
	if changed {
		sort.Slice(s.order, func(i, j int) bool {
			return Less(Distance(s.order[i], s.target), Distance(s.order[j], s.target))
		})
	}
}

func (s *scrapeState) addPeers(peers []Endpoint) {
	for _, p := range peers {
		key := p.String()
		if s.peersSeen[key] {
			continue
		}
		s.peersSeen[key] = true
		s.peers = append(s.peers, p)
	}
}

func (s *scrapeState) nextBatch(n int) []Contact {
	var batch []Contact
	for _, id := range s.order {
		if len(batch) >= n {
			break
		}
		if s.queried[id] {
			continue
		}
		batch = append(batch, s.known[id])
	}
	return batch
}

func allOnesID() NodeID {
	var id NodeID
	for i := range id {
		id[i] = 0xff
	}
	return id
}

// bestDistance returns the smallest distance-to-target among every
// currently known candidate, queried or not.
func (s *scrapeState) bestDistance() NodeID {
	best := allOnesID()
	for _, id := range s.order {
		if d := Distance(id, s.target); Less(d, best) {
			best = d
		}
	}
	return best
}

// ScrapePeers runs the iterative get_peers lookup (spec §4.5) and returns
// the deduplicated peer set, ordered by first appearance. Start must have
// been called first.
func (d *DHT) ScrapePeers(ih InfoHash, timeout time.Duration) []Endpoint {
	deadline := time.Now().Add(timeout)
	state := newScrapeState(ih, d.rt.ClosestNodes(ih, alpha))
	d.activeScrape = state
	defer func() { d.activeScrape = nil }()

	bestSoFar := state.bestDistance()
	for time.Now().Before(deadline) {
		batch := state.nextBatch(alpha)
		if len(batch) == 0 {
			break // candidate set exhausted
		}
		for _, c := range batch {
			state.queried[c.ID] = true
			d.sendGetPeers(c.Endpoint, ih)
		}

		roundBudget := d.cfg.QueryTimeout
		if remaining := time.Until(deadline); remaining < roundBudget {
			roundBudget = remaining
		}
		d.drainInbound(roundBudget)
		d.reapExpired(time.Now())

		next := state.bestDistance()
		if !Less(next, bestSoFar) {
			break // a full round produced nothing strictly closer
		}
		bestSoFar = next
	}
	return state.peers
}

// --- crawl mode ---

func isActiveQueryTick(tick, queryInterval int) bool {
	if queryInterval < 1 {
		queryInterval = 1
	}
	return tick%queryInterval == 0
}

func isReapTick(tick int) bool {
	return tick%reapEveryTicks == 0
}

func isSecretRotateTick(tick int) bool {
	return tick%secretRotateTicks == 0
}

// CrawlNetwork runs the crawl tick loop (spec §4.5) for duration (0 means
// until Stop is called), observing inbound traffic and periodically
// querying to keep the routing table populated and visible. Start must have
// been called first.
func (d *DHT) CrawlNetwork(duration time.Duration, queryInterval int) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	hasDeadline := duration > 0
	deadline := time.Now().Add(duration)
	tick := 0

	for {
		select {
		case <-d.stop:
			return
		case now := <-ticker.C:
			tick++
			d.drainInbound(100 * time.Millisecond)

			if isActiveQueryTick(tick, queryInterval) {
				target, err := GenerateNodeID()
				if err == nil {
					for _, c := range d.rt.ClosestNodes(target, activeQueryBatch) {
						d.sendFindNode(c.Endpoint, target)
					}
				}
			}
			if isReapTick(tick) {
				d.reapExpired(now)
			}
			if isSecretRotateTick(tick) {
				d.rotateTokenSecret()
			}
			d.emitProgress(tick)

			if hasDeadline && !now.Before(deadline) {
				return
			}
		}
	}
}

func (d *DHT) emitProgress(tick int) {
	if d.cfg.OnProgress == nil {
		return
	}
	elapsed := time.Duration(tick) * time.Second
	var rate float64
	if minutes := elapsed.Minutes(); minutes > 0 {
		rate = float64(d.discovery.Len()) / minutes
	}
	d.cfg.OnProgress(Stats{
		Elapsed:              elapsed,
		UniqueInfoHashes:     d.discovery.Len(),
		DiscoveriesPerMinute: rate,
		TotalInboundRequests: totalInboundRequests.Value(),
		RoutingTableSize:     d.rt.Len(),
		SamplesSent:          totalSamplesSent.Value(),
		SamplesReceived:      totalSamplesReceived.Value(),
	})
}

var (
	totalInboundPackets   = expvar.NewInt("totalInboundPackets")
	totalInboundRequests  = expvar.NewInt("totalInboundRequests")
	totalMalformed        = expvar.NewInt("totalMalformed")
	totalTypeMismatchPkts = expvar.NewInt("totalTypeMismatchPkts")
	totalUnknownMethod    = expvar.NewInt("totalUnknownMethod")
	totalTimeouts         = expvar.NewInt("totalTimeouts")
	totalSendFailures     = expvar.NewInt("totalSendFailures")
	totalSamplesSent      = expvar.NewInt("totalSamplesSent")
	totalSamplesReceived  = expvar.NewInt("totalSamplesReceived")
)
