package dht

// Transaction registry: correlates outbound queries with their eventual
// response or timeout via the "t" (transaction id) field. The teacher
// (nictuku/dht) keeps pending queries on each remoteNode instead of in one
// table (see krpc.go's remoteNode.pendingQueries); this engine has a single
// owning goroutine (see dht.go) so a flat map keyed by tid, reaped on a
// timer, is simpler and is what the map-based legacy routing table already
// did for its own bookkeeping.

import (
	"crypto/rand"
	"fmt"
	"time"
)

// transaction records an in-flight query awaiting a response.
type transaction struct {
	tid      string
	method   string
	target   NodeID   // id being sought, when applicable (find_node/sample_infohashes)
	ih       InfoHash // info_hash being sought, when applicable (get_peers)
	to       Endpoint
	deadline time.Time
	// A transaction's response or timeout is handled by the engine's single
	// event loop (handleResponse, reapExpired), never concurrently with
	// anything else touching engine state.
}

// transactionTable is a flat, tid-keyed registry of in-flight queries. Not
// safe for concurrent use: owned exclusively by the DHT engine's event
// loop goroutine.
type transactionTable struct {
	byTID map[string]*transaction
}

func newTransactionTable() *transactionTable {
	return &transactionTable{byTID: make(map[string]*transaction)}
}

// newTID generates a 2-byte transaction id not currently in use. Collisions
// are vanishingly unlikely (1/65536 per attempt) but we retry rather than
// risk silently clobbering an in-flight transaction.
func (tt *transactionTable) newTID() (string, error) {
	for attempt := 0; attempt < 8; attempt++ {
		var b [2]byte
		if _, err := rand.Read(b[:]); err != nil {
			return "", fmt.Errorf("dht: transaction: generate tid: %w", err)
		}
		tid := string(b[:])
		if _, exists := tt.byTID[tid]; !exists {
			return tid, nil
		}
	}
	return "", fmt.Errorf("dht: transaction: could not find a free transaction id")
}

// Register creates and stores a new transaction with the given deadline.
func (tt *transactionTable) Register(method string, target NodeID, ih InfoHash, to Endpoint, timeout time.Duration) (*transaction, error) {
	tid, err := tt.newTID()
	if err != nil {
		return nil, err
	}
	tx := &transaction{
		tid:      tid,
		method:   method,
		target:   target,
		ih:       ih,
		to:       to,
		deadline: time.Now().Add(timeout),
	}
	tt.byTID[tid] = tx
	return tx, nil
}

// Resolve looks up and removes the transaction for tid, as happens when a
// response or error arrives.
func (tt *transactionTable) Resolve(tid string) (*transaction, bool) {
	tx, ok := tt.byTID[tid]
	if ok {
		delete(tt.byTID, tid)
	}
	return tx, ok
}

// ReapExpired removes and returns every transaction whose deadline has
// passed as of now, for the engine to treat as timeouts.
func (tt *transactionTable) ReapExpired(now time.Time) []*transaction {
	var expired []*transaction
	for tid, tx := range tt.byTID {
		if now.After(tx.deadline) {
			expired = append(expired, tx)
			delete(tt.byTID, tid)
		}
	}
	return expired
}

// Len reports the number of in-flight transactions.
func (tt *transactionTable) Len() int {
	return len(tt.byTID)
}
