package dht

// KRPC is the query/response/error wire protocol layer (BEP 5), plus the
// BEP 51 sample_infohashes extension. Everything here is built on top of
// the package's own hand-rolled bencode codec (see bencode.go) rather than
// a reflection-based marshaler, since every message on the wire needs to
// round-trip through the same tagged Value shapes the rest of the engine
// inspects.

import (
	"fmt"
)

// Query method names, as they appear in the "q" field.
const (
	MethodPing             = "ping"
	MethodFindNode         = "find_node"
	MethodGetPeers         = "get_peers"
	MethodSampleInfohashes = "sample_infohashes"
)

// KRPC error codes (BEP 5 §"Errors", plus BEP 51's reuse of the same set).
const (
	ErrCodeGeneric       = 201
	ErrCodeServer        = 202
	ErrCodeProtocol      = 203
	ErrCodeMethodUnknown = 204
)

const (
	compactNodeLen = 26 // 20-byte id + 4-byte IPv4 + 2-byte port
	compactPeerLen = 6  // 4-byte IPv4 + 2-byte port
	// MaxSamples is the most info_hash samples a sample_infohashes response
	// will ever carry (BEP 51 leaves the cap to the implementation).
	MaxSamples = 20
)

// packNode serializes a contact into its 26-byte compact form.
func packNode(c Contact) []byte {
	b := make([]byte, compactNodeLen)
	copy(b[0:IDLen], c.ID[:])
	copy(b[IDLen:IDLen+4], c.Endpoint.IP.To4())
	b[IDLen+4] = byte(c.Endpoint.Port >> 8)
	b[IDLen+5] = byte(c.Endpoint.Port)
	return b
}

// packNodes concatenates the compact form of every contact in cs.
func packNodes(cs []Contact) []byte {
	b := make([]byte, 0, len(cs)*compactNodeLen)
	for _, c := range cs {
		b = append(b, packNode(c)...)
	}
	return b
}

// unpackNodes parses a concatenated compact-node string back into contacts.
// Per spec, its length must be a multiple of 26.
func unpackNodes(b []byte) ([]Contact, error) {
	if len(b)%compactNodeLen != 0 {
		return nil, fmt.Errorf("dht: krpc: compact nodes length %d not a multiple of %d", len(b), compactNodeLen)
	}
	out := make([]Contact, 0, len(b)/compactNodeLen)
	for i := 0; i < len(b); i += compactNodeLen {
		chunk := b[i : i+compactNodeLen]
		id, err := NodeIDFromBytes(chunk[0:IDLen])
		if err != nil {
			return nil, fmt.Errorf("dht: krpc: compact node id: %w", err)
		}
		ip := append([]byte(nil), chunk[IDLen:IDLen+4]...)
		port := int(chunk[IDLen+4])<<8 | int(chunk[IDLen+5])
		ep, err := NewEndpoint(ip, port)
		if err != nil {
			return nil, fmt.Errorf("dht: krpc: compact node endpoint: %w", err)
		}
		out = append(out, Contact{ID: id, Endpoint: ep})
	}
	return out, nil
}

// packPeer serializes an endpoint into its 6-byte compact peer form.
func packPeer(e Endpoint) []byte {
	b := make([]byte, compactPeerLen)
	copy(b[0:4], e.IP.To4())
	b[4] = byte(e.Port >> 8)
	b[5] = byte(e.Port)
	return b
}

func unpackPeer(b []byte) (Endpoint, error) {
	if len(b) != compactPeerLen {
		return Endpoint{}, fmt.Errorf("dht: krpc: compact peer must be %d bytes, got %d", compactPeerLen, len(b))
	}
	ip := append([]byte(nil), b[0:4]...)
	port := int(b[4])<<8 | int(b[5])
	return NewEndpoint(ip, port)
}

func unpackPeers(values [][]byte) ([]Endpoint, error) {
	out := make([]Endpoint, 0, len(values))
	for _, v := range values {
		ep, err := unpackPeer(v)
		if err != nil {
			return nil, err
		}
		out = append(out, ep)
	}
	return out, nil
}

// packSamples concatenates up to MaxSamples info_hashes, 20 bytes each.
func packSamples(hashes []InfoHash) []byte {
	n := len(hashes)
	if n > MaxSamples {
		n = MaxSamples
	}
	b := make([]byte, 0, n*IDLen)
	for i := 0; i < n; i++ {
		b = append(b, hashes[i][:]...)
	}
	return b
}

func unpackSamples(b []byte) ([]InfoHash, error) {
	if len(b)%IDLen != 0 {
		return nil, fmt.Errorf("dht: krpc: samples length %d not a multiple of %d", len(b), IDLen)
	}
	out := make([]InfoHash, 0, len(b)/IDLen)
	for i := 0; i < len(b); i += IDLen {
		ih, err := NodeIDFromBytes(b[i : i+IDLen])
		if err != nil {
			return nil, err
		}
		out = append(out, ih)
	}
	return out, nil
}

// message is the generic shape of anything decoded off the wire: a
// transaction id, a type ("q"/"r"/"e"), and either query args, a response
// payload, or an error body, depending on the type.
type message struct {
	TID    string
	Type   string // "q", "r", or "e"
	Method string // set for queries
	Args   map[string]Value
	Resp   map[string]Value
	ErrMsg string
	ErrCode int64
}

// buildQuery bencodes a query message: {"t": tid, "y": "q", "q": method, "a": args}.
func buildQuery(tid string, method string, args map[string]Value) ([]byte, error) {
	return Encode(Dict(map[string]Value{
		"t": String(tid),
		"y": String("q"),
		"q": String(method),
		"a": Dict(args),
	}))
}

// buildResponse bencodes a response message: {"t": tid, "y": "r", "r": resp}.
func buildResponse(tid string, resp map[string]Value) ([]byte, error) {
	return Encode(Dict(map[string]Value{
		"t": String(tid),
		"y": String("r"),
		"r": Dict(resp),
	}))
}

// buildError bencodes an error message: {"t": tid, "y": "e", "e": [code, msg]}.
func buildError(tid string, code int64, msg string) ([]byte, error) {
	return Encode(Dict(map[string]Value{
		"t": String(tid),
		"y": String("e"),
		"e": List([]Value{Int(code), String(msg)}),
	}))
}

func BuildPingQuery(tid string, id NodeID) ([]byte, error) {
	return buildQuery(tid, MethodPing, map[string]Value{"id": Bytes(id[:])})
}

func BuildPingResponse(tid string, id NodeID) ([]byte, error) {
	return buildResponse(tid, map[string]Value{"id": Bytes(id[:])})
}

func BuildFindNodeQuery(tid string, id, target NodeID) ([]byte, error) {
	return buildQuery(tid, MethodFindNode, map[string]Value{
		"id":     Bytes(id[:]),
		"target": Bytes(target[:]),
	})
}

func BuildFindNodeResponse(tid string, id NodeID, nodes []Contact) ([]byte, error) {
	return buildResponse(tid, map[string]Value{
		"id":    Bytes(id[:]),
		"nodes": Bytes(packNodes(nodes)),
	})
}

func BuildGetPeersQuery(tid string, id NodeID, ih InfoHash) ([]byte, error) {
	return buildQuery(tid, MethodGetPeers, map[string]Value{
		"id":        Bytes(id[:]),
		"info_hash": Bytes(ih[:]),
	})
}

// BuildGetPeersResponseWithValues replies with the `values` form (we know
// peers for this info_hash); BuildGetPeersResponseWithNodes replies with the
// `nodes` form (we don't, here are closer contacts instead).
func BuildGetPeersResponseWithValues(tid string, id NodeID, token string, peers []Endpoint) ([]byte, error) {
	values := make([]Value, 0, len(peers))
	for _, p := range peers {
		values = append(values, Bytes(packPeer(p)))
	}
	return buildResponse(tid, map[string]Value{
		"id":     Bytes(id[:]),
		"token":  String(token),
		"values": List(values),
	})
}

func BuildGetPeersResponseWithNodes(tid string, id NodeID, token string, nodes []Contact) ([]byte, error) {
	return buildResponse(tid, map[string]Value{
		"id":    Bytes(id[:]),
		"token": String(token),
		"nodes": Bytes(packNodes(nodes)),
	})
}

func BuildSampleInfohashesQuery(tid string, id, target NodeID) ([]byte, error) {
	return buildQuery(tid, MethodSampleInfohashes, map[string]Value{
		"id":     Bytes(id[:]),
		"target": Bytes(target[:]),
	})
}

func BuildSampleInfohashesResponse(tid string, id NodeID, nodes []Contact, samples []InfoHash, interval int64, num int64) ([]byte, error) {
	return buildResponse(tid, map[string]Value{
		"id":       Bytes(id[:]),
		"nodes":    Bytes(packNodes(nodes)),
		"samples":  Bytes(packSamples(samples)),
		"interval": Int(interval),
		"num":      Int(num),
	})
}

func BuildErrorResponse(tid string, code int64, msg string) ([]byte, error) {
	return buildError(tid, code, msg)
}

// parseMessage decodes a raw UDP payload into the generic message shape.
func parseMessage(data []byte) (*message, error) {
	v, _, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("dht: krpc: decode: %w", err)
	}
	tidVal, ok, err := v.Get("t")
	if err != nil || !ok {
		return nil, fmt.Errorf("dht: krpc: message missing transaction id")
	}
	tidBytes, err := tidVal.AsBytes()
	if err != nil {
		return nil, fmt.Errorf("dht: krpc: transaction id: %w", err)
	}
	yVal, ok, err := v.Get("y")
	if err != nil || !ok {
		return nil, fmt.Errorf("dht: krpc: message missing type field")
	}
	yBytes, err := yVal.AsBytes()
	if err != nil {
		return nil, fmt.Errorf("dht: krpc: type field: %w", err)
	}
	m := &message{TID: string(tidBytes), Type: string(yBytes)}

	switch m.Type {
	case "q":
		qVal, ok, err := v.Get("q")
		if err != nil || !ok {
			return nil, fmt.Errorf("dht: krpc: query missing method field")
		}
		qBytes, err := qVal.AsBytes()
		if err != nil {
			return nil, fmt.Errorf("dht: krpc: method field: %w", err)
		}
		m.Method = string(qBytes)
		aVal, ok, err := v.Get("a")
		if err != nil || !ok {
			return nil, fmt.Errorf("dht: krpc: query missing args")
		}
		m.Args, err = aVal.AsDict()
		if err != nil {
			return nil, fmt.Errorf("dht: krpc: args: %w", err)
		}
	case "r":
		rVal, ok, err := v.Get("r")
		if err != nil || !ok {
			return nil, fmt.Errorf("dht: krpc: response missing r field")
		}
		m.Resp, err = rVal.AsDict()
		if err != nil {
			return nil, fmt.Errorf("dht: krpc: response body: %w", err)
		}
	case "e":
		eVal, ok, err := v.Get("e")
		if err != nil || !ok {
			return nil, fmt.Errorf("dht: krpc: error message missing e field")
		}
		eList, err := eVal.AsList()
		if err != nil || len(eList) != 2 {
			return nil, fmt.Errorf("dht: krpc: error body malformed")
		}
		code, err := eList[0].AsInt()
		if err != nil {
			return nil, fmt.Errorf("dht: krpc: error code: %w", err)
		}
		msgBytes, err := eList[1].AsBytes()
		if err != nil {
			return nil, fmt.Errorf("dht: krpc: error message: %w", err)
		}
		m.ErrCode = code
		m.ErrMsg = string(msgBytes)
	default:
		return nil, fmt.Errorf("dht: krpc: unknown message type %q", m.Type)
	}
	return m, nil
}

// dictID extracts and validates the "id" field of a query's args or a
// response's body.
func dictID(d map[string]Value) (NodeID, error) {
	v, ok := d["id"]
	if !ok {
		return NodeID{}, fmt.Errorf("dht: krpc: missing id field")
	}
	b, err := v.AsBytes()
	if err != nil {
		return NodeID{}, fmt.Errorf("dht: krpc: id field: %w", err)
	}
	return NodeIDFromBytes(b)
}

func dictNodeID(d map[string]Value, key string) (NodeID, error) {
	v, ok := d[key]
	if !ok {
		return NodeID{}, fmt.Errorf("dht: krpc: missing %s field", key)
	}
	b, err := v.AsBytes()
	if err != nil {
		return NodeID{}, fmt.Errorf("dht: krpc: %s field: %w", key, err)
	}
	return NodeIDFromBytes(b)
}

func dictBytes(d map[string]Value, key string) ([]byte, error) {
	v, ok := d[key]
	if !ok {
		return nil, fmt.Errorf("dht: krpc: missing %s field", key)
	}
	return v.AsBytes()
}
