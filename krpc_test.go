package dht

import (
	"bytes"
	"net"
	"testing"
)

func TestBuildPingQueryLiteral(t *testing.T) {
	var id NodeID
	for i := range id {
		id[i] = 'A'
	}
	got, err := BuildPingQuery("aa", id)
	if err != nil {
		t.Fatalf("BuildPingQuery: %v", err)
	}
	want := "d1:ad2:id20:AAAAAAAAAAAAAAAAAAAAe1:q4:ping1:t2:aa1:y1:qe"
	if string(got) != want {
		t.Fatalf("BuildPingQuery = %q, want %q", got, want)
	}
}

func TestBuildPingResponseLiteral(t *testing.T) {
	var id NodeID
	for i := range id {
		id[i] = 'B'
	}
	got, err := BuildPingResponse("aa", id)
	if err != nil {
		t.Fatalf("BuildPingResponse: %v", err)
	}
	want := "d1:rd2:id20:BBBBBBBBBBBBBBBBBBBBe1:t2:aa1:y1:re"
	if string(got) != want {
		t.Fatalf("BuildPingResponse = %q, want %q", got, want)
	}
}

func TestParsePingQueryRoundTrip(t *testing.T) {
	var id NodeID
	for i := range id {
		id[i] = 'A'
	}
	raw, err := BuildPingQuery("aa", id)
	if err != nil {
		t.Fatalf("BuildPingQuery: %v", err)
	}
	m, err := parseMessage(raw)
	if err != nil {
		t.Fatalf("parseMessage: %v", err)
	}
	if m.Type != "q" || m.Method != MethodPing || m.TID != "aa" {
		t.Fatalf("parsed = %+v", m)
	}
	gotID, err := dictID(m.Args)
	if err != nil {
		t.Fatalf("dictID: %v", err)
	}
	if gotID != id {
		t.Fatalf("id = %x, want %x", gotID, id)
	}
}

func TestCompactNodePackLiteral(t *testing.T) {
	var id NodeID
	for i := range id {
		id[i] = 'A'
	}
	ep, err := NewEndpoint(net.ParseIP("192.168.1.1"), 6881)
	if err != nil {
		t.Fatalf("NewEndpoint: %v", err)
	}
	got := packNode(Contact{ID: id, Endpoint: ep})
	want := append(append([]byte(nil), bytes.Repeat([]byte("A"), 20)...), 0xc0, 0xa8, 0x01, 0x01, 0x1a, 0xe1)
	if !bytes.Equal(got, want) {
		t.Fatalf("packNode = %x, want %x", got, want)
	}
}

func TestUnpackNodesRoundTrip(t *testing.T) {
	ep1, _ := NewEndpoint(net.ParseIP("10.0.0.1"), 6881)
	ep2, _ := NewEndpoint(net.ParseIP("10.0.0.2"), 6882)
	cs := []Contact{
		{ID: mustID(0x01), Endpoint: ep1},
		{ID: mustID(0x02), Endpoint: ep2},
	}
	packed := packNodes(cs)
	got, err := unpackNodes(packed)
	if err != nil {
		t.Fatalf("unpackNodes: %v", err)
	}
	if len(got) != 2 || got[0].ID != cs[0].ID || got[1].Endpoint.String() != ep2.String() {
		t.Fatalf("unpackNodes = %+v", got)
	}
}

func TestUnpackNodesRejectsBadLength(t *testing.T) {
	if _, err := unpackNodes(make([]byte, 27)); err == nil {
		t.Fatalf("expected error for nodes length not a multiple of 26")
	}
}

func TestUnpackSamplesRejectsBadLength(t *testing.T) {
	if _, err := unpackSamples(make([]byte, 21)); err == nil {
		t.Fatalf("expected error for samples length not a multiple of 20")
	}
}

func TestPackSamplesClampsToTwenty(t *testing.T) {
	hashes := make([]InfoHash, 50)
	for i := range hashes {
		hashes[i] = mustID(byte(i))
	}
	packed := packSamples(hashes)
	if len(packed) != MaxSamples*IDLen {
		t.Fatalf("packSamples length = %d, want %d", len(packed), MaxSamples*IDLen)
	}
}

func TestBuildSampleInfohashesResponse(t *testing.T) {
	var id NodeID
	for i := range id {
		id[i] = 0x01
	}
	hashes := []InfoHash{mustID(0xaa), mustID(0xbb)}
	raw, err := BuildSampleInfohashesResponse("zz", id, nil, hashes, 21600, 50)
	if err != nil {
		t.Fatalf("BuildSampleInfohashesResponse: %v", err)
	}
	m, err := parseMessage(raw)
	if err != nil {
		t.Fatalf("parseMessage: %v", err)
	}
	num, err := m.Resp["num"].AsInt()
	if err != nil || num != 50 {
		t.Fatalf("num = %v, err=%v", num, err)
	}
	samplesBytes, err := dictBytes(m.Resp, "samples")
	if err != nil {
		t.Fatalf("samples: %v", err)
	}
	samples, err := unpackSamples(samplesBytes)
	if err != nil || len(samples) != 2 {
		t.Fatalf("samples = %v, err=%v", samples, err)
	}
}

func TestBuildErrorResponse(t *testing.T) {
	raw, err := BuildErrorResponse("zz", ErrCodeMethodUnknown, "method unknown")
	if err != nil {
		t.Fatalf("BuildErrorResponse: %v", err)
	}
	m, err := parseMessage(raw)
	if err != nil {
		t.Fatalf("parseMessage: %v", err)
	}
	if m.Type != "e" || m.ErrCode != ErrCodeMethodUnknown {
		t.Fatalf("parsed error = %+v", m)
	}
}

func TestParseMessageRejectsUnknownType(t *testing.T) {
	raw, err := Encode(Dict(map[string]Value{
		"t": String("zz"),
		"y": String("z"),
	}))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := parseMessage(raw); err == nil {
		t.Fatalf("expected error for unknown message type")
	}
}
