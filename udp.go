package dht

// UDP socket plumbing: binding, the background read loop, and outbound
// writes. Grounded on the teacher's krpc.go (packetType, listen,
// readFromSocket, sendMsg), adapted to the Endpoint/arena types this engine
// uses instead of raw net.UDPAddr/bencode-go marshalling.

import (
	"fmt"
	"net"
	"time"

	log "github.com/golang/glog"
)

// packetType is a single inbound datagram handed from the read goroutine to
// the engine's event loop.
type packetType struct {
	b     []byte
	raddr *net.UDPAddr
}

// listenUDP binds a UDP4 socket on port. If that fails, it retries once on
// an OS-chosen ephemeral port (per spec's BindFailure policy) before giving
// up.
func listenUDP(port int) (*net.UDPConn, int, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: port})
	if err != nil {
		log.Warningf("dht: bind on port %d failed (%v), falling back to an ephemeral port", port, err)
		conn, err = net.ListenUDP("udp4", &net.UDPAddr{Port: 0})
		if err != nil {
			return nil, 0, fmt.Errorf("dht: bind failed on configured port %d and on an ephemeral port: %w", port, err)
		}
	}
	return conn, conn.LocalAddr().(*net.UDPAddr).Port, nil
}

// readFromSocket pulls datagrams off socket using arena-backed buffers and
// hands them to out, until stop is closed. Reads use a short deadline so the
// goroutine notices stop promptly instead of blocking forever in a read
// nobody will ever satisfy.
func readFromSocket(socket *net.UDPConn, out chan packetType, a *arena, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		b := a.Pop()
		socket.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		n, addr, err := socket.ReadFromUDP(b)
		if err != nil {
			a.Push(b)
			if ne, ok := err.(net.Error); !ok || !ne.Timeout() {
				log.V(3).Infof("dht: socket read error: %v", err)
			}
			continue
		}
		b = b[:n]
		select {
		case out <- packetType{b: b, raddr: addr}:
		case <-stop:
			return
		}
	}
}

// sendMsg writes payload to the endpoint to over conn.
func sendMsg(conn *net.UDPConn, to Endpoint, payload []byte) error {
	_, err := conn.WriteToUDP(payload, to.UDPAddr())
	return err
}

func endpointFromUDPAddr(addr *net.UDPAddr) (Endpoint, error) {
	return NewEndpoint(addr.IP, addr.Port)
}
