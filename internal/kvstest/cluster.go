package kvstest

import (
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/anna-kv/client/lattice"
	"github.com/anna-kv/client/protocol"
	"github.com/anna-kv/client/serializer"
	"github.com/anna-kv/client/transport"
)

// Cluster is an in-process routing tier plus storage tier. It listens on
// loopback ports chosen by the kernel; ClientConfig points a client at
// it.
type Cluster struct {
	Store *Store

	serializer  serializer.ISerializer
	routingLis  net.Listener
	storageLis  []net.Listener
	threads     []protocol.KvsThread
	threadAddrs map[protocol.KvsThread]string

	mu     sync.Mutex
	assign func(key protocol.ClientKey) []protocol.KvsThread
	reply  func(req *protocol.ClientRequest) *protocol.TcpMessage
	conns  []net.Conn

	closed chan struct{}
	wg     sync.WaitGroup
}

// NewCluster starts a routing listener and one storage listener per
// simulated storage thread. By default every thread owns every key.
func NewCluster(numThreads int, s serializer.ISerializer) (*Cluster, error) {
	c := &Cluster{
		Store:       NewStore(),
		serializer:  s,
		threadAddrs: make(map[protocol.KvsThread]string),
		closed:      make(chan struct{}),
	}

	for i := 0; i < numThreads; i++ {
		lis, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			c.Close()
			return nil, err
		}
		thread := protocol.KvsThread{NodeID: "kvs-test", ThreadID: uint32(i)}
		c.storageLis = append(c.storageLis, lis)
		c.threads = append(c.threads, thread)
		c.threadAddrs[thread] = lis.Addr().String()

		c.wg.Add(1)
		go c.serve(lis, c.handleStorage)
	}

	routingLis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		c.Close()
		return nil, err
	}
	c.routingLis = routingLis
	c.wg.Add(1)
	go c.serve(routingLis, c.handleRouting)

	c.assign = func(protocol.ClientKey) []protocol.KvsThread { return c.threads }
	return c, nil
}

// ClientConfig returns a configuration pointing a client at this
// cluster's routing listener.
func (c *Cluster) ClientConfig(timeout time.Duration) protocol.ClientConfig {
	host, portStr, _ := net.SplitHostPort(c.routingLis.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return protocol.ClientConfig{
		RoutingIP:       host,
		RoutingPortBase: uint16(port),
		RoutingThreads:  1,
		Timeout:         timeout,
	}
}

// SetAssign replaces the key ownership function. Tests use it to shrink
// or grow the thread set the routing tier reports.
func (c *Cluster) SetAssign(assign func(key protocol.ClientKey) []protocol.KvsThread) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assign = assign
}

// SetReply overrides the storage tier's reply for every request. Tests
// use it to produce malformed responses or out-of-protocol frames. A
// nil override restores normal behavior; an override returning nil
// falls through to it for that request.
func (c *Cluster) SetReply(reply func(req *protocol.ClientRequest) *protocol.TcpMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reply = reply
}

// Threads returns the simulated storage threads.
func (c *Cluster) Threads() []protocol.KvsThread {
	return c.threads
}

// SeedLWW installs an externally committed value.
func (c *Cluster) SeedLWW(key protocol.ClientKey, value []byte) {
	ts := lattice.Clock{Time: uint64(time.Now().UnixNano()), Writer: "external"}
	c.Store.SeedLWW(key, value, ts)
}

// Close stops all listeners, closes all accepted connections and waits
// for every serving goroutine, including per-frame handlers, to end.
func (c *Cluster) Close() {
	close(c.closed)
	if c.routingLis != nil {
		c.routingLis.Close()
	}
	for _, lis := range c.storageLis {
		lis.Close()
	}

	c.mu.Lock()
	conns := c.conns
	c.conns = nil
	c.mu.Unlock()
	for _, conn := range conns {
		conn.Close()
	}

	c.wg.Wait()
}

// --------------------------------------------------------------------------
// Listener plumbing
// --------------------------------------------------------------------------

type handlerFunc func(msg *protocol.TcpMessage) (*protocol.TcpMessage, error)

// serve accepts connections and spawns one frame loop per connection.
// Connections are recorded so Close can unblock their frame loops.
func (c *Cluster) serve(lis net.Listener, handler handlerFunc) {
	defer c.wg.Done()
	for {
		conn, err := lis.Accept()
		if err != nil {
			select {
			case <-c.closed:
				return
			default:
				continue
			}
		}

		c.mu.Lock()
		c.conns = append(c.conns, conn)
		c.mu.Unlock()

		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.serveConn(conn, handler)
		}()
	}
}

// serveConn reads frames, dispatches them and writes response frames.
// Handlers for one connection run concurrently so responses may overtake
// each other, mirroring the unordered-response behavior of the real
// tiers.
func (c *Cluster) serveConn(conn net.Conn, handler handlerFunc) {
	defer conn.Close()
	var writeMu sync.Mutex
	for {
		data, err := transport.ReadFrame(conn)
		if err != nil {
			return
		}

		var msg protocol.TcpMessage
		if err := c.serializer.Deserialize(data, &msg); err != nil {
			return
		}

		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			resp, err := handler(&msg)
			if err != nil || resp == nil {
				return
			}
			out, err := c.serializer.Serialize(resp)
			if err != nil {
				return
			}
			writeMu.Lock()
			_ = transport.WriteFrame(conn, out)
			writeMu.Unlock()
		}()
	}
}

// --------------------------------------------------------------------------
// Tier handlers
// --------------------------------------------------------------------------

// handleRouting answers address requests. It advertises the sockets of
// every storage thread, deliberately more than was asked for, because
// the protocol allows a response to carry extra pairs.
func (c *Cluster) handleRouting(msg *protocol.TcpMessage) (*protocol.TcpMessage, error) {
	req := msg.AddressRequest
	if msg.MsgType != protocol.MsgTAddressRequest || req == nil {
		return nil, fmt.Errorf("routing tier received %s frame", msg.MsgType)
	}

	resp := &protocol.AddressResponse{ResponseID: req.RequestID}
	for _, thread := range c.threads {
		resp.TcpSockets = append(resp.TcpSockets, protocol.ThreadSocket{
			Thread:  thread,
			Address: c.threadAddrs[thread],
		})
	}

	c.mu.Lock()
	assign := c.assign
	c.mu.Unlock()
	for _, key := range req.Keys {
		resp.Addresses = append(resp.Addresses, protocol.KeyAddress{
			Key:     key,
			Threads: assign(key),
		})
	}

	return protocol.NewAddressResponseMessage(resp), nil
}

// handleStorage executes one key operation against the shared store,
// unless a reply override is installed.
func (c *Cluster) handleStorage(msg *protocol.TcpMessage) (*protocol.TcpMessage, error) {
	req := msg.Request
	if msg.MsgType != protocol.MsgTRequest || req == nil {
		return nil, fmt.Errorf("storage tier received %s frame", msg.MsgType)
	}

	c.mu.Lock()
	reply := c.reply
	c.mu.Unlock()
	if reply != nil {
		if out := reply(req); out != nil {
			return out, nil
		}
	}

	tuple := c.Store.Apply(req.Operation, req.Timestamp)
	return protocol.NewResponseMessage(&protocol.ClientResponse{
		ResponseID: req.RequestID,
		Tuples:     []protocol.ResponseTuple{tuple},
	}), nil
}
