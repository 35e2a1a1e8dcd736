package transport

import (
	"net"
	"sync"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/anna-kv/client/protocol"
	"github.com/anna-kv/client/serializer"
)

var Logger = logger.GetLogger("transport")

// --------------------------------------------------------------------------
// Multiplexer
// --------------------------------------------------------------------------

// Mux multiplexes many concurrent logical requests over one connection
// per distinct endpoint. Connections are dialed lazily on first send and
// cached; each connection runs exactly one background receive goroutine
// that decodes inbound frames and hands them to the InboundHandler.
type Mux struct {
	connector  IConnector
	serializer serializer.ISerializer
	handler    InboundHandler
	conns      *xsync.MapOf[string, *muxConn]
}

// muxConn is one cached duplex connection. writeMu serializes frame
// writes; the receive path is never excluded against writes.
type muxConn struct {
	conn     net.Conn
	endpoint string
	writeMu  sync.Mutex
	parent   *Mux
}

// NewMux creates a multiplexer that dials through the given connector,
// frames messages with the given serializer and delivers inbound
// messages to the given handler.
func NewMux(connector IConnector, s serializer.ISerializer, handler InboundHandler) *Mux {
	return &Mux{
		connector:  connector,
		serializer: s,
		handler:    handler,
		conns:      xsync.NewMapOf[string, *muxConn](),
	}
}

// Send writes one message as a single frame to the given endpoint,
// dialing a connection first if none is cached. Concurrent senders to
// the same endpoint are serialized only around the frame write itself.
func (m *Mux) Send(endpoint string, msg *protocol.TcpMessage) error {
	c, err := m.getConn(endpoint)
	if err != nil {
		return err
	}

	data, err := m.serializer.Serialize(msg)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	err = WriteFrame(c.conn, data)
	c.writeMu.Unlock()

	if err != nil {
		// The connection is broken; drop it so the next send redials.
		m.drop(c)
		return protocol.NewErrorf(protocol.ErrCConnectFailed, "write to %s failed: %v", endpoint, err)
	}
	return nil
}

// Close tears down all cached connections. In-flight receive loops end
// when their sockets close.
func (m *Mux) Close() error {
	m.conns.Range(func(endpoint string, c *muxConn) bool {
		m.conns.Delete(endpoint)
		_ = c.conn.Close()
		return true
	})
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// getConn returns the cached connection for the endpoint, dialing one if
// necessary. Two concurrent callers may both dial on a cold endpoint;
// the loser closes its dial and uses the winner's connection.
func (m *Mux) getConn(endpoint string) (*muxConn, error) {
	if c, ok := m.conns.Load(endpoint); ok {
		return c, nil
	}

	Logger.Debugf("Connecting %s to %s", m.connector.GetName(), endpoint)
	netConn, err := m.connector.Connect(endpoint)
	if err != nil {
		return nil, protocol.NewErrorf(protocol.ErrCConnectFailed, "failed to connect to %s: %v", endpoint, err)
	}

	c := &muxConn{conn: netConn, endpoint: endpoint, parent: m}
	if existing, loaded := m.conns.LoadOrStore(endpoint, c); loaded {
		_ = netConn.Close()
		return existing, nil
	}

	go c.readLoop()
	return c, nil
}

// drop removes a connection from the table and closes it.
func (m *Mux) drop(c *muxConn) {
	m.conns.Compute(c.endpoint, func(current *muxConn, loaded bool) (*muxConn, bool) {
		// Only delete if the table still holds this connection; a
		// replacement dialed in the meantime must survive.
		if loaded && current == c {
			return nil, true
		}
		return current, !loaded
	})
	_ = c.conn.Close()
}

// readLoop continuously reads frames, decodes them and dispatches by
// frame kind. It is the only reader of this connection and runs until
// the socket closes or a protocol violation occurs.
func (c *muxConn) readLoop() {
	m := c.parent
	for {
		data, err := ReadFrame(c.conn)
		if err != nil {
			Logger.Debugf("Connection to %s closed: %v", c.endpoint, err)
			m.drop(c)
			return
		}

		var msg protocol.TcpMessage
		if err := m.serializer.Deserialize(data, &msg); err != nil {
			Logger.Errorf("Failed to decode frame from %s: %v", c.endpoint, err)
			m.drop(c)
			return
		}

		switch {
		case msg.MsgType == protocol.MsgTAddressResponse && msg.AddressResponse != nil:
			m.handler.HandleAddressResponse(msg.AddressResponse)
		case msg.MsgType == protocol.MsgTResponse && msg.Response != nil:
			m.handler.HandleResponse(msg.Response)
		default:
			// Receiving a request-kind frame on a client connection is a
			// protocol violation, fatal to this receive loop. In-flight
			// requests on this connection are stranded until they time
			// out; the next send to the endpoint dials a fresh one.
			Logger.Errorf("Protocol violation on connection to %s: unexpected %s frame", c.endpoint, msg.MsgType)
			m.drop(c)
			return
		}
	}
}
