package redislike

import (
	"github.com/anna-kv/client/client"
	"github.com/anna-kv/client/lattice"
	"github.com/anna-kv/client/protocol"
	"github.com/anna-kv/client/serializer"
)

// --------------------------------------------------------------------------
// Client
// --------------------------------------------------------------------------

// Client hands out connections to the cluster. It holds configuration
// only; the sockets belong to the connections it opens.
type Client struct {
	config     protocol.ClientConfig
	serializer serializer.ISerializer
}

// Open creates a client with the given configuration.
func Open(config protocol.ClientConfig, s serializer.ISerializer) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Client{config: config, serializer: s}, nil
}

// GetConnection opens a connection to the cluster.
func (c *Client) GetConnection() (*Connection, error) {
	inner, err := client.New(c.config, c.serializer)
	if err != nil {
		return nil, err
	}
	return &Connection{client: inner}, nil
}

// --------------------------------------------------------------------------
// Connection
// --------------------------------------------------------------------------

// Connection is one client node speaking the Redis-flavored command
// set. It is safe for concurrent use.
type Connection struct {
	client *client.Client
}

// Close tears down the connection.
func (c *Connection) Close() error {
	return c.client.Close()
}

// Get returns the byte-string value of a key.
func (c *Connection) Get(key protocol.ClientKey) ([]byte, error) {
	return c.client.GetLWW(key)
}

// Set stores a byte-string value under a key. Concurrent Sets resolve
// by last writer wins.
func (c *Connection) Set(key protocol.ClientKey, value any) error {
	data, err := toValue(value)
	if err != nil {
		return err
	}
	return c.client.PutLWW(key, data)
}

// SetNX stores a value only if the key does not exist yet and reports
// whether it wrote. The check and the write are two round trips, so two
// racing SetNX calls can both report success; the later timestamp wins.
func (c *Connection) SetNX(key protocol.ClientKey, value any) (bool, error) {
	_, err := c.client.GetLWW(key)
	if err == nil {
		return false, nil
	}
	if !protocol.IsCode(err, protocol.ErrCKeyNotFound) {
		return false, err
	}
	if err := c.Set(key, value); err != nil {
		return false, err
	}
	return true, nil
}

// SAdd adds members to the set stored under a key. Members are never
// removed; the set only grows.
func (c *Connection) SAdd(key protocol.ClientKey, members ...any) error {
	set := make(lattice.Set, len(members))
	for _, m := range members {
		data, err := toValue(m)
		if err != nil {
			return err
		}
		set.Add(data)
	}
	return c.client.AddSet(key, set)
}

// SMembers returns all members of the set stored under a key.
func (c *Connection) SMembers(key protocol.ClientKey) ([][]byte, error) {
	set, err := c.client.GetSet(key)
	if err != nil {
		return nil, err
	}
	members := make([][]byte, 0, len(set))
	for m := range set {
		members = append(members, []byte(m))
	}
	return members, nil
}

// HSet stores a field of the hash kept under a key. Concurrent writes
// to the same field resolve by last writer wins; distinct fields never
// conflict.
func (c *Connection) HSet(key protocol.ClientKey, field string, value any) error {
	data, err := toValue(value)
	if err != nil {
		return err
	}
	return c.client.AddMap(key, map[string][]byte{field: data})
}

// HMSet stores several fields of the hash kept under a key in one
// round trip.
func (c *Connection) HMSet(key protocol.ClientKey, fields map[string]any) error {
	converted := make(map[string][]byte, len(fields))
	for field, value := range fields {
		data, err := toValue(value)
		if err != nil {
			return err
		}
		converted[field] = data
	}
	return c.client.AddMap(key, converted)
}

// HGetAll returns all fields of the hash kept under a key.
func (c *Connection) HGetAll(key protocol.ClientKey) (map[string][]byte, error) {
	return c.client.GetMap(key)
}

// Incr adds one to the counter kept under a key and returns the new
// count.
func (c *Connection) Incr(key protocol.ClientKey) (int64, error) {
	return c.client.Inc(key, 1)
}

// IncrBy adds delta to the counter kept under a key and returns the new
// count. Negative deltas decrement.
func (c *Connection) IncrBy(key protocol.ClientKey, delta int64) (int64, error) {
	return c.client.Inc(key, delta)
}
