package protocol

import "fmt"

// ClientKey identifies a stored value. Keys are compared by exact byte
// content and never interpreted.
type ClientKey string

// KvsThread identifies one addressable execution unit inside a storage
// node. A key may be owned by several storage threads (replication), and
// each thread is reachable at its own transport endpoint.
type KvsThread struct {
	NodeID   string `json:"node_id"`
	ThreadID uint32 `json:"thread_id"`
}

// String returns the canonical "node/thread" form.
func (t KvsThread) String() string {
	return fmt.Sprintf("%s/%d", t.NodeID, t.ThreadID)
}

// ClientThread identifies one logical client thread. It scopes request
// ids and names the topics on which this client expects replies.
type ClientThread struct {
	NodeID   string `json:"node_id"`
	ThreadID uint32 `json:"thread_id"`
}

// ResponseTopic names the reply channel for key operation responses.
func (t ClientThread) ResponseTopic(prefix string) string {
	return fmt.Sprintf("%s/%s:%d/responses", prefix, t.NodeID, t.ThreadID)
}

// AddressResponseTopic names the reply channel for address resolution
// responses.
func (t ClientThread) AddressResponseTopic(prefix string) string {
	return fmt.Sprintf("%s/%s:%d/address-responses", prefix, t.NodeID, t.ThreadID)
}
