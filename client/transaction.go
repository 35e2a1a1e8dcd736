package client

import (
	"fmt"

	"github.com/anna-kv/client/protocol"
)

// ReadCommittedTransaction buffers writes locally and applies them on
// commit as one logical batch sharing a single commit timestamp.
//
// Reads consult the write buffer first (read your own writes) and fall
// through to the client otherwise, so they reflect the latest externally
// committed state at read time, not a snapshot taken at transaction
// start. Nothing is sent to storage before Commit: a transaction dropped
// without committing has no effect.
//
// A transaction belongs to one logical unit of work and must not be
// shared across goroutines.
type ReadCommittedTransaction struct {
	client      *Client
	writeBuffer map[protocol.ClientKey][]byte
	committed   bool
}

func newReadCommittedTransaction(c *Client) *ReadCommittedTransaction {
	return &ReadCommittedTransaction{
		client:      c,
		writeBuffer: make(map[protocol.ClientKey][]byte),
	}
}

// GetLWW returns the buffered value if the transaction has written the
// key, else the latest committed value from the store. External reads
// are never cached into the buffer.
func (t *ReadCommittedTransaction) GetLWW(key protocol.ClientKey) ([]byte, error) {
	if t.committed {
		return nil, fmt.Errorf("transaction already committed")
	}
	if value, ok := t.writeBuffer[key]; ok {
		return value, nil
	}
	return t.client.GetLWW(key)
}

// PutLWW buffers a write locally. Nothing reaches storage until Commit.
func (t *ReadCommittedTransaction) PutLWW(key protocol.ClientKey, value []byte) error {
	if t.committed {
		return fmt.Errorf("transaction already committed")
	}
	t.writeBuffer[key] = value
	return nil
}

// Commit applies every buffered write as a last-writer-wins merge
// carrying one shared commit timestamp, so buffered writes never race
// each other on timestamp ties. Writes are applied sequentially; if one
// fails the remaining writes are still attempted and the first error is
// what propagates. A failed commit may therefore be partially applied —
// callers must inspect state rather than assume a clean abort.
func (t *ReadCommittedTransaction) Commit() error {
	if t.committed {
		return fmt.Errorf("transaction already committed")
	}
	t.committed = true

	ts := t.client.clock()
	var firstErr error
	for key, value := range t.writeBuffer {
		if err := t.client.putLWWAt(key, value, ts); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	t.writeBuffer = nil
	return firstErr
}
