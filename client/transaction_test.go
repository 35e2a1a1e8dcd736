package client

import (
	"testing"

	"github.com/anna-kv/client/protocol"
)

func TestTransactionReadYourOwnWrites(t *testing.T) {
	c, cluster := newTestClient(t, 1)
	cluster.SeedLWW("k", []byte("committed"))

	tx := c.BeginTransaction()
	if err := tx.PutLWW("k", []byte("buffered")); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, err := tx.GetLWW("k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != "buffered" {
		t.Errorf("got %q, want the buffered value", got)
	}

	// Outside the transaction the buffered write is invisible.
	got, err = c.GetLWW("k")
	if err != nil {
		t.Fatalf("external get failed: %v", err)
	}
	if string(got) != "committed" {
		t.Errorf("external read got %q, want %q", got, "committed")
	}
}

// TestTransactionReadsLatestCommitted checks that unbuffered reads are
// not snapshot reads: a value committed mid-transaction is visible.
func TestTransactionReadsLatestCommitted(t *testing.T) {
	c, cluster := newTestClient(t, 1)
	cluster.SeedLWW("k", []byte("v1"))

	tx := c.BeginTransaction()
	got, err := tx.GetLWW("k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != "v1" {
		t.Fatalf("got %q, want %q", got, "v1")
	}

	cluster.SeedLWW("k", []byte("v2"))

	got, err = tx.GetLWW("k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != "v2" {
		t.Errorf("got %q, want the newly committed %q", got, "v2")
	}
}

func TestTransactionCommitAppliesAllWrites(t *testing.T) {
	c, _ := newTestClient(t, 1)

	tx := c.BeginTransaction()
	if err := tx.PutLWW("a", []byte("1")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := tx.PutLWW("b", []byte("2")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	for key, want := range map[protocol.ClientKey]string{"a": "1", "b": "2"} {
		got, err := c.GetLWW(key)
		if err != nil {
			t.Fatalf("get %s failed: %v", key, err)
		}
		if string(got) != want {
			t.Errorf("get %s: got %q, want %q", key, got, want)
		}
	}
}

func TestTransactionAbandonedHasNoEffect(t *testing.T) {
	c, _ := newTestClient(t, 1)

	tx := c.BeginTransaction()
	if err := tx.PutLWW("k", []byte("never")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	tx = nil
	_ = tx

	_, err := c.GetLWW("k")
	if !protocol.IsCode(err, protocol.ErrCKeyNotFound) {
		t.Fatalf("abandoned transaction leaked a write: %v", err)
	}
}

func TestTransactionDoubleCommit(t *testing.T) {
	c, _ := newTestClient(t, 1)

	tx := c.BeginTransaction()
	if err := tx.PutLWW("k", []byte("v")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("first commit failed: %v", err)
	}
	if err := tx.Commit(); err == nil {
		t.Fatal("second commit succeeded, want error")
	}
	if _, err := tx.GetLWW("k"); err == nil {
		t.Fatal("read after commit succeeded, want error")
	}
}
