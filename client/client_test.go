package client

import (
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/anna-kv/client/internal/kvstest"
	"github.com/anna-kv/client/lattice"
	"github.com/anna-kv/client/protocol"
	"github.com/anna-kv/client/serializer"
)

// newTestClient starts a fake cluster and a client wired to it.
func newTestClient(t *testing.T, numThreads int) (*Client, *kvstest.Cluster) {
	t.Helper()

	s := serializer.NewJSONSerializer()
	cluster, err := kvstest.NewCluster(numThreads, s)
	if err != nil {
		t.Fatalf("failed to start test cluster: %v", err)
	}
	t.Cleanup(cluster.Close)

	c, err := New(cluster.ClientConfig(5*time.Second), s)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	return c, cluster
}

func TestPutGetLWW(t *testing.T) {
	c, _ := newTestClient(t, 1)

	value := []byte("2024-01-01T00:00:00Z")
	if err := c.PutLWW("time", value); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, err := c.GetLWW("time")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != string(value) {
		t.Errorf("got %q, want %q", got, value)
	}
}

func TestLWWLaterWriteWins(t *testing.T) {
	c, _ := newTestClient(t, 1)

	if err := c.PutLWW("k", []byte("first")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := c.PutLWW("k", []byte("second")); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, err := c.GetLWW("k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("got %q, want %q", got, "second")
	}
}

func TestSetAddIsUnion(t *testing.T) {
	c, _ := newTestClient(t, 1)

	if err := c.AddSet("s", lattice.NewSet([]byte("hello"), []byte("world"))); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := c.AddSet("s", lattice.NewSet([]byte("anna"))); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	got, err := c.GetSet("s")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	want := lattice.NewSet([]byte("hello"), []byte("world"), []byte("anna"))
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMapAddIsKeywiseUnion(t *testing.T) {
	c, _ := newTestClient(t, 1)

	err := c.AddMap("h", map[string][]byte{
		"key1": []byte("value1"),
		"key2": []byte("value2"),
	})
	if err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := c.AddMap("h", map[string][]byte{"key3": []byte("value3")}); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	got, err := c.GetMap("h")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	want := map[string][]byte{
		"key1": []byte("value1"),
		"key2": []byte("value2"),
		"key3": []byte("value3"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestIncIsCommutativeCounter(t *testing.T) {
	c, _ := newTestClient(t, 1)

	if got, err := c.Inc("n", 10); err != nil || got != 10 {
		t.Fatalf("inc 10: got %d, %v; want 10", got, err)
	}
	if got, err := c.Inc("n", 0); err != nil || got != 10 {
		t.Fatalf("inc 0: got %d, %v; want 10", got, err)
	}
	if got, err := c.Inc("n", -15); err != nil || got != -5 {
		t.Fatalf("inc -15: got %d, %v; want -5", got, err)
	}
}

func TestGetMissingKey(t *testing.T) {
	c, _ := newTestClient(t, 1)

	_, err := c.GetLWW("no-such-key")
	if !protocol.IsCode(err, protocol.ErrCKeyNotFound) {
		t.Fatalf("expected KeyDoesNotExist, got %v", err)
	}
}

func TestVariantMismatch(t *testing.T) {
	c, _ := newTestClient(t, 1)

	if err := c.AddSet("s", lattice.NewSet([]byte("x"))); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	_, err := c.GetLWW("s")
	if !protocol.IsCode(err, protocol.ErrCUnexpectedValueType) {
		t.Fatalf("expected UnexpectedValueType, got %v", err)
	}
}

// TestMalformedEmptyResponse checks that a response carrying no result
// tuples surfaces as MalformedResponse rather than a panic or a silent
// zero value.
func TestMalformedEmptyResponse(t *testing.T) {
	c, cluster := newTestClient(t, 1)

	cluster.SetReply(func(req *protocol.ClientRequest) *protocol.TcpMessage {
		return protocol.NewResponseMessage(&protocol.ClientResponse{ResponseID: req.RequestID})
	})

	_, err := c.GetLWW("k")
	if !protocol.IsCode(err, protocol.ErrCMalformedResponse) {
		t.Fatalf("expected MalformedResponse, got %v", err)
	}
}

// TestUnexpectedFrameDropsConnection sends a request-kind frame back to
// the client. That is fatal to the connection's receive loop: the
// in-flight operation strands until its deadline, and the next
// operation dials a fresh connection and succeeds.
func TestUnexpectedFrameDropsConnection(t *testing.T) {
	s := serializer.NewJSONSerializer()
	cluster, err := kvstest.NewCluster(1, s)
	if err != nil {
		t.Fatalf("failed to start test cluster: %v", err)
	}
	t.Cleanup(cluster.Close)

	c, err := New(cluster.ClientConfig(500*time.Millisecond), s)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	if err := c.PutLWW("k", []byte("v")); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	cluster.SetReply(func(req *protocol.ClientRequest) *protocol.TcpMessage {
		return protocol.NewRequestMessage(&protocol.ClientRequest{RequestID: req.RequestID})
	})
	_, err = c.GetLWW("k")
	if !protocol.IsCode(err, protocol.ErrCTimeout) {
		t.Fatalf("expected the stranded operation to time out, got %v", err)
	}

	// The violating connection was dropped; the next operation redials.
	cluster.SetReply(nil)
	got, err := c.GetLWW("k")
	if err != nil {
		t.Fatalf("get after redial failed: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("got %q, want %q", got, "v")
	}
}

// TestAddressCacheMonotonic resolves the same key against shrinking
// routing answers and checks that the cached owner set only ever grows.
func TestAddressCacheMonotonic(t *testing.T) {
	c, cluster := newTestClient(t, 3)
	threads := cluster.Threads()

	cluster.SetAssign(func(protocol.ClientKey) []protocol.KvsThread {
		return threads[:2]
	})
	if err := c.resolver.queryKeyAddress("k"); err != nil {
		t.Fatalf("first resolution failed: %v", err)
	}
	if got := c.resolver.cachedThreads("k"); len(got) != 2 {
		t.Fatalf("expected 2 cached threads, got %v", got)
	}

	// The routing tier now reports a different, smaller set. The cache
	// must union it in, never shrink.
	cluster.SetAssign(func(protocol.ClientKey) []protocol.KvsThread {
		return threads[2:]
	})
	if err := c.resolver.queryKeyAddress("k"); err != nil {
		t.Fatalf("second resolution failed: %v", err)
	}
	if got := c.resolver.cachedThreads("k"); len(got) != 3 {
		t.Fatalf("cache shrank: %v", got)
	}
}

// TestConcurrentOperations drives many goroutines through the shared
// multiplexer and correlator at once.
func TestConcurrentOperations(t *testing.T) {
	c, _ := newTestClient(t, 2)

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := protocol.ClientKey(fmt.Sprintf("key-%d", i))
			value := []byte(fmt.Sprintf("value-%d", i))

			if err := c.PutLWW(key, value); err != nil {
				errs <- fmt.Errorf("put %s: %v", key, err)
				return
			}
			got, err := c.GetLWW(key)
			if err != nil {
				errs <- fmt.Errorf("get %s: %v", key, err)
				return
			}
			if string(got) != string(value) {
				errs <- fmt.Errorf("get %s: got %q, want %q", key, got, value)
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
