package client

import (
	"math/rand"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/anna-kv/client/protocol"
	"github.com/anna-kv/client/transport"
)

// resolver maps keys to the storage threads owning them and threads to
// their transport endpoints. Both caches grow monotonically: entries are
// merged in on cache miss and never invalidated. Cache writes are
// idempotent unions, so two concurrent callers resolving the same key
// may each issue a redundant round trip without harming correctness.
type resolver struct {
	config protocol.ClientConfig
	thread protocol.ClientThread
	corr   *correlator
	mux    *transport.Mux

	keyAddressCache    *xsync.MapOf[protocol.ClientKey, []protocol.KvsThread]
	threadAddressCache *xsync.MapOf[protocol.KvsThread, string]
}

func newResolver(config protocol.ClientConfig, thread protocol.ClientThread, corr *correlator, mux *transport.Mux) *resolver {
	return &resolver{
		config:             config,
		thread:             thread,
		corr:               corr,
		mux:                mux,
		keyAddressCache:    xsync.NewMapOf[protocol.ClientKey, []protocol.KvsThread](),
		threadAddressCache: xsync.NewMapOf[protocol.KvsThread, string](),
	}
}

// routingEndpoint picks a routing thread uniformly at random among the
// configured ones and returns its endpoint.
func (r *resolver) routingEndpoint() string {
	thread := uint32(rand.Intn(int(r.config.RoutingThreads)))
	return r.config.RoutingEndpoint(thread)
}

// pickThread selects one storage thread uniformly at random among the
// cached owners of the key, spreading load across replicas.
func (r *resolver) pickThread(key protocol.ClientKey) (protocol.KvsThread, bool) {
	threads, ok := r.keyAddressCache.Load(key)
	if !ok || len(threads) == 0 {
		return protocol.KvsThread{}, false
	}
	return threads[rand.Intn(len(threads))], true
}

// endpointForKey resolves a key to the endpoint of one owning storage
// thread: check the caches, on miss run one resolution round trip and
// re-check. An unresolved key fails with AddressResolutionFailed.
func (r *resolver) endpointForKey(key protocol.ClientKey) (string, error) {
	thread, ok := r.pickThread(key)
	if ok {
		addressCacheHits.Inc()
	} else {
		addressCacheMisses.Inc()
		if err := r.queryKeyAddress(key); err != nil {
			return "", err
		}
		if thread, ok = r.pickThread(key); !ok {
			return "", protocol.NewErrorf(protocol.ErrCAddressResolution, "no storage thread owns key %q", key)
		}
	}

	addr, ok := r.threadAddressCache.Load(thread)
	if !ok {
		// The thread set was cached earlier but this thread's endpoint
		// was not; resolve again.
		if err := r.queryKeyAddress(key); err != nil {
			return "", err
		}
		if addr, ok = r.threadAddressCache.Load(thread); !ok {
			return "", protocol.NewErrorf(protocol.ErrCAddressResolution, "no endpoint known for storage thread %s", thread)
		}
	}
	return addr, nil
}

// queryKeyAddress runs one address resolution round trip for the key and
// merges the full response into both caches.
func (r *resolver) queryKeyAddress(key protocol.ClientKey) error {
	req := &protocol.AddressRequest{
		RequestID:       r.corr.nextRequestID(),
		ResponseAddress: r.thread.AddressResponseTopic(topicPrefix),
		Keys:            []protocol.ClientKey{key},
	}

	ch := r.corr.registerAddress(req.RequestID)
	defer r.corr.unregisterAddress(req.RequestID)

	if err := r.mux.Send(r.routingEndpoint(), protocol.NewAddressRequestMessage(req)); err != nil {
		return err
	}

	resp, err := await(ch, r.config.Timeout, "address resolution")
	if err != nil {
		return err
	}
	if resp.Err != "" {
		return protocol.NewErrorf(protocol.ErrCAddressResolution, "routing node error: %s", resp.Err)
	}

	r.mergeAddressResponse(resp)
	return nil
}

// mergeAddressResponse merges every pair the response carries into the
// caches, regardless of which pair was actually asked for. Thread sets
// are unioned in, never replaced, so a cached set only ever grows.
func (r *resolver) mergeAddressResponse(resp *protocol.AddressResponse) {
	for _, socket := range resp.TcpSockets {
		r.threadAddressCache.Store(socket.Thread, socket.Address)
	}

	for _, keyAddr := range resp.Addresses {
		nodes := keyAddr.Threads
		r.keyAddressCache.Compute(keyAddr.Key, func(old []protocol.KvsThread, _ bool) ([]protocol.KvsThread, bool) {
			merged := make([]protocol.KvsThread, len(old), len(old)+len(nodes))
			copy(merged, old)
			for _, node := range nodes {
				seen := false
				for _, existing := range merged {
					if existing == node {
						seen = true
						break
					}
				}
				if !seen {
					merged = append(merged, node)
				}
			}
			return merged, false
		})
	}
}

// cachedThreads returns the cached owner set of a key. Used by tests to
// check cache monotonicity.
func (r *resolver) cachedThreads(key protocol.ClientKey) []protocol.KvsThread {
	threads, _ := r.keyAddressCache.Load(key)
	return threads
}
