package zk

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type blockingProver struct {
	mu      sync.Mutex
	active  int32
	maxSeen int32
	release chan struct{}
}

func (b *blockingProver) Prove(ctx context.Context, w *BatchWitness) (*SettlementProof, []string, error) {
	cur := atomic.AddInt32(&b.active, 1)
	defer atomic.AddInt32(&b.active, -1)

	b.mu.Lock()
	if cur > b.maxSeen {
		b.maxSeen = cur
	}
	b.mu.Unlock()

	<-b.release
	return &SettlementProof{}, nil, nil
}

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	inner := &blockingProver{release: make(chan struct{})}
	pool := NewProofWorkerPool(inner, 2)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Prove(context.Background(), &BatchWitness{})
		}()
	}

	// Give goroutines time to queue up against the two slots.
	time.Sleep(50 * time.Millisecond)
	close(inner.release)
	wg.Wait()

	inner.mu.Lock()
	maxSeen := inner.maxSeen
	inner.mu.Unlock()
	if maxSeen > 2 {
		t.Errorf("pool allowed %d concurrent proofs, limit is 2", maxSeen)
	}
}

func TestWorkerPoolCancelledWhileQueued(t *testing.T) {
	inner := &blockingProver{release: make(chan struct{})}
	defer close(inner.release)
	pool := NewProofWorkerPool(inner, 1)

	// Occupy the only slot.
	go pool.Prove(context.Background(), &BatchWitness{})
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := pool.Prove(ctx, &BatchWitness{})
	if err == nil {
		t.Fatal("expected error for cancelled queued request")
	}
	if _, ok := err.(*ProofGenerationError); !ok {
		t.Errorf("expected ProofGenerationError, got %T", err)
	}
}
