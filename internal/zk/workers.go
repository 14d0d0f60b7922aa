package zk

import (
	"context"
	"time"

	"payroll-backend/internal/metrics"
)

// ProofWorkerPool bounds the number of concurrent Groth16 proof computations
// so CPU-bound proving cannot starve request handling. The pool shares one
// read-only prover across all slots.
type ProofWorkerPool struct {
	prover Prover
	slots  chan struct{}
}

// NewProofWorkerPool creates a pool with the given number of worker slots.
func NewProofWorkerPool(prover Prover, size int) *ProofWorkerPool {
	if size <= 0 {
		size = 1
	}
	return &ProofWorkerPool{
		prover: prover,
		slots:  make(chan struct{}, size),
	}
}

// Prove acquires a worker slot, honoring context cancellation while queued,
// then delegates to the underlying prover.
func (p *ProofWorkerPool) Prove(ctx context.Context, w *BatchWitness) (*SettlementProof, []string, error) {
	metrics.ProofQueueDepth.Inc()
	select {
	case p.slots <- struct{}{}:
		metrics.ProofQueueDepth.Dec()
		defer func() { <-p.slots }()
	case <-ctx.Done():
		metrics.ProofQueueDepth.Dec()
		return nil, nil, &ProofGenerationError{Detail: "proof generation cancelled while queued", cause: ctx.Err()}
	}

	start := time.Now()
	proof, signals, err := p.prover.Prove(ctx, w)
	metrics.ProofGenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProofGenerationTotal.WithLabelValues("error").Inc()
		return nil, nil, err
	}
	metrics.ProofGenerationTotal.WithLabelValues("success").Inc()
	return proof, signals, nil
}
