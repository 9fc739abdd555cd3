package scanner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kissncome-byte/stock-app/internal/decision"
	"github.com/kissncome-byte/stock-app/internal/planner"
)

// ProgressCallback is called with progress updates
type ProgressCallback func(scanned, total int)

// Result pairs one symbol's decision with any failure computing it.
type Result struct {
	Symbol   string
	Decision *decision.Decision
	Err      error
}

// Scanner computes trade plans for many symbols in parallel. Decisions
// are pure snapshot computations with no shared mutable state, so symbols
// fan out across workers with no locking beyond the result channel.
type Scanner struct {
	planner      *planner.Planner
	workers      int
	timeout      time.Duration
	progressFunc ProgressCallback
}

// NewScanner creates a new scanner
func NewScanner(p *planner.Planner, workers int, timeout time.Duration) *Scanner {
	return &Scanner{
		planner: p,
		workers: workers,
		timeout: timeout,
	}
}

// SetProgressCallback sets the progress callback function
func (s *Scanner) SetProgressCallback(fn ProgressCallback) {
	s.progressFunc = fn
}

// Scan computes a plan for every symbol. Per-symbol failures are carried
// in the results, not returned; only context cancellation ends the scan
// early.
func (s *Scanner) Scan(ctx context.Context, symbols []string) []Result {
	if len(symbols) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	jobChan := make(chan string, len(symbols))
	resultChan := make(chan Result, len(symbols))

	for _, sym := range symbols {
		jobChan <- sym
	}
	close(jobChan)

	var scannedCount int64

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sym := range jobChan {
				select {
				case <-ctx.Done():
					return
				default:
				}

				d, err := s.planner.Plan(ctx, sym)
				resultChan <- Result{Symbol: sym, Decision: d, Err: err}

				scanned := atomic.AddInt64(&scannedCount, 1)
				if s.progressFunc != nil {
					s.progressFunc(int(scanned), len(symbols))
				}
			}
		}()
	}

	wg.Wait()
	close(resultChan)

	results := make([]Result, 0, len(symbols))
	for r := range resultChan {
		results = append(results, r)
	}
	return results
}
