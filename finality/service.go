package finality

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/canopy-network/poh/lib"
)

// LedgerI is the part of the ledger the finality service reads from and publishes to
type LedgerI interface {
	TimestampLookupI
	// ViewAccounts() runs the callback in a read only transaction of the account table
	ViewAccounts(cb func(r lib.AccountReaderI) lib.ErrorI) lib.ErrorI
	// SetFinality() publishes a confirmation
	SetFinality(tickHeight, timestampMS, durationMS uint64)
	// Finality() returns the most recent confirmation
	Finality() lib.FinalityState
}

// Service periodically computes how far behind the leader the validator supermajority is
// NoValidSupermajority is the normal outcome before validators vote and never stops the loop
type Service struct {
	config   lib.FinalityConfig
	ledger   LedgerI
	leaderId []byte // the leader's own vote accounts are excluded
	metrics  lib.MetricsSinkI
	log      lib.LoggerI

	started atomic.Bool
	mu      sync.Mutex // guards cancel and exiting
	cancel  context.CancelFunc
	exiting bool
	done    chan struct{}
}

// NewService() creates an idle finality service
func NewService(config lib.FinalityConfig, ledger LedgerI, leaderId []byte, metrics lib.MetricsSinkI, log lib.LoggerI) *Service {
	return &Service{
		config:   config,
		ledger:   ledger,
		leaderId: lib.CopyBytes(leaderId),
		metrics:  metrics,
		log:      log,
		done:     make(chan struct{}),
	}
}

// ComputeFinality() runs a single cycle: snapshot, compute, publish
func (s *Service) ComputeFinality(nowMS uint64) lib.ErrorI {
	var voters []Voter
	// copy the tuples out and release the read transaction before computing
	err := s.ledger.ViewAccounts(func(r lib.AccountReaderI) (e lib.ErrorI) {
		voters, e = Snapshot(r, s.leaderId)
		return
	})
	if err != nil {
		return err
	}
	tickHeight, timestampMS, err := ComputeFinality(voters, s.ledger)
	if err != nil {
		// report the staleness of the previous confirmation
		if prior := s.ledger.Finality(); prior.Confirmed {
			s.submit(elapsed(nowMS, prior.LastConfirmedTimestampMS))
		}
		return err
	}
	duration := elapsed(nowMS, timestampMS)
	s.ledger.SetFinality(tickHeight, timestampMS, duration)
	s.submit(duration)
	return nil
}

// Start() launches the polling loop; the context is checked once per cycle, next to the sleep
func (s *Service) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	if s.exiting {
		cancel()
	}
	s.mu.Unlock()
	go func() {
		defer close(s.done)
		defer lib.CatchPanic(s.log)
		timer := lib.NewTimer()
		defer lib.StopTimer(timer)
		for {
			if err := s.ComputeFinality(lib.NowMS()); err != nil {
				s.log.Debugf("Compute finality: %s", err.Error())
			}
			lib.ResetTimer(timer, s.config.PollInterval())
			select {
			case <-ctx.Done():
				s.log.Info("Finality service exited")
				return
			case <-timer.C:
			}
		}
	}()
	s.log.Infof("Finality service started, polling every %s", s.config.PollInterval())
}

// Exit() requests the loop to stop
func (s *Service) Exit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exiting = true
	if s.cancel != nil {
		s.cancel()
	}
}

// Join() blocks until the loop returns, returning immediately if never started
func (s *Service) Join() {
	if !s.started.Load() {
		return
	}
	<-s.done
}

// Close() stops the loop and waits for it
func (s *Service) Close() {
	s.Exit()
	s.Join()
}

// submit() emits the leader finality measurement
func (s *Service) submit(durationMS uint64) {
	s.metrics.Submit(lib.MeasurementLeaderFinality, map[string]int64{"duration_ms": int64(durationMS)})
}

// elapsed() is now - then, floored at zero
func elapsed(nowMS, thenMS uint64) uint64 {
	if nowMS < thenMS {
		return 0
	}
	return nowMS - thenMS
}
