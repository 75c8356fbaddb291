package poh

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/canopy-network/poh/lib"
)

/*
	Service is the cadence thread that drives the recorder under one of two policies:
	- tick mode:  HashesPerTick-1 idle hashes then a tick, at full speed
	- sleep mode: sleep TickInterval then a tick with no idle hashes (low power)
	Cancellation is only observed after a tick, so shutdown latency is bounded by one cadence period
	and no tick is ever produced after the service reports Exited
*/

// State is the lifecycle of the service: Idle -> Running -> Exited
type State int32

const (
	Idle State = iota
	Running
	Exited
)

// String() returns the name of the state
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Exited:
		return "exited"
	default:
		return "unknown"
	}
}

// Service drives the recorder on a background goroutine
type Service struct {
	config   lib.PoHConfig
	recorder *Recorder
	log      lib.LoggerI

	state   atomic.Int32       // the lifecycle State
	mu      sync.Mutex         // guards cancel and exiting
	cancel  context.CancelFunc // cancels the loop's context
	exiting bool               // Exit was called, possibly before Start set cancel
	done    chan struct{}      // closed when the loop returns
	err     lib.ErrorI         // the loop's result, readable once done is closed
}

// NewService() validates the cadence policy and returns an idle service
func NewService(config lib.PoHConfig, recorder *Recorder, log lib.LoggerI) (*Service, lib.ErrorI) {
	switch config.Mode {
	case lib.PoHModeTick:
		if config.HashesPerTick == 0 {
			return nil, ErrInvalidCadence()
		}
	case lib.PoHModeSleep:
		if config.TickIntervalMS == 0 {
			return nil, ErrInvalidCadence()
		}
	default:
		return nil, ErrInvalidPoHMode(config.Mode)
	}
	return &Service{
		config:   config,
		recorder: recorder,
		log:      log,
		done:     make(chan struct{}),
	}, nil
}

// Start() launches the cadence loop; the loop exits after the first tick that follows cancellation of ctx
func (s *Service) Start(ctx context.Context) lib.ErrorI {
	if !s.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return ErrAlreadyStarted()
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
		defer s.state.Store(int32(Exited))
		defer lib.CatchPanic(s.log)
		s.err = s.run(ctx)
		if s.err != nil {
			s.log.Errorf("PoH service exited with err: %s", s.err.Error())
			return
		}
		s.log.Info("PoH service exited")
	}()
	s.log.Infof("PoH service started in %s mode", s.config.Mode)
	return nil
}

// run() is the cadence loop
func (s *Service) run(ctx context.Context) lib.ErrorI {
	interval := s.config.TickInterval()
	for {
		switch s.config.Mode {
		case lib.PoHModeTick:
			for i := uint64(1); i < s.config.HashesPerTick; i++ {
				if err := s.recorder.Hash(); err != nil {
					return err
				}
			}
		case lib.PoHModeSleep:
			time.Sleep(interval)
		}
		if err := s.recorder.Tick(); err != nil {
			return err
		}
		// cancellation is only checked at the tick boundary
		if ctx.Err() != nil {
			return nil
		}
	}
}

// Exit() requests the loop to stop after its next tick
func (s *Service) Exit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exiting = true
	if s.cancel != nil {
		s.cancel()
	}
}

// Join() blocks until the loop returns and reports its error
func (s *Service) Join() lib.ErrorI {
	if s.State() == Idle {
		return ErrServiceNotStarted()
	}
	<-s.done
	return s.err
}

// Close() stops the loop and waits for it
func (s *Service) Close() lib.ErrorI {
	s.Exit()
	return s.Join()
}

// Exited() is the completion flag, pollable without blocking
func (s *Service) Exited() bool { return s.State() == Exited }

// State() returns the lifecycle state
func (s *Service) State() State { return State(s.state.Load()) }
