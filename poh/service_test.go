package poh

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/canopy-network/poh/lib"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, config lib.PoHConfig, buffer int) (*Service, *Recorder, chan lib.Entries) {
	ch := make(chan lib.Entries, buffer)
	r := NewRecorder(newTestLedger(), ch, lib.NullSink{}, lib.NewNullLogger())
	s, err := NewService(config, r, lib.NewNullLogger())
	require.NoError(t, err)
	return s, r, ch
}

func TestNewServiceConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  lib.PoHConfig
		errCode lib.ErrorCode
	}{
		{
			name:   "default",
			config: lib.DefaultPoHConfig(),
		},
		{
			name:   "tick mode",
			config: lib.PoHConfig{Mode: lib.PoHModeTick, HashesPerTick: 10},
		},
		{
			name:    "tick mode without hashes",
			config:  lib.PoHConfig{Mode: lib.PoHModeTick},
			errCode: lib.CodeInvalidCadence,
		},
		{
			name:    "sleep mode without interval",
			config:  lib.PoHConfig{Mode: lib.PoHModeSleep},
			errCode: lib.CodeInvalidCadence,
		},
		{
			name:    "unknown mode",
			config:  lib.PoHConfig{Mode: "fast", HashesPerTick: 10, TickIntervalMS: 10},
			errCode: lib.CodeInvalidPoHMode,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := NewRecorder(newTestLedger(), make(chan lib.Entries), lib.NullSink{}, lib.NewNullLogger())
			// execute the function call
			s, err := NewService(test.config, r, lib.NewNullLogger())
			if test.errCode == 0 {
				require.NoError(t, err)
				require.Equal(t, Idle, s.State())
				return
			}
			require.Error(t, err)
			require.Equal(t, test.errCode, err.Code())
		})
	}
}

func TestServiceTickMode(t *testing.T) {
	s, r, ch := newTestService(t, lib.PoHConfig{Mode: lib.PoHModeTick, HashesPerTick: 8}, 0)
	require.NoError(t, s.Start(context.Background()))
	require.Equal(t, Running, s.State())
	// read a few ticks, each carrying exactly the configured hash count
	prev := genesisId
	for i := 0; i < 3; i++ {
		batch := <-ch
		require.Len(t, batch, 1)
		require.EqualValues(t, 8, batch[0].NumHashes)
		require.NoError(t, batch.Verify(prev))
		prev = batch.LastId()
	}
	// nothing reads the channel while the loop shuts down
	require.NoError(t, s.Close())
	require.True(t, s.Exited())
	r.Close()
	// the remaining ticks are still delivered in order before the channel closes
	for batch := range ch {
		require.NoError(t, batch.Verify(prev))
		prev = batch.LastId()
	}
	require.Equal(t, r.LastId(), prev)
}

func TestServiceCancellation(t *testing.T) {
	period := 10 * time.Millisecond
	s, r, ch := newTestService(t, lib.PoHConfig{Mode: lib.PoHModeSleep, TickIntervalMS: uint64(period.Milliseconds())}, 1000)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	// a second start is rejected
	require.Equal(t, lib.CodeAlreadyStarted, s.Start(ctx).Code())
	// let a few ticks through
	require.Eventually(t, func() bool { return len(ch) >= 3 }, time.Second, time.Millisecond)
	require.False(t, s.Exited())
	// execute the cancellation
	cancel()
	// the completion flag is set within one cadence period (with scheduling slack)
	require.Eventually(t, s.Exited, 5*period, time.Millisecond)
	require.NoError(t, s.Join())
	// no tick is produced after exit
	height := r.TickHeight()
	time.Sleep(5 * period)
	require.Equal(t, height, r.TickHeight())
	// every tick in sleep mode is a single hash, and all of them are delivered
	r.Close()
	var delivered uint64
	for batch := range ch {
		require.Len(t, batch, 1)
		require.EqualValues(t, 1, batch[0].NumHashes)
		delivered++
	}
	require.Equal(t, height, delivered)
}

func TestServiceRecorderFailure(t *testing.T) {
	s, r, _ := newTestService(t, lib.PoHConfig{Mode: lib.PoHModeTick, HashesPerTick: 4}, 1000)
	require.NoError(t, s.Start(context.Background()))
	// a failing recorder is fatal to the loop
	r.Close()
	err := s.Join()
	require.Error(t, err)
	require.Equal(t, lib.CodeRecorderClosed, err.Code())
	require.True(t, s.Exited())
	require.Equal(t, "exited", s.State().String())
}

func TestServiceExitDuringStart(t *testing.T) {
	s, r, _ := newTestService(t, lib.PoHConfig{Mode: lib.PoHModeSleep, TickIntervalMS: 1}, 0)
	// exit and start race; either order stops the loop after a tick
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); s.Exit() }()
	go func() { defer wg.Done(); s.Start(context.Background()) }()
	wg.Wait()
	require.NoError(t, s.Join())
	require.True(t, s.Exited())
	require.GreaterOrEqual(t, r.TickHeight(), uint64(1))
}

func TestServiceJoinBeforeStart(t *testing.T) {
	s, _, _ := newTestService(t, lib.DefaultPoHConfig(), 1)
	err := s.Join()
	require.Error(t, err)
	require.Equal(t, lib.CodeServiceNotStart, err.Code())
}
