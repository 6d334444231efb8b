package consumer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wilsondesouza/AlertSystem/internal/evaluator"
)

type stubEvaluator struct {
	calls   atomic.Int32
	ticked  chan struct{}
	release chan struct{}
	ctxErr  atomic.Value
	err     error
}

func newStubEvaluator() *stubEvaluator {
	return &stubEvaluator{ticked: make(chan struct{}, 16)}
}

func (s *stubEvaluator) EvaluateTick(ctx context.Context) (evaluator.TickResult, error) {
	s.calls.Add(1)
	s.ticked <- struct{}{}
	if s.release != nil {
		<-s.release
	}
	if err := ctx.Err(); err != nil {
		s.ctxErr.Store(err)
	}
	return evaluator.TickResult{
		Rules:    2,
		Readings: 3,
		Outcomes: map[evaluator.Outcome]int{evaluator.OutcomeFired: 1},
	}, s.err
}

func waitTick(t *testing.T, s *stubEvaluator) {
	t.Helper()
	select {
	case <-s.ticked:
	case <-time.After(2 * time.Second):
		t.Fatal("tick did not run")
	}
}

func TestRuleMonitor_FirstTickIsImmediate(t *testing.T) {
	stub := newStubEvaluator()
	monitor := NewRuleMonitor(time.Hour, stub, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- monitor.Start(ctx) }()

	waitTick(t, stub)
	cancel()

	require.NoError(t, <-done)
	assert.Equal(t, int32(1), stub.calls.Load())
}

func TestRuleMonitor_TicksRepeat(t *testing.T) {
	stub := newStubEvaluator()
	monitor := NewRuleMonitor(5*time.Millisecond, stub, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- monitor.Start(ctx) }()

	waitTick(t, stub)
	waitTick(t, stub)
	waitTick(t, stub)
	cancel()

	require.NoError(t, <-done)
	assert.GreaterOrEqual(t, stub.calls.Load(), int32(3))
}

func TestRuleMonitor_InFlightTickFinishes(t *testing.T) {
	stub := newStubEvaluator()
	stub.release = make(chan struct{})
	monitor := NewRuleMonitor(time.Hour, stub, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- monitor.Start(ctx) }()

	waitTick(t, stub)
	cancel()

	select {
	case <-done:
		t.Fatal("monitor returned before the tick finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(stub.release)
	require.NoError(t, <-done)
	assert.Nil(t, stub.ctxErr.Load(), "tick context must not be cancelled")
	assert.Equal(t, uint64(1), monitor.Status().Ticks)
}

func TestRuleMonitor_Status(t *testing.T) {
	stub := newStubEvaluator()
	monitor := NewRuleMonitor(time.Hour, stub, zap.NewNop())

	monitor.runTick(context.Background())
	<-stub.ticked

	status := monitor.Status()
	assert.Equal(t, uint64(1), status.Ticks)
	assert.Equal(t, 2, status.Rules)
	assert.Equal(t, 3, status.Readings)
	assert.Equal(t, 1, status.Fired)
	assert.Empty(t, status.LastError)
	assert.False(t, status.LastTickAt.IsZero())

	stub.err = errors.New("failed to load active rules: db down")
	monitor.runTick(context.Background())
	<-stub.ticked

	status = monitor.Status()
	assert.Equal(t, uint64(2), status.Ticks)
	assert.Equal(t, "failed to load active rules: db down", status.LastError)
}
