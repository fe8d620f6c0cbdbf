package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/roach88/verity/internal/logic"
)

type result struct {
	fact Fact
	err  error
}

func TestDriver_AppliesInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := newTestEngine(t)
	var results []result
	d := NewDriver(e, WithResultHandler(func(f Fact, _ Report, err error) {
		results = append(results, result{f, err})
	}))

	require.True(t, d.Enqueue("A", true))
	require.True(t, d.Enqueue("A", false))
	require.True(t, d.Enqueue("B", true))
	assert.Equal(t, 3, d.Pending())
	d.Stop()

	require.NoError(t, d.Run(context.Background()))

	require.Len(t, results, 3)
	assert.Equal(t, Fact{"A", true}, results[0].fact)
	assert.Equal(t, Fact{"A", false}, results[1].fact)
	assert.Equal(t, Fact{"B", true}, results[2].fact)
	assert.Equal(t, logic.False, e.Value("A"))
	assert.Equal(t, logic.True, e.Value("B"))

	assert.False(t, d.Enqueue("C", true), "stopped driver rejects reports")
}

func TestDriver_ContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewDriver(newTestEngine(t))
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(ctx) }()

	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, d.Enqueue("A", true))
}

func TestDriver_ConcurrentProducers(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := newTestEngine(t)
	d := NewDriver(e)

	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(context.Background()) }()

	const producers = 10
	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d.Enqueue(fmt.Sprintf("Fact%d", i), true)
		}(i)
	}
	wg.Wait()
	d.Stop()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not drain after Stop")
	}

	for i := 0; i < producers; i++ {
		assert.Equal(t, logic.True, e.Value(fmt.Sprintf("Fact%d", i)))
	}
}

func TestDriver_FailedReportContinues(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := newTestEngine(t, WithMaxTransitions(0))
	var errs []error
	d := NewDriver(e, WithResultHandler(func(_ Fact, _ Report, err error) {
		errs = append(errs, err)
	}))

	d.Enqueue("A", true)
	d.Enqueue("A", false) // needs a transition: over quota
	d.Enqueue("B", true)
	d.Stop()
	require.NoError(t, d.Run(context.Background()))

	require.Len(t, errs, 3)
	assert.NoError(t, errs[0])
	assert.True(t, IsQuotaError(errs[1]))
	assert.NoError(t, errs[2])
	assert.Equal(t, logic.True, e.Value("B"))
}
