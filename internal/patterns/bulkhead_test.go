package patterns

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkhead_RejectsWhenFull(t *testing.T) {
	b := NewBulkhead(1, 20*time.Millisecond, "render", "test-service")

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- b.Execute(func() error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	err := b.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrBulkheadFull)

	close(release)
	require.NoError(t, <-done)
	assert.NoError(t, b.Execute(func() error { return nil }))
}

func TestBulkhead_PassesThroughErrors(t *testing.T) {
	b := NewBulkhead(2, time.Second, "render", "test-service")
	boom := errors.New("boom")

	assert.ErrorIs(t, b.Execute(func() error { return boom }), boom)
	assert.Equal(t, 2, b.Capacity())
}

func TestBulkhead_MinimumCapacity(t *testing.T) {
	assert.Equal(t, 1, NewBulkhead(0, time.Second, "render", "test-service").Capacity())
}
