package chart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderAppliesCurrentResult(t *testing.T) {
	l := NewLoader()

	want := []Series{{Name: "2024年", X: []string{"06-15"}, Y: []int64{2}}}
	got, current, err := l.Do(context.Background(), func(context.Context) ([]Series, error) {
		return want, nil
	})

	require.NoError(t, err)
	assert.True(t, current)
	assert.Equal(t, want, got)
}

func TestLoaderPropagatesCurrentError(t *testing.T) {
	l := NewLoader()

	boom := errors.New("fetch failed")
	_, current, err := l.Do(context.Background(), func(context.Context) ([]Series, error) {
		return nil, boom
	})

	assert.True(t, current)
	assert.ErrorIs(t, err, boom)
}

func TestLoaderDiscardsStaleResponse(t *testing.T) {
	l := NewLoader()

	firstStarted := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)

	var staleSeries []Series
	var staleCurrent bool
	go func() {
		defer wg.Done()
		staleSeries, staleCurrent, _ = l.Do(context.Background(), func(context.Context) ([]Series, error) {
			close(firstStarted)
			<-release
			return []Series{{Name: "old"}}, nil
		})
	}()

	// A second fetch begins while the first is still blocked on its response.
	<-firstStarted
	fresh, current, err := l.Do(context.Background(), func(context.Context) ([]Series, error) {
		return []Series{{Name: "new"}}, nil
	})
	require.NoError(t, err)
	assert.True(t, current)
	require.Len(t, fresh, 1)
	assert.Equal(t, "new", fresh[0].Name)

	// Now the slow first response lands and must be discarded.
	close(release)
	wg.Wait()
	assert.False(t, staleCurrent)
	assert.Nil(t, staleSeries)
}

func TestLoaderStaleErrorIsSwallowed(t *testing.T) {
	l := NewLoader()

	started := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)

	var staleErr error
	var staleCurrent bool
	go func() {
		defer wg.Done()
		_, staleCurrent, staleErr = l.Do(context.Background(), func(context.Context) ([]Series, error) {
			close(started)
			<-release
			return nil, errors.New("timeout on abandoned request")
		})
	}()

	<-started
	_, _, _ = l.Do(context.Background(), func(context.Context) ([]Series, error) {
		return nil, nil
	})

	close(release)
	wg.Wait()
	assert.False(t, staleCurrent)
	assert.NoError(t, staleErr)
}
