package dataset_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/knmi-forecast/internal/adapter/dataset"
	"go.ngs.io/knmi-forecast/internal/domain"
)

// countingDataset fails the test if two calls overlap.
type countingDataset struct {
	t      *testing.T
	mu     sync.Mutex
	active int
	reads  int
}

func (c *countingDataset) enter() func() {
	c.mu.Lock()
	c.active++
	if c.active > 1 {
		c.t.Errorf("concurrent access: %d active calls", c.active)
	}
	c.reads++
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		c.active--
		c.mu.Unlock()
	}
}

func (c *countingDataset) Variable(name string) (domain.VariableDescriptor, error) {
	defer c.enter()()
	return domain.VariableDescriptor{Name: name}, nil
}

func (c *countingDataset) ReadAxis(string) ([]float64, error) {
	defer c.enter()()
	return []float64{1}, nil
}

func (c *countingDataset) ReadScalar(string, []int) (float64, error) {
	defer c.enter()()
	return 42, nil
}

func (c *countingDataset) StringAttribute(string, string) (string, bool) {
	defer c.enter()()
	return "", false
}

func (c *countingDataset) Close() error {
	defer c.enter()()
	return nil
}

func TestSynchronized(t *testing.T) {
	inner := &countingDataset{t: t}
	ds := dataset.Synchronized(inner)
	assert.Same(t, ds, dataset.Synchronized(ds), "wrapping twice should be a no-op")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = ds.ReadScalar("ta", []int{0, j})
				_, _ = ds.ReadAxis("time")
			}
		}()
	}
	wg.Wait()
	require.NoError(t, ds.Close())
	assert.Equal(t, 16*50*2+1, inner.reads)
}

func TestWiden(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []float64
	}{
		{"float64", []float64{1.5}, []float64{1.5}},
		{"float32", []float32{2.5, 3}, []float64{2.5, 3}},
		{"int64", []int64{1700000000}, []float64{1700000000}},
		{"int32", []int32{-7}, []float64{-7}},
		{"int16", []int16{-32767}, []float64{-32767}},
		{"scalar float32", float32(0.5), []float64{0.5}},
		{"empty", []float32{}, []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dataset.Widen(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := dataset.Widen([]uint8{1})
	assert.ErrorIs(t, err, dataset.ErrUnsupportedType)
	_, err = dataset.Widen("text")
	assert.ErrorIs(t, err, dataset.ErrUnsupportedType)
}

func TestFirstNumber(t *testing.T) {
	v, ok := dataset.FirstNumber([]float32{-999, 1})
	assert.True(t, ok)
	assert.Equal(t, -999.0, v)

	_, ok = dataset.FirstNumber(nil)
	assert.False(t, ok)
	_, ok = dataset.FirstNumber([]float64{})
	assert.False(t, ok)
}

func TestCheckOrigin(t *testing.T) {
	assert.NoError(t, dataset.CheckOrigin("v", []int{2, 1, 3}, []int{1, 0, 2}))
	assert.ErrorIs(t, dataset.CheckOrigin("v", []int{2, 1, 3}, []int{1, 1, 2}), dataset.ErrIndexOutOfRange)
	assert.ErrorIs(t, dataset.CheckOrigin("v", []int{2}, []int{-1}), dataset.ErrIndexOutOfRange)
	assert.ErrorIs(t, dataset.CheckOrigin("v", []int{2, 2}, []int{0}), dataset.ErrIndexOutOfRange)
}
