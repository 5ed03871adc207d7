package ring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()
	_, err := New[int](-1)
	if !errors.Is(err, errInvalidCapacity) {
		t.Fatalf("received: '%v' but expected: '%v'", err, errInvalidCapacity)
	}

	b, err := New[int](5)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 5, b.Cap())
}

func TestAddRemove(t *testing.T) {
	t.Parallel()
	b, err := New[int](3)
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		require.NoError(t, b.Add(i))
	}
	if err := b.Add(4); !errors.Is(err, ErrFull) {
		t.Fatalf("received: '%v' but expected: '%v'", err, ErrFull)
	}
	assert.Equal(t, 3, b.Len())

	for i := 1; i <= 3; i++ {
		v, err := b.Remove()
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
	if _, err := b.Remove(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("received: '%v' but expected: '%v'", err, ErrEmpty)
	}
}

func TestWraparound(t *testing.T) {
	t.Parallel()
	b, err := New[int](2)
	require.NoError(t, err)

	// Cycle enough values through that head and tail lap the backing slice
	// several times.
	for i := 0; i < 10; i++ {
		require.NoError(t, b.Add(i))
		require.NoError(t, b.Add(i+100))
		v, err := b.Remove()
		require.NoError(t, err)
		assert.Equal(t, i, v)
		v, err = b.Remove()
		require.NoError(t, err)
		assert.Equal(t, i+100, v)
	}
	assert.Equal(t, 0, b.Len())
}

func TestZeroCapacity(t *testing.T) {
	t.Parallel()
	b, err := New[string](0)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Cap())

	if err := b.Add("anything"); !errors.Is(err, ErrFull) {
		t.Fatalf("received: '%v' but expected: '%v'", err, ErrFull)
	}
	if _, err := b.Remove(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("received: '%v' but expected: '%v'", err, ErrEmpty)
	}
}
