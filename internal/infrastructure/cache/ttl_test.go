package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCachesUntilExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTL[int](10*time.Minute, func() time.Time { return now })

	loads := 0
	load := func() (int, error) {
		loads++
		return loads, nil
	}

	v, err := c.Get(load)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	now = now.Add(9 * time.Minute)
	v, err = c.Get(load)
	require.NoError(t, err)
	assert.Equal(t, 1, v, "should serve cached value before expiry")

	now = now.Add(2 * time.Minute)
	v, err = c.Get(load)
	require.NoError(t, err)
	assert.Equal(t, 2, v, "should reload after expiry")
}

func TestTTLLoaderErrorNotCached(t *testing.T) {
	c := NewTTL[string](time.Minute, nil)

	_, err := c.Get(func() (string, error) {
		return "", errors.New("db down")
	})
	require.Error(t, err)

	v, err := c.Get(func() (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestTTLInvalidate(t *testing.T) {
	c := NewTTL[int](time.Hour, nil)

	loads := 0
	load := func() (int, error) {
		loads++
		return loads, nil
	}

	_, err := c.Get(load)
	require.NoError(t, err)

	c.Invalidate()

	v, err := c.Get(load)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}
