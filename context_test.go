package custody

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHeightAndChain(t *testing.T) {
	ctx := context.Background()

	_, ok := GetHeight(ctx)
	assert.False(t, ok)

	ctx = WithHeight(ctx, 42)
	h, ok := GetHeight(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(42), h)
	assert.Panics(t, func() { WithHeight(ctx, 43) })

	assert.Panics(t, func() { GetChainID(ctx) })
	assert.Panics(t, func() { WithChainID(ctx, "no") })
	ctx = WithChainID(ctx, "custody-test")
	assert.Equal(t, "custody-test", GetChainID(ctx))
}

func TestContextBlockTime(t *testing.T) {
	ctx := context.Background()
	_, err := BlockTime(ctx)
	require.Error(t, err)
	assert.Panics(t, func() { IsExpired(ctx, 1) })

	now := time.Unix(1000, 0)
	ctx = WithBlockTime(ctx, now)
	assert.Panics(t, func() { WithBlockTime(ctx, now) })

	unix, err := UnixNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, UnixTime(1000), unix)

	assert.True(t, IsExpired(ctx, 1000), "expiration is inclusive")
	assert.True(t, IsExpired(ctx, 999))
	assert.False(t, IsExpired(ctx, 1001))

	assert.False(t, InThePast(ctx, now))
	assert.True(t, InThePast(ctx, now.Add(-time.Second)))
	assert.False(t, InTheFuture(ctx, now))
	assert.True(t, InTheFuture(ctx, now.Add(time.Second)))
}

func TestContextLogger(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, DefaultLogger, GetLogger(ctx))
	ctx = WithLogInfo(ctx, "module", "test")
	assert.NotNil(t, GetLogger(ctx))
}

func TestUnixDurationJSON(t *testing.T) {
	var d UnixDuration
	require.NoError(t, json.Unmarshal([]byte(`"72h"`), &d))
	assert.Equal(t, UnixDuration(72*3600), d)

	require.NoError(t, json.Unmarshal([]byte(`60`), &d))
	assert.Equal(t, UnixDuration(60), d)

	raw, err := json.Marshal(UnixDuration(90))
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(raw))

	assert.Error(t, UnixDuration(-1).Validate())
	assert.Equal(t, UnixTime(1060), UnixTime(1000).Add(60))
	assert.Equal(t, UnixDuration(60), UnixTime(1060).Sub(1000))
}

func TestUnixTimeJSON(t *testing.T) {
	var ut UnixTime
	require.NoError(t, json.Unmarshal([]byte(`1500000000`), &ut))
	assert.Equal(t, UnixTime(1500000000), ut)

	require.NoError(t, json.Unmarshal([]byte(`"2020-01-01T00:00:00Z"`), &ut))
	assert.Equal(t, UnixTime(1577836800), ut)

	assert.Error(t, json.Unmarshal([]byte(`-5`), &ut))
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ut))
}
