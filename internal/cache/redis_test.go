package cache

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddr(t *testing.T) {
	opts, err := ParseAddr("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)

	opts, err = ParseAddr("redis://:pw@cache:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)

	_, err = ParseAddr("redis://%zz")
	assert.Error(t, err)
}

func TestInitRedis(t *testing.T) {
	t.Cleanup(func() { SetClient(nil) })

	mr, err := miniredis.Run()
	require.NoError(t, err)
	InitRedis(mr.Addr())
	require.NotNil(t, GetClient())

	InitRedis("redis://%zz")
	assert.Nil(t, GetClient(), "a bad address clears the previous client")

	mr.Close()
	InitRedis(mr.Addr())
	assert.Nil(t, GetClient(), "an unreachable server leaves the client nil")
}
