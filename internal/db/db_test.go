package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStores(t *testing.T) {
	for _, backend := range []string{"", BackendMemory, BackendSQLite} {
		t.Run("backend="+backend, func(t *testing.T) {
			ctx := context.Background()
			st, err := Open(ctx, backend)
			require.NoError(t, err)
			defer st.Close()

			_, _, err = st.Get(ctx, "missing")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, st.Put(ctx, "k", []byte("one")))
			got, at, err := st.Get(ctx, "k")
			require.NoError(t, err)
			require.Equal(t, []byte("one"), got)
			require.False(t, at.IsZero())

			require.NoError(t, st.Put(ctx, "k", []byte("two")))
			got, _, err = st.Get(ctx, "k")
			require.NoError(t, err)
			require.Equal(t, []byte("two"), got)
		})
	}
}

func TestOffStoreNeverHits(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, "OFF")
	require.NoError(t, err)
	require.NoError(t, st.Put(ctx, "k", []byte("v")))
	_, _, err = st.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, st.Close())
}

func TestUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), "redis")
	require.Error(t, err)
}
