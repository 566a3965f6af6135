package reference_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipfolio/patmaint/internal/domain/reference"
	"github.com/ipfolio/patmaint/internal/infrastructure/monitoring/logging"
	"github.com/ipfolio/patmaint/internal/testutil"
)

func newResolver(t *testing.T) (reference.Resolver, *testutil.Store) {
	t.Helper()
	store := testutil.NewStore()
	return reference.NewResolver(store, logging.NewNopLogger()), store
}

func TestResolveClient_CreatesOnFirstObservation(t *testing.T) {
	t.Parallel()

	r, store := newResolver(t)
	ctx := context.Background()

	id, err := r.ResolveClient(ctx, "Acme Corp")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	n, err := store.CountClients(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestResolveClient_Idempotent(t *testing.T) {
	t.Parallel()

	r, store := newResolver(t)
	ctx := context.Background()

	first, err := r.ResolveClient(ctx, "Acme Corp")
	require.NoError(t, err)
	second, err := r.ResolveClient(ctx, "Acme Corp")
	require.NoError(t, err)

	assert.Equal(t, first, second, "re-resolution must return the existing id")

	n, _ := store.CountClients(ctx)
	assert.Equal(t, int64(1), n)
}

func TestResolveClient_EmptyNameIsSkipped(t *testing.T) {
	t.Parallel()

	r, store := newResolver(t)
	ctx := context.Background()

	id, err := r.ResolveClient(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, id, "empty value resolves to no reference, not an Unknown entity")

	n, _ := store.CountClients(ctx)
	assert.Zero(t, n)
}

func TestResolveJurisdiction_DisplayNameEqualsCode(t *testing.T) {
	t.Parallel()

	r, store := newResolver(t)
	ctx := context.Background()

	id, err := r.ResolveJurisdiction(ctx, "US")
	require.NoError(t, err)

	j, err := store.GetJurisdiction(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "US", j.Code)
	assert.Equal(t, "US", j.DisplayName)
}

func TestResolveJurisdiction_EmptyCodeIsSkipped(t *testing.T) {
	t.Parallel()

	r, store := newResolver(t)
	ctx := context.Background()

	id, err := r.ResolveJurisdiction(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)

	n, _ := store.CountJurisdictions(ctx)
	assert.Zero(t, n)
}

func TestResolveJurisdiction_RejectsLongToken(t *testing.T) {
	t.Parallel()

	r, _ := newResolver(t)

	_, err := r.ResolveJurisdiction(context.Background(), "NOT-A-SHORT-CODE")
	require.Error(t, err)
}

func TestResolve_DistinctValuesGetDistinctIDs(t *testing.T) {
	t.Parallel()

	r, _ := newResolver(t)
	ctx := context.Background()

	a, err := r.ResolveClient(ctx, "Acme Corp")
	require.NoError(t, err)
	b, err := r.ResolveClient(ctx, "Globex")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestResolveClient_ConcurrentSameValueCreatesOne(t *testing.T) {
	t.Parallel()

	r, store := newResolver(t)
	ctx := context.Background()

	const workers = 16
	ids := make([]uuid.UUID, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			id, err := r.ResolveClient(ctx, "Initech")
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		require.Equal(t, ids[0], ids[i], fmt.Sprintf("worker %d got a different id", i))
	}
	n, _ := store.CountClients(ctx)
	assert.Equal(t, int64(1), n)
}
