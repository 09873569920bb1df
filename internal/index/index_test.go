package index_test

import (
	"context"
	"testing"

	"github.com/smallbiznis/onclick/internal/index"
	"github.com/smallbiznis/onclick/internal/ledgertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendListCount(t *testing.T) {
	db := ledgertest.OpenDB(t)
	repo := index.Provide()
	ctx := context.Background()

	empty, err := repo.List(ctx, db, index.HandleIntents, "alice")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, v := range []string{"c", "a", "b"} {
		require.NoError(t, repo.Append(ctx, db, index.HandleIntents, "alice", v))
	}
	require.NoError(t, repo.Append(ctx, db, index.OwnerIntents, "alice", "z"))

	values, err := repo.List(ctx, db, index.HandleIntents, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, values)

	n, err := repo.Count(ctx, db, index.HandleIntents, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	n, err = repo.Count(ctx, db, index.OwnerIntents, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}
