package authorization_test

import (
	"context"
	"testing"

	"github.com/smallbiznis/onclick/internal/apperror"
	"github.com/smallbiznis/onclick/internal/authorization"
	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/ledgertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) authorization.Service {
	t.Helper()
	enforcer, err := authorization.NewEnforcer(ledgertest.OpenDB(t))
	require.NoError(t, err)
	return authorization.NewService(authorization.Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func TestAdministratorPermissions(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	err := svc.Authorize(ctx, ledgertest.Admin, authorization.ObjectPlatform, authorization.ActionFeeSet)
	require.ErrorIs(t, err, apperror.ErrNotPageOwner)

	require.NoError(t, svc.BindAdministrator(ctx, ledgertest.Admin))
	require.NoError(t, svc.BindAdministrator(ctx, ledgertest.Admin))

	assert.NoError(t, svc.Authorize(ctx, ledgertest.Admin, authorization.ObjectPlatform, authorization.ActionFeeSet))
	assert.NoError(t, svc.Authorize(ctx, ledgertest.Admin, authorization.ObjectPlatform, authorization.ActionFeesWithdraw))

	err = svc.Authorize(ctx, ledgertest.Admin, authorization.ObjectPlatform, "fees.burn")
	require.ErrorIs(t, err, apperror.ErrNotPageOwner)
	err = svc.Authorize(ctx, ledgertest.Alice, authorization.ObjectPlatform, authorization.ActionFeeSet)
	require.ErrorIs(t, err, apperror.ErrNotPageOwner)
}

func TestPoliciesPersist(t *testing.T) {
	conn := ledgertest.OpenDB(t)
	first, err := authorization.NewEnforcer(conn)
	require.NoError(t, err)
	svc := authorization.NewService(authorization.Params{Log: zap.NewNop(), Enforcer: first})
	require.NoError(t, svc.BindAdministrator(context.Background(), ledgertest.Admin))

	reloaded, err := authorization.NewEnforcer(conn)
	require.NoError(t, err)
	again := authorization.NewService(authorization.Params{Log: zap.NewNop(), Enforcer: reloaded})
	assert.NoError(t, again.Authorize(context.Background(), ledgertest.Admin, authorization.ObjectPlatform, authorization.ActionFeesWithdraw))
}

func TestRequireOwner(t *testing.T) {
	assert.NoError(t, authorization.RequireOwner(ledgertest.Alice, ledgertest.Alice))
	assert.NoError(t, authorization.RequireOwner(host.Identity{}, host.Identity{}))
	assert.ErrorIs(t, authorization.RequireOwner(ledgertest.Bob, ledgertest.Alice), apperror.ErrNotPageOwner)
}
