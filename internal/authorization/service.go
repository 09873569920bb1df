package authorization

import (
	"context"

	"github.com/smallbiznis/onclick/internal/apperror"
	"github.com/smallbiznis/onclick/internal/host"
)

const (
	ObjectPlatform = "platform"

	ActionFeeSet        = "fee.set"
	ActionFeesWithdraw  = "fees.withdraw"
	RoleAdmin           = "role:admin"
	identitySubjectName = "identity:"
)

type Service interface {
	// Authorize reports ErrNotPageOwner unless subject holds action on object.
	Authorize(ctx context.Context, subject host.Identity, object string, action string) error
	// BindAdministrator grants the admin role to id. Existing bindings to
	// other identities are left in place.
	BindAdministrator(ctx context.Context, id host.Identity) error
}

// RequireOwner is the page ownership check: plain identity equality.
func RequireOwner(caller, owner host.Identity) error {
	if caller != owner {
		return apperror.ErrNotPageOwner
	}
	return nil
}

func subjectOf(id host.Identity) string {
	return identitySubjectName + id.String()
}
