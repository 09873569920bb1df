package authorization

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/smallbiznis/onclick/internal/apperror"
	"github.com/smallbiznis/onclick/internal/host"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer persists policies through db. It must not be handed a
// transaction: policy writes happen outside ledger calls.
func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, subject host.Identity, object string, action string) error {
	allowed, err := s.enforcer.Enforce(subjectOf(subject), object, action)
	if err != nil {
		return fmt.Errorf("enforce %s/%s: %w", object, action, err)
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("subject", subject.String()),
			zap.String("object", object),
			zap.String("action", action),
		)
		return apperror.ErrNotPageOwner
	}
	return nil
}

func (s *ServiceImpl) BindAdministrator(ctx context.Context, id host.Identity) error {
	subject := subjectOf(id)
	has, err := s.enforcer.HasGroupingPolicy(subject, RoleAdmin)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	if _, err := s.enforcer.AddGroupingPolicy(subject, RoleAdmin); err != nil {
		return fmt.Errorf("bind administrator: %w", err)
	}
	s.log.Info("administrator bound", zap.String("identity", id.String()))
	return nil
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		{RoleAdmin, ObjectPlatform, ActionFeeSet},
		{RoleAdmin, ObjectPlatform, ActionFeesWithdraw},
	}
	for _, policy := range policies {
		has, err := enforcer.HasPolicy(policy)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
