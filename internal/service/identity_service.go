package service

import (
	"context"
	"errors"

	"collabtrack/internal/model"
	"collabtrack/internal/pkg/auth"
	"collabtrack/internal/pkg/jwt"
	"collabtrack/internal/repository"
	"collabtrack/pkg/constants"
	pkgErrors "collabtrack/pkg/errors"
)

// IdentityService 把 bearer token 解析为当前操作者
type IdentityService interface {
	Resolve(ctx context.Context, token string) (auth.Identity, *model.User, error)
}

type identityService struct {
	tokens   *jwt.Manager
	userRepo repository.UserRepository
}

func NewIdentityService(tokens *jwt.Manager, userRepo repository.UserRepository) IdentityService {
	return &identityService{tokens: tokens, userRepo: userRepo}
}

// Resolve 校验 token 后按 subject 重新读取用户, 角色以数据库为准
func (s *identityService) Resolve(ctx context.Context, token string) (auth.Identity, *model.User, error) {
	if token == "" {
		return auth.Identity{}, nil, pkgErrors.ErrUnauthenticated
	}

	claims, err := s.tokens.Parse(token, constants.JWTTypeAccess)
	if err != nil {
		return auth.Identity{}, nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrNotFound) {
			return auth.Identity{}, nil, pkgErrors.ErrUnauthenticated
		}
		return auth.Identity{}, nil, err
	}

	if user.Status != constants.StatusEnabled {
		return auth.Identity{}, nil, pkgErrors.ErrUserDisabled
	}

	return identityOf(user), user, nil
}

func identityOf(user *model.User) auth.Identity {
	return auth.Identity{
		ID:       user.ID,
		Username: user.Username,
		Role:     auth.NormalizeRole(user.Role),
	}
}
