package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"collabtrack/internal/dto"
	"collabtrack/internal/model"
	"collabtrack/internal/pkg/auth"
	"collabtrack/internal/pkg/config"
	"collabtrack/internal/pkg/crypto"
	"collabtrack/internal/pkg/jwt"
	"collabtrack/internal/pkg/logger"
	"collabtrack/internal/repository"
	"collabtrack/pkg/constants"
	pkgErrors "collabtrack/pkg/errors"
	"collabtrack/pkg/utils"
)

var errRegistrationConflict = pkgErrors.NewWithReason(pkgErrors.CodeConflict, pkgErrors.ReasonAlreadyExists, "Username or email already registered")

type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
}

type authService struct {
	cfg         *config.AuthConfig
	tokens      *jwt.Manager
	userRepo    repository.UserRepository
	ldapService LDAPService
}

func NewAuthService(
	cfg *config.AuthConfig,
	tokens *jwt.Manager,
	userRepo repository.UserRepository,
	ldapService LDAPService,
) AuthService {
	return &authService{
		cfg:         cfg,
		tokens:      tokens,
		userRepo:    userRepo,
		ldapService: ldapService,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	if !s.cfg.Local.Enabled || !s.cfg.Local.AllowRegistration {
		return nil, pkgErrors.New(pkgErrors.CodeForbidden, "Registration is disabled")
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, pkgErrors.Required("username")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgErrors.Required("email")
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, pkgErrors.Validation("password", "must be at least %d characters", crypto.MinPasswordLength)
	}

	user := &model.User{
		Username:     username,
		Email:        &email,
		PasswordHash: hash,
		FirstName:    utils.SanitizeText(req.FirstName),
		LastName:     utils.SanitizeText(req.LastName),
		Role:         string(auth.NormalizeRole(req.Role)),
		AuthProvider: constants.AuthTypeLocal,
		Status:       constants.StatusEnabled,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, pkgErrors.ErrAlreadyExists) {
			return nil, errRegistrationConflict
		}
		return nil, err
	}

	logger.Info("用户注册", zap.Int64("user_id", user.ID), zap.String("username", user.Username), zap.String("role", user.Role))
	return toUserResponse(user), nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	var (
		user *model.User
		err  error
	)

	switch req.AuthType {
	case constants.AuthTypeLDAP:
		if !s.cfg.LDAP.Enabled {
			return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "LDAP authentication is disabled")
		}
		user, err = s.authenticateLDAP(ctx, req.Username, req.Password)

	case "", constants.AuthTypeLocal:
		if !s.cfg.Local.Enabled {
			return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "Local authentication is disabled")
		}
		user, err = s.authenticateLocal(ctx, req)

	default:
		return nil, pkgErrors.Validation("auth_type", "must be one of [ldap local]")
	}
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	// 登录时间写入失败不影响登录
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		logger.Warn("更新最后登录时间失败", zap.Int64("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	logger.Info("用户登录", zap.Int64("user_id", user.ID), zap.String("auth_type", user.AuthProvider))
	return s.issue(user)
}

func (s *authService) authenticateLocal(ctx context.Context, req *dto.LoginRequest) (*model.User, error) {
	login := strings.TrimSpace(req.Email)
	if login == "" {
		login = strings.TrimSpace(req.Username)
	}
	if login == "" {
		return nil, pkgErrors.Required("email")
	}

	var (
		user *model.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.userRepo.FindByEmail(ctx, strings.ToLower(login))
	} else {
		user, err = s.userRepo.FindByUsername(ctx, login)
	}
	if err != nil {
		if errors.Is(err, pkgErrors.ErrNotFound) {
			return nil, pkgErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	// 验证密码, LDAP 用户没有本地密码
	if user.AuthProvider != constants.AuthTypeLocal || !crypto.CheckPassword(req.Password, user.PasswordHash) {
		return nil, pkgErrors.ErrInvalidCredentials
	}

	// 检查状态
	if user.Status != constants.StatusEnabled {
		return nil, pkgErrors.ErrUserDisabled
	}
	return user, nil
}

// authenticateLDAP 目录认证通过后同步本地用户, 首次登录创建 team_member
func (s *authService) authenticateLDAP(ctx context.Context, username, password string) (*model.User, error) {
	info, err := s.ldapService.Authenticate(strings.TrimSpace(username), password)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, info.Username)
	switch {
	case err == nil:
		if user.AuthProvider != constants.AuthTypeLDAP {
			return nil, pkgErrors.ErrInvalidCredentials
		}
		if user.Status != constants.StatusEnabled {
			return nil, pkgErrors.ErrUserDisabled
		}
		user.FirstName = info.FirstName
		user.LastName = info.LastName
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
		return user, nil

	case errors.Is(err, pkgErrors.ErrNotFound):
		user = &model.User{
			Username:     info.Username,
			FirstName:    info.FirstName,
			LastName:     info.LastName,
			Role:         constants.RoleTeamMember,
			AuthProvider: constants.AuthTypeLDAP,
			Status:       constants.StatusEnabled,
		}
		if info.Email != "" {
			email := strings.ToLower(info.Email)
			user.Email = &email
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		logger.Info("同步LDAP用户", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
		return user, nil

	default:
		return nil, err
	}
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	claims, err := s.tokens.Parse(refreshToken, constants.JWTTypeRefresh)
	if err != nil {
		return nil, err
	}

	// 重新读取用户, 角色变更与禁用立即生效
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrNotFound) {
			return nil, pkgErrors.ErrInvalidToken
		}
		return nil, err
	}
	if user.Status != constants.StatusEnabled {
		return nil, pkgErrors.ErrUserDisabled
	}

	return s.issue(user)
}

func (s *authService) issue(user *model.User) (*dto.LoginResponse, error) {
	role := string(auth.NormalizeRole(user.Role))
	pair, err := s.tokens.GeneratePair(user.ID, user.Username, role)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token:        pair.AccessToken,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
		User:         toUserResponse(user),
	}, nil
}
