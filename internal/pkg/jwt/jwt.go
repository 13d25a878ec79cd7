package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"collabtrack/internal/pkg/config"
	"collabtrack/pkg/constants"
	pkgErrors "collabtrack/pkg/errors"
)

// UserClaims 用户Claims
// Role 仅供客户端展示, 服务端鉴权以数据库中的角色为准
type UserClaims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Type     string `json:"type"` // access or refresh
	jwt.RegisteredClaims
}

// TokenPair 访问令牌与刷新令牌
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"` // 秒
}

// Manager 签发与校验 Token
type Manager struct {
	secret        []byte
	issuer        string
	accessExpire  time.Duration
	refreshExpire time.Duration
	now           func() time.Time
}

// NewManager 创建 Token 管理器
func NewManager(cfg config.JWTConfig) *Manager {
	return &Manager{
		secret:        []byte(cfg.Secret),
		issuer:        cfg.Issuer,
		accessExpire:  time.Duration(cfg.AccessTokenExpire) * time.Second,
		refreshExpire: time.Duration(cfg.RefreshTokenExpire) * time.Second,
		now:           time.Now,
	}
}

// GeneratePair 生成访问Token与刷新Token
func (m *Manager) GeneratePair(userID int64, username, role string) (*TokenPair, error) {
	access, err := m.generate(userID, username, role, constants.JWTTypeAccess, m.accessExpire)
	if err != nil {
		return nil, err
	}
	refresh, err := m.generate(userID, username, role, constants.JWTTypeRefresh, m.refreshExpire)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(m.accessExpire.Seconds()),
	}, nil
}

func (m *Manager) generate(userID int64, username, role, tokenType string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := UserClaims{
		UserID:   userID,
		Username: username,
		Role:     role,
		Type:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", pkgErrors.Wrap(pkgErrors.CodeInternalError, "签发Token失败", err)
	}
	return signed, nil
}

// Parse 解析并校验Token, 过期返回 ErrTokenExpired, 其余失败返回 ErrInvalidToken
func (m *Manager) Parse(tokenString string, expectType string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, pkgErrors.ErrTokenExpired.WithErr(err)
		}
		return nil, pkgErrors.ErrInvalidToken.WithErr(err)
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, pkgErrors.ErrInvalidToken
	}

	// 检查Token类型
	if expectType != "" && claims.Type != expectType {
		return nil, pkgErrors.ErrInvalidToken
	}

	// Subject 与 uid 必须一致
	if sub, err := strconv.ParseInt(claims.Subject, 10, 64); err != nil || sub != claims.UserID || sub <= 0 {
		return nil, pkgErrors.ErrInvalidToken
	}

	return claims, nil
}
