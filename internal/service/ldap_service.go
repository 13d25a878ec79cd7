package service

import (
	"fmt"

	"github.com/go-ldap/ldap/v3"

	"collabtrack/internal/pkg/config"
	pkgErrors "collabtrack/pkg/errors"
)

// LDAPUser 目录中读取到的用户属性
type LDAPUser struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
}

type LDAPService interface {
	Authenticate(username, password string) (*LDAPUser, error)
}

type ldapService struct {
	cfg *config.LDAPConfig
}

func NewLDAPService(cfg *config.LDAPConfig) LDAPService {
	return &ldapService{
		cfg: cfg,
	}
}

func (s *ldapService) Authenticate(username, password string) (*LDAPUser, error) {
	if !s.cfg.Enabled {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "LDAP authentication is disabled")
	}
	// 空密码会被部分服务器当作匿名绑定
	if username == "" || password == "" {
		return nil, pkgErrors.ErrInvalidCredentials
	}

	// 连接LDAP服务器
	conn, err := s.connect()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	// 搜索用户
	entry, err := s.searchUser(conn, username)
	if err != nil {
		return nil, err
	}

	// 验证密码
	if err := conn.Bind(entry.DN, password); err != nil {
		return nil, pkgErrors.ErrInvalidCredentials
	}

	attrs := s.cfg.Attributes
	return &LDAPUser{
		Username:  username,
		Email:     entry.GetAttributeValue(attrs.Email),
		FirstName: entry.GetAttributeValue(attrs.FirstName),
		LastName:  entry.GetAttributeValue(attrs.LastName),
	}, nil
}

func (s *ldapService) connect() (*ldap.Conn, error) {
	scheme := "ldap"
	if s.cfg.UseSSL {
		scheme = "ldaps"
	}

	conn, err := ldap.DialURL(fmt.Sprintf("%s://%s:%d", scheme, s.cfg.Host, s.cfg.Port))
	if err != nil {
		return nil, pkgErrors.ErrUpstreamUnavailable.WithErr(err)
	}

	// 使用管理员账号绑定
	if err := conn.Bind(s.cfg.BindDN, s.cfg.BindPassword); err != nil {
		conn.Close()
		return nil, pkgErrors.ErrUpstreamUnavailable.WithErr(err)
	}

	return conn, nil
}

func (s *ldapService) searchUser(conn *ldap.Conn, username string) (*ldap.Entry, error) {
	filter := fmt.Sprintf(s.cfg.UserFilter, ldap.EscapeFilter(username))
	attrs := s.cfg.Attributes

	searchRequest := ldap.NewSearchRequest(
		s.cfg.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0,
		0,
		false,
		filter,
		[]string{attrs.Username, attrs.Email, attrs.FirstName, attrs.LastName},
		nil,
	)

	result, err := conn.Search(searchRequest)
	if err != nil {
		return nil, pkgErrors.ErrUpstreamUnavailable.WithErr(err)
	}

	// 找不到或不唯一都按凭据错误处理, 不暴露目录结构
	if len(result.Entries) != 1 {
		return nil, pkgErrors.ErrInvalidCredentials
	}
	return result.Entries[0], nil
}
