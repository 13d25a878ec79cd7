package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"collabtrack/internal/model"
	"collabtrack/internal/pkg/auth"
	"collabtrack/internal/service"
	"collabtrack/pkg/constants"
	pkgErrors "collabtrack/pkg/errors"
	"collabtrack/pkg/utils"
)

const userContextKey = "user"

// AuthMiddleware JWT认证中间件
// 每个请求都重新读取用户, 角色变更在下一次请求立即生效
func AuthMiddleware(identities service.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 获取Authorization header
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" || !strings.HasPrefix(authHeader, constants.HeaderBearerPrefix) {
			utils.Error(c, pkgErrors.ErrUnauthenticated)
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, constants.HeaderBearerPrefix))
		id, user, err := identities.Resolve(c.Request.Context(), token)
		if err != nil {
			utils.Error(c, err)
			c.Abort()
			return
		}

		c.Set(constants.IdentityContextKey, id)
		c.Set(userContextKey, user)
		c.Next()
	}
}

// GetIdentity 当前请求的操作者
func GetIdentity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(constants.IdentityContextKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}

// GetUser 当前请求的用户记录
func GetUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok && user != nil
}
