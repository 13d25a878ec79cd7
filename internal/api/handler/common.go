package handler

import (
	"github.com/gin-gonic/gin"

	"collabtrack/internal/api/middleware"
	"collabtrack/internal/dto"
	"collabtrack/internal/pkg/auth"
	pkgErrors "collabtrack/pkg/errors"
	"collabtrack/pkg/utils"
)

// currentIdentity 取当前操作者, 失败时已写入响应
func currentIdentity(c *gin.Context) (auth.Identity, bool) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		utils.Error(c, pkgErrors.ErrUnauthenticated)
		return auth.Identity{}, false
	}
	return id, true
}

// bindID 绑定路径参数 :id
func bindID(c *gin.Context) (int64, bool) {
	var p dto.IDParam
	if err := c.ShouldBindUri(&p); err != nil {
		utils.BindError(c, err)
		return 0, false
	}
	return p.ID, true
}

// bindMember 绑定路径参数 :id/:userId
func bindMember(c *gin.Context) (dto.MemberParam, bool) {
	var p dto.MemberParam
	if err := c.ShouldBindUri(&p); err != nil {
		utils.BindError(c, err)
		return p, false
	}
	return p, true
}
