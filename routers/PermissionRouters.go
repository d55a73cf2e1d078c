package routers

import (
	"github.com/GrainArc/TrialMap/views"
	"github.com/gin-gonic/gin"
)

func PermissionRouters(r *gin.Engine, permissions *views.PermissionHandler) {
	permissionRouter := r.Group("/permission")
	{
		permissionRouter.GET("/check", permissions.Check)
		permissionRouter.GET("/roles/:role", permissions.Resolve)
		permissionRouter.GET("/roles/:role/stored", permissions.Stored)
		permissionRouter.POST("/roles/:role/sync", permissions.Sync)
	}
}
