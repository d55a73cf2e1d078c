package routers

import (
	"github.com/GrainArc/TrialMap/views"
	"github.com/gin-gonic/gin"
)

func ExperimentRouters(r *gin.Engine, experiments *views.ExperimentHandler, messages *views.MessageHandler) {
	experimentRouter := r.Group("/experiment")
	{
		experimentRouter.POST("/import", experiments.Import)
		experimentRouter.GET("/plans", experiments.ListPlans)
		experimentRouter.GET("/plans/:id/plots", experiments.PlanPlots)
		experimentRouter.GET("/plans/:id/geojson", experiments.PlanGeoJSON)
	}
	{
		// 导入结果推送
		experimentRouter.GET("/messages/ws", messages.Subscribe)
	}
}
