package leavepolicy

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	policies := r.Group("/leave-policies")
	{
		policies.GET("", handler.GetAll)
		policies.GET("/:id", handler.GetByID)
		policies.POST("", handler.Create)
		policies.PUT("/:id", handler.Update)
		policies.DELETE("/:id", handler.Delete)
	}
}
