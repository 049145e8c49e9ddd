package leave

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the leave endpoints. createGuards run before Create
// only, e.g. idempotency and rate limiting.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler, createGuards ...gin.HandlerFunc) {
	leaves := r.Group("/leaves")
	{
		leaves.POST("", append(createGuards, handler.Create)...)
		leaves.GET("/:id", handler.GetByID)
		leaves.POST("/:id/action", handler.Action)
	}
	r.GET("/employees/:employee_id/leaves", handler.ListByEmployee)
}
