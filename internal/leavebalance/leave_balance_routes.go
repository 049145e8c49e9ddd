package leavebalance

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	r.GET("/employees/:employee_id/leave-balances", handler.ListByEmployee)
}
