package router

import "github.com/gin-gonic/gin"

// userRoutes defines the authenticated profile routes
func (r *Router) userRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(r.authMw.RequireAuth())
	{
		users.GET("/me", r.userHandler.Me)
		users.PATCH("/avatar", r.userHandler.UpdateAvatar)
	}
}
