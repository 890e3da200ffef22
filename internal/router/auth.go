package router

import "github.com/gin-gonic/gin"

// authRoutes defines signup, login and email confirmation routes
func (r *Router) authRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/signup", r.authHandler.Signup)
		auth.POST("/login", r.authHandler.Login)
		auth.POST("/refresh_token", r.authHandler.Refresh)
		auth.GET("/confirmed_email/:token", r.authHandler.ConfirmEmail)
		auth.POST("/request_email", r.authHandler.RequestEmail)
	}
}
