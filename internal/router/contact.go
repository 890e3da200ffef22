package router

import "github.com/gin-gonic/gin"

// contactRoutes defines the contact book routes, all owner-scoped
func (r *Router) contactRoutes(rg *gin.RouterGroup) {
	contacts := rg.Group("/contacts")
	contacts.Use(r.authMw.RequireAuth())
	{
		contacts.GET("", r.contactHandler.GetAll)
		contacts.GET("/birthdays-soon", r.contactHandler.BirthdaysSoon)
		contacts.GET("/:id", r.contactHandler.GetByID)
		contacts.POST("", r.contactHandler.Create)
		contacts.PUT("/:id", r.contactHandler.Update)
		contacts.DELETE("/:id", r.contactHandler.Delete)
	}
}
