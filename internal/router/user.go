package router

import (
	"github.com/gin-gonic/gin"
)

// userRoutes defines the user directory and upload routes; all of them
// require a valid access token.
func (r *Router) userRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(r.jwtMw.RequireAuth())
	{
		users.GET("", r.userHandler.List)
		users.GET("/:id", r.userHandler.Get)
		users.POST("/profile-image", r.userHandler.UploadProfileImage)
		users.POST("/documents", r.userHandler.UploadDocuments)
	}

	// Listing lives outside /users: a GET sibling of /users/:id would
	// collide with the id wildcard in the routing tree.
	documents := rg.Group("/documents")
	documents.Use(r.jwtMw.RequireAuth())
	{
		documents.GET("", r.userHandler.ListDocuments)
		documents.POST("/presign", r.userHandler.PresignDocumentUpload)
	}
}
