package router

import (
	"github.com/kyanome/rag-backend/controller"
	"github.com/kyanome/rag-backend/middleware"

	"github.com/gin-gonic/gin"
)

func addApiRouter(engine *gin.Engine) {

	api := engine.Group("/api/v1")
	api.Use(middleware.RateLimit)
	{
		// 认证相关 API
		auth := api.Group("/auth")
		{
			auth.POST("/register", controller.Register)
			auth.POST("/login", controller.Login)
			auth.POST("/refresh", controller.Refresh)
			auth.POST("/logout", controller.Logout)

			auth.POST("/logout/all", middleware.Auth, controller.LogoutAll)
			auth.PUT("/password", middleware.Auth, controller.ChangePassword)
			auth.GET("/me", middleware.Auth, controller.Me)
		}

		// 文档管理 API
		documents := api.Group("/documents", middleware.Auth)
		{
			documents.POST("", controller.CreateDocument)
			documents.POST("/upload", controller.UploadDocument)
			documents.GET("", controller.ListDocuments)
			documents.GET("/:document_id", controller.GetDocument)
			documents.PUT("/:document_id", controller.UpdateDocument)
			documents.DELETE("/:document_id", controller.DeleteDocument)

			// 分块和向量
			documents.POST("/:document_id/chunks", controller.ChunkDocument)
			documents.POST("/:document_id/embeddings", controller.GenerateEmbeddings)
		}

		// 检索 API
		api.POST("/search", middleware.Auth, controller.Search)

		// RAG 问答 API
		rag := api.Group("/rag", middleware.Auth)
		{
			rag.POST("/query", controller.RagQuery)
			rag.POST("/query/stream", controller.RagQueryStream)
		}

		// 管理员 API
		admin := api.Group("/admin", middleware.Auth, middleware.RequireAdmin)
		{
			admin.GET("/users", controller.ListUsers)
			admin.PUT("/users/:user_id/role", controller.UpdateUserRole)
			admin.DELETE("/users/:user_id", controller.DeleteUser)
		}
	}
}
