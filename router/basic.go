package router

import (
	"github.com/kyanome/rag-backend/controller"
	"github.com/kyanome/rag-backend/middleware"

	"github.com/gin-gonic/gin"
)

func addBasicRouter(engine *gin.Engine) {
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID)
	engine.Use(middleware.Logger)

	engine.GET("/health", controller.Health)
	engine.GET("/ping", controller.Ping)
}
