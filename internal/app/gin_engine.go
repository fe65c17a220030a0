package app

import (
	"MercadoPagoGateway/pkg/logger"
	"MercadoPagoGateway/pkg/metrics"

	"github.com/gin-gonic/gin"
)

func NewGinEngine(l *logger.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(logger.CorrelationMiddleware(), metrics.GinMiddleware(), l.GinBodyLogger(), gin.Recovery())
	return engine
}
