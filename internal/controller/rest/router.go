package rest

import (
	"MercadoPagoGateway/internal/controller/rest/handlers"
	"MercadoPagoGateway/internal/domain/checkout"
	"MercadoPagoGateway/pkg/health"
	"MercadoPagoGateway/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	ipn            *handlers.IPNHandler
	checkout       *handlers.CheckoutHandler
	order          *handlers.OrderHandler
	healthRegistry *health.Registry
	adminToken     string
}

func (r *Router) SetUp(engine *gin.Engine) {
	engine.GET("/health/live", health.LivenessHandler())
	engine.GET("/health/ready", health.ReadinessHandler(r.healthRegistry, health.DefaultTimeout))
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	engine.POST(checkout.PathIPN, r.ipn.Notify)
	engine.GET(checkout.PathIPN, r.ipn.Notify)

	engine.GET(checkout.PathMethod, r.checkout.Method)
	engine.POST(checkout.PathRedirect, r.checkout.Redirect)
	engine.GET(checkout.PathSuccess, r.checkout.Success)
	engine.GET(checkout.PathCancel, r.checkout.Cancel)
	engine.GET(checkout.PathPending, r.checkout.Pending)

	engine.GET("/orders/:order_id", r.order.Get)

	admin := engine.Group("/admin", AdminAuth(r.adminToken))
	{
		admin.POST("/orders/:order_id/resync", r.order.Resync)
		admin.GET("/ipn/deliveries", r.order.Deliveries)
	}
}

func NewRouter(
	ipn *handlers.IPNHandler,
	checkout *handlers.CheckoutHandler,
	order *handlers.OrderHandler,
	healthRegistry *health.Registry,
	adminToken string,
) *Router {
	return &Router{
		ipn:            ipn,
		checkout:       checkout,
		order:          order,
		healthRegistry: healthRegistry,
		adminToken:     adminToken,
	}
}
