package handlers

import (
	"net/http"

	"github.com/SscSPs/gl_engine/cmd/docs"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/middleware"
	"github.com/SscSPs/gl_engine/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	setupAPIV1Routes(r, cfg, services)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))
	RegisterAPIRoutes(v1, service)
}

// RegisterAPIRoutes mounts every engine resource on rg.
func RegisterAPIRoutes(rg *gin.RouterGroup, service *portssvc.ServiceContainer) {
	RegisterValidators()

	registerAccountRoutes(rg, service.ChartOfAccounts)
	registerCurrencyRoutes(rg, service.Currency)
	registerExchangeRateRoutes(rg, service.ExchangeRate)
	registerJournalRoutes(rg, service.Ledger)
	for _, kind := range []domain.InvoiceKind{domain.KindAR, domain.KindAP} {
		registerInvoiceRoutes(rg, kind, service.Invoice, service.Ledger)
		registerPaymentRoutes(rg, kind, service.Payment)
		registerAgingRoutes(rg, kind, service.Aging)
	}
	registerAssetRoutes(rg, service.Asset)
	registerTaxRoutes(rg, service.Tax)
	registerApprovalRoutes(rg, service.Approval)
	registerSettingsRoutes(rg, service.Settings)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
