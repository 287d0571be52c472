// api/routes/router.go
package routes

import (
	"context"
	"errors"
	"net/http"
	"time"

	_ "tikiti/docs"
	"tikiti/internal/catalog"
	"tikiti/internal/checkout"
	"tikiti/internal/notifications"
	"tikiti/internal/orders"
	"tikiti/internal/payments"
	"tikiti/internal/selection"
	"tikiti/internal/shared/config"
	"tikiti/internal/shared/database"
	"tikiti/pkg/cache"
	"tikiti/pkg/logger"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config *config.Config
	db     *database.DB
	log    *logger.Logger

	cache     cache.Service
	catalog   catalog.Service
	selection selection.Service
	checkout  checkout.Service
	recorder  orders.Recorder
	hub       *payments.Settlements
	publisher notifications.Publisher
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, log *logger.Logger) *Router {
	return &Router{
		config: cfg,
		db:     db,
		log:    log,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) error {
	if err := r.buildServices(); err != nil {
		return err
	}

	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupCatalogRoutes(api)
		r.setupSelectionRoutes(api)
		r.setupCheckoutRoutes(api)
		r.setupOrderRoutes(api)
		r.setupPaymentRoutes(api)
	}
	return nil
}

// buildServices wires every module, falling back to in-memory
// implementations when Postgres, Redis or Kafka are disabled
func (r *Router) buildServices() error {
	if r.db.GetRedisClient() != nil {
		r.cache = cache.NewService(r.db.GetRedisClient(), r.log)
	} else {
		r.cache = cache.NewMemoryService(r.log)
	}

	provider, err := r.catalogProvider()
	if err != nil {
		return err
	}
	r.catalog = catalog.NewService(provider, r.cache)

	r.selection = selection.NewService(r.catalog, selection.NewStore(r.cache, r.config.Redis.SessionTTL))

	if r.db.HasPostgreSQL() {
		r.recorder = orders.NewRepository(r.db.GetPostgreSQL())
	} else {
		r.recorder = orders.NewMemoryRecorder()
	}

	r.hub = payments.NewSettlements()
	gateway := payments.NewSimulatedGateway(r.hub, r.config.Checkout.PaymentDelay, payments.AlwaysComplete, r.log)
	r.publisher = r.notificationPublisher()

	if err := checkout.RegisterValidators(); err != nil {
		return err
	}
	opts := checkout.ValidateOptions{StrictEmail: r.config.Checkout.StrictEmail}
	composer := checkout.NewComposer(r.recorder, gateway, r.hub, opts, r.log)
	r.checkout = checkout.NewService(
		r.selection,
		checkout.NewStore(r.cache, r.config.Redis.SessionTTL),
		checkout.NewLocker(r.cache, r.config.Redis.SubmitTTL),
		composer,
		r.publisher,
		checkout.Config{
			EnabledMethods: r.paymentMethods(),
			StrictEmail:    r.config.Checkout.StrictEmail,
			AttemptTimeout: r.config.Checkout.PaymentTimeout,
		},
		r.log,
	)
	return nil
}

func (r *Router) catalogProvider() (catalog.Provider, error) {
	if r.config.UsePostgresCatalog() && r.db.HasPostgreSQL() {
		r.log.Info("Catalog served from PostgreSQL")
		repo := catalog.NewRepository(r.db.GetPostgreSQL())
		return catalog.NewRetryingProvider(repo, catalog.DefaultRetryConfig(), r.log), nil
	}

	r.log.Info("Catalog served from built-in events")
	return catalog.NewStaticProvider(catalog.BuiltinEvents())
}

func (r *Router) notificationPublisher() notifications.Publisher {
	if !r.config.Kafka.Enabled {
		return notifications.NewNoopPublisher(r.log)
	}

	kafkaConfig := notifications.DefaultKafkaProducerConfig()
	kafkaConfig.Brokers = r.config.Kafka.Brokers
	kafkaConfig.Topic = r.config.Kafka.Topic

	publisher, err := notifications.NewKafkaPublisher(kafkaConfig, r.log)
	if err != nil {
		r.log.Error("Failed to create Kafka publisher, order notifications disabled", "error", err)
		return notifications.NewNoopPublisher(r.log)
	}
	return publisher
}

func (r *Router) paymentMethods() []checkout.PaymentMethod {
	methods := make([]checkout.PaymentMethod, 0, len(r.config.Checkout.EnabledMethods))
	for _, name := range r.config.Checkout.EnabledMethods {
		method, err := checkout.ParsePaymentMethod(name)
		if err != nil {
			r.log.Warn("Ignoring unknown payment method", "method", name)
			continue
		}
		methods = append(methods, method)
	}
	return methods
}

// Close stops in-flight checkouts and flushes the notification publisher
func (r *Router) Close(ctx context.Context) error {
	var errs []error
	if r.checkout != nil {
		if err := r.checkout.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if r.publisher != nil {
		if err := r.publisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		// Perform health checks
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "tikiti-storefront",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "tikiti-storefront",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":           "operational",
			"api_version":      r.config.APIVersion,
			"timestamp":        time.Now(),
			"postgres":         r.db.HasPostgreSQL(),
			"redis":            r.db.GetRedisClient() != nil,
			"kafka":            r.config.Kafka.Enabled,
			"pending_payments": r.hub.Pending(),
		})
	})
}

// setupCatalogRoutes configures event browsing routes
func (r *Router) setupCatalogRoutes(rg *gin.RouterGroup) {
	catalog.SetupEventRoutes(rg, catalog.NewController(r.catalog))
}

// setupSelectionRoutes configures ticket picking routes
func (r *Router) setupSelectionRoutes(rg *gin.RouterGroup) {
	selection.SetupSelectionRoutes(rg, selection.NewController(r.selection))
}

// setupCheckoutRoutes configures checkout and order submission routes
func (r *Router) setupCheckoutRoutes(rg *gin.RouterGroup) {
	checkout.SetupCheckoutRoutes(rg, checkout.NewController(r.checkout))
}

// setupOrderRoutes configures order read-back routes
func (r *Router) setupOrderRoutes(rg *gin.RouterGroup) {
	orders.SetupOrderRoutes(rg, orders.NewController(r.recorder))
}

// setupPaymentRoutes configures the payment provider callback
func (r *Router) setupPaymentRoutes(rg *gin.RouterGroup) {
	payments.SetupPaymentRoutes(rg, payments.NewController(r.hub, r.log))
}
