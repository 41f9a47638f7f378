package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anacreonhq/anacreon-backend/api/controllers"
	"github.com/anacreonhq/anacreon-backend/api/middleware"
	"github.com/anacreonhq/anacreon-backend/internal/audit"
	authsvc "github.com/anacreonhq/anacreon-backend/internal/auth"
	"github.com/anacreonhq/anacreon-backend/internal/businesses"
	"github.com/anacreonhq/anacreon-backend/internal/catalog"
	"github.com/anacreonhq/anacreon-backend/internal/expenditures"
	"github.com/anacreonhq/anacreon-backend/internal/images"
	"github.com/anacreonhq/anacreon-backend/internal/items"
	"github.com/anacreonhq/anacreon-backend/internal/orders"
	"github.com/anacreonhq/anacreon-backend/internal/stock"
	"github.com/anacreonhq/anacreon-backend/internal/users"
	"github.com/anacreonhq/anacreon-backend/pkg/config"
	"github.com/anacreonhq/anacreon-backend/pkg/db"
	"github.com/anacreonhq/anacreon-backend/pkg/logger"
	"github.com/anacreonhq/anacreon-backend/pkg/redis"
)

// Services bundles the wired domain services the router exposes.
type Services struct {
	Users        users.Service
	Auth         authsvc.Service
	Businesses   businesses.Service
	Catalog      catalog.Service
	Items        items.Service
	Images       images.Service
	Stock        stock.Service
	Expenditures expenditures.Service
	Orders       orders.Service
	Audit        audit.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database *db.Client,
	cache *redis.Client,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Get("/health", controllers.Health(database, cache, logg))
	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.Register(svcs.Users, logg))
		r.Post("/login", controllers.Login(svcs.Auth, logg))
		r.Post("/refresh", controllers.Refresh(svcs.Auth, logg))
		r.With(middleware.Auth(logg, cfg.JWT)).Post("/logout", controllers.Logout(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.Auth(logg, cfg.JWT),
			middleware.RateLimit(logg, cache, cfg.RateLimit),
		)

		r.Post("/businesses", controllers.BusinessCreate(svcs.Businesses, logg))
		r.Get("/businesses", controllers.BusinessList(svcs.Businesses, logg))

		r.Route("/businesses/{businessID}", func(r chi.Router) {
			r.Use(middleware.BusinessContext(svcs.Businesses, logg))

			r.Get("/", controllers.BusinessGet(svcs.Businesses, logg))
			r.Patch("/", controllers.BusinessUpdate(svcs.Businesses, logg))
			r.Delete("/", controllers.BusinessDeactivate(svcs.Businesses, logg))
			r.Post("/members", controllers.BusinessAddMember(svcs.Businesses, logg))

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", controllers.CategoryCreate(svcs.Catalog, logg))
				r.Get("/", controllers.CategoryList(svcs.Catalog, logg))
				r.Route("/{categoryID}", func(r chi.Router) {
					r.Get("/", controllers.CategoryGet(svcs.Catalog, logg))
					r.Patch("/", controllers.CategoryUpdate(svcs.Catalog, logg))
					r.Delete("/", controllers.CategoryDelete(svcs.Catalog, logg))
					r.Post("/sub-categories", controllers.SubCategoryCreate(svcs.Catalog, logg))
					r.Delete("/sub-categories/{subCategoryID}", controllers.SubCategoryDelete(svcs.Catalog, logg))
				})
			})

			r.Route("/items", func(r chi.Router) {
				r.Post("/", controllers.ItemCreate(svcs.Items, logg))
				r.Get("/", controllers.ItemList(svcs.Items, logg))
				r.Get("/search", controllers.ItemSearchByProperty(svcs.Items, logg))
				r.Route("/{itemID}", func(r chi.Router) {
					r.Get("/", controllers.ItemGet(svcs.Items, logg))
					r.Patch("/", controllers.ItemUpdate(svcs.Items, logg))
					r.Delete("/", controllers.ItemDelete(svcs.Items, logg))

					r.Get("/properties", controllers.ItemPropertyGet(svcs.Items, logg))
					r.Put("/properties", controllers.ItemPropertySet(svcs.Items, logg))
					r.Patch("/properties", controllers.ItemPropertiesMerge(svcs.Items, logg))
					r.Delete("/properties", controllers.ItemPropertyDelete(svcs.Items, logg))

					r.Post("/images", controllers.ItemImageAttach(svcs.Images, logg))
					r.Get("/images", controllers.ItemImageList(svcs.Images, logg))
					r.Delete("/images/{imageID}", controllers.ItemImageDelete(svcs.Images, logg))

					r.Post("/stocks", controllers.StockRecord(svcs.Stock, logg))
					r.Get("/stocks", controllers.StockList(svcs.Stock, logg))
					r.Get("/stocks/current", controllers.StockCurrent(svcs.Stock, logg))
				})
			})

			r.Route("/stocks/{stockID}", func(r chi.Router) {
				r.Patch("/", controllers.StockUpdate(svcs.Stock, logg))
				r.Delete("/", controllers.StockDelete(svcs.Stock, logg))
			})

			r.Route("/expenditures", func(r chi.Router) {
				r.Post("/", controllers.ExpenditureCreate(svcs.Expenditures, logg))
				r.Get("/", controllers.ExpenditureList(svcs.Expenditures, logg))
				r.Get("/{expenditureID}", controllers.ExpenditureGet(svcs.Expenditures, logg))
				r.Delete("/{expenditureID}", controllers.ExpenditureDelete(svcs.Expenditures, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", controllers.OrderCreate(svcs.Orders, logg))
				r.Get("/", controllers.OrderList(svcs.Orders, logg))
				r.Route("/{orderID}", func(r chi.Router) {
					r.Get("/", controllers.OrderGet(svcs.Orders, logg))
					r.Delete("/", controllers.OrderDelete(svcs.Orders, logg))
					r.Post("/process", controllers.OrderProcess(svcs.Orders, logg))
					r.Post("/complete", controllers.OrderComplete(svcs.Orders, logg))
					r.Post("/cancel", controllers.OrderCancel(svcs.Orders, logg))
					r.Post("/calculate-total", controllers.OrderCalculateTotal(svcs.Orders, logg))
				})
			})

			r.Get("/audit-logs", controllers.AuditLogList(svcs.Audit, logg))
		})
	})

	return r
}
