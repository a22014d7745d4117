package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tablepay-gateway/internal/config"
	"tablepay-gateway/internal/http/handlers"
	"tablepay-gateway/internal/middleware"
	"tablepay-gateway/internal/payment"
	"tablepay-gateway/internal/session"
	"tablepay-gateway/internal/upstream"
	"tablepay-gateway/internal/ws"
)

func NewRouter(client *upstream.Client, registry *session.Registry, flow *payment.Flow, logger *zap.Logger, cfg config.Config, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Telemetry(logger))

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"Cache-Control",
				"Pragma",
			},
			AllowCredentials: true,
			MaxAge:           300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	h := &handlers.Handler{
		Upstream: client,
		Registry: registry,
		Flow:     flow,
		Logger:   logger,
		Config:   cfg,
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", h.Home)
	r.Get("/pay", h.PayEntry)
	r.Get("/pay/{tableToken}", h.PayPage)
	r.Get("/pay/{tableToken}/receipt.pdf", h.ReceiptPDF)
	r.Get("/pay/{tableToken}/receipt.html", h.ReceiptHTML)
	r.Get("/mock-pay", h.MockPay)
	r.Get("/admin", h.AdminPage)

	r.Route("/api/session/{tableToken}", func(r chi.Router) {
		r.Get("/", h.SessionGet)
		r.Post("/quote", h.SessionQuote)
		r.Post("/reserve", h.SessionReserve)
		r.Get("/receipt", h.ReceiptPDF)
		r.Get("/receipt-html", h.ReceiptHTML)
	})

	r.Route("/api/pay", func(r chi.Router) {
		r.Post("/confirm", h.PayConfirm)
		r.Post("/cancel", h.PayCancel)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.StaffAuth(cfg.JWTSecret))
		r.Get("/orders", h.AdminOrdersList)
		r.Post("/orders", h.AdminOrderCreate)
		r.Post("/orders/{orderId}/split", h.AdminSplitInit)
		r.Get("/menu-items", h.AdminMenuItemsList)
		r.Get("/tables", h.AdminTablesList)
		r.Post("/payments", h.AdminPaymentCreate)
	})

	if wsServer != nil {
		r.Get("/ws/session", wsServer.SessionWS)
		r.Get("/ws/session/{tableToken}", wsServer.SessionWS)
	}

	return r
}
