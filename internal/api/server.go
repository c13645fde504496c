package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"serata/internal/config"
	"serata/internal/database"
	"serata/internal/handlers"
	"serata/internal/middleware"
)

// Server wires the router, middleware and routes.
type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *database.DB
}

func NewServer(cfg *config.Config, db *database.DB, h *handlers.Handlers) *Server {
	gin.SetMode(cfg.GinMode)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())

	s := &Server{
		router: router,
		db:     db,
		http: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  cfg.RequestTimeout,
			WriteTimeout: 0, // SSE streams stay open
			IdleTimeout:  120 * time.Second,
		},
	}

	s.registerRoutes(h)
	return s
}

func (s *Server) registerRoutes(h *handlers.Handlers) {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	{
		events := api.Group("/events")
		{
			events.POST("", h.CreateEvent)
			events.GET("", h.ListEvents)
			events.GET("/:id", h.GetEvent)
			events.DELETE("/:id", h.DeleteEvent)
			events.POST("/:id/advance", h.AdvanceEvent)

			events.POST("/:id/ticketing", h.ActivateTicketing)
			events.GET("/:id/ticketing", h.GetTicketing)
			events.PATCH("/:id/ticketing", h.UpdateTicketing)

			events.POST("/:id/sectors", h.CreateSector)
			events.GET("/:id/sectors", h.ListSectors)

			events.GET("/:id/tickets", h.ListEventTickets)

			events.GET("/:id/feed", h.GetActivities)
			events.GET("/:id/feed/stream", h.StreamFeed)
			events.DELETE("/:id/alerts/:alertId", h.DismissAlert)
		}

		sectors := api.Group("/sectors")
		{
			sectors.GET("/:id", h.GetSector)
			sectors.PATCH("/:id", h.UpdateSector)
			sectors.POST("/:id/tickets", h.IssueTicket)
		}

		tickets := api.Group("/tickets")
		{
			tickets.GET("/:id", h.GetTicket)
			tickets.POST("/:id/cancel", h.CancelTicket)
			tickets.POST("/:id/use", h.UseTicket)
		}

		transactions := api.Group("/transactions")
		{
			transactions.POST("", h.OpenTransaction)
			transactions.GET("/:id", h.GetTransaction)
			transactions.POST("/:id/tickets", h.AttachTickets)
			transactions.POST("/:id/complete", h.CompleteTransaction)
			transactions.POST("/:id/fail", h.FailTransaction)
			transactions.POST("/:id/refund", h.RefundTransaction)
		}

		nameChanges := api.Group("/name-changes")
		{
			nameChanges.POST("", h.CreateNameChange)
			nameChanges.GET("/:id", h.GetNameChange)
			nameChanges.POST("/:id/approve", h.ApproveNameChange)
			nameChanges.POST("/:id/reject", h.RejectNameChange)
		}

		resales := api.Group("/resales")
		{
			resales.POST("", h.CreateResale)
			resales.GET("/:id", h.GetResale)
			resales.POST("/:id/complete", h.CompleteResale)
			resales.POST("/:id/cancel", h.CancelResale)
		}

		scanners := api.Group("/scanner-assignments")
		{
			scanners.POST("", h.CreateScannerAssignment)
			scanners.GET("/:userId/:eventId", h.GetScannerAssignment)
			scanners.DELETE("/:userId/:eventId", h.DeleteScannerAssignment)
		}
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	if err := s.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	stats := s.db.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"db_open_conns":   stats.OpenConnections,
		"db_in_use_conns": stats.InUse,
	})
}

func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
