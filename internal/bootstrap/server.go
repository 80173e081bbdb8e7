package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nkiryanov/officebook/api"
	"github.com/nkiryanov/officebook/config"
	"github.com/nkiryanov/officebook/internal/repository"
	"github.com/nkiryanov/officebook/internal/service/booking"
	"github.com/nkiryanov/officebook/internal/service/resources"
)

type Deps struct {
	Bookings  booking.BookingUseCase
	Resources resources.ResourceUseCase
	Workflows repository.WorkflowRepository
	Suggester api.SlotSuggester
}

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: NewRouter(cfg, deps),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	router := gin.Default()

	authed := router.Group("/api/v1", api.JWTAuth(cfg.Auth.JWTSecret))

	api.NewBookingHandler(deps.Bookings).Register(authed.Group("/bookings"))
	api.NewResourceHandler(deps.Resources).Register(authed.Group("/resources"))
	api.NewWorkflowHandler(deps.Workflows).Register(authed.Group("/workflow"))
	api.NewScheduleHandler(deps.Bookings, deps.Suggester).Register(authed.Group("/schedule"))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
