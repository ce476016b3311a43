package handler

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const pingTimeout = 3 * time.Second

// Pinger checks that a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the ledgers can be read
type HealthHandler struct {
	pingers map[string]Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(pingers map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		pingers: pingers,
	}
}

// GetHealth handles GET /health
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	names := make([]string, 0, len(h.pingers))
	for name := range h.pingers {
		names = append(names, name)
	}
	sort.Strings(names)

	var mu sync.Mutex
	checks := make(map[string]string, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		p := h.pingers[name]
		g.Go(func() error {
			err := p.Ping(gctx)
			status := "ok"
			if err != nil {
				status = err.Error()
			}
			mu.Lock()
			checks[name] = status
			mu.Unlock()
			return err
		})
	}

	if err := g.Wait(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"message": err.Error(),
			"checks":  checks,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Retention Backend API is running",
		"checks":  checks,
	})
}
