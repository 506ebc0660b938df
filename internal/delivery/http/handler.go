package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/cjfeed/backend/internal/delivery/xmlfeed"
	"github.com/cjfeed/backend/internal/domain"
	"github.com/cjfeed/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// FeedBuilder produces the canonical products for a feed request
type FeedBuilder interface {
	BuildFeed(ctx context.Context, query domain.FeedQuery) ([]domain.Product, error)
}

// RenderObserver is told how many products each served feed contained
type RenderObserver interface {
	Add(float64)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	feeds    FeedBuilder
	logger   *zap.Logger
	rendered RenderObserver
	now      func() time.Time
}

// NewHandler creates a new HTTP handler. rendered may be nil.
func NewHandler(feeds FeedBuilder, log *zap.Logger, rendered RenderObserver) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		feeds:    feeds,
		logger:   log,
		rendered: rendered,
		now:      time.Now,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "cjfeed-backend",
		"version": Version,
	})
}

// GetFeed handles feed requests: kw searches, ids looks products up one by
// one, and with neither the feed is empty
func (h *Handler) GetFeed(c *gin.Context) {
	if h.feeds == nil {
		h.renderError(c, errors.New("feed service not configured"))
		return
	}

	query := parseFeedQuery(c)

	products, err := h.feeds.BuildFeed(c.Request.Context(), query)
	if err != nil {
		h.renderError(c, err)
		return
	}

	body, err := xmlfeed.Encode(products, h.now())
	if err != nil {
		h.renderError(c, err)
		return
	}

	if h.rendered != nil {
		h.rendered.Add(float64(len(products)))
	}
	logger.FromContext(c, h.logger).Debug("feed rendered",
		zap.String("kw", query.Keyword),
		zap.String("ids", query.IDs),
		zap.Int("products", len(products)),
	)

	c.Data(http.StatusOK, xmlfeed.ContentType, body)
}

// renderError answers with the XML error envelope
func (h *Handler) renderError(c *gin.Context, err error) {
	logger.FromContext(c, h.logger).Error("feed request failed", zap.Error(err))
	c.Data(http.StatusInternalServerError, xmlfeed.ContentType, xmlfeed.EncodeError(err.Error()))
}

// parseFeedQuery reads kw, ids, pageNum and pageSize. Paging values that are
// missing or not integers are left at zero for the service to default.
func parseFeedQuery(c *gin.Context) domain.FeedQuery {
	return domain.FeedQuery{
		Keyword:  c.Query("kw"),
		IDs:      c.Query("ids"),
		PageNum:  atoiOrZero(c.Query("pageNum")),
		PageSize: atoiOrZero(c.Query("pageSize")),
	}
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
