package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pumprand/pump-client/internal/domain"
	"github.com/pumprand/pump-client/internal/feed"
	"github.com/pumprand/pump-client/internal/notify"
	"github.com/pumprand/pump-client/internal/tradecache"
)

// CoinReader reads coins from the entity store
type CoinReader interface {
	SelectAll() []*domain.Coin
	SelectByID(id int64) (*domain.Coin, bool)
}

// FeedStatus reports the live feed connection
type FeedStatus interface {
	State() feed.State
	Attempts() int
}

// CacheReader reads the local trade cache
type CacheReader interface {
	State() tradecache.AppState
}

// NotificationLister lists recent notifications
type NotificationLister interface {
	List() []notify.Notification
}

// CoinRefresher refetches coins from the query API
type CoinRefresher interface {
	Trigger(ctx context.Context) error
	RefreshCoin(ctx context.Context, id int64) (*domain.Coin, error)
}

// Handler defines the control API handlers
type Handler interface {
	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)

	// ListCoins returns every cached coin, newest first
	// GET /api/v1/coins
	ListCoins(c *gin.Context)

	// GetCoin returns one cached coin
	// GET /api/v1/coins/:id
	GetCoin(c *gin.Context)

	// GetFeed returns the live feed state and reconnect attempts
	// GET /api/v1/feed
	GetFeed(c *gin.Context)

	// GetCache returns the local trade cache
	// GET /api/v1/cache
	GetCache(c *gin.Context)

	// ListNotifications returns recent notifications, oldest first
	// GET /api/v1/notifications
	ListNotifications(c *gin.Context)

	// RefreshCoins refetches every coin (requires authentication)
	// POST /api/v1/coins/refresh
	RefreshCoins(c *gin.Context)

	// RefreshCoin refetches one coin (requires authentication)
	// POST /api/v1/coins/:id/refresh
	RefreshCoin(c *gin.Context)
}

// FeedResponse is the body of GET /api/v1/feed
type FeedResponse struct {
	State    feed.State `json:"state"`
	Attempts int        `json:"attempts"`
}

// handler implements the Handler interface
type handler struct {
	coins         CoinReader
	feed          FeedStatus
	cache         CacheReader
	notifications NotificationLister
	refresher     CoinRefresher
}

// NewHandler creates a new control API handler. feed and cache may be nil when the
// corresponding component is not running.
func NewHandler(coins CoinReader, feed FeedStatus, cache CacheReader, notifications NotificationLister, refresher CoinRefresher) Handler {
	return &handler{
		coins:         coins,
		feed:          feed,
		cache:         cache,
		notifications: notifications,
		refresher:     refresher,
	}
}

func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "pump-client",
	})
}

func (h *handler) ListCoins(c *gin.Context) {
	c.JSON(http.StatusOK, h.coins.SelectAll())
}

func (h *handler) GetCoin(c *gin.Context) {
	id, ok := coinID(c)
	if !ok {
		return
	}

	coin, found := h.coins.SelectByID(id)
	if !found {
		respondNotFound(c, "Coin not found", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, coin)
}

func (h *handler) GetFeed(c *gin.Context) {
	if h.feed == nil {
		c.JSON(http.StatusOK, FeedResponse{State: feed.StateDisconnected})
		return
	}
	c.JSON(http.StatusOK, FeedResponse{State: h.feed.State(), Attempts: h.feed.Attempts()})
}

func (h *handler) GetCache(c *gin.Context) {
	if h.cache == nil {
		respondNotFound(c, "Trade cache not configured")
		return
	}
	c.JSON(http.StatusOK, h.cache.State())
}

func (h *handler) ListNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, h.notifications.List())
}

func (h *handler) RefreshCoins(c *gin.Context) {
	if err := h.refresher.Trigger(c.Request.Context()); err != nil {
		respondUpstreamError(c, err, "Failed to refresh coins")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(h.coins.SelectAll())})
}

func (h *handler) RefreshCoin(c *gin.Context) {
	id, ok := coinID(c)
	if !ok {
		return
	}

	coin, err := h.refresher.RefreshCoin(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrCoinNotFound) {
			respondNotFound(c, "Coin not found", c.Param("id"))
			return
		}
		respondUpstreamError(c, err, "Failed to refresh coin")
		return
	}
	c.JSON(http.StatusOK, coin)
}

// coinID parses the :id path parameter, responding 400 when it is not a positive integer
func coinID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, "Invalid coin id", c.Param("id"))
		return 0, false
	}
	return id, true
}
