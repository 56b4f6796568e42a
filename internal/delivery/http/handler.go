package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/domain"
	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/usecase"
)

// Version is reported by the health check
const Version = "1.0.0"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	products *usecase.ProductService
	ledger   *usecase.LedgerService
}

// NewHandler creates a new HTTP handler. Either service may be nil; the
// endpoints that need it then answer 501.
func NewHandler(products *usecase.ProductService, ledger *usecase.LedgerService) *Handler {
	return &Handler{
		products: products,
		ledger:   ledger,
	}
}

// LookupRequest is the body of POST /api/v1/lookup
type LookupRequest struct {
	Query string `json:"query" binding:"required"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "foodtracker-api",
		"version": Version,
	})
}

// Lookup handles a barcode or free-text query and records barcode hits in the
// caller's profile.
func (h *Handler) Lookup(c *gin.Context) {
	if h.products == nil {
		notConfigured(c, "Product lookup")
		return
	}

	var request LookupRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body: query is required",
		})
		return
	}

	result, err := h.products.Lookup(c.Request.Context(), profileID(c), request.Query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetProduct returns a scored product without recording it
func (h *Handler) GetProduct(c *gin.Context) {
	if h.products == nil {
		notConfigured(c, "Product lookup")
		return
	}

	view, err := h.products.Product(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SearchProducts returns free-text candidates for ?q=
func (h *Handler) SearchProducts(c *gin.Context) {
	if h.products == nil {
		notConfigured(c, "Product search")
		return
	}

	view, err := h.products.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetProfile returns points, level, achievements and impact for the caller
func (h *Handler) GetProfile(c *gin.Context) {
	if h.ledger == nil {
		notConfigured(c, "Profile")
		return
	}

	summary, err := h.ledger.Summary(c.Request.Context(), profileID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetHistory returns the caller's scan history, optionally filtered
func (h *Handler) GetHistory(c *gin.Context) {
	if h.ledger == nil {
		notConfigured(c, "Profile")
		return
	}

	filter := domain.ParseHistoryFilter(c.Query("filter"))
	entries, err := h.ledger.History(c.Request.Context(), profileID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filter":  filter,
		"count":   len(entries),
		"history": entries,
	})
}

// ClearHistory empties the caller's history; points and stats are kept
func (h *Handler) ClearHistory(c *gin.Context) {
	if h.ledger == nil {
		notConfigured(c, "Profile")
		return
	}

	if err := h.ledger.ClearHistory(c.Request.Context(), profileID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func notConfigured(c *gin.Context, feature string) {
	c.JSON(http.StatusNotImplemented, gin.H{
		"error": feature + " service not configured",
	})
}

// respondError maps domain errors to HTTP responses
func respondError(c *gin.Context, err error) {
	var invalid *domain.InvalidQueryError
	var notFound *domain.NotFoundError

	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Invalid query",
			"reason": invalid.Reason,
		})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":       notFound.Message(),
			"barcode":     notFound.Barcode,
			"reason":      notFound.Reason,
			"paddedTried": notFound.PaddedTried,
			"suggestions": notFound.Suggestions,
		})
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
	case errors.Is(err, domain.ErrInvalidQuery):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query",
		})
	case errors.Is(err, domain.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "Rate limit exceeded, try again shortly",
		})
	case errors.Is(err, domain.ErrUpstreamFailure):
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Product database temporarily unavailable",
		})
	case errors.Is(err, domain.ErrLedgerUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Profile storage temporarily unavailable",
		})
	default:
		log.Printf("[HTTP] Unhandled error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
