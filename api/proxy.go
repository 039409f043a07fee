package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aouyang1/flickrframe/api/models"
	"github.com/aouyang1/flickrframe/flickr"
)

const (
	proxyCacheControl = "public, max-age=86400"
	proxyFetchError   = "Error fetching from Flickr API."
	internalError     = "Internal server error."
)

// PhotosetFetcher retrieves the raw photo records of the configured photoset.
type PhotosetFetcher interface {
	PhotosetPhotos(ctx context.Context) ([]json.RawMessage, error)
}

// handleFlickrProxy answers every request under /flickr-api-proxy/ with the
// photoset, whatever the method or remaining path. Flickr failures reported in
// the response body are passed on with a 200; only a failed fetch is a 500.
func (ws *WebServer) handleFlickrProxy(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")

	if ws.flickr == nil {
		slog.Error("flickr proxy is not configured, FLICKR_API_KEY and FLICKR_PHOTOSET_ID are required")
		c.JSON(http.StatusInternalServerError, models.ProxyErrorResponse{Success: false, Message: proxyFetchError})
		return
	}

	photos, err := ws.flickr.PhotosetPhotos(c.Request.Context())

	var apiErr *flickr.APIError
	switch {
	case errors.As(err, &apiErr):
		slog.Warn("flickr api returned failure", "stat", apiErr.Stat, "code", apiErr.Code, "message", apiErr.Message)
		c.Header("Cache-Control", proxyCacheControl)
		c.JSON(http.StatusOK, models.ProxyResponse{
			Success: false,
			Photos:  []json.RawMessage{},
			Message: apiErr.Message,
		})
	case err != nil:
		slog.Error("error fetching from flickr api", "error", err)
		c.JSON(http.StatusInternalServerError, models.ProxyErrorResponse{Success: false, Message: proxyFetchError})
	default:
		c.Header("Cache-Control", proxyCacheControl)
		c.JSON(http.StatusOK, models.ProxyResponse{
			Success: true,
			Photos:  photos,
			Message: "",
		})
	}
}

// recoverInternalError renders any panic as the generic 500 body.
func recoverInternalError(c *gin.Context, recovered any) {
	slog.Error("unhandled error in request", "path", c.Request.URL.Path, "error", recovered)
	c.AbortWithStatusJSON(http.StatusInternalServerError, models.ProxyErrorResponse{Success: false, Message: internalError})
}
