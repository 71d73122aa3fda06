package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/rpc"
	"github.com/dmitrijs2005/filevault/internal/server/services"
	"github.com/labstack/echo/v4"
)

type Preview = services.Preview

const notFoundMessage = "File not found or no longer available."

// Share page preview box.
const (
	sharePreviewWidth  = 600
	sharePreviewHeight = 400
)

// ShareSettings locate the files behind /share/<id> links.
type ShareSettings struct {
	// PublicEndpoint is the base URL of this server as seen by visitors.
	PublicEndpoint string
	// ContainerID is the container share ids are resolved in.
	ContainerID string
}

type Handler struct {
	storage Storage
	db      Pinger
	share   ShareSettings
	logger  logging.Logger
}

func NewHandler(storage Storage, db Pinger, share ShareSettings, logger logging.Logger) *Handler {
	return &Handler{storage: storage, db: db, share: share, logger: logger.With("module", "http")}
}

// sharedFile is the body of a share link.
type sharedFile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	MIMEType    string    `json:"mime_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	DownloadURL string    `json:"download_url"`
	PreviewURL  string    `json:"preview_url,omitempty"`
}

// HandleShare handles GET /share/:id. No session is needed.
func (h *Handler) HandleShare(c echo.Context) error {
	f, err := h.storage.Get(c.Request().Context(), h.share.ContainerID, c.Param("id"))
	if err != nil {
		return h.serviceError(c, err)
	}

	out := sharedFile{
		ID:          f.ID,
		Name:        f.Name,
		MIMEType:    f.MIMEType,
		Size:        f.SizeOriginal,
		CreatedAt:   f.CreatedAt,
		DownloadURL: rpc.DownloadURL(h.share.PublicEndpoint, f.ContainerID, f.ID),
	}
	if strings.HasPrefix(f.MIMEType, "image/") {
		out.PreviewURL = rpc.PreviewURL(h.share.PublicEndpoint, f.ContainerID, f.ID, sharePreviewWidth, sharePreviewHeight)
	}
	return c.JSON(http.StatusOK, out)
}

// HandleHealth handles GET /healthz.
func (h *Handler) HandleHealth(c echo.Context) error {
	if h.db != nil {
		if err := h.db.PingContext(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "database": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// HandleDownload redirects to a short-lived link serving the original bytes.
func (h *Handler) HandleDownload(c echo.Context) error {
	link, err := h.storage.DownloadLink(c.Request().Context(), c.Param("container"), c.Param("id"))
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.Redirect(http.StatusFound, link)
}

// HandlePreview renders an image scaled to fit ?width=&height=.
func (h *Handler) HandlePreview(c echo.Context) error {
	width, err := dimension(c.QueryParam("width"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "width must be a non-negative integer"})
	}
	height, err := dimension(c.QueryParam("height"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "height must be a non-negative integer"})
	}

	p, err := h.storage.Preview(c.Request().Context(), c.Param("container"), c.Param("id"), width, height)
	if err != nil {
		return h.serviceError(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=300")
	return c.Blob(http.StatusOK, p.ContentType, p.Data)
}

func dimension(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New("invalid dimension")
	}
	return n, nil
}

func (h *Handler) serviceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": notFoundMessage})
	case errors.Is(err, common.ErrNotImage):
		return c.JSON(http.StatusUnsupportedMediaType, echo.Map{"error": "preview is only available for images"})
	case errors.Is(err, common.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	h.logger.Error(c.Request().Context(), "request failed", "path", c.Path(), "error", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}
