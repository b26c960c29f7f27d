package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stayview/bookinsightsapi/internal/api/middleware"
	"github.com/stayview/bookinsightsapi/internal/service"
	"github.com/stayview/bookinsightsapi/pkg/utils/response"
	"github.com/stayview/bookinsightsapi/pkg/utils/zaplogger"
)

// InsightHandler is the handler for the insight endpoints
type InsightHandler struct {
	generator *service.InsightService
	store     *service.InsightStore
}

// NewInsightHandler creates a new handler for the insight endpoints
func NewInsightHandler(generator *service.InsightService, store *service.InsightStore) *InsightHandler {
	return &InsightHandler{generator: generator, store: store}
}

// Upload accepts a booking data file, forwards its content to the generator
// and stores the resulting insights for the caller
func (h *InsightHandler) Upload(c echo.Context) error {
	userID, _ := c.Get(middleware.ContextKeyUserID).(int64)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.Message(c, http.StatusBadRequest, "No file uploaded")
	}

	// The target period defaults to the current month when the form does
	// not carry one.
	year := c.FormValue("year")
	month := c.FormValue("month")
	if year == "" || month == "" {
		now := time.Now()
		year = now.Format("2006")
		month = now.Format("01")
	}

	data, err := readAndDiscardUpload(fileHeader)
	if err != nil {
		zaplogger.Error("failed to read uploaded file", zaplogger.Fields{"error": err})
		return response.Message(c, http.StatusInternalServerError, "Error processing request.")
	}

	insights, err := h.generator.GenerateInsights(c.Request().Context(), year, month, data)
	if err != nil {
		zaplogger.Error("failed to generate insights from upload", zaplogger.Fields{
			"user_id": userID,
			"error":   err,
		})
		return response.Message(c, http.StatusInternalServerError, "Error processing request.")
	}

	h.store.Put(userID, insights)

	return response.MessageWithInsights(c, "Processing completed!", insights)
}

// refreshRequest is the body of POST /insights
type refreshRequest struct {
	Year  string `json:"year" form:"year"`
	Month string `json:"month" form:"month"`
}

// Refresh recomputes the insights for a given year-month without new data
func (h *InsightHandler) Refresh(c echo.Context) error {
	userID, _ := c.Get(middleware.ContextKeyUserID).(int64)

	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return response.Message(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Year == "" || req.Month == "" {
		return response.Message(c, http.StatusBadRequest, "Year and month are required.")
	}

	insights, err := h.generator.GenerateInsights(c.Request().Context(), req.Year, req.Month, "")
	if err != nil {
		zaplogger.Error("failed to refresh insights", zaplogger.Fields{
			"user_id": userID,
			"year":    req.Year,
			"month":   req.Month,
			"error":   err,
		})
		return response.Message(c, http.StatusInternalServerError, "Error fetching insights.")
	}

	h.store.Put(userID, insights)

	return response.MessageWithInsights(c, "Insights updated!", insights)
}

// GetInsights returns the stored insights of the caller
func (h *InsightHandler) GetInsights(c echo.Context) error {
	userID, _ := c.Get(middleware.ContextKeyUserID).(int64)

	insights := h.store.Get(userID)
	if insights == nil {
		return response.Message(c, http.StatusNotFound, "No insights available. Please upload a file first.")
	}

	return c.JSON(http.StatusOK, insights)
}

// TestAPI is a liveness probe for the front-end
func (h *InsightHandler) TestAPI(c echo.Context) error {
	return response.Message(c, http.StatusOK, "API is working!")
}

// readAndDiscardUpload spools the upload to a temporary file, reads it back
// fully and deletes it. No copy of the upload is retained.
func readAndDiscardUpload(fileHeader *multipart.FileHeader) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "bookinsights-upload-*")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return "", err
	}

	return string(data), nil
}
