package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"go.ngs.io/knmi-forecast/internal/domain"
	"go.ngs.io/knmi-forecast/internal/usecase"
)

// Handler handles HTTP requests for forecast extraction.
type Handler struct {
	forecastUC     *usecase.ForecastUseCase
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(forecastUC *usecase.ForecastUseCase, maxUploadBytes int64, logger *slog.Logger) *Handler {
	return &Handler{
		forecastUC:     forecastUC,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// ExtractForecast handles POST /v1/forecasts/extract.
//
// The NetCDF file is either the raw request body or the multipart field
// "file". Query parameters: dataset, file, lat, lon.
func (h *Handler) ExtractForecast(c *gin.Context) {
	datasetName := c.Query("dataset")
	fileName := c.Query("file")
	latStr := c.Query("lat")
	lonStr := c.Query("lon")

	if datasetName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dataset parameter is required"})
		return
	}
	if latStr == "" || lonStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon parameters are required"})
		return
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid latitude: %v", err)})
		return
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid longitude: %v", err)})
		return
	}

	data, uploadName, err := h.readUpload(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("file exceeds the %d byte upload limit", h.maxUploadBytes),
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if fileName == "" {
		fileName = uploadName
	}
	if fileName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file parameter is required"})
		return
	}

	response, err := h.forecastUC.Execute(c.Request.Context(), usecase.ForecastRequest{
		Dataset: datasetName,
		File:    fileName,
		Target:  domain.Coordinate{Lat: lat, Lon: lon},
		Data:    data,
	})
	switch {
	case errors.Is(err, usecase.ErrUnknownDataset), errors.Is(err, usecase.ErrUnknownFile):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, usecase.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": strings.TrimPrefix(err.Error(), usecase.ErrInvalidRequest.Error()+": ")})
		return
	case err != nil:
		h.logger.Error("extract forecast", "dataset", datasetName, "file", fileName, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, response)
}

// readUpload returns the uploaded bytes and, for multipart uploads, the
// client's file name.
func (h *Handler) readUpload(c *gin.Context) ([]byte, string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, "", err
			}
			return nil, "", fmt.Errorf("multipart field file: %w", err)
		}
		data, err := readPart(fh)
		if err != nil {
			return nil, "", err
		}
		return data, fh.Filename, nil
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", errors.New("request body is empty")
	}
	return data, "", nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("uploaded file is empty")
	}
	return data, nil
}

// ListDatasets handles GET /v1/datasets.
func (h *Handler) ListDatasets(c *gin.Context) {
	datasets := h.forecastUC.Catalog().Datasets()
	c.JSON(http.StatusOK, gin.H{
		"datasets": datasets,
		"count":    len(datasets),
	})
}

// ListMeasurements handles GET /v1/measurements.
func (h *Handler) ListMeasurements(c *gin.Context) {
	ms := domain.Measurements()
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.String()
	}
	c.JSON(http.StatusOK, gin.H{"measurements": names})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
