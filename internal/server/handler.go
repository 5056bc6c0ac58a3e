package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/menta2k/quickcrop/internal/utils"
	"github.com/menta2k/quickcrop/pkg/analyzer"
	"github.com/menta2k/quickcrop/pkg/batch"
	"github.com/menta2k/quickcrop/pkg/cropper"
	"github.com/menta2k/quickcrop/pkg/detection"
	"github.com/menta2k/quickcrop/pkg/processing"
	"github.com/menta2k/quickcrop/pkg/types"
)

// BoxHeader carries the content box of a trimmed image as "x0,y0,x1,y1"
const BoxHeader = "X-Content-Box"

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// BoxResponse is the body of a successful box request
type BoxResponse struct {
	Success bool             `json:"success"`
	Data    detection.Result `json:"data"`
}

// BatchRequest names the directories of a batch run on the server host
type BatchRequest struct {
	InputDir  string `json:"input_dir" binding:"required"`
	OutputDir string `json:"output_dir" binding:"required"`
}

// BatchResponse is the body of a finished batch run
type BatchResponse struct {
	Success bool          `json:"success"`
	Data    types.Summary `json:"data"`
}

// Health reports liveness
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": s.version,
	})
}

// Version reports the build version
func (s *Server) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": s.version,
	})
}

// Trim crops the uploaded image to its content and returns it as PNG
func (s *Server) Trim(c *gin.Context) {
	name, data, ok := s.readUpload(c)
	if !ok {
		return
	}

	img, res, err := s.detector.Trim(c.Request.Context(), data)
	if err != nil {
		s.imageError(c, name, err)
		return
	}

	var buf bytes.Buffer
	if err := s.processor.Encode(&buf, img, processing.FormatPNG, 0, true); err != nil {
		s.logger.Error("failed to encode trimmed image", zap.String("filename", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "failed to encode image",
			Error:   err.Error(),
		})
		return
	}

	outName := utils.GenerateOutputFilename(name, batch.DefaultPrefix, processing.FormatPNG)
	s.logger.Info("image trimmed",
		zap.String("filename", name),
		zap.String("digest", res.Digest),
		zap.Bool("cached", res.Cached),
		zap.String("size", utils.FormatFileSize(int64(buf.Len()))))

	c.Header(BoxHeader, fmt.Sprintf("%d,%d,%d,%d", res.Box.X0, res.Box.Y0, res.Box.X1, res.Box.Y1))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", outName))
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// Box returns the content box of the uploaded image
func (s *Server) Box(c *gin.Context) {
	name, data, ok := s.readUpload(c)
	if !ok {
		return
	}

	res, err := s.detector.DetectBox(c.Request.Context(), data)
	if err != nil {
		s.imageError(c, name, err)
		return
	}

	c.JSON(http.StatusOK, BoxResponse{Success: true, Data: res})
}

// Batch trims a directory on the server host
func (s *Server) Batch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "input_dir and output_dir are required",
			Error:   err.Error(),
		})
		return
	}

	summary, err := s.runner.CropBatch(c.Request.Context(), req.InputDir, req.OutputDir)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, batch.ErrInput) || errors.Is(err, batch.ErrOutput) {
			status = http.StatusBadRequest
		}
		c.JSON(status, ErrorResponse{
			Message: "batch failed",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, BatchResponse{Success: summary.OK(), Data: summary})
}

// readUpload reads the "image" form file, writing the error response itself
// when it returns false.
func (s *Server) readUpload(c *gin.Context) (string, []byte, bool) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "missing image file",
			Error:   err.Error(),
		})
		return "", nil, false
	}

	if file.Size > s.cfg.Server.MaxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Message: fmt.Sprintf("file exceeds limit of %s", utils.FormatFileSize(s.cfg.Server.MaxUpload)),
		})
		return "", nil, false
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "failed to read upload",
			Error:   err.Error(),
		})
		return "", nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "failed to read upload",
			Error:   err.Error(),
		})
		return "", nil, false
	}

	name := utils.SanitizeFilename(filepath.Base(file.Filename))
	if strings.TrimSpace(name) == "" {
		name = "image.png"
	}
	return name, data, true
}

func (s *Server) imageError(c *gin.Context, name string, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, cropper.ErrBlank) || errors.Is(err, analyzer.ErrNoAlpha) {
		status = http.StatusUnprocessableEntity
	}
	s.logger.Warn("image rejected", zap.String("filename", name), zap.Error(err))
	c.JSON(status, ErrorResponse{
		Message: "image could not be trimmed",
		Error:   err.Error(),
	})
}
