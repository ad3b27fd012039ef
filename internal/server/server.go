package server

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"rag-chatbot/internal/config"
	"rag-chatbot/internal/helper"
	"rag-chatbot/internal/ingest"
	"rag-chatbot/internal/models"
	"rag-chatbot/internal/parser"
	"rag-chatbot/internal/rag"
)

type ChatRequest struct {
	Question string `json:"question"`
}

type ChatResponse struct {
	Answer  string          `json:"answer"`
	Sources []models.Source `json:"sources"`
}

type IngestResponse struct {
	Filename    string `json:"filename"`
	ChunksAdded int    `json:"chunks_added"`
	Status      string `json:"status"`
}

// Server exposes the ingestion and query pipelines over HTTP.
type Server struct {
	echo      *echo.Echo
	addr      string
	uploadDir string
	pipeline  *ingest.Pipeline
	rag       *rag.RAG
}

func New(cfg *config.ServerConfig, pipeline *ingest.Pipeline, ragService *rag.RAG) *Server {
	s := &Server{
		addr:      cfg.Addr,
		uploadDir: cfg.UploadDir,
		pipeline:  pipeline,
		rag:       ragService,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		log.Error().Err(err).Int("status", code).Str("method", req.Method).Str("path", req.URL.Path).Msg("Request failed")
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.POST("/chat", s.handleChat)
	api.POST("/ingest", s.handleIngest)

	s.echo = e
	return s
}

func (s *Server) Start() error {
	return s.echo.Start(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the router, used by tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}

	answer, err := s.rag.Query(c.Request().Context(), req.Question)
	if err != nil {
		chatQueries.WithLabelValues("error").Inc()
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	chatQueries.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, ChatResponse{Answer: answer.Answer, Sources: answer.Sources})
}

func (s *Server) handleIngest(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if !parser.IsSupported(fileHeader.Filename) {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("unsupported file type: %s", filepath.Ext(fileHeader.Filename)))
	}

	// Each upload gets its own folder so the saved file keeps its original
	// name (it becomes source_file) without concurrent uploads colliding.
	id, err := helper.GenerateUUID()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	uploadDir := filepath.Join(s.uploadDir, id)
	if err := helper.CreateFolder(uploadDir); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer os.RemoveAll(uploadDir)

	filePath := filepath.Join(uploadDir, filepath.Base(fileHeader.Filename))
	if err := saveUpload(fileHeader, filePath); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	chunksAdded, err := s.pipeline.Ingest(c.Request().Context(), filePath)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError,
			fmt.Sprintf("Ingestion failed: %v", err))
	}

	documentsIngested.Inc()
	chunksStored.Add(float64(chunksAdded))
	return c.JSON(http.StatusOK, IngestResponse{
		Filename:    fileHeader.Filename,
		ChunksAdded: chunksAdded,
		Status:      "Success",
	})
}

func saveUpload(fileHeader *multipart.FileHeader, dst string) error {
	src, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}
