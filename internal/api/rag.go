package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/riftlabs/riftqa/internal/config"
	"github.com/riftlabs/riftqa/internal/rag"
)

// RAGServer exposes the question-answering API.
type RAGServer struct {
	server
	orchestrator *rag.Orchestrator
}

// NewRAGServer wires the query HTTP server.
func NewRAGServer(cfg *config.ServerConfig, orchestrator *rag.Orchestrator, logger *zap.Logger) *RAGServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := NewMetrics()

	s := &RAGServer{
		server: server{
			echo:    newEcho(logger, metrics),
			cfg:     cfg,
			logger:  logger,
			metrics: metrics,
		},
		orchestrator: orchestrator,
	}

	s.echo.POST("/query", s.handleQuery)
	s.echo.POST("/retrieve", s.handleRetrieve)
	s.echo.GET("/stats", s.handleStats)
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", metrics.Handler())

	return s
}

// QueryRequest is the request body for POST /query.
type QueryRequest struct {
	Question string     `json:"question"`
	History  []rag.Turn `json:"conversation_history"`
	K        int        `json:"k"`
}

func (s *RAGServer) handleQuery(c echo.Context) error {
	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	answer, err := s.orchestrator.Query(c.Request().Context(), req.Question, req.History, req.K)
	if err != nil {
		if errors.Is(err, rag.ErrInvalidQuestion) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		}
		s.logger.Error("query failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "cannot answer query"})
	}
	return c.JSON(http.StatusOK, answer)
}

// RetrieveRequest is the request body for POST /retrieve.
type RetrieveRequest struct {
	Question string `json:"question"`
	K        int    `json:"k"`
}

// RetrieveResponse is the response body for POST /retrieve.
type RetrieveResponse struct {
	Results []rag.RetrievedDoc `json:"results"`
}

func (s *RAGServer) handleRetrieve(c echo.Context) error {
	var req RetrieveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	docs, err := s.orchestrator.Retrieve(c.Request().Context(), req.Question, req.K)
	if err != nil {
		if errors.Is(err, rag.ErrInvalidQuestion) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		}
		s.logger.Error("retrieve failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "cannot retrieve context"})
	}
	return c.JSON(http.StatusOK, RetrieveResponse{Results: docs})
}

func (s *RAGServer) handleStats(c echo.Context) error {
	stats, err := s.orchestrator.Stats(c.Request().Context())
	if err != nil {
		s.logger.Error("stats failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "cannot read knowledge base"})
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *RAGServer) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
