package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/riftlabs/riftqa/internal/config"
	"github.com/riftlabs/riftqa/internal/jobs"
	"github.com/riftlabs/riftqa/internal/queue"
)

// PipelineServer exposes the ingestion API: enqueue jobs, inspect their
// status, and inspect the queue.
type PipelineServer struct {
	server
	broker queue.Broker
	store  jobs.Store
}

// NewPipelineServer wires the ingestion HTTP server.
func NewPipelineServer(cfg *config.ServerConfig, broker queue.Broker, store jobs.Store, logger *zap.Logger) *PipelineServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := NewMetrics()

	s := &PipelineServer{
		server: server{
			echo:    newEcho(logger, metrics),
			cfg:     cfg,
			logger:  logger,
			metrics: metrics,
		},
		broker: broker,
		store:  store,
	}

	s.echo.POST("/ingest", s.handleIngest)
	s.echo.GET("/status/:job_id", s.handleStatus)
	s.echo.GET("/queue", s.handleQueue)
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", metrics.Handler())

	return s
}

// IngestRequest is the request body for POST /ingest. Mode wins when both it
// and the force_refresh shorthand are supplied. Without either, chunks are
// appended; chunk IDs are content hashes, so appending to an empty index
// creates it and re-ingesting known content upserts in place.
type IngestRequest struct {
	Mode         string   `json:"mode"`
	ForceRefresh bool     `json:"force_refresh"`
	Sources      []string `json:"sources"`
}

// IngestResponse is the response body for POST /ingest.
type IngestResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (r *IngestRequest) mode() (jobs.Mode, error) {
	if r.Mode != "" {
		m := jobs.Mode(r.Mode)
		if !jobs.ValidMode(m) {
			return "", errors.New("mode must be one of create, force_refresh, append")
		}
		return m, nil
	}
	if r.ForceRefresh {
		return jobs.ModeForceRefresh, nil
	}
	// Only an explicit "create" skips a populated index. The default keeps
	// new corpus content flowing into an existing one.
	return jobs.ModeAppend, nil
}

func (s *PipelineServer) handleIngest(c echo.Context) error {
	var req IngestRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	mode, err := req.mode()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	ctx := c.Request().Context()
	job := &jobs.Job{
		ID:      uuid.NewString(),
		Mode:    mode,
		Sources: req.Sources,
	}
	if err := s.store.Create(ctx, job); err != nil {
		s.logger.Error("cannot create job record", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "cannot record job"})
	}

	payload, err := json.Marshal(jobs.Task{JobID: job.ID, Mode: mode, Sources: req.Sources})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "cannot encode job"})
	}

	if err := s.broker.Enqueue(ctx, payload); err != nil {
		s.logger.Error("cannot enqueue job", zap.String("job_id", job.ID), zap.Error(err))
		if markErr := s.store.MarkFailed(ctx, job.ID, "queue unavailable"); markErr != nil {
			s.logger.Error("cannot mark job failed", zap.Error(markErr))
		}
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "queue unavailable"})
	}

	if n, err := s.broker.Length(ctx); err == nil {
		s.metrics.SetQueueLength(n)
	}

	s.logger.Info("ingestion job queued",
		zap.String("job_id", job.ID), zap.String("mode", string(mode)))

	return c.JSON(http.StatusAccepted, IngestResponse{
		JobID:   job.ID,
		Status:  string(jobs.StatusQueued),
		Message: "ingestion job queued",
	})
}

func (s *PipelineServer) handleStatus(c echo.Context) error {
	job, err := s.store.Get(c.Request().Context(), c.Param("job_id"))
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "job not found"})
		}
		s.logger.Error("cannot fetch job", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "cannot fetch job"})
	}
	return c.JSON(http.StatusOK, job)
}

// QueueResponse is the response body for GET /queue.
type QueueResponse struct {
	Length int64 `json:"length"`
}

func (s *PipelineServer) handleQueue(c echo.Context) error {
	n, err := s.broker.Length(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "queue unavailable"})
	}
	s.metrics.SetQueueLength(n)
	return c.JSON(http.StatusOK, QueueResponse{Length: n})
}

func (s *PipelineServer) handleHealth(c echo.Context) error {
	status, components := checkComponents(c.Request().Context(), map[string]any{
		"queue": s.broker,
		"jobs":  s.store,
	})
	return c.JSON(healthStatusCode(status), HealthResponse{Status: status, Components: components})
}
