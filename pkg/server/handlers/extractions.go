package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docugraph/docugraph/pkg/export"
	"github.com/docugraph/docugraph/pkg/server/dto"
	"github.com/docugraph/docugraph/pkg/store"
)

// ExtractionRunner is the job lifecycle surface the handlers need. The
// concrete implementation lives in the server package.
type ExtractionRunner interface {
	Submit(documentName, text string, chunkSize int, overlapPercentage *int) (*store.Job, error)
	Get(id string) (*store.Job, error)
	List() ([]*store.Job, error)
	Delete(id string) error
}

// ExtractionsHandler handles extraction job requests
type ExtractionsHandler struct {
	runner ExtractionRunner
}

// NewExtractionsHandler creates a new extractions handler
func NewExtractionsHandler(runner ExtractionRunner) *ExtractionsHandler {
	return &ExtractionsHandler{runner: runner}
}

func jobResponse(job *store.Job) dto.ExtractionJobResponse {
	return dto.ExtractionJobResponse{
		ID:           job.ID,
		Status:       string(job.Status),
		DocumentName: job.DocumentName,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
		Error:        job.Error,
	}
}

// Create handles POST /api/v1/extractions
func (h *ExtractionsHandler) Create(c *gin.Context) {
	var req dto.CreateExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	name := req.DocumentName
	if name == "" {
		name = "untitled"
	}

	job, err := h.runner.Submit(name, req.Text, req.ChunkSize, req.OverlapPercentage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "submit_failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, jobResponse(job))
}

// List handles GET /api/v1/extractions
func (h *ExtractionsHandler) List(c *gin.Context) {
	jobs, err := h.runner.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "list_failed", Message: err.Error()})
		return
	}

	responses := make([]dto.ExtractionJobResponse, 0, len(jobs))
	for _, job := range jobs {
		responses = append(responses, jobResponse(job))
	}
	c.JSON(http.StatusOK, dto.Result{Success: true, Data: responses})
}

// Status handles GET /api/v1/extractions/:id/status
func (h *ExtractionsHandler) Status(c *gin.Context) {
	job, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, jobResponse(job))
}

// Result handles GET /api/v1/extractions/:id/result
func (h *ExtractionsHandler) Result(c *gin.Context) {
	job, ok := h.lookup(c)
	if !ok {
		return
	}

	switch job.Status {
	case store.StatusCompleted:
		c.JSON(http.StatusOK, dto.Result{Success: true, Data: job.Result})
	case store.StatusError:
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "extraction_failed", Message: job.Error})
	default:
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   "not_ready",
			Message: "extraction is still " + string(job.Status),
		})
	}
}

// Export handles GET /api/v1/extractions/:id/export
func (h *ExtractionsHandler) Export(c *gin.Context) {
	job, ok := h.lookup(c)
	if !ok {
		return
	}
	if job.Status != store.StatusCompleted || job.Result == nil {
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "not_ready", Message: "extraction has no result yet"})
		return
	}

	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	dialect := export.DialectNeo4j
	if req.Format == "neptune" {
		dialect = export.DialectNeptune
	}

	var buf bytes.Buffer
	var err error
	filename := job.ID + "_nodes.csv"
	if req.Kind == "relationships" {
		filename = job.ID + "_relationships.csv"
		err = export.WriteRelationshipsCSV(&buf, dialect, job.Result.Relationships)
	} else {
		err = export.WriteNodesCSV(&buf, dialect, job.Result.Nodes)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "export_failed", Message: err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// Delete handles DELETE /api/v1/extractions/:id
func (h *ExtractionsHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.runner.Delete(id); err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not_found", Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "delete_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.Result{Success: true})
}

func (h *ExtractionsHandler) lookup(c *gin.Context) (*store.Job, bool) {
	job, err := h.runner.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not_found", Message: err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "lookup_failed", Message: err.Error()})
		}
		return nil, false
	}
	return job, true
}
