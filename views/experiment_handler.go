package views

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/GrainArc/TrialMap/response"
	"github.com/GrainArc/TrialMap/services"
	"github.com/gin-gonic/gin"
)

type ExperimentHandler struct {
	importer       *services.ExperimentImportService
	plans          *services.PlanService
	maxUploadBytes int64
}

func NewExperimentHandler(importer *services.ExperimentImportService, plans *services.PlanService, maxUploadBytes int64) *ExperimentHandler {
	return &ExperimentHandler{
		importer:       importer,
		plans:          plans,
		maxUploadBytes: maxUploadBytes,
	}
}

// Import 上传GeoJSON并创建试验计划与地块
// @Accept multipart/form-data
// @Param file formData file true "GeoJSON file (.geojson)"
func (h *ExperimentHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", h.maxUploadBytes), nil)
			return
		}
		response.BadRequest(c, "a .geojson file is required in the \"file\" field")
		return
	}

	if strings.ToLower(filepath.Ext(file.Filename)) != ".geojson" {
		response.BadRequest(c, "only .geojson files are accepted")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.InternalError(c, "failed to open upload")
		return
	}
	defer src.Close()

	contents, err := io.ReadAll(src)
	if err != nil {
		response.InternalError(c, "failed to read upload")
		return
	}

	result, err := h.importer.ImportExperiment(c.Request.Context(), contents)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMalformedDocument), errors.Is(err, services.ErrMissingPlanMetadata):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err.Error())
		}
		return
	}

	skipped := make([]gin.H, 0, len(result.Skipped))
	for _, fe := range result.Skipped {
		skipped = append(skipped, gin.H{"index": fe.Index, "error": fe.Err.Error()})
	}

	response.SuccessWithMessage(c, fmt.Sprintf("Created %d features.", result.Created), gin.H{
		"plan_id":   result.PlanID,
		"plan_name": result.PlanName,
		"total":     result.Total,
		"created":   result.Created,
		"skipped":   skipped,
	})
}

func (h *ExperimentHandler) ListPlans(c *gin.Context) {
	plans, err := h.plans.ListPlans(c.Request.Context())
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, plans)
}

func (h *ExperimentHandler) PlanPlots(c *gin.Context) {
	planID, ok := planIDParam(c)
	if !ok {
		return
	}
	plots, err := h.plans.PlanPlots(c.Request.Context(), planID)
	if err != nil {
		planError(c, err)
		return
	}
	response.Success(c, plots)
}

// PlanGeoJSON 导出计划下全部地块为FeatureCollection
func (h *ExperimentHandler) PlanGeoJSON(c *gin.Context) {
	planID, ok := planIDParam(c)
	if !ok {
		return
	}
	fc, err := h.plans.PlanFeatureCollection(c.Request.Context(), planID)
	if err != nil {
		planError(c, err)
		return
	}
	c.JSON(http.StatusOK, fc)
}

func planIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid plan id")
		return 0, false
	}
	return uint(id), true
}

func planError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrPlanNotFound) {
		response.NotFound(c, err.Error())
		return
	}
	response.InternalError(c, err.Error())
}
