package controller

import (
	"net/http"
	"strconv"

	"github.com/Tapananshu17/HCI/internal/dto"
	"github.com/Tapananshu17/HCI/internal/middleware"
	"github.com/Tapananshu17/HCI/internal/model"
	"github.com/Tapananshu17/HCI/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type AssessmentController struct {
	assessmentService service.AssessmentService
	progressService   service.ProgressService
	resultsService    service.ResultsService
}

func NewAssessmentController(
	assessmentService service.AssessmentService,
	progressService service.ProgressService,
	resultsService service.ResultsService,
) *AssessmentController {
	return &AssessmentController{
		assessmentService: assessmentService,
		progressService:   progressService,
		resultsService:    resultsService,
	}
}

// Start godoc
// @Summary Start a new assessment or resume the in-progress one
// @Description Idempotent: if the user already has an in-progress assessment it is returned with resumed=true instead of creating a second one.
// @Tags Assessments
// @Accept json
// @Produce json
// @Param start_data body dto.StartAssessmentRequest false "Optional question count for the first section"
// @Success 200 {object} dto.StartAssessmentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /assessments [post]
func (c *AssessmentController) Start(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	var req dto.StartAssessmentRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
			return
		}
	}

	resp, err := c.assessmentService.Start(ctx.Request.Context(), userID, req)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("Start assessment failed")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Get an assessment's state and progress
// @Tags Assessments
// @Produce json
// @Param assessment_id path int true "Assessment ID"
// @Success 200 {object} dto.AssessmentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /assessments/{assessment_id} [get]
func (c *AssessmentController) Get(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)
	assessmentID, ok := pathID(ctx, "assessment_id")
	if !ok {
		return
	}

	resp, err := c.assessmentService.Get(ctx.Request.Context(), userID, assessmentID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetSection godoc
// @Summary Get or lazily create a section of an assessment
// @Description Returns the section for the given type, creating it when its predecessors are completed. total_questions overrides the server default on creation.
// @Tags Assessments
// @Produce json
// @Param assessment_id path int true "Assessment ID"
// @Param test_type path string true "Section type" Enums(aptitude, values, personal)
// @Param total_questions query int false "Question count to use if the section is created"
// @Success 200 {object} dto.SectionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 412 {object} dto.ErrorResponse "Earlier sections not completed"
// @Security BearerAuth
// @Router /assessments/{assessment_id}/sections/{test_type} [get]
func (c *AssessmentController) GetSection(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)
	assessmentID, ok := pathID(ctx, "assessment_id")
	if !ok {
		return
	}

	kind := model.SectionKind(ctx.Param("test_type"))

	totalQuestions := 0
	if raw := ctx.Query("total_questions"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid total_questions format"})
			return
		}
		totalQuestions = val
	}

	resp, err := c.assessmentService.GetSection(ctx.Request.Context(), userID, assessmentID, kind, totalQuestions)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SaveProgress godoc
// @Summary Auto-save a section's answers and cursor
// @Description Replaces the section's whole answer sheet. Never changes completion state; safe to call repeatedly.
// @Tags Assessments
// @Accept json
// @Produce json
// @Param progress body dto.SaveProgressRequest true "Section id, full answer sheet and current question index"
// @Success 200 {object} dto.SaveProgressResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /assessments/save-progress [post]
func (c *AssessmentController) SaveProgress(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	var req dto.SaveProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.progressService.SaveProgress(ctx.Request.Context(), userID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SubmitSection godoc
// @Summary Submit a section's final answers
// @Description Marks the section completed and advances the assessment, or completes it after the last section. Re-submitting a completed section is a no-op.
// @Tags Assessments
// @Accept json
// @Produce json
// @Param submission body dto.SubmitSectionRequest true "Section id, final answers and optional next section question count"
// @Success 200 {object} dto.SubmitSectionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 412 {object} dto.ErrorResponse "Out-of-order submit or assessment not in progress"
// @Security BearerAuth
// @Router /assessments/submit-section [post]
func (c *AssessmentController) SubmitSection(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	var req dto.SubmitSectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.assessmentService.SubmitSection(ctx.Request.Context(), userID, req)
	if err != nil {
		log.Warn().Err(err).Uint("userID", userID).Uint("sectionID", req.SectionID).Msg("Submit section failed")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Abandon godoc
// @Summary Abandon the in-progress assessment
// @Tags Assessments
// @Produce json
// @Param assessment_id path int true "Assessment ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 412 {object} dto.ErrorResponse "Assessment already completed"
// @Security BearerAuth
// @Router /assessments/{assessment_id}/abandon [post]
func (c *AssessmentController) Abandon(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)
	assessmentID, ok := pathID(ctx, "assessment_id")
	if !ok {
		return
	}

	if err := c.assessmentService.Abandon(ctx.Request.Context(), userID, assessmentID); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "Assessment abandoned"})
}

// History godoc
// @Summary List the user's completed assessments
// @Tags Assessments
// @Produce json
// @Success 200 {object} dto.AssessmentHistoryResponse
// @Security BearerAuth
// @Router /assessments/history [get]
func (c *AssessmentController) History(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	resp, err := c.assessmentService.History(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Responses godoc
// @Summary Get all recorded answers of an assessment
// @Tags Assessments
// @Produce json
// @Param assessment_id path int true "Assessment ID"
// @Success 200 {object} dto.AssessmentResponsesResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /assessments/{assessment_id}/responses [get]
func (c *AssessmentController) Responses(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)
	assessmentID, ok := pathID(ctx, "assessment_id")
	if !ok {
		return
	}

	resp, err := c.assessmentService.Responses(ctx.Request.Context(), userID, assessmentID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Results godoc
// @Summary Get the analyzed results of a completed assessment
// @Description Scores may still be pending shortly after completion; analyzed=false until the background analysis stores them.
// @Tags Assessments
// @Produce json
// @Param assessment_id path int true "Assessment ID"
// @Success 200 {object} dto.ResultsResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /assessments/{assessment_id}/results [get]
func (c *AssessmentController) Results(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)
	assessmentID, ok := pathID(ctx, "assessment_id")
	if !ok {
		return
	}

	resp, err := c.resultsService.GetResults(ctx.Request.Context(), userID, assessmentID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
