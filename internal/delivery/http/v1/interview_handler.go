package v1

import (
	"net/http"
	"strings"

	"go-interview-scheduler/internal/delivery/http/middleware"
	"go-interview-scheduler/internal/delivery/http/response"
	"go-interview-scheduler/internal/domain"
	"go-interview-scheduler/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type InterviewHandler struct {
	interviewUC domain.InterviewUsecase
}

// NewInterviewHandler registers interview routes. bookingLimit guards the
// routes that claim slots.
func NewInterviewHandler(protected *gin.RouterGroup, interviewUC domain.InterviewUsecase, bookingLimit gin.HandlerFunc) {
	handler := &InterviewHandler{interviewUC: interviewUC}

	interviews := protected.Group("/interviews")
	{
		interviews.GET("", handler.List)
		interviews.POST("", handler.Create)
		interviews.GET("/export", handler.Export)
		interviews.GET("/:id", handler.Get)
		interviews.GET("/:id/history", handler.History)
		interviews.POST("/:id/schedule", bookingLimit, handler.Schedule)
		interviews.POST("/:id/reschedule", bookingLimit, handler.Reschedule)
		interviews.POST("/:id/cancel", handler.Cancel)
		interviews.POST("/:id/complete", handler.Complete)
	}
}

// Create godoc
// @Summary      Create an interview
// @Description  Invites the job seeker of an application to an interview (Employer only)
// @Tags         interviews
// @Accept       json
// @Produce      json
// @Param        interview  body      domain.CreateInterviewRequest  true  "Interview"
// @Success      201  {object}  response.Response{data=domain.Interview}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /interviews [post]
// @Security     BearerAuth
func (h *InterviewHandler) Create(c *gin.Context) {
	var req domain.CreateInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	actor := middleware.ActorFrom(c)
	if req.EmployerID == "" {
		req.EmployerID = actor.UserID
	}

	interview, err := h.interviewUC.Create(c.Request.Context(), actor, req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Interview created successfully", interview)
}

// List godoc
// @Summary      List my interviews
// @Tags         interviews
// @Produce      json
// @Param        status  query  string  false  "Comma-separated statuses"
// @Success      200  {object}  response.Response{data=[]domain.Interview}
// @Router       /interviews [get]
// @Security     BearerAuth
func (h *InterviewHandler) List(c *gin.Context) {
	var statuses []domain.InterviewStatus
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				statuses = append(statuses, domain.InterviewStatus(s))
			}
		}
	}

	interviews, err := h.interviewUC.ListMine(c.Request.Context(), middleware.ActorFrom(c), statuses)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Interviews retrieved successfully", interviews)
}

// Get godoc
// @Summary      Interview detail
// @Tags         interviews
// @Produce      json
// @Param        id  path  string  true  "Interview ID"
// @Success      200  {object}  response.Response{data=domain.Interview}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /interviews/{id} [get]
// @Security     BearerAuth
func (h *InterviewHandler) Get(c *gin.Context) {
	interview, err := h.interviewUC.Get(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Interview retrieved successfully", interview)
}

// History godoc
// @Summary      Interview transition history
// @Tags         interviews
// @Produce      json
// @Param        id  path  string  true  "Interview ID"
// @Success      200  {object}  response.Response{data=[]domain.InterviewEvent}
// @Router       /interviews/{id}/history [get]
// @Security     BearerAuth
func (h *InterviewHandler) History(c *gin.Context) {
	events, err := h.interviewUC.History(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Interview history retrieved successfully", events)
}

// Schedule godoc
// @Summary      Book a slot for a pending interview
// @Tags         interviews
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Interview ID"
// @Param        slot  body      domain.SlotRequest  true  "Slot"
// @Success      200  {object}  response.Response{data=domain.Interview}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /interviews/{id}/schedule [post]
// @Security     BearerAuth
func (h *InterviewHandler) Schedule(c *gin.Context) {
	var req domain.SlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	interview, err := h.interviewUC.Schedule(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Interview scheduled successfully", interview)
}

// Reschedule godoc
// @Summary      Move an interview to another slot
// @Tags         interviews
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Interview ID"
// @Param        slot  body      domain.SlotRequest  true  "New slot"
// @Success      200  {object}  response.Response{data=domain.Interview}
// @Failure      409  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /interviews/{id}/reschedule [post]
// @Security     BearerAuth
func (h *InterviewHandler) Reschedule(c *gin.Context) {
	var req domain.SlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	interview, err := h.interviewUC.Reschedule(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Interview rescheduled successfully", interview)
}

// Cancel godoc
// @Summary      Cancel an interview
// @Tags         interviews
// @Accept       json
// @Produce      json
// @Param        id      path      string                         true  "Interview ID"
// @Param        cancel  body      domain.CancelInterviewRequest  true  "Reason"
// @Success      200  {object}  response.Response{data=domain.Interview}
// @Failure      422  {object}  response.Response
// @Router       /interviews/{id}/cancel [post]
// @Security     BearerAuth
func (h *InterviewHandler) Cancel(c *gin.Context) {
	var req domain.CancelInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	interview, err := h.interviewUC.Cancel(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Interview cancelled successfully", interview)
}

// Complete godoc
// @Summary      Record the interview outcome
// @Tags         interviews
// @Accept       json
// @Produce      json
// @Param        id      path      string                           true  "Interview ID"
// @Param        result  body      domain.CompleteInterviewRequest  true  "Outcome"
// @Success      200  {object}  response.Response{data=domain.Interview}
// @Failure      403  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /interviews/{id}/complete [post]
// @Security     BearerAuth
func (h *InterviewHandler) Complete(c *gin.Context) {
	var req domain.CompleteInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	interview, err := h.interviewUC.Complete(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Interview completed successfully", interview)
}

// Export godoc
// @Summary      Export interview schedule
// @Description  Downloads the employer's interviews within a date range (Employer only)
// @Tags         interviews
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      text/csv
// @Param        from    query  string  true   "Start date (YYYY-MM-DD)"
// @Param        to      query  string  true   "End date (YYYY-MM-DD)"
// @Param        format  query  string  false  "xlsx (default) or csv"
// @Success      200  {file}  binary
// @Failure      400  {object}  response.Response
// @Router       /interviews/export [get]
// @Security     BearerAuth
func (h *InterviewHandler) Export(c *gin.Context) {
	from, err := domain.ParseDate(c.Query("from"))
	if err != nil {
		c.Error(apperror.Validation(err.Error(), err))
		return
	}
	to, err := domain.ParseDate(c.Query("to"))
	if err != nil {
		c.Error(apperror.Validation(err.Error(), err))
		return
	}
	format := c.DefaultQuery("format", "xlsx")

	data, filename, err := h.interviewUC.Export(c.Request.Context(), middleware.ActorFrom(c), from, to, format)
	if err != nil {
		c.Error(err)
		return
	}

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if format == "csv" {
		contentType = "text/csv; charset=utf-8"
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}
