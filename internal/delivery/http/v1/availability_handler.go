package v1

import (
	"net/http"
	"strconv"

	"go-interview-scheduler/internal/delivery/http/middleware"
	"go-interview-scheduler/internal/delivery/http/response"
	"go-interview-scheduler/internal/domain"
	"go-interview-scheduler/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	availabilityUC domain.AvailabilityUsecase
	exceptionUC    domain.ExceptionUsecase
	bookingUC      domain.BookingUsecase
}

func NewAvailabilityHandler(protected *gin.RouterGroup, availabilityUC domain.AvailabilityUsecase, exceptionUC domain.ExceptionUsecase, bookingUC domain.BookingUsecase) {
	handler := &AvailabilityHandler{
		availabilityUC: availabilityUC,
		exceptionUC:    exceptionUC,
		bookingUC:      bookingUC,
	}

	employers := protected.Group("/employers/:employerId/availability")
	{
		employers.GET("", handler.GetAvailableSlots)
		employers.GET("/check", handler.CheckSlot)
	}

	schedules := protected.Group("/schedules")
	{
		schedules.GET("", handler.ListSchedules)
		schedules.POST("", handler.SetSchedule)
		schedules.POST("/exceptions", handler.CreateException)
		schedules.PUT("/:type/:id", handler.UpdateSchedule)
		schedules.DELETE("/:type/:id", handler.DeleteSchedule)
	}
}

// GetAvailableSlots godoc
// @Summary      Employer open slots
// @Description  Projects recurring and date-specific schedules into open, unbooked slots
// @Tags         availability
// @Produce      json
// @Param        employerId  path   string  true   "Employer user ID"
// @Param        from        query  string  false  "Start date (YYYY-MM-DD), defaults to today"
// @Param        to          query  string  false  "End date (YYYY-MM-DD)"
// @Success      200  {object}  response.Response{data=domain.AvailabilityProjection}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /employers/{employerId}/availability [get]
// @Security     BearerAuth
func (h *AvailabilityHandler) GetAvailableSlots(c *gin.Context) {
	from, err := optionalDate(c.Query("from"))
	if err != nil {
		c.Error(err)
		return
	}
	to, err := optionalDate(c.Query("to"))
	if err != nil {
		c.Error(err)
		return
	}

	projection, err := h.availabilityUC.GetAvailableSlots(c.Request.Context(), c.Param("employerId"), from, to)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Available slots retrieved successfully", projection)
}

// CheckSlot godoc
// @Summary      Check a single slot
// @Tags         availability
// @Produce      json
// @Param        employerId  path   string  true  "Employer user ID"
// @Param        date        query  string  true  "Date (YYYY-MM-DD)"
// @Param        start_time  query  string  true  "Start (HH:MM)"
// @Param        end_time    query  string  true  "End (HH:MM)"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /employers/{employerId}/availability/check [get]
// @Security     BearerAuth
func (h *AvailabilityHandler) CheckSlot(c *gin.Context) {
	date, err := domain.ParseDate(c.Query("date"))
	if err != nil {
		c.Error(apperror.Validation(err.Error(), err))
		return
	}

	key := domain.SlotKey{
		EmployerID: c.Param("employerId"),
		Date:       date,
		StartTime:  c.Query("start_time"),
		EndTime:    c.Query("end_time"),
	}
	available, err := h.bookingUC.CheckAvailability(c.Request.Context(), key)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Slot availability checked", gin.H{
		"slot":      key,
		"available": available,
	})
}

// ListSchedules godoc
// @Summary      List own schedules
// @Tags         schedules
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.EmployerSchedules}
// @Failure      403  {object}  response.Response
// @Router       /schedules [get]
// @Security     BearerAuth
func (h *AvailabilityHandler) ListSchedules(c *gin.Context) {
	schedules, err := h.availabilityUC.ListSchedules(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Schedules retrieved successfully", schedules)
}

// SetSchedule godoc
// @Summary      Create a schedule
// @Description  Creates a date-specific schedule or the employer's recurring weekly rule
// @Tags         schedules
// @Accept       json
// @Produce      json
// @Param        schedule  body      domain.SchedulePayload  true  "Schedule"
// @Success      201  {object}  response.Response{data=domain.ScheduleRef}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /schedules [post]
// @Security     BearerAuth
func (h *AvailabilityHandler) SetSchedule(c *gin.Context) {
	var payload domain.SchedulePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	ref, err := h.availabilityUC.SetSchedule(c.Request.Context(), middleware.ActorFrom(c), payload)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Schedule created successfully", ref)
}

// UpdateSchedule godoc
// @Summary      Replace a schedule
// @Tags         schedules
// @Accept       json
// @Produce      json
// @Param        type      path      string                  true  "specific or recurring"
// @Param        id        path      int                     true  "Schedule ID"
// @Param        schedule  body      domain.SchedulePayload  true  "Schedule"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /schedules/{type}/{id} [put]
// @Security     BearerAuth
func (h *AvailabilityHandler) UpdateSchedule(c *gin.Context) {
	ref, err := scheduleRef(c)
	if err != nil {
		c.Error(err)
		return
	}

	var payload domain.SchedulePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}
	if payload.Type == "" {
		payload.Type = ref.Type
	}

	if err := h.availabilityUC.UpdateSchedule(c.Request.Context(), middleware.ActorFrom(c), ref, payload); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Schedule updated successfully", ref)
}

// DeleteSchedule godoc
// @Summary      Deactivate a schedule
// @Tags         schedules
// @Produce      json
// @Param        type  path  string  true  "specific or recurring"
// @Param        id    path  int     true  "Schedule ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /schedules/{type}/{id} [delete]
// @Security     BearerAuth
func (h *AvailabilityHandler) DeleteSchedule(c *gin.Context) {
	ref, err := scheduleRef(c)
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.availabilityUC.DeleteSchedule(c.Request.Context(), middleware.ActorFrom(c), ref); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Schedule deleted successfully", nil)
}

// CreateException godoc
// @Summary      Remove one occurrence of a recurring slot
// @Tags         schedules
// @Accept       json
// @Produce      json
// @Param        exception  body      domain.ExceptionRequest  true  "Exception"
// @Success      201  {object}  response.Response{data=domain.SpecificAvailability}
// @Failure      404  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /schedules/exceptions [post]
// @Security     BearerAuth
func (h *AvailabilityHandler) CreateException(c *gin.Context) {
	var req domain.ExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	rec, err := h.exceptionUC.CreateException(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Exception created successfully", rec)
}

func scheduleRef(c *gin.Context) (domain.ScheduleRef, error) {
	kind := domain.ScheduleType(c.Param("type"))
	if kind != domain.ScheduleTypeSpecific && kind != domain.ScheduleTypeRecurring {
		return domain.ScheduleRef{}, apperror.NotFound("Unknown schedule type")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return domain.ScheduleRef{}, apperror.BadRequest("Invalid schedule ID")
	}
	return domain.ScheduleRef{ID: id, Type: kind}, nil
}

func optionalDate(raw string) (*domain.Date, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return nil, apperror.Validation(err.Error(), err)
	}
	return &d, nil
}
