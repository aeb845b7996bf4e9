package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/YEYOLABS/boundless-fleet/internal/application/service"
	"github.com/YEYOLABS/boundless-fleet/internal/domain/entity"
	"github.com/YEYOLABS/boundless-fleet/internal/reconciliation"
	"github.com/YEYOLABS/boundless-fleet/pkg/utils"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	fleet      FleetConfig
	vehicles   service.VehicleService
	assignment service.AssignmentService
	tours      service.TourService
	floats     service.FloatService
	issues     service.IssueService
	schedule   service.ScheduleService
	statements *reconciliation.StatementExporter
	logger     *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	fleet FleetConfig,
	vehicles service.VehicleService,
	assignment service.AssignmentService,
	tours service.TourService,
	floats service.FloatService,
	issues service.IssueService,
	schedule service.ScheduleService,
	statements *reconciliation.StatementExporter,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		fleet:      fleet,
		vehicles:   vehicles,
		assignment: assignment,
		tours:      tours,
		floats:     floats,
		issues:     issues,
		schedule:   schedule,
		statements: statements,
		logger:     logger,
	}
}

// orgScope resolves the organisation scope for list endpoints: the
// query parameter when present, the configured organisation otherwise.
func (h *Handlers) orgScope(c *gin.Context) string {
	if org := c.Query("organisation_id"); org != "" {
		return org
	}
	return h.fleet.OrganisationID
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

// respondError maps the domain error taxonomy onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, entity.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, entity.ErrBlocked):
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, Response{Success: false, Error: err.Error()})
}

func parseDate(s string) (time.Time, error) {
	t, err := utils.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}
	return t, nil
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// --- Vehicles ---

// RegisterVehicleRequest is the payload for POST /vehicles.
type RegisterVehicleRequest struct {
	Model          string                 `json:"model"`
	LicenceNumber  string                 `json:"licence_number"`
	ModelYear      int                    `json:"model_year"`
	TrailerID      string                 `json:"trailer_id"`
	TrailerModel   string                 `json:"trailer_model"`
	TrailerLicence string                 `json:"trailer_licence"`
	Odometer       int64                  `json:"odometer"`
	Intervals      entity.IntervalCatalog `json:"maintenance_intervals_km"`
	OrganisationID string                 `json:"organisation_id"`
	SortOrder      int                    `json:"sort_order"`
}

// RegisterVehicle handles POST /vehicles
func (h *Handlers) RegisterVehicle(c *gin.Context) {
	var req RegisterVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", entity.ErrValidation, err))
		return
	}

	v, err := h.vehicles.Register(c.Request.Context(), service.RegisterVehicleInput{
		Model:          req.Model,
		LicenceNumber:  req.LicenceNumber,
		ModelYear:      req.ModelYear,
		TrailerID:      req.TrailerID,
		TrailerModel:   req.TrailerModel,
		TrailerLicence: req.TrailerLicence,
		Odometer:       req.Odometer,
		Intervals:      req.Intervals,
		OrganisationID: req.OrganisationID,
		SortOrder:      req.SortOrder,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, v)
}

// ListVehicles handles GET /vehicles
func (h *Handlers) ListVehicles(c *gin.Context) {
	vehicles, err := h.vehicles.List(c.Request.Context(), h.orgScope(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, vehicles)
}

// GetVehicle handles GET /vehicles/:id
func (h *Handlers) GetVehicle(c *gin.Context) {
	v, err := h.vehicles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, v)
}

// UpdateVehicleRequest is the payload for PATCH /vehicles/:id. Absent
// fields are left untouched.
type UpdateVehicleRequest struct {
	Model          *string                 `json:"model"`
	LicenceNumber  *string                 `json:"licence_number"`
	ModelYear      *int                    `json:"model_year"`
	TrailerID      *string                 `json:"trailer_id"`
	TrailerModel   *string                 `json:"trailer_model"`
	TrailerLicence *string                 `json:"trailer_licence"`
	LatestOdometer *int64                  `json:"latest_odometer"`
	Intervals      *entity.IntervalCatalog `json:"maintenance_intervals_km"`
	SortOrder      *int                    `json:"sort_order"`
}

// UpdateVehicle handles PATCH /vehicles/:id
func (h *Handlers) UpdateVehicle(c *gin.Context) {
	var req UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", entity.ErrValidation, err))
		return
	}

	v, err := h.vehicles.Update(c.Request.Context(), c.Param("id"), service.UpdateVehicleInput{
		Model:          req.Model,
		LicenceNumber:  req.LicenceNumber,
		ModelYear:      req.ModelYear,
		TrailerID:      req.TrailerID,
		TrailerModel:   req.TrailerModel,
		TrailerLicence: req.TrailerLicence,
		LatestOdometer: req.LatestOdometer,
		Intervals:      req.Intervals,
		SortOrder:      req.SortOrder,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, v)
}

// DecommissionVehicle handles DELETE /vehicles/:id
func (h *Handlers) DecommissionVehicle(c *gin.Context) {
	v, err := h.assignment.Decommission(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, v)
}

// GetVehicleHealth handles GET /vehicles/:id/health
func (h *Handlers) GetVehicleHealth(c *gin.Context) {
	health, err := h.vehicles.Health(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, health)
}

// GetFleetHealth handles GET /fleet/health
func (h *Handlers) GetFleetHealth(c *gin.Context) {
	health, err := h.vehicles.FleetHealth(c.Request.Context(), h.orgScope(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, health)
}

// AssignDriverRequest is the payload for POST /vehicles/:id/assign.
type AssignDriverRequest struct {
	DriverID       string `json:"driver_id"`
	AssignedByID   string `json:"assigned_by_id"`
	AssignedByName string `json:"assigned_by_name"`
}

// AssignDriver handles POST /vehicles/:id/assign
func (h *Handlers) AssignDriver(c *gin.Context) {
	var req AssignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", entity.ErrValidation, err))
		return
	}

	v, err := h.assignment.Assign(c.Request.Context(), c.Param("id"), req.DriverID, service.AssignedBy{
		ID:   req.AssignedByID,
		Name: req.AssignedByName,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, v)
}

// RecordService handles POST /vehicles/:id/service
func (h *Handlers) RecordService(c *gin.Context) {
	v, err := h.vehicles.RecordService(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, v)
}

// GetAssignmentHistory handles GET /vehicles/:id/assignments
func (h *Handlers) GetAssignmentHistory(c *gin.Context) {
	records, err := h.assignment.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, records)
}

// ListDrivers handles GET /drivers
func (h *Handlers) ListDrivers(c *gin.Context) {
	drivers, err := h.assignment.ListDrivers(c.Request.Context(), h.orgScope(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, drivers)
}

// --- Tours ---

// TourRequest is the payload for POST /tours.
type TourRequest struct {
	Reference       string `json:"tour_reference"`
	Name            string `json:"tour_name"`
	Supplier        string `json:"supplier"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Status          string `json:"status"`
	EstimatedKm     int64  `json:"estimated_km"`
	TrailerRequired bool   `json:"trailer_required"`
	Pax             int    `json:"pax"`
	Itinerary       string `json:"itinerary"`
	Instructions    string `json:"instructions"`
	Notes           string `json:"notes"`
	CreatedBy       string `json:"created_by"`
}

// CreateTour handles POST /tours
func (h *Handlers) CreateTour(c *gin.Context) {
	var req TourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", entity.ErrValidation, err))
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		respondError(c, err)
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		respondError(c, err)
		return
	}

	tour, err := h.tours.Create(c.Request.Context(), service.CreateTourInput{
		Reference:       req.Reference,
		Name:            req.Name,
		Supplier:        req.Supplier,
		StartDate:       start,
		EndDate:         end,
		Status:          entity.TourStatus(req.Status),
		EstimatedKm:     req.EstimatedKm,
		TrailerRequired: req.TrailerRequired,
		Pax:             req.Pax,
		Itinerary:       req.Itinerary,
		Instructions:    req.Instructions,
		Notes:           req.Notes,
		CreatedBy:       req.CreatedBy,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, tour)
}

// ListTours handles GET /tours
func (h *Handlers) ListTours(c *gin.Context) {
	tours, err := h.tours.List(c.Request.Context(), entity.TourStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, tours)
}

// GetTour handles GET /tours/:id
func (h *Handlers) GetTour(c *gin.Context) {
	tour, err := h.tours.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, tour)
}

// UpdateTourRequest is the payload for PATCH /tours/:id.
type UpdateTourRequest struct {
	Reference       *string `json:"tour_reference"`
	Name            *string `json:"tour_name"`
	Supplier        *string `json:"supplier"`
	StartDate       *string `json:"start_date"`
	EndDate         *string `json:"end_date"`
	Status          *string `json:"status"`
	EstimatedKm     *int64  `json:"estimated_km"`
	TrailerRequired *bool   `json:"trailer_required"`
	Pax             *int    `json:"pax"`
	Itinerary       *string `json:"itinerary"`
	Instructions    *string `json:"instructions"`
	Notes           *string `json:"notes"`
}

// UpdateTour handles PATCH /tours/:id
func (h *Handlers) UpdateTour(c *gin.Context) {
	var req UpdateTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", entity.ErrValidation, err))
		return
	}

	input := service.UpdateTourInput{
		Reference:       req.Reference,
		Name:            req.Name,
		Supplier:        req.Supplier,
		EstimatedKm:     req.EstimatedKm,
		TrailerRequired: req.TrailerRequired,
		Pax:             req.Pax,
		Itinerary:       req.Itinerary,
		Instructions:    req.Instructions,
		Notes:           req.Notes,
	}
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate)
		if err != nil {
			respondError(c, err)
			return
		}
		input.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := parseDate(*req.EndDate)
		if err != nil {
			respondError(c, err)
			return
		}
		input.EndDate = &end
	}
	if req.Status != nil {
		status := entity.TourStatus(*req.Status)
		input.Status = &status
	}

	tour, err := h.tours.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, tour)
}

// DeleteTour handles DELETE /tours/:id
func (h *Handlers) DeleteTour(c *gin.Context) {
	if err := h.tours.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"deleted": c.Param("id")})
}

// LinkTourVehicleRequest is the payload for POST /tours/:id/vehicle.
type LinkTourVehicleRequest struct {
	VehicleID string `json:"vehicle_id"`
}

// LinkTourVehicle handles POST /tours/:id/vehicle
func (h *Handlers) LinkTourVehicle(c *gin.Context) {
	var req LinkTourVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", entity.ErrValidation, err))
		return
	}

	tour, err := h.assignment.LinkTour(c.Request.Context(), c.Param("id"), req.VehicleID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, tour)
}

// UnlinkTourVehicle handles DELETE /tours/:id/vehicle
func (h *Handlers) UnlinkTourVehicle(c *gin.Context) {
	tour, err := h.assignment.UnlinkTour(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, tour)
}

// --- Floats & expenses ---

// IssueFloatRequest is the payload for POST /floats.
type IssueFloatRequest struct {
	DriverID    string `json:"driver_id"`
	TourID      string `json:"tour_id"`
	AmountCents int64  `json:"amount_cents"`
	Message     string `json:"message"`
}

// IssueFloat handles POST /floats
func (h *Handlers) IssueFloat(c *gin.Context) {
	var req IssueFloatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", entity.ErrValidation, err))
		return
	}

	f, err := h.floats.Issue(c.Request.Context(), service.IssueFloatInput{
		DriverID:    req.DriverID,
		TourID:      req.TourID,
		AmountCents: req.AmountCents,
		Message:     req.Message,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, f)
}

// ListFloats handles GET /floats
func (h *Handlers) ListFloats(c *gin.Context) {
	floats, err := h.floats.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, floats)
}

// GetFloat handles GET /floats/:id
func (h *Handlers) GetFloat(c *gin.Context) {
	f, err := h.floats.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, f)
}

// CloseFloat handles POST /floats/:id/close
func (h *Handlers) CloseFloat(c *gin.Context) {
	f, err := h.floats.Close(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, f)
}

// SubmitExpenseRequest is the payload for POST /floats/:id/expenses.
type SubmitExpenseRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category"`
	Description string `json:"description"`
	ReceiptURL  string `json:"receipt_url"`
}

// SubmitExpense handles POST /floats/:id/expenses
func (h *Handlers) SubmitExpense(c *gin.Context) {
	var req SubmitExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", entity.ErrValidation, err))
		return
	}

	e, err := h.floats.SubmitExpense(c.Request.Context(), service.SubmitExpenseInput{
		FloatID:     c.Param("id"),
		AmountCents: req.AmountCents,
		Category:    req.Category,
		Description: req.Description,
		ReceiptURL:  req.ReceiptURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, e)
}

// ListFloatExpenses handles GET /floats/:id/expenses
func (h *Handlers) ListFloatExpenses(c *gin.Context) {
	expenses, err := h.floats.ListExpenses(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, expenses)
}

// ExportFloatStatement handles GET /floats/:id/statement
func (h *Handlers) ExportFloatStatement(c *gin.Context) {
	path, err := h.statements.Export(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, "float_statement.xlsx")
}

// ListExpenses handles GET /expenses
func (h *Handlers) ListExpenses(c *gin.Context) {
	expenses, err := h.floats.ListAllExpenses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, expenses)
}

// ApproveExpense handles POST /expenses/:id/approve
func (h *Handlers) ApproveExpense(c *gin.Context) {
	e, err := h.floats.ApproveExpense(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, e)
}

// RejectExpense handles POST /expenses/:id/reject
func (h *Handlers) RejectExpense(c *gin.Context) {
	e, err := h.floats.RejectExpense(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, e)
}

// DeleteExpense handles DELETE /expenses/:id
func (h *Handlers) DeleteExpense(c *gin.Context) {
	if err := h.floats.DeleteExpense(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"deleted": c.Param("id")})
}

// --- Issues ---

// ReportIssueRequest is the payload for POST /issues.
type ReportIssueRequest struct {
	VehicleID   string `json:"vehicle_id"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	ImageURL    string `json:"image_url"`
}

// ReportIssue handles POST /issues
func (h *Handlers) ReportIssue(c *gin.Context) {
	var req ReportIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", entity.ErrValidation, err))
		return
	}

	issue, err := h.issues.Report(c.Request.Context(), service.ReportIssueInput{
		VehicleID:   req.VehicleID,
		Description: req.Description,
		Severity:    entity.IssueSeverity(req.Severity),
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, issue)
}

// ListIssues handles GET /issues
func (h *Handlers) ListIssues(c *gin.Context) {
	if vehicleID := c.Query("vehicle_id"); vehicleID != "" {
		issues, err := h.issues.ListOpenByVehicle(c.Request.Context(), vehicleID)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, issues)
		return
	}

	issues, err := h.issues.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, issues)
}

// ProgressIssueRequest is the payload for POST /issues/:id/progress.
type ProgressIssueRequest struct {
	Status string `json:"status"`
}

// ProgressIssue handles POST /issues/:id/progress
func (h *Handlers) ProgressIssue(c *gin.Context) {
	var req ProgressIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", entity.ErrValidation, err))
		return
	}

	issue, err := h.issues.Progress(c.Request.Context(), c.Param("id"), entity.IssueStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, issue)
}

// --- Schedule ---

// GetBoard handles GET /schedule/board
func (h *Handlers) GetBoard(c *gin.Context) {
	board, err := h.schedule.Board(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, board)
}

// GetTimeline handles GET /schedule/timeline
func (h *Handlers) GetTimeline(c *gin.Context) {
	windowDays := h.fleet.TimelineWindowDays
	if raw := c.Query("window_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, fmt.Errorf("%w: window_days must be an integer", entity.ErrValidation))
			return
		}
		windowDays = parsed
	}

	entries, err := h.schedule.Timeline(
		c.Request.Context(),
		h.orgScope(c),
		time.Now().UTC(),
		windowDays,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, entries)
}
