package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/sport-facilities/internal/application"
	"github.com/example/sport-facilities/internal/booking"
)

type facilityService interface {
	Create(ctx context.Context, params application.CreateFacilityParams) (application.Facility, error)
	Update(ctx context.Context, params application.UpdateFacilityParams) (application.Facility, error)
	Get(ctx context.Context, id string) (application.Facility, error)
	List(ctx context.Context) ([]application.Facility, error)
	Delete(ctx context.Context, principal application.Principal, id string) error
}

type FacilityHandler struct {
	service   facilityService
	responder responder
	logger    *slog.Logger
}

func NewFacilityHandler(service facilityService, logger *slog.Logger) *FacilityHandler {
	base := defaultLogger(logger)
	return &FacilityHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *FacilityHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "FacilityHandler", operation, attrs...)
}

func (h *FacilityHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req facilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode facility request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	input, err := req.toInput()
	if err != nil {
		logger.ErrorContext(r.Context(), "invalid opening hours in request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadTimeOfDay)
		return
	}

	facility, err := h.service.Create(r.Context(), application.CreateFacilityParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "facility creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("facility_id", facility.ID).InfoContext(r.Context(), "facility created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, facilityResponse{Facility: toFacilityDTO(facility)})
}

func (h *FacilityHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	facilityID, ok := FacilityIDFromContext(r.Context())
	if !ok || strings.TrimSpace(facilityID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing facility id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidFacilityID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req facilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "facility_id", facilityID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode facility update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "facility_id", facilityID)

	input, err := req.toInput()
	if err != nil {
		logger.ErrorContext(r.Context(), "invalid opening hours in request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadTimeOfDay)
		return
	}

	facility, err := h.service.Update(r.Context(), application.UpdateFacilityParams{
		Principal:  principal,
		FacilityID: facilityID,
		Input:      input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "facility update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "facility updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, facilityResponse{Facility: toFacilityDTO(facility)})
}

func (h *FacilityHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	facilityID, ok := FacilityIDFromContext(r.Context())
	if !ok || strings.TrimSpace(facilityID) == "" {
		h.log(r.Context(), "Get", "error_kind", "bad_request").ErrorContext(r.Context(), "missing facility id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidFacilityID)
		return
	}

	logger := h.log(r.Context(), "Get", "facility_id", facilityID)

	facility, err := h.service.Get(r.Context(), facilityID)
	if err != nil {
		logger.ErrorContext(r.Context(), "facility fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, facilityResponse{Facility: toFacilityDTO(facility)})
}

func (h *FacilityHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")

	facilities, err := h.service.List(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "facility list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(facilities)).InfoContext(r.Context(), "facilities listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listFacilitiesResponse{Facilities: toFacilityDTOs(facilities)})
}

func (h *FacilityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	facilityID, ok := FacilityIDFromContext(r.Context())
	if !ok || strings.TrimSpace(facilityID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing facility id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidFacilityID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "facility_id", facilityID)

	if err := h.service.Delete(r.Context(), principal, facilityID); err != nil {
		logger.ErrorContext(r.Context(), "facility delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "facility deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type facilityRequest struct {
	Name           string                `json:"name"`
	Location       string                `json:"location"`
	Description    string                `json:"description"`
	Availabilities []availabilityRuleDTO `json:"availabilities"`
}

func (r facilityRequest) toInput() (application.FacilityInput, error) {
	rules := make([]application.AvailabilityRule, 0, len(r.Availabilities))
	for _, dto := range r.Availabilities {
		rule := application.AvailabilityRule{
			Day:         time.Weekday(dto.DayOfWeek),
			IsAvailable: dto.IsAvailable,
		}
		if dto.OpeningTime != nil {
			opens, err := booking.ParseTimeOfDay(*dto.OpeningTime)
			if err != nil {
				return application.FacilityInput{}, err
			}
			rule.Opens = &opens
		}
		if dto.ClosingTime != nil {
			closes, err := booking.ParseTimeOfDay(*dto.ClosingTime)
			if err != nil {
				return application.FacilityInput{}, err
			}
			rule.Closes = &closes
		}
		rules = append(rules, rule)
	}

	return application.FacilityInput{
		Name:        strings.TrimSpace(r.Name),
		Location:    strings.TrimSpace(r.Location),
		Description: r.Description,
		Rules:       rules,
	}, nil
}

type facilityResponse struct {
	Facility facilityDTO `json:"facility"`
}

type listFacilitiesResponse struct {
	Facilities []facilityDTO `json:"facilities"`
}

type availabilityRuleDTO struct {
	DayOfWeek   int     `json:"day_of_week"`
	IsAvailable bool    `json:"is_available"`
	OpeningTime *string `json:"opening_time,omitempty"`
	ClosingTime *string `json:"closing_time,omitempty"`
}

type facilityDTO struct {
	ID             string                `json:"id"`
	Name           string                `json:"name"`
	Location       string                `json:"location"`
	Description    string                `json:"description,omitempty"`
	Availabilities []availabilityRuleDTO `json:"availabilities"`
	CreatedAt      string                `json:"created_at"`
	UpdatedAt      string                `json:"updated_at"`
}

func toFacilityDTO(facility application.Facility) facilityDTO {
	rules := make([]availabilityRuleDTO, 0, len(facility.Rules))
	for _, rule := range facility.Rules {
		dto := availabilityRuleDTO{
			DayOfWeek:   int(rule.Day),
			IsAvailable: rule.IsAvailable,
		}
		if rule.Opens != nil {
			opens := rule.Opens.String()
			dto.OpeningTime = &opens
		}
		if rule.Closes != nil {
			closes := rule.Closes.String()
			dto.ClosingTime = &closes
		}
		rules = append(rules, dto)
	}

	return facilityDTO{
		ID:             facility.ID,
		Name:           facility.Name,
		Location:       facility.Location,
		Description:    facility.Description,
		Availabilities: rules,
		CreatedAt:      facility.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:      facility.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// toFacilityDTOs always allocates so empty listings serialize as [] and not
// null.
func toFacilityDTOs(facilities []application.Facility) []facilityDTO {
	out := make([]facilityDTO, 0, len(facilities))
	for _, facility := range facilities {
		out = append(out, toFacilityDTO(facility))
	}
	return out
}
