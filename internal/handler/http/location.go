package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http/response"
)

type LocationHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	Save(w http.ResponseWriter, r *http.Request)
	GetQRPayload(w http.ResponseWriter, r *http.Request)
}

type locationHandlerImpl struct {
	locationService location.LocationService
}

func NewLocationHandler(locationService location.LocationService) LocationHandler {
	return &locationHandlerImpl{
		locationService: locationService,
	}
}

// Get implements LocationHandler.
func (h *locationHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.locationService.Get(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Save implements LocationHandler.
func (h *locationHandlerImpl) Save(w http.ResponseWriter, r *http.Request) {
	var req location.SaveLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.locationService.Save(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Restaurant location saved", result)
}

// GetQRPayload implements LocationHandler.
func (h *locationHandlerImpl) GetQRPayload(w http.ResponseWriter, r *http.Request) {
	result, err := h.locationService.GetQRPayload(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
