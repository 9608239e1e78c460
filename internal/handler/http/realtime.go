package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/profile"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/sse"
)

// keepaliveInterval keeps proxies from closing idle change-feed streams
const keepaliveInterval = 30 * time.Second

type RealtimeHandler interface {
	GetSSEToken(w http.ResponseWriter, r *http.Request)
	StreamShifts(w http.ResponseWriter, r *http.Request)
}

type realtimeHandlerImpl struct {
	hub         *sse.Hub
	jwtService  jwt.Service
	profileRepo profile.ProfileRepository
}

func NewRealtimeHandler(hub *sse.Hub, jwtService jwt.Service, profileRepo profile.ProfileRepository) RealtimeHandler {
	return &realtimeHandlerImpl{
		hub:         hub,
		jwtService:  jwtService,
		profileRepo: profileRepo,
	}
}

// GetSSEToken issues a short-lived token for the stream; EventSource can't send headers.
func (h *realtimeHandlerImpl) GetSSEToken(w http.ResponseWriter, r *http.Request) {
	userID, err := jwt.UserIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(userID)
	if err != nil {
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, map[string]interface{}{
		"token":      token,
		"expires_in": expiresIn,
	})
}

// StreamShifts pushes shift.changed events to an admin until the client disconnects.
func (h *realtimeHandlerImpl) StreamShifts(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	userID, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if _, err := profile.RequireRole(r.Context(), h.profileRepo, userID, profile.RoleAdmin); err != nil {
		response.HandleError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(sse.TopicShifts)
	defer cleanup()

	slog.Debug("Shift stream opened", "user_id", userID, "subscribers", h.hub.SubscriberCount(sse.TopicShifts))

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
