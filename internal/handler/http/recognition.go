package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/recognition"
	"github.com/cmlabs-hris/face-attendance-go/internal/handler/http/response"
)

type RecognitionHandler interface {
	Match(w http.ResponseWriter, r *http.Request)
}

type recognitionHandlerImpl struct {
	recognitionService recognition.RecognitionService
}

func NewRecognitionHandler(recognitionService recognition.RecognitionService) RecognitionHandler {
	return &recognitionHandlerImpl{recognitionService: recognitionService}
}

// Match implements RecognitionHandler. An unknown face is a successful response with matched=false.
func (h *recognitionHandlerImpl) Match(w http.ResponseWriter, r *http.Request) {
	var req recognition.MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Match decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.recognitionService.Identify(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
