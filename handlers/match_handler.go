package handlers

import (
	"net/http"

	"github.com/Dosada05/fixture-engine/services"
)

type MatchHandler struct {
	progressionService services.ProgressionService
}

func NewMatchHandler(ps services.ProgressionService) *MatchHandler {
	return &MatchHandler{progressionService: ps}
}

// FinishHandler обрабатывает POST /matches/{matchID}/finish
func (h *MatchHandler) FinishHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.Result
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	report, err := h.progressionService.FinishMatch(r.Context(), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"progress": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ProgressHandler обрабатывает POST /matches/{matchID}/progress
func (h *MatchHandler) ProgressHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	report, err := h.progressionService.Progress(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"progress": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReseedHandler обрабатывает POST /stages/{stageID}/reseed?allow_early=true&force=true
func (h *MatchHandler) ReseedHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	allowEarly, err := queryBool(r, "allow_early")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	force, err := queryBool(r, "force")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.progressionService.ReseedKnockout(r.Context(), stageID, allowEarly, force)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
