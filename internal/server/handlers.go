package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/draftden/draftden/internal/database"
	deckmodel "github.com/draftden/draftden/internal/database/deck/model"
	"github.com/draftden/draftden/internal/draft"
	"github.com/draftden/draftden/internal/draft/engine"
	"github.com/draftden/draftden/internal/draft/guard"
	"github.com/draftden/draftden/internal/draft/lobby"
	"github.com/draftden/draftden/internal/draft/packbuilder"
	"github.com/draftden/draftden/internal/logging"
)

// Sessions resolves the authenticated user behind a request. The draft
// engine never inspects credentials itself, it only sees user ids.
type Sessions interface {
	UserFor(r *http.Request) (string, error)
}

var (
	ErrNoSession  = fmt.Errorf("no session")
	ErrBadRequest = fmt.Errorf("malformed request body")
)

// HeaderSessions trusts a reverse proxy to stamp the user id on a
// header.
type HeaderSessions struct {
	Header string
}

func (s HeaderSessions) UserFor(r *http.Request) (string, error) {
	header := s.Header
	if header == "" {
		header = "X-Draftden-User"
	}
	userID := r.Header.Get(header)
	if userID == "" {
		return "", ErrNoSession
	}
	return userID, nil
}

// NewMux routes the multiplayer draft API.
func NewMux(m *draft.Manager, sessions Sessions) *http.ServeMux {
	h := &handlers{manager: m, sessions: sessions}

	mux := http.NewServeMux()
	mux.Handle("/multiplayer/createlobby", h.post(h.createLobby))
	mux.Handle("/multiplayer/joinlobby", h.post(h.joinLobby))
	mux.Handle("/multiplayer/getlobbyseats", h.post(h.getLobbySeats))
	mux.Handle("/multiplayer/updatelobbyseats", h.post(h.updateLobbySeats))
	mux.Handle("/multiplayer/startdraft", h.post(h.startDraft))
	mux.Handle("/multiplayer/getseat", h.post(h.getSeat))
	mux.Handle("/multiplayer/isdraftinitialized", h.post(h.isDraftInitialized))
	mux.Handle("/multiplayer/getpack", h.post(h.getPack))
	mux.Handle("/multiplayer/getpicks", h.post(h.getPicks))
	mux.Handle("/multiplayer/draftpick", h.post(h.draftPick))
	mux.Handle("/multiplayer/trybotpicks", h.post(h.tryBotPicks))
	mux.Handle("/multiplayer/editdeckbydraft", h.post(h.editDeckByDraft))
	mux.Handle("/multiplayer/getusernames", h.post(h.getUsernames))

	return mux
}

type handlers struct {
	manager  *draft.Manager
	sessions Sessions
}

type body map[string]interface{}

func (h *handlers) post(fn func(w http.ResponseWriter, r *http.Request)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, body{
				"success": "false",
				"message": "POST required",
			})
			return
		}
		fn(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload body) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decode(r *http.Request, into interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

// writeError maps engine errors onto the status codes and messages
// clients act on.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.FromContext(r.Context())

	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, ErrBadRequest):
		status, message = http.StatusBadRequest, ErrBadRequest.Error()
	case errors.Is(err, ErrNoSession):
		status, message = http.StatusUnauthorized, "authentication required"
	case errors.Is(err, engine.ErrUnauthorizedPick), errors.Is(err, lobby.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "you do not control that seat"
	case errors.Is(err, engine.ErrInvalidPick):
		status, message = http.StatusBadRequest, "that card is no longer in the pack"
	case errors.Is(err, engine.ErrInvalidSeat), errors.Is(err, lobby.ErrUnknownPlayer):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, engine.ErrNoActivePack):
		status, message = http.StatusConflict, "no pack is waiting on that seat"
	case errors.Is(err, engine.ErrDraftComplete):
		status, message = http.StatusConflict, "the draft is over"
	case errors.Is(err, draft.ErrNotInitialized), errors.Is(err, lobby.ErrAlreadyStarted):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, draft.ErrNotSeated):
		status, message = http.StatusNotFound, "you do not hold a seat in this draft"
	case errors.Is(err, packbuilder.ErrInsufficientCards):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, guard.ErrConcurrencyExhausted):
		status, message = http.StatusServiceUnavailable, "the draft is busy, try again"
	case errors.Is(err, database.ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	default:
		logger.Errorf("handler error: %v", err)
	}

	writeJSON(w, status, body{"success": "false", "message": message})
}

func (h *handlers) user(r *http.Request) (string, error) {
	return h.sessions.UserFor(r)
}

func (h *handlers) createLobby(w http.ResponseWriter, r *http.Request) {
	userID, err := h.user(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req draft.CreateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Host = userID

	d, err := h.manager.CreateDraft(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, body{"success": "true", "draft": d.ID})
}

func (h *handlers) joinLobby(w http.ResponseWriter, r *http.Request) {
	userID, err := h.user(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		Draft string `json:"draft"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	state, err := h.manager.JoinLobby(r.Context(), req.Draft, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, body{
		"success": "true",
		"players": state.Players,
		"seats":   state.SeatOrder,
	})
}

func (h *handlers) getLobbySeats(w http.ResponseWriter, r *http.Request) {
	if _, err := h.user(r); err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		Draft string `json:"draft"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	state, err := h.manager.LobbyState(r.Context(), req.Draft)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, body{
		"success": "true",
		"players": state.Players,
		"seats":   state.SeatOrder,
	})
}

func (h *handlers) updateLobbySeats(w http.ResponseWriter, r *http.Request) {
	userID, err := h.user(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		Draft string         `json:"draft"`
		Order map[string]int `json:"order"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	state, err := h.manager.UpdateLobbySeats(r.Context(), req.Draft, userID, req.Order)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, body{"success": "true", "seats": state.SeatOrder})
}

func (h *handlers) startDraft(w http.ResponseWriter, r *http.Request) {
	userID, err := h.user(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		Draft string `json:"draft"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.manager.StartDraft(r.Context(), req.Draft, userID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, body{"success": "true"})
}

func (h *handlers) getSeat(w http.ResponseWriter, r *http.Request) {
	userID, err := h.user(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		DraftID string `json:"draftid"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	seat, err := h.manager.GetSeat(r.Context(), req.DraftID, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, body{"success": "true", "seat": seat})
}

func (h *handlers) isDraftInitialized(w http.ResponseWriter, r *http.Request) {
	if _, err := h.user(r); err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		Draft string `json:"draft"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	initialized, seats, err := h.manager.IsInitialized(r.Context(), req.Draft)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, body{
		"success":     "true",
		"initialized": initialized,
		"seats":       seats,
	})
}

func (h *handlers) getPack(w http.ResponseWriter, r *http.Request) {
	if _, err := h.user(r); err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		Draft string `json:"draft"`
		Seat  int    `json:"seat"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	pack, steps, err := h.manager.Pack(r.Context(), req.Draft, req.Seat)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, body{"success": "true", "pack": pack, "steps": steps})
}

func (h *handlers) getPicks(w http.ResponseWriter, r *http.Request) {
	if _, err := h.user(r); err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		Draft string `json:"draft"`
		Seat  int    `json:"seat"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	picks, err := h.manager.Picks(r.Context(), req.Draft, req.Seat)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, body{"success": "true", "picks": picks})
}

func (h *handlers) draftPick(w http.ResponseWriter, r *http.Request) {
	userID, err := h.user(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		Draft string `json:"draft"`
		Seat  int    `json:"seat"`
		Pick  int    `json:"pick"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.manager.Draftpick(r.Context(), req.Draft, req.Seat, req.Pick, userID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, body{"success": "true"})
}

func (h *handlers) tryBotPicks(w http.ResponseWriter, r *http.Request) {
	if _, err := h.user(r); err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		Draft string `json:"draft"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.manager.TryBotPicks(r.Context(), req.Draft)
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := "inProgress"
	if result.Done {
		status = "done"
	}

	writeJSON(w, http.StatusOK, body{
		"success": "true",
		"result":  status,
		"picks":   len(result.Picks),
	})
}

func (h *handlers) editDeckByDraft(w http.ResponseWriter, r *http.Request) {
	userID, err := h.user(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		DraftID   string          `json:"draftId"`
		Seat      int             `json:"seat"`
		Mainboard deckmodel.Board `json:"mainboard"`
		Sideboard deckmodel.Board `json:"sideboard"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	deck, err := h.manager.EditDeckByDraft(r.Context(), req.DraftID, userID, req.Seat, req.Mainboard, req.Sideboard)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, body{"success": "true", "deck": deck.ID})
}

func (h *handlers) getUsernames(w http.ResponseWriter, r *http.Request) {
	if _, err := h.user(r); err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		IDs []string `json:"ids"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	users, err := h.manager.Usernames(r.Context(), req.IDs)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, body{"success": "true", "users": users})
}
