package http

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"log"
	"net/http"

	"github.com/fogleman/gg"
	"iqboard-service/internal/app"
	"iqboard-service/internal/avatar"
	"iqboard-service/internal/card"
	"iqboard-service/internal/domain"
	"iqboard-service/internal/insight"
)

// RESTHandler exposes the session, card, review, analysis, and share
// endpoints.
type RESTHandler struct {
	service *app.QuizService
	avatars *avatar.Fetcher
	insight *insight.Client
	origin  string
}

func NewRESTHandler(service *app.QuizService, avatars *avatar.Fetcher, insightClient *insight.Client, origin string) *RESTHandler {
	return &RESTHandler{
		service: service,
		avatars: avatars,
		insight: insightClient,
		origin:  origin,
	}
}

// Register wires the REST routes onto mux.
func (h *RESTHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /session", h.createSession)
	mux.HandleFunc("GET /session/{id}/card", h.renderCard)
	mux.HandleFunc("GET /session/{id}/review", h.review)
	mux.HandleFunc("POST /session/{id}/analyze", h.analyze)
	mux.HandleFunc("GET /share", h.share)
}

type sessionResponse struct {
	SessionID   string            `json:"sessionId"`
	Questions   []domain.Question `json:"questions"`
	SecondsLeft int               `json:"secondsLeft"`
}

func (h *RESTHandler) createSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.StartSession(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID:   session.ID(),
		Questions:   session.Questions(),
		SecondsLeft: session.State().SecondsLeft,
	})
}

func (h *RESTHandler) renderCard(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Session(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	result, ok := session.Result()
	if !ok {
		writeError(w, http.StatusConflict, domain.ErrSessionNotSubmitted)
		return
	}

	username := r.URL.Query().Get("username")
	forceFallback := r.URL.Query().Get("fallback") == "true"

	// The avatar fetch completes (or fails) before any drawing happens; the
	// renderer never sees a partially loaded bitmap.
	var avatarImg image.Image
	if !forceFallback && username != "" {
		avatarImg = h.resolveAvatar(r.Context(), username)
	}

	opts := domain.CardOptions{
		Username:            username,
		ScorePercentage:     result.Percentage,
		Rank:                result.Rank,
		AvatarImage:         avatarImg,
		UseGradientFallback: forceFallback || avatarImg == nil,
	}

	dc := gg.NewContext(card.Size, card.Size)
	card.Draw(dc, opts)
	data, filename, err := card.ExportPNG(dc.Image())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(data)
}

func (h *RESTHandler) resolveAvatar(ctx context.Context, username string) image.Image {
	img, err := h.avatars.Fetch(ctx, username)
	if err != nil {
		log.Printf("avatar fetch for %q failed, using fallback: %v", username, err)
		return nil
	}
	return img
}

func (h *RESTHandler) review(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Session(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if _, ok := session.Result(); !ok {
		writeError(w, http.StatusConflict, domain.ErrSessionNotSubmitted)
		return
	}
	writeJSON(w, http.StatusOK, session.Review())
}

type analyzeBody struct {
	Username string `json:"username"`
}

func (h *RESTHandler) analyze(w http.ResponseWriter, r *http.Request) {
	var body analyzeBody
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	req, err := h.service.BuildAnalyzeRequest(r.PathValue("id"), body.Username)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err)
		return
	case errors.Is(err, domain.ErrSessionNotSubmitted):
		writeError(w, http.StatusConflict, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	analysis, err := h.insight.Analyze(r.Context(), req)
	if err != nil {
		// Degraded, not fatal: the quiz result stands without commentary.
		log.Printf("analysis unavailable for session %s: %v", r.PathValue("id"), err)
		writeError(w, http.StatusBadGateway, domain.ErrAnalysisUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (h *RESTHandler) share(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, card.BuildShareText(h.origin))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorPayload{Message: err.Error()})
}
