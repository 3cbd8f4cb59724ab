package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mcortez-ml/nutria/pkg/adapter"
	"github.com/mcortez-ml/nutria/pkg/catalog"
	"github.com/mcortez-ml/nutria/pkg/model"
	"github.com/mcortez-ml/nutria/pkg/nutrition"
	"github.com/mcortez-ml/nutria/pkg/policy"
	"github.com/mcortez-ml/nutria/pkg/repository"
	"github.com/mcortez-ml/nutria/pkg/service/voice"
	"github.com/mcortez-ml/nutria/pkg/tool"
	"github.com/mcortez-ml/nutria/pkg/usecase/chat"
)

const maxAudioBytes = 15 << 20

// Deps carries the shared components the API serves.
type Deps struct {
	Gemini   adapter.Gemini
	Registry *tool.Registry
	Repo     repository.Repository // optional
	Catalog  *catalog.Catalog
	Scorer   nutrition.Scorer
	Diet     *policy.Engine // optional
	Bridge   *voice.Bridge
	Window   int
}

type handlers struct {
	deps Deps
}

func newRouter(deps Deps) http.Handler {
	h := &handlers{deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.chat)
		r.Post("/transcribe", h.transcribe)
		r.Post("/speak", h.speak)
		r.Get("/foods", h.food)
		r.Get("/recommendations", h.recommendations)
		r.Post("/plan", h.plan)
	})

	return r
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
}

type chatResponse struct {
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply"`
}

func (h *handlers) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	session, err := chat.New(r.Context(), chat.NewInput{
		Gemini:         h.deps.Gemini,
		Registry:       h.deps.Registry,
		Repo:           h.deps.Repo,
		ConversationID: model.ConversationID(req.ConversationID),
		Window:         h.deps.Window,
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	reply := session.Reply(r.Context(), req.Message)

	writeJSON(w, http.StatusOK, chatResponse{
		ConversationID: string(session.Conversation().ID),
		Reply:          reply,
	})
}

func (h *handlers) transcribe(w http.ResponseWriter, r *http.Request) {
	audio, err := io.ReadAll(io.LimitReader(r.Body, maxAudioBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read audio body")
		return
	}

	mimeType := r.Header.Get("Content-Type")
	text := h.deps.Bridge.Transcribe(r.Context(), audio, mimeType)

	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

type speakRequest struct {
	Text string `json:"text"`
}

func (h *handlers) speak(w http.ResponseWriter, r *http.Request) {
	var req speakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	data, mimeType, ok := h.deps.Bridge.Synthesize(r.Context(), req.Text)
	if !ok {
		// Explicit no-audio signal: the caller degrades to text-only.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *handlers) food(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("nombre")
	if strings.TrimSpace(name) == "" {
		writeError(w, http.StatusBadRequest, "nombre is required")
		return
	}

	record := h.deps.Catalog.FindByName(name)
	if record == nil {
		writeError(w, http.StatusNotFound, "No encontré '"+name+"' en el catálogo.")
		return
	}

	writeJSON(w, http.StatusOK, h.deps.Scorer.ScoreRecord(*record))
}

func (h *handlers) recommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	topK := 0
	if v, err := strconv.Atoi(q.Get("top_k")); err == nil {
		topK = v
	}

	var deny nutrition.DenyFunc
	if h.deps.Diet != nil {
		deny = func(rec model.FoodRecord) bool { return h.deps.Diet.Deny(r.Context(), rec) }
	}

	result := nutrition.Recommend(h.deps.Catalog, h.deps.Scorer, deny, nutrition.RecommendInput{
		Goal:        q.Get("objetivo"),
		Category:    q.Get("categoria"),
		ExcludeFood: q.Get("alimento_base"),
		TopK:        topK,
	})

	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) plan(w http.ResponseWriter, r *http.Request) {
	var profile model.PatientProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	plan, err := nutrition.GeneratePlan(profile)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
