package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/mcortez-ml/nutria/pkg/catalog"
	"github.com/mcortez-ml/nutria/pkg/model"
	"github.com/mcortez-ml/nutria/pkg/nutrition"
	"github.com/mcortez-ml/nutria/pkg/service/voice"
	"github.com/mcortez-ml/nutria/pkg/tool"
	"github.com/mcortez-ml/nutria/pkg/tool/foods"
	"google.golang.org/genai"
)

// fixedGemini answers every chat with the same text and serves the voice
// endpoints with canned data.
type fixedGemini struct {
	reply      string
	transcript string
	audio      []byte
}

func (f *fixedGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: f.reply}},
			}},
		},
	}, nil
}

func (f *fixedGemini) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if f.transcript == "" {
		return "", goerr.New("no transcript")
	}
	return f.transcript, nil
}

func (f *fixedGemini) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	if len(f.audio) == 0 {
		return nil, "", goerr.New("no audio")
	}
	return f.audio, "audio/wav", nil
}

func testRouter(gemini *fixedGemini) http.Handler {
	cat := catalog.New([]model.FoodRecord{
		{Name: "Espinaca cruda", Category: "verduras", EnergyKcal: 23, ProteinG: 2.9, FiberG: 2.2},
		{Name: "Pechuga de pollo", Category: "carnes", EnergyKcal: 165, ProteinG: 31, FatG: 3.6},
		{Name: "Refresco de cola", Category: "bebidas", EnergyKcal: 180, SugarG: 45, CarbsG: 45},
	})
	scorer := nutrition.NewScorer(nutrition.DefaultCalibration())

	return newRouter(Deps{
		Gemini:   gemini,
		Registry: tool.New(foods.NewFoodInfo(cat, scorer), foods.NewRecommend(cat, scorer, nil), foods.NewPlan()),
		Catalog:  cat,
		Scorer:   scorer,
		Bridge:   voice.NewBridge(gemini),
	})
}

func doJSON(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		gt.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	router := testRouter(&fixedGemini{})

	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	gt.Equal(t, rec.Code, http.StatusOK)

	var body map[string]string
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	gt.Equal(t, body["status"], "ok")
}

func TestChatEndpoint(t *testing.T) {
	router := testRouter(&fixedGemini{reply: "¡Hola!"})

	t.Run("replies with a conversation id", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/chat", map[string]string{"message": "hola"})
		gt.Equal(t, rec.Code, http.StatusOK)

		var body map[string]string
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		gt.Equal(t, body["reply"], "¡Hola!")
		gt.NotEqual(t, body["conversation_id"], "")
	})

	t.Run("empty message", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/chat", map[string]string{"message": "  "})
		gt.Equal(t, rec.Code, http.StatusBadRequest)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("{nope"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		gt.Equal(t, rec.Code, http.StatusBadRequest)
	})

	t.Run("unknown conversation id", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/chat", map[string]string{
			"message":         "hola",
			"conversation_id": "no-such-id",
		})
		gt.Equal(t, rec.Code, http.StatusNotFound)
	})
}

func TestFoodEndpoint(t *testing.T) {
	router := testRouter(&fixedGemini{})

	t.Run("found", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/foods?nombre=espinaca", nil)
		gt.Equal(t, rec.Code, http.StatusOK)

		var body map[string]any
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		gt.Equal(t, body["alimento"], any("Espinaca cruda"))
		gt.Map(t, body).HasKey("nutria_score")
	})

	t.Run("missing nombre", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/foods", nil)
		gt.Equal(t, rec.Code, http.StatusBadRequest)
	})

	t.Run("not found", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/foods?nombre=sushi", nil)
		gt.Equal(t, rec.Code, http.StatusNotFound)
	})
}

func TestRecommendationsEndpoint(t *testing.T) {
	router := testRouter(&fixedGemini{})

	rec := doJSON(t, router, http.MethodGet, "/api/recommendations?objetivo=proteina&top_k=2", nil)
	gt.Equal(t, rec.Code, http.StatusOK)

	var body struct {
		Goal  string           `json:"objetivo"`
		Items []map[string]any `json:"recomendaciones"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	gt.Equal(t, body.Goal, "proteina")
	gt.A(t, body.Items).Length(2)
}

func TestPlanEndpoint(t *testing.T) {
	router := testRouter(&fixedGemini{})

	t.Run("valid profile", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/plan", map[string]any{
			"sexo":            "hombre",
			"edad":            30,
			"peso_kg":         80,
			"estatura_cm":     180,
			"nivel_actividad": "sedentario",
			"objetivo":        "perder_grasa",
		})
		gt.Equal(t, rec.Code, http.StatusOK)

		var body map[string]any
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		gt.Equal(t, body["tmb"], any(1780.0))
		gt.Equal(t, body["calorias_objetivo"], any(1708.8))
	})

	t.Run("invalid profile", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/plan", map[string]any{
			"sexo": "hombre",
		})
		gt.Equal(t, rec.Code, http.StatusBadRequest)
	})
}

func TestTranscribeEndpoint(t *testing.T) {
	router := testRouter(&fixedGemini{transcript: "hola mundo"})

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", bytes.NewReader([]byte("audio-bytes")))
	req.Header.Set("Content-Type", "audio/wav")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	gt.Equal(t, rec.Code, http.StatusOK)

	var body map[string]string
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	gt.Equal(t, body["text"], "hola mundo")
}

func TestSpeakEndpoint(t *testing.T) {
	t.Run("returns audio", func(t *testing.T) {
		router := testRouter(&fixedGemini{audio: []byte("RIFF")})

		rec := doJSON(t, router, http.MethodPost, "/api/speak", map[string]string{"text": "hola"})
		gt.Equal(t, rec.Code, http.StatusOK)
		gt.Equal(t, rec.Header().Get("Content-Type"), "audio/wav")
		gt.Equal(t, rec.Body.String(), "RIFF")
	})

	t.Run("no audio degrades to 204", func(t *testing.T) {
		router := testRouter(&fixedGemini{})

		rec := doJSON(t, router, http.MethodPost, "/api/speak", map[string]string{"text": "hola"})
		gt.Equal(t, rec.Code, http.StatusNoContent)
	})
}
