package chat_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/mcortez-ml/nutria/pkg/catalog"
	"github.com/mcortez-ml/nutria/pkg/model"
	"github.com/mcortez-ml/nutria/pkg/nutrition"
	"github.com/mcortez-ml/nutria/pkg/tool"
	"github.com/mcortez-ml/nutria/pkg/tool/foods"
	"github.com/mcortez-ml/nutria/pkg/usecase/chat"
	"google.golang.org/genai"
)

// scriptedGemini replays canned responses and records every request.
type scriptedGemini struct {
	responses []*genai.GenerateContentResponse
	errs      []error
	requests  [][]*genai.Content
	configs   []*genai.GenerateContentConfig
}

func (s *scriptedGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	i := len(s.requests)
	s.requests = append(s.requests, contents)
	s.configs = append(s.configs, config)

	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return nil, goerr.New("unexpected model call")
}

func (s *scriptedGemini) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	return "", goerr.New("not implemented")
}

func (s *scriptedGemini) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	return nil, "", goerr.New("not implemented")
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: text}},
			}},
		},
	}
}

func callResponse(calls ...genai.FunctionCall) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(calls))
	for i := range calls {
		parts = append(parts, &genai.Part{FunctionCall: &calls[i]})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: genai.RoleModel, Parts: parts}},
		},
	}
}

func testRegistry() *tool.Registry {
	cat := catalog.New([]model.FoodRecord{
		{Name: "Espinaca cruda", Category: "verduras", EnergyKcal: 23, ProteinG: 2.9, FiberG: 2.2},
		{Name: "Pechuga de pollo", Category: "carnes", EnergyKcal: 165, ProteinG: 31, FatG: 3.6},
	})
	scorer := nutrition.NewScorer(nutrition.DefaultCalibration())
	return tool.New(
		foods.NewFoodInfo(cat, scorer),
		foods.NewRecommend(cat, scorer, nil),
		foods.NewPlan(),
	)
}

func newSession(t *testing.T, gemini *scriptedGemini) *chat.Session {
	t.Helper()
	session, err := chat.New(context.Background(), chat.NewInput{
		Gemini:   gemini,
		Registry: testRegistry(),
	})
	gt.NoError(t, err)
	return session
}

func TestNewValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("gemini required", func(t *testing.T) {
		_, err := chat.New(ctx, chat.NewInput{Registry: testRegistry()})
		gt.Error(t, err)
	})

	t.Run("registry required", func(t *testing.T) {
		_, err := chat.New(ctx, chat.NewInput{Gemini: &scriptedGemini{}})
		gt.Error(t, err)
	})

	t.Run("conversation id without repository", func(t *testing.T) {
		_, err := chat.New(ctx, chat.NewInput{
			Gemini:         &scriptedGemini{},
			Registry:       testRegistry(),
			ConversationID: model.NewConversationID(),
		})
		gt.Error(t, err)
	})
}

func TestReplyFastPath(t *testing.T) {
	gemini := &scriptedGemini{
		responses: []*genai.GenerateContentResponse{
			textResponse("¡Hola! ¿En qué puedo ayudarte?"),
		},
	}
	session := newSession(t, gemini)

	answer := session.Reply(context.Background(), "hola")
	gt.Equal(t, answer, "¡Hola! ¿En qué puedo ayudarte?")

	// No tool calls issued, so exactly one model invocation.
	gt.A(t, gemini.requests).Length(1)
	gt.NotNil(t, gemini.configs[0].Tools)

	turns := session.Conversation().Turns
	gt.A(t, turns).Length(1)
	gt.Equal(t, turns[0].User, "hola")
}

func TestReplyToolFlow(t *testing.T) {
	gemini := &scriptedGemini{
		responses: []*genai.GenerateContentResponse{
			callResponse(genai.FunctionCall{
				ID:   "call-1",
				Name: "get_food_info",
				Args: map[string]any{"nombre_alimento": "espinaca"},
			}),
			textResponse("La espinaca tiene 23 kcal por porción."),
		},
	}
	session := newSession(t, gemini)

	answer := session.Reply(context.Background(), "¿qué tiene la espinaca?")
	gt.Equal(t, answer, "La espinaca tiene 23 kcal por porción.")
	gt.A(t, gemini.requests).Length(2)

	// Second request must carry the model content plus the tool responses.
	second := gemini.requests[1]
	gt.A(t, second).Longer(2)
	last := second[len(second)-1]
	gt.Equal(t, last.Role, genai.RoleUser)
	gt.A(t, last.Parts).Length(1)
	fr := last.Parts[0].FunctionResponse
	gt.V(t, fr).NotNil()
	gt.Equal(t, fr.ID, "call-1")
	gt.Map(t, fr.Response).HasKey("nutria_score")

	// The synthesis call runs without tool access.
	gt.Nil(t, gemini.configs[1].Tools)
}

func TestReplyUnknownToolStillAnswers(t *testing.T) {
	gemini := &scriptedGemini{
		responses: []*genai.GenerateContentResponse{
			callResponse(genai.FunctionCall{ID: "call-9", Name: "funcion_inexistente"}),
			textResponse("No pude usar esa herramienta, pero puedo ayudarte de otra forma."),
		},
	}
	session := newSession(t, gemini)

	answer := session.Reply(context.Background(), "haz algo raro")
	gt.Equal(t, answer, "No pude usar esa herramienta, pero puedo ayudarte de otra forma.")

	second := gemini.requests[1]
	fr := second[len(second)-1].Parts[0].FunctionResponse
	gt.Equal(t, fr.Response["error"], any("Función desconocida: funcion_inexistente"))
}

func TestReplyModelFailure(t *testing.T) {
	gemini := &scriptedGemini{
		errs: []error{goerr.New("network down")},
	}
	session := newSession(t, gemini)

	answer := session.Reply(context.Background(), "hola")
	gt.Equal(t, answer, chat.ApologyAnswer)

	// The failed turn is still recorded with the apology as the answer.
	turns := session.Conversation().Turns
	gt.A(t, turns).Length(1)
	gt.Equal(t, turns[0].Assistant, chat.ApologyAnswer)
}

func TestReplySecondCallFailure(t *testing.T) {
	gemini := &scriptedGemini{
		responses: []*genai.GenerateContentResponse{
			callResponse(genai.FunctionCall{
				ID:   "call-1",
				Name: "get_food_info",
				Args: map[string]any{"nombre_alimento": "pollo"},
			}),
		},
		errs: []error{nil, goerr.New("model unavailable")},
	}
	session := newSession(t, gemini)

	answer := session.Reply(context.Background(), "info de pollo")
	gt.Equal(t, answer, chat.ApologyAnswer)
}

func TestReplyEmptyResponse(t *testing.T) {
	gemini := &scriptedGemini{
		responses: []*genai.GenerateContentResponse{
			textResponse(""),
		},
	}
	session := newSession(t, gemini)

	answer := session.Reply(context.Background(), "hola")
	gt.Equal(t, answer, chat.FallbackAnswer)
}

func TestReplyWindowBounds(t *testing.T) {
	responses := make([]*genai.GenerateContentResponse, 0, 10)
	for i := 0; i < 10; i++ {
		responses = append(responses, textResponse("ok"))
	}
	gemini := &scriptedGemini{responses: responses}

	session, err := chat.New(context.Background(), chat.NewInput{
		Gemini:   gemini,
		Registry: testRegistry(),
		Window:   2,
	})
	gt.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		session.Reply(ctx, "mensaje")
	}

	// With a window of 2, the fifth request holds 2 stored turns (4 entries)
	// plus the new message.
	lastReq := gemini.requests[len(gemini.requests)-1]
	gt.A(t, lastReq).Length(5)
	// The full history is still kept on the conversation itself.
	gt.A(t, session.Conversation().Turns).Length(5)
}
