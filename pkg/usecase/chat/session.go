package chat

import (
	"context"
	_ "embed"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mcortez-ml/nutria/pkg/adapter"
	"github.com/mcortez-ml/nutria/pkg/model"
	"github.com/mcortez-ml/nutria/pkg/repository"
	"github.com/mcortez-ml/nutria/pkg/tool"
	"github.com/mcortez-ml/nutria/pkg/utils/logging"
	"google.golang.org/genai"
)

//go:embed prompt/system.md
var systemPromptRaw string

const (
	// ApologyAnswer is returned when any boundary failure (network, model,
	// malformed response) occurs during a turn.
	ApologyAnswer = "Lo siento, tuve un problema procesando tu mensaje. Inténtalo de nuevo en un momento."

	// FallbackAnswer substitutes an empty final model response.
	FallbackAnswer = "Lo siento, no pude generar una respuesta. ¿Puedes reformular tu pregunta?"

	// DefaultWindow is the number of recent turns included in model context.
	DefaultWindow = 6
)

// Session orchestrates one conversation: it keeps the turn history, builds
// prompts from a bounded recent-turn window and runs the two-phase
// call-model / execute-tools / call-model-again protocol.
type Session struct {
	gemini   adapter.Gemini
	registry *tool.Registry
	repo     repository.Repository

	conv   *model.Conversation
	window int
}

// NewInput contains parameters for creating a chat session
type NewInput struct {
	Gemini   adapter.Gemini
	Registry *tool.Registry
	Repo     repository.Repository // optional: enables history persistence

	ConversationID model.ConversationID // optional: continue a stored conversation
	Window         int                  // recent turns in model context, default 6
}

func New(ctx context.Context, input NewInput) (*Session, error) {
	if input.Gemini == nil {
		return nil, goerr.New("gemini adapter is required")
	}
	if input.Registry == nil {
		return nil, goerr.New("tool registry is required")
	}

	window := input.Window
	if window <= 0 {
		window = DefaultWindow
	}

	conv := model.NewConversation()
	if input.ConversationID != "" {
		if input.Repo == nil {
			return nil, goerr.New("repository is required to continue a conversation")
		}
		stored, err := input.Repo.GetConversation(ctx, input.ConversationID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load conversation",
				goerr.V("id", input.ConversationID))
		}
		conv = stored
	}

	return &Session{
		gemini:   input.Gemini,
		registry: input.Registry,
		repo:     input.Repo,
		conv:     conv,
		window:   window,
	}, nil
}

func (s *Session) Conversation() *model.Conversation {
	return s.conv
}

// Reply processes one user turn and always returns displayable text. Any
// failure inside the turn is logged and converted to the fixed apology; no
// error escapes to the caller.
func (s *Session) Reply(ctx context.Context, message string) string {
	answer, err := s.send(ctx, message)
	if err != nil {
		logging.From(ctx).Error("chat turn failed", "error", err)
		answer = ApologyAnswer
	}
	if answer == "" {
		answer = FallbackAnswer
	}

	s.conv.Append(message, answer)
	if s.repo != nil {
		if err := s.repo.PutConversation(ctx, s.conv); err != nil {
			logging.From(ctx).Warn("failed to persist conversation", "error", err)
		}
	}

	return answer
}

// send runs at most two model invocations: the first with tool access, and,
// when the model issues function calls, a second one to synthesize the final
// answer from the tool results.
func (s *Session) send(ctx context.Context, message string) (string, error) {
	contents := s.buildContents(message)

	config := &genai.GenerateContentConfig{
		SystemInstruction: s.systemInstruction(ctx),
		Tools:             s.registry.Specs(),
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode: genai.FunctionCallingConfigModeAuto,
			},
		},
	}

	resp, err := s.gemini.GenerateContent(ctx, contents, config)
	if err != nil {
		return "", goerr.Wrap(err, "first model call failed")
	}

	text, calls, content := splitResponse(resp)
	if len(calls) == 0 {
		// Fast path: the model answered without tools.
		return text, nil
	}

	logging.From(ctx).Debug("dispatching tool calls", "count", len(calls))

	contents = append(contents, content)
	responses := s.registry.Dispatch(ctx, calls)

	parts := make([]*genai.Part, 0, len(responses))
	for _, fr := range responses {
		parts = append(parts, &genai.Part{FunctionResponse: fr})
	}
	contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: parts})

	// Second call synthesizes the answer; no tool access this time.
	finalConfig := &genai.GenerateContentConfig{
		SystemInstruction: s.systemInstruction(ctx),
	}

	final, err := s.gemini.GenerateContent(ctx, contents, finalConfig)
	if err != nil {
		return "", goerr.Wrap(err, "final model call failed")
	}

	answer, _, _ := splitResponse(final)
	return answer, nil
}

func (s *Session) systemInstruction(ctx context.Context) *genai.Content {
	prompt := systemPromptRaw
	if toolPrompts := s.registry.Prompts(ctx); toolPrompts != "" {
		prompt += "\n\n" + toolPrompts
	}
	return genai.NewContentFromText(prompt, "")
}

// buildContents flattens the bounded recent-turn window into alternating
// user/model entries and appends the new user message.
func (s *Session) buildContents(message string) []*genai.Content {
	turns := s.conv.Window(s.window)

	contents := make([]*genai.Content, 0, len(turns)*2+1)
	for _, t := range turns {
		contents = append(contents, genai.NewContentFromText(t.User, genai.RoleUser))
		contents = append(contents, genai.NewContentFromText(t.Assistant, genai.RoleModel))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	return contents
}

// splitResponse extracts the text and function calls from the first
// candidate, along with its raw content for prompt continuation.
func splitResponse(resp *genai.GenerateContentResponse) (string, []genai.FunctionCall, *genai.Content) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil, nil
	}

	content := resp.Candidates[0].Content

	var text string
	var calls []genai.FunctionCall
	for _, part := range content.Parts {
		if part.Text != "" {
			text += part.Text
		}
		if part.FunctionCall != nil {
			calls = append(calls, *part.FunctionCall)
		}
	}

	return text, calls, content
}
