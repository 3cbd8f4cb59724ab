package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mcortez-ml/nutria/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

var errToolNotFound = goerr.New("tool not found")

// Registry manages the available tools for the LLM
type Registry struct {
	tools     map[string]Tool
	allTools  []Tool
	toolSpecs []*genai.Tool
}

// New creates a new tool registry with the given tools
func New(tools ...Tool) *Registry {
	r := &Registry{
		tools:    make(map[string]Tool),
		allTools: tools,
	}

	for _, t := range tools {
		spec := t.Spec()
		if spec != nil && len(spec.FunctionDeclarations) > 0 {
			r.toolSpecs = append(r.toolSpecs, spec)
			for _, fd := range spec.FunctionDeclarations {
				r.tools[fd.Name] = t
			}
		}
	}

	return r
}

// Specs returns all tool specifications for Gemini function calling
func (r *Registry) Specs() []*genai.Tool {
	return r.toolSpecs
}

// Prompts returns all tool prompts concatenated
func (r *Registry) Prompts(ctx context.Context) string {
	var prompts []string
	for _, t := range r.allTools {
		if prompt := t.Prompt(ctx); prompt != "" {
			prompts = append(prompts, prompt)
		}
	}
	return strings.Join(prompts, "\n\n")
}

// Flags returns all tool flags combined
func (r *Registry) Flags() []cli.Flag {
	var flags []cli.Flag
	for _, t := range r.allTools {
		if toolFlags := t.Flags(); toolFlags != nil {
			flags = append(flags, toolFlags...)
		}
	}
	return flags
}

// Execute runs the tool with the given function call
func (r *Registry) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	tool, ok := r.tools[fc.Name]
	if !ok {
		return nil, goerr.Wrap(errToolNotFound, "tool not found", goerr.V("name", fc.Name))
	}

	return tool.Execute(ctx, fc)
}

// Dispatch executes a batch of function calls and returns one response per
// call, in order, correlated by call ID. Unknown names and execution
// failures become structured error payloads; a failing call never aborts
// the batch.
func (r *Registry) Dispatch(ctx context.Context, calls []genai.FunctionCall) []*genai.FunctionResponse {
	responses := make([]*genai.FunctionResponse, 0, len(calls))

	for _, fc := range calls {
		resp, err := r.Execute(ctx, fc)
		if err != nil {
			logging.From(ctx).Warn("tool call failed", "name", fc.Name, "error", err)

			msg := fmt.Sprintf("Error interno en tool '%s': %v", fc.Name, err)
			if errors.Is(err, errToolNotFound) {
				msg = fmt.Sprintf("Función desconocida: %s", fc.Name)
			}
			resp = &genai.FunctionResponse{
				Name:     fc.Name,
				Response: map[string]any{"error": msg},
			}
		}

		if resp.ID == "" {
			resp.ID = fc.ID
		}
		responses = append(responses, resp)
	}

	return responses
}
