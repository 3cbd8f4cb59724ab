package mcp

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mcortez-ml/nutria/pkg/tool"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/genai"
)

// NewServer exposes every tool in the registry over MCP. The same function
// declarations that Gemini sees are republished with JSON Schema parameters.
func NewServer(registry *tool.Registry, version string) (*mcp.Server, error) {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "nutria",
		Version: version,
	}, nil)

	for _, spec := range registry.Specs() {
		for _, fd := range spec.FunctionDeclarations {
			schema, err := convertGenaiToJSONSchema(fd.Parameters)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to convert tool schema",
					goerr.V("tool", fd.Name))
			}

			server.AddTool(&mcp.Tool{
				Name:        fd.Name,
				Description: fd.Description,
				InputSchema: schema,
			}, toolHandler(registry, fd.Name))
		}
	}

	return server, nil
}

// Run serves MCP requests over stdio until the context is canceled.
func Run(ctx context.Context, server *mcp.Server) error {
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return goerr.Wrap(err, "mcp server failed")
	}
	return nil
}

func toolHandler(registry *tool.Registry, name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := map[string]any{}
		if len(req.Params.Arguments) > 0 {
			// Malformed argument payloads default to an empty argument set.
			_ = json.Unmarshal(req.Params.Arguments, &args)
		}

		resp, err := registry.Execute(ctx, genai.FunctionCall{Name: name, Args: args})
		if err != nil {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
			}, nil
		}

		payload, err := json.Marshal(resp.Response)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to marshal tool response")
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(payload)}},
		}, nil
	}
}
