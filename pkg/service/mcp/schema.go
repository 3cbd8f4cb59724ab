package mcp

import (
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// convertGenaiToJSONSchema converts a Gemini function-calling schema to JSON
// Schema so the same tool declarations can be served over MCP.
func convertGenaiToJSONSchema(schema *genai.Schema) (*jsonschema.Schema, error) {
	if schema == nil {
		return nil, nil
	}

	out := &jsonschema.Schema{}

	switch schema.Type {
	case genai.TypeObject:
		out.Type = "object"
	case genai.TypeString:
		out.Type = "string"
	case genai.TypeNumber:
		out.Type = "number"
	case genai.TypeInteger:
		out.Type = "integer"
	case genai.TypeBoolean:
		out.Type = "boolean"
	case genai.TypeArray:
		out.Type = "array"
	case genai.TypeUnspecified:
	default:
		return nil, goerr.New("unsupported schema type", goerr.V("type", schema.Type))
	}

	if schema.Description != "" {
		out.Description = schema.Description
	}

	if len(schema.Enum) > 0 {
		out.Enum = make([]any, len(schema.Enum))
		for i, v := range schema.Enum {
			out.Enum[i] = v
		}
	}

	if len(schema.Properties) > 0 {
		out.Properties = make(map[string]*jsonschema.Schema)
		for name, prop := range schema.Properties {
			converted, err := convertGenaiToJSONSchema(prop)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to convert property schema",
					goerr.V("property", name))
			}
			out.Properties[name] = converted
		}
	}

	if len(schema.Required) > 0 {
		out.Required = schema.Required
	}

	if schema.Items != nil {
		converted, err := convertGenaiToJSONSchema(schema.Items)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to convert items schema")
		}
		out.Items = converted
	}

	return out, nil
}
