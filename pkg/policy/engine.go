package policy

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mcortez-ml/nutria/pkg/model"
	"github.com/mcortez-ml/nutria/pkg/utils/logging"
	"github.com/open-policy-agent/opa/v1/rego"
)

// Engine evaluates dietary restriction policies. Rego files in the policy
// directory define `deny` rules under `package diet`; a food record is
// excluded from recommendation candidates when any rule matches it.
// A nil *Engine denies nothing.
type Engine struct {
	deny rego.PreparedEvalQuery
}

// New loads all .rego files from policyDir and prepares the deny query.
// It returns nil when the directory is empty or unset.
func New(ctx context.Context, policyDir string) (*Engine, error) {
	if policyDir == "" {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(policyDir, "*.rego"))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to glob policy files")
	}
	if len(files) == 0 {
		return nil, nil
	}

	options := make([]func(*rego.Rego), 0, len(files)+1)
	options = append(options, rego.Query("data.diet.deny"))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", file))
		}
		options = append(options, rego.Module(file, string(data)))
	}

	prepared, err := rego.New(options...).PrepareForEval(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to prepare diet policy query")
	}

	return &Engine{deny: prepared}, nil
}

// Deny reports whether the policy excludes the given food. Evaluation
// failures are logged and treated as "not denied" so a broken policy file
// cannot empty out every recommendation.
func (e *Engine) Deny(ctx context.Context, record model.FoodRecord) bool {
	if e == nil {
		return false
	}

	input, err := toInput(record)
	if err != nil {
		logging.From(ctx).Warn("failed to build policy input", "error", err)
		return false
	}

	rs, err := e.deny.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		logging.From(ctx).Warn("diet policy evaluation failed", "error", err, "food", record.Name)
		return false
	}

	for _, result := range rs {
		for _, expr := range result.Expressions {
			switch v := expr.Value.(type) {
			case []any:
				if len(v) > 0 {
					return true
				}
			case bool:
				if v {
					return true
				}
			}
		}
	}

	return false
}

// toInput converts the record to a plain map so the policy sees the same
// field names as the tool payloads.
func toInput(record model.FoodRecord) (map[string]any, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal food record")
	}
	var input map[string]any
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal food record")
	}
	return input, nil
}
