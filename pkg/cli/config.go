package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mcortez-ml/nutria/pkg/adapter"
	"github.com/mcortez-ml/nutria/pkg/catalog"
	"github.com/mcortez-ml/nutria/pkg/nutrition"
	"github.com/mcortez-ml/nutria/pkg/policy"
	"github.com/mcortez-ml/nutria/pkg/repository"
	"github.com/mcortez-ml/nutria/pkg/tool"
	"github.com/mcortez-ml/nutria/pkg/tool/foods"
	"github.com/mcortez-ml/nutria/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	logLevel string

	catalogPath     string
	calibrationPath string
	policyDir       string
	dbPath          string
	historyWindow   int64

	geminiAPIKey string
	chatModel    string
	speechModel  string
	voice        string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("NUTRIA_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "catalog",
			Aliases:     []string{"c"},
			Usage:       "Path to the food catalog CSV (embedded starter dataset when unset)",
			Sources:     cli.EnvVars("NUTRIA_CATALOG"),
			Destination: &cfg.catalogPath,
		},
		&cli.StringFlag{
			Name:        "calibration",
			Usage:       "Path to a YAML file overriding the NutrIA score calibration",
			Sources:     cli.EnvVars("NUTRIA_CALIBRATION"),
			Destination: &cfg.calibrationPath,
		},
		&cli.StringFlag{
			Name:        "diet-policy-dir",
			Usage:       "Directory with Rego dietary restriction policies (package diet)",
			Sources:     cli.EnvVars("NUTRIA_DIET_POLICY_DIR"),
			Destination: &cfg.policyDir,
		},
		&cli.StringFlag{
			Name:        "db",
			Aliases:     []string{"d"},
			Usage:       "Path to the SQLite conversation history database",
			Sources:     cli.EnvVars("NUTRIA_DB"),
			Destination: &cfg.dbPath,
		},
		&cli.IntFlag{
			Name:        "history-window",
			Usage:       "Number of recent turns included in model context",
			Value:       6,
			Sources:     cli.EnvVars("NUTRIA_HISTORY_WINDOW"),
			Destination: &cfg.historyWindow,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Gemini API key",
			Sources:     cli.EnvVars("GEMINI_API_KEY"),
			Destination: &cfg.geminiAPIKey,
		},
		&cli.StringFlag{
			Name:        "chat-model",
			Usage:       "Generative model for chat and transcription",
			Value:       "gemini-2.5-flash",
			Sources:     cli.EnvVars("NUTRIA_CHAT_MODEL"),
			Destination: &cfg.chatModel,
		},
		&cli.StringFlag{
			Name:        "speech-model",
			Usage:       "Model used for speech synthesis",
			Value:       "gemini-2.5-flash-preview-tts",
			Sources:     cli.EnvVars("NUTRIA_SPEECH_MODEL"),
			Destination: &cfg.speechModel,
		},
		&cli.StringFlag{
			Name:        "voice",
			Usage:       "Prebuilt voice for speech synthesis",
			Value:       "Kore",
			Sources:     cli.EnvVars("NUTRIA_VOICE"),
			Destination: &cfg.voice,
		},
	}
}

// setupLogger applies the configured log level process-wide.
func (cfg *config) setupLogger() {
	logging.SetDefault(logging.New(cfg.logLevel, os.Stderr))
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.geminiAPIKey == "" {
		return nil, goerr.New("gemini-api-key is required")
	}
	return adapter.NewGemini(ctx, cfg.geminiAPIKey,
		adapter.WithGenerativeModel(cfg.chatModel),
		adapter.WithSpeechModel(cfg.speechModel),
		adapter.WithVoice(cfg.voice),
	)
}

// newCatalog loads the food catalog
func (cfg *config) newCatalog() (*catalog.Catalog, error) {
	cat, err := catalog.Load(cfg.catalogPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load catalog")
	}
	return cat, nil
}

// newScorer builds the scorer, applying calibration overrides when given
func (cfg *config) newScorer() (nutrition.Scorer, error) {
	if cfg.calibrationPath == "" {
		return nutrition.NewScorer(nutrition.DefaultCalibration()), nil
	}
	cal, err := nutrition.LoadCalibration(cfg.calibrationPath)
	if err != nil {
		return nutrition.Scorer{}, err
	}
	return nutrition.NewScorer(cal), nil
}

// newPolicy loads the optional dietary policy engine (nil when unconfigured)
func (cfg *config) newPolicy(ctx context.Context) (*policy.Engine, error) {
	return policy.New(ctx, cfg.policyDir)
}

// newRepository opens the optional history store (nil when unconfigured)
func (cfg *config) newRepository() (repository.Repository, error) {
	if cfg.dbPath == "" {
		return nil, nil
	}
	return repository.NewSQLite(cfg.dbPath)
}

// components bundles the domain pieces shared by chat, serve and mcp.
type components struct {
	registry *tool.Registry
	catalog  *catalog.Catalog
	scorer   nutrition.Scorer
	diet     *policy.Engine
}

// newComponents loads the catalog, scorer and optional dietary policy and
// wires the three nutrition tools.
func (cfg *config) newComponents(ctx context.Context) (*components, error) {
	cat, err := cfg.newCatalog()
	if err != nil {
		return nil, err
	}

	scorer, err := cfg.newScorer()
	if err != nil {
		return nil, err
	}

	diet, err := cfg.newPolicy(ctx)
	if err != nil {
		return nil, err
	}

	registry := tool.New(
		foods.NewFoodInfo(cat, scorer),
		foods.NewRecommend(cat, scorer, diet),
		foods.NewPlan(),
	)

	return &components{
		registry: registry,
		catalog:  cat,
		scorer:   scorer,
		diet:     diet,
	}, nil
}
