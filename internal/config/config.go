// Package config handles configuration loading for brdgen. Settings come
// from an optional brdgen.yaml file and BRDGEN_-prefixed environment
// variables, with explicit defaults for every key.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for a pipeline run.
type Config struct {
	LLM      LLMConfig      `mapstructure:"llm"`
	Paths    PathsConfig    `mapstructure:"paths"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Tokens   TokensConfig   `mapstructure:"tokens"`
}

// LLMConfig holds model and transport settings.
type LLMConfig struct {
	// Model is the model identifier passed to the Anthropic SDK.
	Model string `mapstructure:"model"`
	// APIKey overrides the ANTHROPIC_API_KEY environment variable.
	APIKey string `mapstructure:"api_key"`
	// UseBedrock routes calls through AWS Bedrock instead of the direct API.
	UseBedrock bool `mapstructure:"use_bedrock"`
	// AWSRegion is the Bedrock region.
	AWSRegion string `mapstructure:"aws_region"`
	// AWSProfile is the optional shared-config profile for Bedrock.
	AWSProfile string `mapstructure:"aws_profile"`
}

// PathsConfig holds filesystem locations.
type PathsConfig struct {
	// CorpusDir is the directory holding the input file corpus.
	CorpusDir string `mapstructure:"corpus_dir"`
	// OutputDir receives agent outputs, the report, and the run database.
	OutputDir string `mapstructure:"output_dir"`
	// GoldenReference is the golden BRD used by consolidation prompts.
	// A missing file is not an error; consolidation proceeds without it.
	GoldenReference string `mapstructure:"golden_reference"`
	// GuardrailRules is an optional YAML file with extra banned patterns.
	GuardrailRules string `mapstructure:"guardrail_rules"`
	// MaxFileSizeMB caps the size of any single corpus file read.
	MaxFileSizeMB int `mapstructure:"max_file_size_mb"`
}

// PipelineConfig holds orchestration settings.
type PipelineConfig struct {
	// AgentTimeout bounds each standard agent invocation.
	AgentTimeout time.Duration `mapstructure:"agent_timeout"`
	// ReviewerTimeout bounds reviewer invocations; the reviewer reads
	// every upstream output, so it gets longer than standard agents.
	ReviewerTimeout time.Duration `mapstructure:"reviewer_timeout"`
	// MaxRetries bounds the reviewer feedback loop: at most
	// MaxRetries+1 reviewer invocations per run.
	MaxRetries int `mapstructure:"max_retries"`
	// GroupDelimiter splits workbook prefixes from sheet names.
	GroupDelimiter string `mapstructure:"group_delimiter"`
	// MaxGroupSize caps files per agent invocation; larger workbooks
	// are split into consecutive chunks.
	MaxGroupSize int `mapstructure:"max_group_size"`
}

// TokensConfig holds token tracking and cost settings.
type TokensConfig struct {
	// Track enables per-call token recording.
	Track bool `mapstructure:"track"`
	// InputCostPer1K and OutputCostPer1K are USD rates per 1000 tokens.
	InputCostPer1K  float64 `mapstructure:"input_cost_per_1k"`
	OutputCostPer1K float64 `mapstructure:"output_cost_per_1k"`
	// CostWarnThreshold triggers a run warning when the summed cost
	// estimate exceeds it (USD).
	CostWarnThreshold float64 `mapstructure:"cost_warn_threshold"`
}

// CostEstimate derives the USD cost of one call from its token counts.
func (t TokensConfig) CostEstimate(inputTokens, outputTokens int64) float64 {
	return (float64(inputTokens)*t.InputCostPer1K + float64(outputTokens)*t.OutputCostPer1K) / 1000
}

// Load reads configuration with precedence: environment variables
// (BRDGEN_ prefix), then brdgen.yaml in the working directory, then
// built-in defaults.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("brdgen")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("BRDGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("llm.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.model", "claude-sonnet-4-20250514")
	v.SetDefault("llm.use_bedrock", false)
	v.SetDefault("llm.aws_region", "")
	v.SetDefault("llm.aws_profile", "")

	v.SetDefault("paths.corpus_dir", "example_data/corpus")
	v.SetDefault("paths.output_dir", "outputs")
	v.SetDefault("paths.golden_reference", "example_data/golden_brd.md")
	v.SetDefault("paths.guardrail_rules", "")
	v.SetDefault("paths.max_file_size_mb", 50)

	v.SetDefault("pipeline.agent_timeout", 300*time.Second)
	v.SetDefault("pipeline.reviewer_timeout", 600*time.Second)
	v.SetDefault("pipeline.max_retries", 2)
	v.SetDefault("pipeline.group_delimiter", "_sheet")
	v.SetDefault("pipeline.max_group_size", 8)

	v.SetDefault("tokens.track", true)
	v.SetDefault("tokens.input_cost_per_1k", 0.003)
	v.SetDefault("tokens.output_cost_per_1k", 0.006)
	v.SetDefault("tokens.cost_warn_threshold", 10.0)
}
