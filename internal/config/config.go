package config

// Config is a run configuration loaded from a YAML file. It describes
// one session: the tasks to execute, where prompt templates live and
// where the session log is written.
type Config struct {
	// Tasks is the ordered list of tasks to execute.
	Tasks []Task `mapstructure:"tasks"`
	// TemplateDir is the directory holding prompt template files.
	TemplateDir string `mapstructure:"template_dir"`
	// OutputDir is the directory the session log file is written to.
	OutputDir string `mapstructure:"output_dir"`
	// Defaults is optional metadata merged into every task's metadata.
	// Task-level values win.
	Defaults map[string]any `mapstructure:"defaults"`
	// Generator optionally configures the HTTP generator. When nil the
	// engine falls back to the echo generator.
	Generator *GeneratorConfig `mapstructure:"generator"`
}

// Task is one unit of work: a name, a template reference and optional
// input and metadata. Tasks are read once at load time and immutable
// afterwards.
type Task struct {
	Name     string         `mapstructure:"name"`
	Template string         `mapstructure:"template"`
	Input    string         `mapstructure:"input"`
	Metadata map[string]any `mapstructure:"metadata"`
}

// GeneratorConfig configures the HTTP generator collaborator.
type GeneratorConfig struct {
	// Endpoint is the URL the rendered prompt is POSTed to.
	Endpoint string `mapstructure:"endpoint"`
	// TokenURL, when set, enables token-based auth. A token is fetched
	// from this URL and refreshed before it expires.
	TokenURL string `mapstructure:"token_url"`
	// SecretKeyEnv names the environment variable holding the secret
	// key sent when fetching a token.
	SecretKeyEnv string `mapstructure:"secret_key_env"`
	// TimeoutSec is the per-request timeout in seconds.
	TimeoutSec int `mapstructure:"timeout_sec"`
	// RetryMax is the number of retries on 429/5xx responses.
	RetryMax int `mapstructure:"retry_max"`
}
