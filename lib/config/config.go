// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file when --config is not given.
const EnvironmentVariable = "EXPRUN_CONFIG"

// Backend selects how exprun talks to GitHub Actions.
type Backend string

const (
	// BackendGH shells out to the gh CLI, reusing its login.
	BackendGH Backend = "gh"
	// BackendREST calls the REST API with a token from TokenEnv.
	BackendREST Backend = "rest"
)

// Config is the complete exprun configuration.
type Config struct {
	// Repository is the GitHub repository as "owner/name". Optional for
	// the gh backend (gh infers it from the checkout); required for the
	// REST backend.
	Repository string `yaml:"repository"`

	// RepositoryURL is queried with git ls-remote to confirm the
	// current branch is pushed. Empty means the URL of Remote.
	RepositoryURL string `yaml:"repository_url"`

	// Remote is the git remote experimental branches are pushed to.
	Remote string `yaml:"remote"`

	// BranchPrefix is prepended to the current branch name to form the
	// experimental branch name.
	BranchPrefix string `yaml:"branch_prefix"`

	// Backend is "gh" or "rest".
	Backend Backend `yaml:"backend"`

	// APIURL overrides the REST API root (GitHub Enterprise).
	APIURL string `yaml:"api_url"`

	// TokenEnv names the environment variable holding the REST token.
	TokenEnv string `yaml:"token_env"`

	Workflows WorkflowsConfig `yaml:"workflows"`
	Image     ImageConfig     `yaml:"image"`
	Poll      PollConfig      `yaml:"poll"`
	Forge     ForgeConfig     `yaml:"forge"`
}

// WorkflowsConfig names the remote pipelines.
type WorkflowsConfig struct {
	// Build produces the image tagged with the commit hash.
	Build string `yaml:"build"`

	// Test runs the forge test suite against a built image.
	Test string `yaml:"test"`
}

// ImageConfig locates the image the build workflow publishes.
type ImageConfig struct {
	// Registry is the registry host, e.g. "ghcr.io".
	Registry string `yaml:"registry"`

	// Repository is the path under the registry, e.g. "acme/images".
	Repository string `yaml:"repository"`

	// Name is the image checked for an existing build.
	Name string `yaml:"name"`
}

// PollConfig controls dispatch follow-up timing.
type PollConfig struct {
	// Interval between run status queries.
	Interval time.Duration `yaml:"interval"`

	// Timeout bounds the whole wait.
	Timeout time.Duration `yaml:"timeout"`

	// PropagationDelay is slept after a successful dispatch before the
	// run listing is queried; the listing is eventually consistent.
	PropagationDelay time.Duration `yaml:"propagation_delay"`
}

// ForgeConfig holds test pipeline settings that are not per-invocation.
type ForgeConfig struct {
	// Cluster is the test cluster the forge workflow targets.
	Cluster string `yaml:"cluster"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Remote:       "origin",
		BranchPrefix: "exp/",
		Backend:      BackendGH,
		TokenEnv:     "GITHUB_TOKEN",
		Workflows: WorkflowsConfig{
			Build: "docker-build-test.yaml",
			Test:  "forge-e2e.yaml",
		},
		Image: ImageConfig{
			Registry: "ghcr.io",
			Name:     "validator-testing",
		},
		Poll: PollConfig{
			Interval:         10 * time.Second,
			Timeout:          30 * time.Minute,
			PropagationDelay: 5 * time.Second,
		},
		Forge: ForgeConfig{
			Cluster: "forge-e2e",
		},
	}
}

// Load resolves the config file from flagPath or EXPRUN_CONFIG and
// loads it over the defaults. With neither set it returns Default().
// The result is validated.
func Load(flagPath string) (*Config, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv(EnvironmentVariable)
	}
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	return LoadFile(path)
}

// LoadFile loads and validates configuration from path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := cfg.parse(path, data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// parse decodes data over c. JSON is valid YAML, so JSONC only needs
// its comments and trailing commas stripped first.
func (c *Config) parse(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}
	return yaml.Unmarshal(data, c)
}

// expandVariables expands ${VAR} references in string fields that name
// external locations.
func (c *Config) expandVariables() {
	c.RepositoryURL = os.ExpandEnv(c.RepositoryURL)
	c.APIURL = os.ExpandEnv(c.APIURL)
	c.Image.Registry = os.ExpandEnv(c.Image.Registry)
	c.Image.Repository = os.ExpandEnv(c.Image.Repository)
}

// Validate checks that the configuration is usable. All problems are
// reported together.
func (c *Config) Validate() error {
	var problems []error

	if c.Remote == "" {
		problems = append(problems, errors.New("remote must not be empty"))
	}
	if c.BranchPrefix == "" {
		problems = append(problems, errors.New("branch_prefix must not be empty"))
	}
	switch c.Backend {
	case BackendGH:
	case BackendREST:
		if c.TokenEnv == "" {
			problems = append(problems, errors.New("token_env is required for the rest backend"))
		}
		if _, _, err := c.OwnerAndName(); err != nil {
			problems = append(problems, fmt.Errorf("the rest backend needs repository: %w", err))
		}
	default:
		problems = append(problems, fmt.Errorf("backend %q is not one of %q, %q", c.Backend, BackendGH, BackendREST))
	}
	if c.Repository != "" {
		if _, _, err := c.OwnerAndName(); err != nil {
			problems = append(problems, err)
		}
	}
	if c.Workflows.Build == "" {
		problems = append(problems, errors.New("workflows.build must not be empty"))
	}
	if c.Workflows.Test == "" {
		problems = append(problems, errors.New("workflows.test must not be empty"))
	}
	if c.Image.Registry == "" || c.Image.Name == "" {
		problems = append(problems, errors.New("image.registry and image.name must not be empty"))
	}
	if c.Poll.Interval <= 0 {
		problems = append(problems, fmt.Errorf("poll.interval must be positive (got %s)", c.Poll.Interval))
	}
	if c.Poll.Timeout < c.Poll.Interval {
		problems = append(problems, fmt.Errorf("poll.timeout (%s) must be at least poll.interval (%s)", c.Poll.Timeout, c.Poll.Interval))
	}
	if c.Poll.PropagationDelay < 0 {
		problems = append(problems, fmt.Errorf("poll.propagation_delay must not be negative (got %s)", c.Poll.PropagationDelay))
	}

	return errors.Join(problems...)
}

// OwnerAndName splits Repository into its owner and name.
func (c *Config) OwnerAndName() (string, string, error) {
	owner, name, ok := strings.Cut(c.Repository, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("repository %q is not of the form owner/name", c.Repository)
	}
	return owner, name, nil
}

// ImageReference returns the registry path of the configured image
// without a tag, e.g. "ghcr.io/acme/images/validator-testing".
func (c *Config) ImageReference() string {
	parts := []string{strings.TrimRight(c.Image.Registry, "/")}
	if repository := strings.Trim(c.Image.Repository, "/"); repository != "" {
		parts = append(parts, repository)
	}
	parts = append(parts, c.Image.Name)
	return strings.Join(parts, "/")
}
