package internal

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/chefknight/internal/gitrepo"
	"github.com/starford/chefknight/internal/models"
	"github.com/starford/chefknight/internal/render"
)

// Version is reported by the status endpoint when app.version is not set.
const Version = "0.1.0"

var categoryNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Content ContentConfig     `yaml:"content"`
	Git     GitConfig         `yaml:"git"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Static  StaticConfig      `yaml:"static"`
	CORS    CORSConfig        `yaml:"cors"`
	Render  RenderConfig      `yaml:"render"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Content.Validate(); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	if err := c.Git.Validate(); err != nil {
		return fmt.Errorf("git: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	Version  string     `yaml:"version"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig holds the content root and its category registry.
type ContentConfig struct {
	Root       string            `yaml:"root"`
	Categories []models.Category `yaml:"categories"`
}

// Validate validates the content configuration. An empty category list
// means the built-in defaults.
func (c *ContentConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
	); err != nil {
		return err
	}
	for i := range c.Categories {
		if err := validation.Validate(c.Categories[i].Name,
			validation.Required,
			validation.Match(categoryNameRe),
		); err != nil {
			return fmt.Errorf("categories[%d].name: %w", i, err)
		}
	}
	return nil
}

// CategoryList returns the configured categories or the defaults.
func (c *ContentConfig) CategoryList() []models.Category {
	if len(c.Categories) == 0 {
		return models.DefaultCategories()
	}
	return c.Categories
}

// GitConfig holds repository manager settings.
type GitConfig struct {
	Remote        string        `yaml:"remote"`
	DefaultBranch string        `yaml:"default_branch"`
	AuthorName    string        `yaml:"author_name"`
	AuthorEmail   string        `yaml:"author_email"`
	Timeout       time.Duration `yaml:"timeout"`
}

// Validate validates the git configuration.
func (c *GitConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Remote, validation.Required),
		validation.Field(&c.DefaultBranch, validation.Required),
		validation.Field(&c.AuthorName, validation.Required),
		validation.Field(&c.AuthorEmail, validation.Required),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// SQLiteConfig holds the sync journal database location. An empty path
// disables the journal.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// StaticConfig holds the bundled frontend directory. It is served only when
// it exists.
type StaticConfig struct {
	Dir string `yaml:"dir"`
}

// CORSConfig lists origins allowed to call the API. Empty allows any.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// RenderConfig controls HTML rendering of document bodies.
type RenderConfig struct {
	UnsafeHTML bool `yaml:"unsafe_html"`
	HardWraps  bool `yaml:"hard_wraps"`
}

// Options maps the settings to renderer options.
func (c *RenderConfig) Options() []render.Option {
	var opts []render.Option
	if c.UnsafeHTML {
		opts = append(opts, render.WithUnsafeHTML())
	}
	if c.HardWraps {
		opts = append(opts, render.WithHardWraps())
	}
	return opts
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			Version:  Version,
			HTTP: HTTPConfig{
				Port: 8000,
			},
		},
		Content: ContentConfig{
			Root: "./data",
		},
		Git: GitConfig{
			Remote:        gitrepo.DefaultRemote,
			DefaultBranch: gitrepo.DefaultBranch,
			AuthorName:    gitrepo.DefaultAuthorName,
			AuthorEmail:   gitrepo.DefaultAuthorEmail,
			Timeout:       60 * time.Second,
		},
		SQLite: SQLiteConfig{
			Path: "./chefknight.db",
		},
		Static: StaticConfig{
			Dir: "./static",
		},
	}
}
