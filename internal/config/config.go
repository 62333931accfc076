// Package config loads the optional jbrdiff.toml settings file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/JetBrains/jbrdiff/internal/compare"
	gitbackend "github.com/JetBrains/jbrdiff/internal/git/backend"
	"github.com/JetBrains/jbrdiff/internal/history"
	"github.com/JetBrains/jbrdiff/internal/report"
)

const FileName = "jbrdiff.toml"

type Config struct {
	Git    GitConfig    `toml:"git"`
	Policy PolicyConfig `toml:"policy"`
	Links  LinksConfig  `toml:"links"`
	Output OutputConfig `toml:"output"`
}

type GitConfig struct {
	// Backend is "cli" (git executable) or "native" (go-git).
	Backend string `toml:"backend"`
}

// PolicyConfig names the bug id policy of each subcommand.
type PolicyConfig struct {
	Branch string `toml:"branch"`
	JDK    string `toml:"jdk"`
}

// LinksConfig holds URL templates with one %s; empty disables the link.
type LinksConfig struct {
	JDKIssue string `toml:"jdk_issue"`
	JBRIssue string `toml:"jbr_issue"`
	Commit   string `toml:"commit"`
}

type OutputConfig struct {
	Color string `toml:"color"`
	Theme string `toml:"theme"`
}

func Default() *Config {
	return &Config{
		Git: GitConfig{Backend: string(gitbackend.KindCLI)},
		Policy: PolicyConfig{
			Branch: history.PolicyNamePrefix,
			JDK:    history.PolicyNameColon,
		},
		Links: LinksConfig{
			JDKIssue: compare.DefaultJDKIssueURL,
			JBRIssue: compare.DefaultJBRIssueURL,
			Commit:   compare.DefaultCommitURL,
		},
		Output: OutputConfig{
			Color: string(report.ColorAuto),
			Theme: string(report.ThemeAuto),
		},
	}
}

// DefaultPath is jbrdiff.toml in the user configuration directory
// ($XDG_CONFIG_HOME on Linux).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads path, or the default location when path is empty. A missing
// default file yields the defaults; a missing explicit file is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a TOML document over the defaults and validates it. Unknown
// keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("unknown keys:\n%s", strict.String())
		}
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if _, err := gitbackend.ParseKind(c.Git.Backend); err != nil {
		errs = append(errs, fmt.Errorf("git.backend: %w", err))
	}
	if _, err := history.PolicyByName(c.Policy.Branch); err != nil {
		errs = append(errs, fmt.Errorf("policy.branch: %w", err))
	}
	if _, err := history.PolicyByName(c.Policy.JDK); err != nil {
		errs = append(errs, fmt.Errorf("policy.jdk: %w", err))
	}
	for key, tmpl := range map[string]string{
		"links.jdk_issue": c.Links.JDKIssue,
		"links.jbr_issue": c.Links.JBRIssue,
		"links.commit":    c.Links.Commit,
	} {
		if tmpl != "" && strings.Count(tmpl, "%s") != 1 {
			errs = append(errs, fmt.Errorf("%s: %q must contain exactly one %%s", key, tmpl))
		}
	}
	if _, err := report.ParseColorMode(c.Output.Color); err != nil {
		errs = append(errs, fmt.Errorf("output.color: %w", err))
	}
	if _, err := report.ParseTheme(c.Output.Theme); err != nil {
		errs = append(errs, fmt.Errorf("output.theme: %w", err))
	}
	return errors.Join(errs...)
}

// Write encodes the configuration as TOML.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// The accessors below assume Validate succeeded and fall back to defaults.

func (c *Config) BackendKind() gitbackend.Kind {
	kind, err := gitbackend.ParseKind(c.Git.Backend)
	if err != nil {
		return gitbackend.KindCLI
	}
	return kind
}

func (c *Config) BranchPolicy() history.BugIDPolicy {
	return policy(c.Policy.Branch, history.PolicyPrefix)
}

func (c *Config) JDKPolicy() history.BugIDPolicy {
	return policy(c.Policy.JDK, history.PolicyColon)
}

func policy(name string, fallback history.BugIDPolicy) history.BugIDPolicy {
	p, err := history.PolicyByName(name)
	if err != nil {
		return fallback
	}
	return p
}

func (c *Config) CompareLinks() compare.Links {
	return compare.Links{
		JDKIssue: c.Links.JDKIssue,
		JBRIssue: c.Links.JBRIssue,
		Commit:   c.Links.Commit,
	}
}

func (c *Config) ColorMode() report.ColorMode {
	m, err := report.ParseColorMode(c.Output.Color)
	if err != nil {
		return report.ColorAuto
	}
	return m
}

func (c *Config) Theme() report.Theme {
	t, err := report.ParseTheme(c.Output.Theme)
	if err != nil {
		return report.ThemeAuto
	}
	return t
}
