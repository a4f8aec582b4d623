/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/botobag/graphmux"

	"gopkg.in/yaml.v3"
)

// DefaultOutput is the output directory of a project that does not name one.
const DefaultOutput = "generated"

// Project is a set of documents served by one endpoint.
type Project struct {
	// Name identifies the project in messages.
	Name string `yaml:"name"`

	// Endpoint the documents are routed to; Empty for the default endpoint (documents are copied
	// unchanged).
	Endpoint string `yaml:"endpoint"`

	// Documents lists glob patterns of the document files, relative to the config file.
	Documents []string `yaml:"documents"`

	// Output is the directory receiving the tagged documents, relative to the config file (default:
	// "generated").
	Output string `yaml:"output"`
}

// Upstream is a GraphQL endpoint the gateway forwards operations to. Exactly one of URL and NATS
// must be set.
type Upstream struct {
	// URL of an HTTP endpoint
	URL string `yaml:"url"`

	// NATS server URL; Requests are sent to Subject.
	NATS    string `yaml:"nats"`
	Subject string `yaml:"subject"`

	// Timeout of NATS requests (default: 5s)
	Timeout time.Duration `yaml:"timeout"`
}

func (u *Upstream) validate(name string) error {
	switch {
	case len(u.URL) > 0 && len(u.NATS) > 0:
		return fmt.Errorf("upstream %s: url and nats are exclusive", name)
	case len(u.URL) > 0:
		return nil
	case len(u.NATS) > 0:
		if len(u.Subject) == 0 {
			return fmt.Errorf("upstream %s: nats requires a subject", name)
		}
		return nil
	}
	return fmt.Errorf("upstream %s: either url or nats is required", name)
}

// Gateway configures the serve command.
type Gateway struct {
	// Listen is the address of the HTTP server (default: ":8080").
	Listen string `yaml:"listen"`

	// Path serving GraphQL (default: "/graphql")
	Path string `yaml:"path"`

	// Path serving Prometheus metrics (default: "/metrics")
	MetricsPath string `yaml:"metrics_path"`

	// Fallback forwards operations of unknown endpoints to the default upstream.
	Fallback bool `yaml:"fallback"`

	// Default receives operations without routing directive.
	Default *Upstream `yaml:"default"`

	// Endpoints maps endpoint names to their upstream.
	Endpoints map[string]Upstream `yaml:"endpoints"`
}

// Validate fills defaults and checks the gateway config.
func (g *Gateway) Validate() error {
	if g.Listen == "" {
		g.Listen = ":8080"
	}
	if g.Path == "" {
		g.Path = "/graphql"
	}
	if g.MetricsPath == "" {
		g.MetricsPath = "/metrics"
	}
	if g.Path == g.MetricsPath {
		return fmt.Errorf("gateway path and metrics path must differ")
	}

	if g.Default == nil && len(g.Endpoints) == 0 {
		return fmt.Errorf("gateway has no upstream")
	}
	if g.Default != nil {
		if err := g.Default.validate("default"); err != nil {
			return err
		}
	}
	for name, upstream := range g.Endpoints {
		if len(name) == 0 {
			return fmt.Errorf("upstream name must not be empty")
		}
		if err := upstream.validate(name); err != nil {
			return err
		}
	}
	return nil
}

// Config is the content of a project file.
type Config struct {
	Directive graphmux.DirectiveConfig `yaml:"directive"`
	Projects  []Project                `yaml:"projects"`
	Gateway   *Gateway                 `yaml:"gateway"`

	// Directory containing the config file
	dir string
}

// LoadConfig reads and validates the config file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	config.dir = filepath.Dir(path)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &config, nil
}

// Validate fills defaults and checks the config.
func (c *Config) Validate() error {
	c.Directive = c.Directive.WithDefaults()
	if err := c.Directive.Validate(); err != nil {
		return err
	}

	seen := map[string]bool{}
	for i := range c.Projects {
		p := &c.Projects[i]
		if len(p.Name) == 0 {
			return fmt.Errorf("project #%d has no name", i+1)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate project %q", p.Name)
		}
		seen[p.Name] = true

		if len(p.Documents) == 0 {
			return fmt.Errorf("project %q has no documents", p.Name)
		}
		for _, pattern := range p.Documents {
			if _, err := filepath.Match(pattern, ""); err != nil {
				return fmt.Errorf("project %q: bad pattern %q: %w", p.Name, pattern, err)
			}
		}

		if len(p.Output) == 0 {
			p.Output = DefaultOutput
		}
	}

	if c.Gateway != nil {
		if err := c.Gateway.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// resolve makes path relative to the directory of the config file.
func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) || len(c.dir) == 0 {
		return path
	}
	return filepath.Join(c.dir, path)
}
