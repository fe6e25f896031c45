// Package taint overlays taint tracking on the context-sensitive points-to
// solver: rules loaded from a YAML file decide where taint objects are
// born, how they transfer across calls, and which argument positions count
// as sinks.
package taint

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/dkellner/pinpoint/internal/analysis"
	"github.com/dkellner/pinpoint/internal/ir"
)

// Transfer endpoints: non-negative values are argument indices.
const (
	EndpointBase   = -1
	EndpointResult = -2
)

// Source marks a method whose result is tainted with the given type.
type Source struct {
	Method *ir.Method
	Type   ir.Type
}

// Sink marks an argument position of a method as taint-sensitive.
type Sink struct {
	Method *ir.Method
	Index  int
}

// Transfer propagates taint from one endpoint of a call to another,
// re-typing the taint object to Type.
type Transfer struct {
	Method *ir.Method
	From   int
	To     int
	Type   ir.Type
}

// Config is the resolved taint configuration.
type Config struct {
	Sources   []Source
	Sinks     []Sink
	Transfers []Transfer
}

// rawConfig mirrors the YAML structure before names are resolved.
type rawConfig struct {
	Sources []struct {
		Class  string `yaml:"class"`
		Method string `yaml:"method"`
		Type   string `yaml:"type"`
	} `yaml:"sources"`
	Sinks []struct {
		Class  string `yaml:"class"`
		Method string `yaml:"method"`
		Index  int    `yaml:"index"`
	} `yaml:"sinks"`
	Transfers []struct {
		Class  string `yaml:"class"`
		Method string `yaml:"method"`
		From   string `yaml:"from"`
		To     string `yaml:"to"`
		Type   string `yaml:"type"`
	} `yaml:"transfers"`
}

// LoadConfig reads and resolves a taint configuration against p. Rules
// naming unknown methods or types are skipped with a warning; the analysis
// proceeds with whatever resolved.
func LoadConfig(path string, p *ir.Program) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load taint config: %w", err)
	}
	return parseConfig(data, p)
}

func parseConfig(data []byte, p *ir.Program) (*Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse taint config: %w", err)
	}

	cfg := &Config{}
	for _, s := range raw.Sources {
		m, t, ok := resolveMethodType(p, s.Class, s.Method, s.Type)
		if !ok {
			continue
		}
		cfg.Sources = append(cfg.Sources, Source{Method: m, Type: t})
	}
	for _, s := range raw.Sinks {
		m, err := p.MethodAt(s.Class, s.Method)
		if err != nil {
			analysis.Warnf("[taint] skipping sink: %v", err)
			continue
		}
		cfg.Sinks = append(cfg.Sinks, Sink{Method: m, Index: s.Index})
	}
	for _, s := range raw.Transfers {
		m, t, ok := resolveMethodType(p, s.Class, s.Method, s.Type)
		if !ok {
			continue
		}
		from, err := parseEndpoint(s.From)
		if err != nil {
			analysis.Warnf("[taint] skipping transfer on %s: %v", m, err)
			continue
		}
		to, err := parseEndpoint(s.To)
		if err != nil {
			analysis.Warnf("[taint] skipping transfer on %s: %v", m, err)
			continue
		}
		cfg.Transfers = append(cfg.Transfers, Transfer{Method: m, From: from, To: to, Type: t})
	}
	return cfg, nil
}

func resolveMethodType(p *ir.Program, class, method, typeName string) (*ir.Method, ir.Type, bool) {
	m, err := p.MethodAt(class, method)
	if err != nil {
		analysis.Warnf("[taint] skipping rule: %v", err)
		return nil, nil, false
	}
	t, ok := p.Hierarchy.TypeNamed(typeName)
	if !ok {
		analysis.Warnf("[taint] skipping rule on %s: unknown type %q", m, typeName)
		return nil, nil, false
	}
	return m, t, true
}

func parseEndpoint(s string) (int, error) {
	switch s {
	case "base":
		return EndpointBase, nil
	case "result":
		return EndpointResult, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("bad endpoint %q", s)
	}
	return i, nil
}

func (c *Config) sourceTypeOf(m *ir.Method) (ir.Type, bool) {
	for _, s := range c.Sources {
		if s.Method == m {
			return s.Type, true
		}
	}
	return nil, false
}

func (c *Config) sinkIndexesOf(m *ir.Method) []int {
	var idxs []int
	for _, s := range c.Sinks {
		if s.Method == m {
			idxs = append(idxs, s.Index)
		}
	}
	return idxs
}

func (c *Config) transfersOf(m *ir.Method) []Transfer {
	var ts []Transfer
	for _, t := range c.Transfers {
		if t.Method == m {
			ts = append(ts, t)
		}
	}
	return ts
}
