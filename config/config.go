// Package config models the YAML pipeline description: an ordered set of
// node declarations plus window attributes. Declaration order is preserved
// because the graph uses it to break topological-sort ties.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults for text-ish nodes.
const (
	DefaultFontSize = 20.0
	DefaultInterval = 1.0
)

// Config is one parsed pipeline description.
type Config struct {
	Nodes      []Node
	Maximize   bool
	VSync      bool
	Fullscreen bool
}

// ShaderInput wires a source node/port to a uniform name of a shader node.
type ShaderInput struct {
	Node string `yaml:"node"`
	Port string `yaml:"port"`
	Name string `yaml:"name"`
}

// FeedbackInput declares one typed slot of a feedback node and the
// node/port whose end-of-frame value it snapshots.
type FeedbackInput struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Node string `yaml:"node"`
	Port string `yaml:"port"`
}

// Node is one node declaration. Only the fields for its Type are
// meaningful.
type Node struct {
	Name string
	Type string

	// image
	Path string

	// shader
	Vertex       string
	Fragment     string
	ShaderInputs []ShaderInput

	// blend
	Operation   string
	BlendInputs []string

	// text / fps
	Text     string
	Position [2]float32
	Color    [4]float32
	FontName string
	FontSize float64
	Interval float64

	// feedback
	FeedbackInputs []FeedbackInput
}

type TextParams struct {
	Text     string      `yaml:"text,omitempty"`
	Position *[2]float32 `yaml:"position,omitempty"`
	Color    *[4]float32 `yaml:"color,omitempty"`
	FontName string      `yaml:"font_name,omitempty"`
	FontSize *float64    `yaml:"font_size,omitempty"`
	Interval *float64    `yaml:"interval,omitempty"`
}

// UnmarshalYAML decodes the per-type parameter shape and applies defaults.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	var head struct {
		Type string `yaml:"type"`
	}
	if err := value.Decode(&head); err != nil {
		return err
	}
	if head.Type == "" {
		return fmt.Errorf("node is missing a type")
	}
	n.Type = head.Type

	switch head.Type {
	case "info", "audio":
		// no parameters
	case "output":
		var p struct {
			Inputs []string `yaml:"inputs"`
		}
		if err := value.Decode(&p); err != nil {
			return err
		}
		n.BlendInputs = p.Inputs
	case "image":
		var p struct {
			Path string `yaml:"path"`
		}
		if err := value.Decode(&p); err != nil {
			return err
		}
		if p.Path == "" {
			return fmt.Errorf("image node is missing path")
		}
		n.Path = p.Path
	case "shader":
		var p struct {
			Vertex   string        `yaml:"vertex"`
			Fragment string        `yaml:"fragment"`
			Inputs   []ShaderInput `yaml:"inputs"`
		}
		if err := value.Decode(&p); err != nil {
			return err
		}
		if p.Vertex == "" || p.Fragment == "" {
			return fmt.Errorf("shader node needs vertex and fragment paths")
		}
		n.Vertex, n.Fragment, n.ShaderInputs = p.Vertex, p.Fragment, p.Inputs
	case "blend":
		var p struct {
			Operation string   `yaml:"operation"`
			Inputs    []string `yaml:"inputs"`
		}
		if err := value.Decode(&p); err != nil {
			return err
		}
		n.Operation, n.BlendInputs = p.Operation, p.Inputs
	case "text", "fps":
		var p TextParams
		if err := value.Decode(&p); err != nil {
			return err
		}
		n.Text = p.Text
		n.FontName = p.FontName
		n.Position = [2]float32{}
		if p.Position != nil {
			n.Position = *p.Position
		}
		n.Color = [4]float32{1, 1, 1, 1}
		if p.Color != nil {
			n.Color = *p.Color
		}
		n.FontSize = DefaultFontSize
		if p.FontSize != nil {
			n.FontSize = *p.FontSize
		}
		n.Interval = DefaultInterval
		if p.Interval != nil {
			n.Interval = *p.Interval
		}
	case "feedback":
		var p struct {
			Inputs []FeedbackInput `yaml:"inputs"`
		}
		if err := value.Decode(&p); err != nil {
			return err
		}
		n.FeedbackInputs = p.Inputs
	default:
		return fmt.Errorf("unknown node type %q", head.Type)
	}
	return nil
}

// MarshalYAML emits the per-type parameter shape so a round trip through
// Marshal and Load yields an equivalent configuration.
func (n Node) MarshalYAML() (any, error) {
	switch n.Type {
	case "image":
		return struct {
			Type string `yaml:"type"`
			Path string `yaml:"path"`
		}{n.Type, n.Path}, nil
	case "shader":
		return struct {
			Type     string        `yaml:"type"`
			Vertex   string        `yaml:"vertex"`
			Fragment string        `yaml:"fragment"`
			Inputs   []ShaderInput `yaml:"inputs,omitempty"`
		}{n.Type, n.Vertex, n.Fragment, n.ShaderInputs}, nil
	case "blend":
		return struct {
			Type      string   `yaml:"type"`
			Operation string   `yaml:"operation"`
			Inputs    []string `yaml:"inputs"`
		}{n.Type, n.Operation, n.BlendInputs}, nil
	case "text", "fps":
		pos, color := n.Position, n.Color
		size, interval := n.FontSize, n.Interval
		out := struct {
			Type       string `yaml:"type"`
			TextParams `yaml:",inline"`
		}{Type: n.Type}
		out.Text = n.Text
		out.FontName = n.FontName
		out.Position = &pos
		out.Color = &color
		out.FontSize = &size
		if n.Type == "fps" {
			out.Interval = &interval
		}
		return out, nil
	case "feedback":
		return struct {
			Type   string          `yaml:"type"`
			Inputs []FeedbackInput `yaml:"inputs"`
		}{n.Type, n.FeedbackInputs}, nil
	case "output":
		return struct {
			Type   string   `yaml:"type"`
			Inputs []string `yaml:"inputs,omitempty"`
		}{n.Type, n.BlendInputs}, nil
	default:
		return struct {
			Type string `yaml:"type"`
		}{n.Type}, nil
	}
}

// UnmarshalYAML walks the nodes mapping through yaml.Node so declaration
// order survives the map decode.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var top struct {
		Nodes      yaml.Node `yaml:"nodes"`
		Maximize   bool      `yaml:"maximize"`
		VSync      bool      `yaml:"vsync"`
		Fullscreen bool      `yaml:"fullscreen"`
	}
	if err := value.Decode(&top); err != nil {
		return err
	}
	c.Maximize, c.VSync, c.Fullscreen = top.Maximize, top.VSync, top.Fullscreen

	if top.Nodes.Kind == 0 {
		return fmt.Errorf("configuration has no nodes")
	}
	if top.Nodes.Kind != yaml.MappingNode {
		return fmt.Errorf("nodes must be a mapping of name to node")
	}
	for i := 0; i+1 < len(top.Nodes.Content); i += 2 {
		key, body := top.Nodes.Content[i], top.Nodes.Content[i+1]
		var node Node
		if err := body.Decode(&node); err != nil {
			return fmt.Errorf("node %q: %w", key.Value, err)
		}
		node.Name = key.Value
		c.Nodes = append(c.Nodes, node)
	}
	return nil
}

// MarshalYAML rebuilds the ordered nodes mapping.
func (c Config) MarshalYAML() (any, error) {
	nodes := &yaml.Node{Kind: yaml.MappingNode}
	for _, n := range c.Nodes {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: n.Name}
		body := &yaml.Node{}
		if err := body.Encode(n); err != nil {
			return nil, err
		}
		nodes.Content = append(nodes.Content, key, body)
	}
	return struct {
		Nodes      *yaml.Node `yaml:"nodes"`
		Maximize   bool       `yaml:"maximize,omitempty"`
		VSync      bool       `yaml:"vsync,omitempty"`
		Fullscreen bool       `yaml:"fullscreen,omitempty"`
	}{nodes, c.Maximize, c.VSync, c.Fullscreen}, nil
}

// Load parses a configuration document.
func Load(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Parse reads and parses the file at path.
func Parse(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	c, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	return c, nil
}

// Marshal serializes the configuration back to YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
