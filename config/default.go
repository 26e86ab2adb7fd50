package config

import (
	"fmt"

	"github.com/glimmerfx/glimmer/options"
)

// FromOptions builds the default single-shader pipeline the shader CLI
// flags describe: an info node feeding the shader's resolution, time, and
// pointer uniforms, an optional image texture, an optional FPS overlay
// blended over the shader, and the output sink.
func FromOptions(o *options.Options) (*Config, error) {
	if o.Fragment == "" {
		return nil, fmt.Errorf("no --config and no --fragment given")
	}

	shader := Node{
		Name:     "shader",
		Type:     "shader",
		Vertex:   o.Vertex,
		Fragment: o.Fragment,
		ShaderInputs: []ShaderInput{
			{Node: "info", Port: "resolution", Name: "resolution"},
			{Node: "info", Port: "time", Name: "time"},
			{Node: "info", Port: "pointer", Name: "pointer"},
		},
	}
	if o.Texture != "" {
		shader.ShaderInputs = append(shader.ShaderInputs,
			ShaderInput{Node: "image", Port: "texture", Name: "texture"})
	}

	c := &Config{
		Maximize:   o.Maximize,
		VSync:      o.VSync,
		Fullscreen: o.Fullscreen,
	}
	c.Nodes = append(c.Nodes, Node{Name: "info", Type: "info"})
	if o.Texture != "" {
		c.Nodes = append(c.Nodes, Node{Name: "image", Type: "image", Path: o.Texture})
	}
	c.Nodes = append(c.Nodes, shader)

	sink := "shader"
	if o.ShowFPS {
		c.Nodes = append(c.Nodes, Node{
			Name:     "fps",
			Type:     "fps",
			Color:    [4]float32{1, 1, 1, 1},
			FontName: o.Font,
			FontSize: DefaultFontSize,
			Interval: DefaultInterval,
		})
		c.Nodes = append(c.Nodes, Node{
			Name:        "mix",
			Type:        "blend",
			Operation:   "max",
			BlendInputs: []string{"shader", "fps"},
		})
		sink = "mix"
	}
	c.Nodes = append(c.Nodes, Node{Name: "output", Type: "output", BlendInputs: []string{sink}})
	return c, nil
}
