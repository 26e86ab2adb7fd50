// Package options carries the parsed command line. The window subsystem
// consumes the platform attributes; everything else feeds configuration
// loading and the frame driver.
package options

// Options is the parsed command line.
type Options struct {
	ConfigPath string

	// Default-graph flags, mutually exclusive with ConfigPath.
	Vertex   string
	Fragment string
	Texture  string
	ShowFPS  bool
	Font     string

	Width      int
	Height     int
	Maximize   bool
	Fullscreen bool
	VSync      bool
	VSyncSet   bool // the flag was given explicitly and overrides the config

	// Unix window attributes, consumed by the window subsystem.
	Root             bool
	OverrideRedirect bool
	Desktop          bool
	LowerWindow      bool

	// Offline recording.
	Record   bool
	Duration float64
	FPS      int
	Output   string
}
