package driver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimmerfx/glimmer/graph"
)

func TestFrameErrorConfinesRuntimeFailures(t *testing.T) {
	d := &Driver{}

	require.NoError(t, d.frameError(nil))

	// A failed frame is logged and the loop carries on.
	assert.NoError(t, d.frameError(graph.Errorf(graph.ErrRuntime, "s", "draw failed")))
	assert.NoError(t, d.frameError(graph.Errorf(graph.ErrTransient, "mic", "capture stalled")))

	// Errors from outside the graph's error type default to runtime.
	assert.NoError(t, d.frameError(fmt.Errorf("gl error 0x506")))
}

func TestFrameErrorEndsRunOnFatalKinds(t *testing.T) {
	d := &Driver{}

	conf := graph.Errorf(graph.ErrConfiguration, "mix", "unknown blend operation")
	assert.Equal(t, conf, d.frameError(conf))

	res := graph.Errorf(graph.ErrResource, "s", "texture allocation failed")
	assert.Equal(t, res, d.frameError(res))
}
