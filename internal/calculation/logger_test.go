package calculation

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStdLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewStdLogger(&buf, false)

	l.Debugf("hidden %d", 1)
	l.Infof("shown %d", 2)
	l.Warnf("careful")
	l.Errorf("failed: %s", "x")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO shown 2")
	assert.Contains(t, out, "WARN careful")
	assert.Contains(t, out, "ERROR failed: x")

	buf.Reset()
	l.Verbose = true
	l.Debugf("visible %d", 3)
	assert.Contains(t, buf.String(), "DEBUG visible 3")
}
