package instance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagEnabled(t *testing.T) {
	inst := Instance{
		ID:     "i-abc123",
		Region: "us-east-1",
		State:  StateRunning,
		Tags:   map[string]string{"Autostop": "true", "Autostart": "false", "Name": "batch-worker"},
	}

	assert.True(t, inst.TagEnabled("Autostop"))
	assert.False(t, inst.TagEnabled("Autostart"))
	assert.False(t, inst.TagEnabled("Name"))
	assert.False(t, inst.TagEnabled("missing"))
}

func TestTagEnabled_LiteralValueOnly(t *testing.T) {
	inst := Instance{Tags: map[string]string{"Autostop": "True"}}
	assert.False(t, inst.TagEnabled("Autostop"))
}

func TestTagEnabled_NilTags(t *testing.T) {
	assert.False(t, Instance{}.TagEnabled("Autostop"))
}
