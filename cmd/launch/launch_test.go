package launch_test

import (
	"testing"

	"arsat/finanzas/cmd/launch"

	"github.com/stretchr/testify/assert"
)

func TestLaunchCommand_Metadata(t *testing.T) {
	assert.Equal(t, "launch", launch.Cmd.Use)
	assert.Contains(t, launch.Cmd.Long, "serve")
	assert.NotNil(t, launch.Cmd.RunE)
}
