package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsAreRegistered(t *testing.T) {
	cmds := commands()

	for _, name := range []string{"migrate", "db-seed", "db-reset", "approve", "list-pending"} {
		cmd, ok := cmds[name]
		require.True(t, ok, "command %q missing", name)
		assert.Equal(t, name, cmd.name)
		assert.NotEmpty(t, cmd.description)
		assert.NotNil(t, cmd.run)
	}
}

func TestApproveRequiresEmail(t *testing.T) {
	err := runApprove(&commandContext{}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "-email is required")
}
