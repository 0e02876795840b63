package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
}

func TestVersionCmd_Executes(t *testing.T) {
	cleanup := setupCLITest(&mockSyncer{})
	defer cleanup()

	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := execute("version")

	assert.NoError(t, err)
	assert.Contains(t, out, "readfold version test-version-1.0.0")
}

func TestVersionCmd_DisplaysDevByDefault(t *testing.T) {
	cleanup := setupCLITest(&mockSyncer{})
	defer cleanup()

	out, err := execute("version")

	assert.NoError(t, err)
	assert.Contains(t, out, "readfold version dev")
}
