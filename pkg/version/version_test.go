package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Version+" (commit "+Commit+", built "+Date+")", String())
	assert.Contains(t, String(), "dev")
}
