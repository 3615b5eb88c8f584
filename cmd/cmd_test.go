package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "render", "clean", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestVersionCommandText(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "weft "))
}

func TestVersionCommandJSON(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version", "--format", "json"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), `"go_version"`)
}

func TestRenderRequiresArgument(t *testing.T) {
	rootCmd.SetArgs([]string{"render"})
	assert.Error(t, rootCmd.Execute())
}
