package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletion(t *testing.T) {
	tests := []struct {
		shell string
		want  []string
	}{
		{shell: "bash", want: []string{"# bash completion for gpumon", "__gpumon_debug"}},
		{shell: "zsh", want: []string{"#compdef gpumon", "_gpumon()"}},
		{shell: "fish", want: []string{"complete -c gpumon"}},
		{shell: "powershell", want: []string{"Register-ArgumentCompleter"}},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			output, err := executeCommand(t, "completion", tt.shell)
			require.NoError(t, err)

			for _, w := range tt.want {
				assert.Contains(t, output, w)
			}
		})
	}
}

func TestCompletionRejectsUnknownShell(t *testing.T) {
	_, err := executeCommand(t, "completion", "tcsh")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid argument "tcsh"`)
}

func TestCompletionRequiresOneShell(t *testing.T) {
	_, err := executeCommand(t, "completion")
	require.Error(t, err)
}
