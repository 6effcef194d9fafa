package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uaIPhone164 = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.4 Mobile/15E148 Safari/604.1"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "pushgate dev\n", out)
}

func TestGatesCmd(t *testing.T) {
	out, err := execute(t, "gates")
	require.NoError(t, err)
	assert.Contains(t, out, "OS")
	assert.Contains(t, out, "iOS")
	assert.Contains(t, out, "16.5.0")

	path := filepath.Join(t.TempDir(), "gates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
gates:
  - os: iOS
    minimum: "17.0"
    eligible_text: Install first
    upgrade_text: Upgrade first
`), 0o600))

	out, err = execute(t, "gates", path)
	require.NoError(t, err)
	assert.Contains(t, out, "17.0.0")
	assert.Contains(t, out, "Upgrade first")

	_, err = execute(t, "gates", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestExplainCmd(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{
			name:     "iOS browser tab must install",
			args:     []string{"explain", "--ua", uaIPhone164, "--display-mode", "browser"},
			contains: []string{"install_instructions", "Upgrade your iOS to 16.5", "iOS 16.4.0"},
		},
		{
			name:     "installed iOS app shows nothing",
			args:     []string{"explain", "--ua", uaIPhone164, "--standalone", "true"},
			contains: []string{"nothing", "standalone  true"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := execute(t, tc.args...)
			require.NoError(t, err)
			for _, s := range tc.contains {
				assert.Contains(t, out, s)
			}
		})
	}

	_, err := execute(t, "explain")
	require.Error(t, err)
}

func TestQRCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qr.png")

	out, err := execute(t, "qr", "https://example.com/", "-o", path, "--size", "128")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())

	_, err = execute(t, "qr")
	require.Error(t, err)
}
