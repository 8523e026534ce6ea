package cli

import (
	"bufio"
	"bytes"
	"context"
	stdErrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NamanBalaji/ravenmagnet/internal/config"
	"github.com/NamanBalaji/ravenmagnet/internal/errors"
	"github.com/NamanBalaji/ravenmagnet/internal/repository"
	"github.com/NamanBalaji/ravenmagnet/pkg/magnet"
)

const (
	nightURI    = "magnet:?xt=urn:btih:95028fb1ef3059321eac737f7d583c2a0eeda130&dn=Night.of.the.Living.Dead.1968"
	nightRecord = "4d41474e001495028fb1ef3059321eac737f7d583c2a0eeda130000000000000"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

type harness struct {
	app    *App
	out    *bytes.Buffer
	errOut *bytes.Buffer
	dir    string
}

func newHarness(t *testing.T, input string) *harness {
	t.Helper()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DataDir = dir

	h := &harness{out: &bytes.Buffer{}, errOut: &bytes.Buffer{}, dir: dir}
	h.app = New(&cfg)
	h.app.In = strings.NewReader(input)
	h.app.Out = h.out
	h.app.ErrOut = h.errOut

	return h
}

func (h *harness) run(args ...string) error {
	return h.app.Run(context.Background(), args)
}

func TestSimpleCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"encode", []string{"encode", "95028fb1ef3059321eac737f7d583c2a0eeda130", "btih"}, nightRecord + "\n"},
		{"decode", []string{"decode", nightRecord}, "btih 95028fb1ef3059321eac737f7d583c2a0eeda130\n"},
		{"parse", []string{"parse", nightURI}, "type: btih\nhash: 95028fb1ef3059321eac737f7d583c2a0eeda130\nfilename: Night.of.the.Living.Dead.1968\n"},
		{"render", []string{"render", "tth", "7n5oamrngmsseue3orhokwn4wwiq5x4ebootljy=", "f"}, "magnet:?xt=urn:tree:tiger:7N5OAMRNGMSSEUE3ORHOKWN4WWIQ5X4EBOOTLJY=&dn=f\n"},
		{"render alias", []string{"render", "tree:tiger", "7N5OAMRNGMSSEUE3ORHOKWN4WWIQ5X4EBOOTLJY="}, "magnet:?xt=urn:tree:tiger:7N5OAMRNGMSSEUE3ORHOKWN4WWIQ5X4EBOOTLJY=&dn=\n"},
		{"pack", []string{"pack", nightURI}, nightRecord + "\n"},
		{"uri", []string{"uri", "URN/BTIH#UBUNTU.ISO", nightRecord}, "magnet:?xt=urn:btih:95028fb1ef3059321eac737f7d583c2a0eeda130&dn=UBUNTU.ISO\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "")
			require.NoError(t, h.run(tt.args...))
			assert.Equal(t, tt.want, h.out.String())
		})
	}
}

func TestTypes(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.run("types"))

	out := h.out.String()
	for _, ht := range magnet.HashTypes() {
		assert.Contains(t, out, ht.Name)
	}
	assert.Contains(t, out, "base32")
}

func TestTypesAlignedWithColor(t *testing.T) {
	profile := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI256)
	t.Cleanup(func() { lipgloss.SetColorProfile(profile) })

	h := newHarness(t, "")
	require.NoError(t, h.run("types"))

	out := h.out.String()
	assert.Contains(t, out, "\x1b[")

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Greater(t, len(lines), len(magnet.HashTypes()))

	width := lipgloss.Width(lines[0])
	for _, line := range lines {
		assert.Equal(t, width, lipgloss.Width(line), "line %q", line)
	}
}

func TestHelp(t *testing.T) {
	for _, args := range [][]string{nil, {"help"}, {"--help"}, {"-h"}} {
		h := newHarness(t, "")
		require.NoError(t, h.run(args...))
		assert.Contains(t, h.out.String(), "Usage: ravenmagnet")
		assert.Contains(t, h.out.String(), "recover MAIN/SUB")
	}
}

func TestInputErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown command", []string{"frobnicate"}, errors.ErrUsage},
		{"unknown flag", []string{"--nope", "types"}, errors.ErrUsage},
		{"missing args", []string{"encode", "abc"}, errors.ErrUsage},
		{"bad type", []string{"encode", "95028fb1ef3059321eac737f7d583c2a0eeda130", "md5"}, magnet.ErrInvalidHashType},
		{"bad record", []string{"decode", "00"}, magnet.ErrMalformedRecord},
		{"bad uri", []string{"parse", "magnet:urn:btih:00"}, magnet.ErrMalformedURI},
		{"bad render type", []string{"render", "md5", "00"}, magnet.ErrInvalidHashType},
		{"short hash", []string{"pack", "magnet:?xt=urn:btih:95028fb1ef3059&dn=x"}, magnet.ErrHashLengthMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newHarness(t, "").run(tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, errors.ExitInput, errors.ExitCode(err))
		})
	}
}

func TestIssueConfirmed(t *testing.T) {
	h := newHarness(t, "y\n")

	require.NoError(t, h.run("issue", "urn", "btih", nightURI))

	out := h.out.String()
	assert.Contains(t, out, "Asset:   URN/BTIH#NIGHT.OF.THE.LIVING.DEAD.1968")
	assert.Contains(t, out, "Record:  "+nightRecord)
	assert.Contains(t, out, "Publish URN/BTIH#NIGHT.OF.THE.LIVING.DEAD.1968? [y/N]")
	assert.Contains(t, out, "Issued URN/BTIH#NIGHT.OF.THE.LIVING.DEAD.1968")

	_, err := os.Stat(filepath.Join(h.dir, "mainnet.db"))
	assert.NoError(t, err)
}

func TestIssueDeclined(t *testing.T) {
	for _, input := range []string{"n\n", "\n", "", "maybe\n"} {
		h := newHarness(t, input)

		err := h.run("issue", "URN", "BTIH", nightURI)
		require.Error(t, err)
		assert.True(t, errors.IsAborted(err))
		assert.Equal(t, errors.ExitAborted, errors.ExitCode(err))
		assert.NotContains(t, h.out.String(), "Issued")

		h.out.Reset()
		require.NoError(t, h.run("recover", "URN/BTIH"))
		assert.Empty(t, h.out.String())
	}
}

func TestIssueThenRecover(t *testing.T) {
	h := newHarness(t, "")

	require.NoError(t, h.run("--yes", "issue", "URN", "BTIH", nightURI))
	require.NoError(t, h.run("-y", "issue", "--name", "tiger", "URN", "BTIH",
		"magnet:?xt=urn:tree:tiger:7N5OAMRNGMSSEUE3ORHOKWN4WWIQ5X4EBOOTLJY"))
	assert.NotContains(t, h.out.String(), "[y/N]")

	err := h.run("--yes", "issue", "URN", "BTIH", nightURI)
	assert.ErrorIs(t, err, repository.ErrAssetExists)
	assert.Equal(t, errors.ExitStorage, errors.ExitCode(err))

	h.out.Reset()
	require.NoError(t, h.run("recover", "urn/btih"))
	assert.Equal(t,
		"magnet:?xt=urn:btih:95028fb1ef3059321eac737f7d583c2a0eeda130&dn=NIGHT.OF.THE.LIVING.DEAD.1968\n"+
			"magnet:?xt=urn:tree:tiger:7N5OAMRNGMSSEUE3ORHOKWN4WWIQ5X4EBOOTLJY=&dn=TIGER\n",
		h.out.String())
	assert.Contains(t, h.errOut.String(), "Recovering links with parent asset name URN/BTIH")
}

func TestIssueExistingAssetFailsBeforePrompt(t *testing.T) {
	h := newHarness(t, "y\ny\n")

	require.NoError(t, h.run("issue", "URN", "BTIH", nightURI))

	h.out.Reset()
	err := h.run("issue", "URN", "BTIH", nightURI)
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrAssetExists)
	assert.Equal(t, errors.ExitStorage, errors.ExitCode(err))
	assert.NotContains(t, h.out.String(), "[y/N]")
	assert.NotContains(t, h.out.String(), "Issued")
}

func TestTestnetUsesSeparateLedger(t *testing.T) {
	h := newHarness(t, "")

	require.NoError(t, h.run("--testnet", "--yes", "issue", "URN", "BTIH", nightURI))

	_, err := os.Stat(filepath.Join(h.dir, "testnet.db"))
	require.NoError(t, err)

	h.out.Reset()
	require.NoError(t, h.run("recover", "URN/BTIH"))
	assert.Empty(t, h.out.String())
}

func TestDBFlag(t *testing.T) {
	h := newHarness(t, "")
	path := filepath.Join(t.TempDir(), "nested", "custom.db")

	require.NoError(t, h.run("--db", path, "--yes", "issue", "URN", "BTIH", nightURI))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestOpenFailure(t *testing.T) {
	h := newHarness(t, "")
	boom := stdErrors.New("locked")
	h.app.Open = func(string, time.Duration) (repository.Repository, error) { return nil, boom }

	err := h.run("recover", "URN/BTIH")
	assert.ErrorIs(t, err, boom)
	assert.True(t, errors.IsStorageError(err))
}

func TestDebugWritesLog(t *testing.T) {
	h := newHarness(t, "")

	require.NoError(t, h.run("--debug", "types"))

	b, err := os.ReadFile(filepath.Join(h.dir, "ravenmagnet.log"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "Running types")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"y", true},
		{"no\n", false},
		{"", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		got, err := Confirm(bufioReader(tt.input), &out, "Publish?")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Equal(t, "Publish? [y/N] ", out.String())
	}
}

func TestPrintError(t *testing.T) {
	var out bytes.Buffer
	PrintError(&out, stdErrors.New("boom"))
	assert.Equal(t, "error: boom\n", out.String())
}

func bufioReader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}
