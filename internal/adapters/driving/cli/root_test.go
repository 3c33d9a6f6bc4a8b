package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HMaxF/jesoes.com/internal/adapters/driving/tui/tuitest"
	"github.com/HMaxF/jesoes.com/internal/core/domain"
)

// withFixture installs in-memory services holding KJV and AMP, KJV primary.
func withFixture(t *testing.T) *tuitest.Fixture {
	t.Helper()
	fx := tuitest.New(tuitest.Set("KJV"), tuitest.Set("AMP"))
	withServices(t, &Services{Sync: fx.Sync, Reader: fx.Reader, Selection: fx.Selection})
	return fx
}

func withServices(t *testing.T, svc *Services) {
	t.Helper()
	useServices(svc)
	listJSON, secondaryClear, resetYes = false, false, false
	t.Cleanup(func() {
		useServices(&Services{})
		bootstrap = nil
	})
}

// execute runs the root command with args and returns everything written
// to stdout and stderr.
func execute(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "jesoes", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	for _, name := range []string{"config-dir", "data-dir", "verbose", "ephemeral"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestBootstrap_ReceivesFlagsAndCloses(t *testing.T) {
	fx := tuitest.New(tuitest.Set("KJV"))
	withServices(t, &Services{})

	var got Options
	closed := false
	SetBootstrap(func(opts Options) (*Services, error) {
		got = opts
		return &Services{
			Sync:      fx.Sync,
			Reader:    fx.Reader,
			Selection: fx.Selection,
			Close: func() error {
				closed = true
				return nil
			},
		}, nil
	})

	_, err := execute(t, "", "--data-dir", "/tmp/cache", "status")
	globalOpts = Options{}

	require.NoError(t, err)
	assert.Equal(t, "/tmp/cache", got.DataDir)
	assert.True(t, closed)
}

func TestBootstrap_Failure(t *testing.T) {
	withServices(t, &Services{})
	SetBootstrap(func(Options) (*Services, error) {
		return nil, errors.New("no home directory")
	})

	_, err := execute(t, "", "status")

	assert.ErrorContains(t, err, "start-up failed: no home directory")
}

func TestBootstrap_SkippedForVersion(t *testing.T) {
	withServices(t, &Services{})
	called := false
	SetBootstrap(func(Options) (*Services, error) {
		called = true
		return &Services{}, nil
	})

	_, err := execute(t, "", "version")

	require.NoError(t, err)
	assert.False(t, called)
}

func TestEnsureLoaded_DownloadsWhenNothingCached(t *testing.T) {
	fx := tuitest.New()
	withServices(t, &Services{Sync: fx.Sync, Reader: fx.Reader, Selection: fx.Selection})

	out, err := execute(t, "", "text", "1", "1", "1")

	assert.ErrorIs(t, err, domain.ErrNotReady)
	assert.Contains(t, out, "Nothing cached yet")
	assert.Equal(t, 1, fx.Sync.Syncs)
}

func TestEnsureLoaded_StorageHint(t *testing.T) {
	fx := tuitest.New()
	fx.Sync.LoadCachedFunc = func(_ context.Context) (*domain.PassReport, error) {
		return nil, domain.ErrStorageUnavailable
	}
	withServices(t, &Services{Sync: fx.Sync, Reader: fx.Reader, Selection: fx.Selection})

	out, err := execute(t, "", "list")

	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Contains(t, out, "Please run the command again")
	assert.Zero(t, fx.Sync.Syncs)
}
