// pkg/steps/steps_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Temp directories, FakeRunner, httptest
// PURPOSE: Test step construction and step behavior against a fake runner

package steps_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotrig/pkg/config"
	"github.com/arthur-debert/dotrig/pkg/errors"
	"github.com/arthur-debert/dotrig/pkg/pipeline"
	"github.com/arthur-debert/dotrig/pkg/steps"
	"github.com/arthur-debert/dotrig/pkg/testutil"
)

func newBuilder(t *testing.T, mutate func(cfg *config.Config)) (*steps.Builder, *testutil.Environment, *testutil.FakeRunner) {
	t.Helper()

	env := testutil.NewEnvironment(t)
	cfg, err := config.Load(env.SourceRoot, nil)
	require.NoError(t, err)
	if mutate != nil {
		mutate(cfg)
	}

	runner := testutil.NewFakeRunner()
	return steps.NewBuilder(cfg, env.Paths, runner), env, runner
}

func TestAllOrdering(t *testing.T) {
	b, _, _ := newBuilder(t, nil)

	var names []string
	for _, s := range b.All() {
		names = append(names, s.Name)
	}

	assert.Equal(t, []string{
		"packages",
		"clone spectrwm", "clone dmenu", "clone xtitle",
		"build spectrwm", "build dmenu", "build xtitle",
		"fonts", "wallpapers", "starship",
		"deploy dotfiles",
	}, names)
}

func TestAllHonorsToggles(t *testing.T) {
	b, _, _ := newBuilder(t, func(cfg *config.Config) {
		cfg.Assets.Fonts = false
		cfg.Assets.Wallpapers = false
		cfg.Starship.Enabled = false
	})

	for _, s := range b.All() {
		assert.NotContains(t, []string{"fonts", "wallpapers", "starship"}, s.Name)
	}
}

func TestPackagesStep(t *testing.T) {
	b, _, runner := newBuilder(t, func(cfg *config.Config) {
		cfg.Packages.Names = []string{"xorg-server", "picom"}
	})

	require.NoError(t, b.Packages().Run(context.Background()))

	lines := runner.CallLines()
	require.Len(t, lines, 1)
	assert.Equal(t, "sudo pacman -S --needed --noconfirm xorg-server picom", lines[0])
}

func TestPackagesStepFailure(t *testing.T) {
	b, _, runner := newBuilder(t, nil)
	runner.FailOn("sudo", fmt.Errorf("exit status 1"))

	err := b.Packages().Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrPackageInstall, errors.GetCode(err))
}

func TestPackagesPrebuiltInstalledWhenPresent(t *testing.T) {
	b, env, runner := newBuilder(t, func(cfg *config.Config) {
		cfg.Packages.Names = []string{"git"}
		cfg.Packages.Prebuilt = "extra/tool.pkg.tar.zst"
	})
	pkgFile := env.WriteSourceFile("extra/tool.pkg.tar.zst", "pkg")

	require.NoError(t, b.Packages().Run(context.Background()))

	lines := runner.CallLines()
	require.Len(t, lines, 2)
	assert.Equal(t, "sudo pacman -U --noconfirm "+pkgFile, lines[1])
}

func TestPackagesPrebuiltSkippedWhenAbsent(t *testing.T) {
	b, _, runner := newBuilder(t, func(cfg *config.Config) {
		cfg.Packages.Names = []string{"git"}
		cfg.Packages.Prebuilt = "extra/tool.pkg.tar.zst"
	})

	require.NoError(t, b.Packages().Run(context.Background()))
	assert.Len(t, runner.Calls(), 1)
}

func TestCloneStepInvokesGit(t *testing.T) {
	b, env, runner := newBuilder(t, nil)

	clones := b.Clones()
	require.Len(t, clones, 3)
	require.NoError(t, clones[0].Run(context.Background()))

	lines := runner.CallLines()
	require.Len(t, lines, 1)
	target := env.Paths.ToolDir("spectrwm")
	assert.Equal(t, "git clone https://github.com/conformal/spectrwm.git "+target, lines[0])
}

func TestCloneStepSkipsExistingTarget(t *testing.T) {
	b, env, runner := newBuilder(t, nil)
	env.MkdirSource("tools/spectrwm")

	require.NoError(t, b.Clones()[0].Run(context.Background()))

	// No process was spawned: the clone is treated as already satisfied
	assert.Empty(t, runner.Calls())
}

func TestCloneStepSecondRunIsIdempotent(t *testing.T) {
	b, env, runner := newBuilder(t, nil)

	clone := b.Clones()[0]
	require.NoError(t, clone.Run(context.Background()))
	require.Len(t, runner.Calls(), 1)

	// Simulate git having created the target, then run again
	env.MkdirSource("tools/spectrwm")
	require.NoError(t, clone.Run(context.Background()))
	assert.Len(t, runner.Calls(), 1)
}

func TestCloneStepFailure(t *testing.T) {
	b, _, runner := newBuilder(t, nil)
	runner.FailOn("git", fmt.Errorf("exit status 128"))

	err := b.Clones()[0].Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrClone, errors.GetCode(err))
}

func TestBuildStepRunsCommandsInToolDir(t *testing.T) {
	b, env, runner := newBuilder(t, nil)
	dir := env.MkdirSource("tools/dmenu")

	builds := b.Builds()
	require.Len(t, builds, 3)
	require.NoError(t, builds[1].Run(context.Background()))

	calls := runner.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, dir, calls[0].Dir)
	assert.Equal(t, []string{"-c", "make"}, calls[0].Args)
	assert.Equal(t, []string{"-c", "sudo make install"}, calls[1].Args)
}

func TestBuildStepFailureStopsCommands(t *testing.T) {
	b, env, runner := newBuilder(t, nil)
	env.MkdirSource("tools/dmenu")
	runner.FailOn("sh", fmt.Errorf("exit status 2"))

	err := b.Builds()[1].Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrBuild, errors.GetCode(err))
	assert.Len(t, runner.Calls(), 1)
}

func TestBuildStepRequiresToolDir(t *testing.T) {
	b, env, _ := newBuilder(t, nil)

	// The tool source was never cloned; the runner's precondition check
	// must fail the pipeline naming the directory, before anything runs.
	r := pipeline.NewRunner(pipeline.Options{})
	_, err := r.Run(context.Background(), []pipeline.Step{b.Builds()[1]})

	require.Error(t, err)
	assert.Contains(t, err.Error(), env.Paths.ToolDir("dmenu"))

	var rigErr *errors.RigError
	require.ErrorAs(t, err, &rigErr)
	require.ErrorAs(t, rigErr.Wrapped, &rigErr)
	assert.Equal(t, errors.ErrMissingDir, rigErr.Code)
}

func TestFontsStepSkipsWithoutSourceDir(t *testing.T) {
	b, _, runner := newBuilder(t, nil)

	require.NoError(t, b.Fonts().Run(context.Background()))
	assert.Empty(t, runner.Calls())
}

func TestFontsStepInstallsFonts(t *testing.T) {
	b, env, runner := newBuilder(t, nil)
	env.WriteSourceFile("fonts/Mono/mono.ttf", "font-bytes")

	require.NoError(t, b.Fonts().Run(context.Background()))

	installed := filepath.Join(env.Paths.UserFontsDir(), "Mono", "mono.ttf")
	content, err := os.ReadFile(installed)
	require.NoError(t, err)
	assert.Equal(t, "font-bytes", string(content))

	// fontconfig fragment written
	_, err = os.Stat(env.Paths.FontconfigPath())
	assert.NoError(t, err)

	// font cache refreshed
	lines := runner.CallLines()
	require.Len(t, lines, 1)
	assert.Equal(t, "fc-cache -f", lines[0])
}

func TestWallpapersStepCopiesTree(t *testing.T) {
	b, env, _ := newBuilder(t, nil)
	env.WriteSourceFile("wallpapers/forest.png", "png-bytes")

	require.NoError(t, b.Wallpapers().Run(context.Background()))

	content, err := os.ReadFile(filepath.Join(env.Paths.PicturesDir(), "forest.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))
}

func TestStarshipStepDownloadsAndRuns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("#!/bin/sh\nexit 0\n"))
	}))
	defer server.Close()

	b, env, runner := newBuilder(t, func(cfg *config.Config) {
		cfg.Starship.URL = server.URL
	})

	require.NoError(t, b.Starship().Run(context.Background()))

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "sh", calls[0].Name)
	// script path, then target bin dir, then non-interactive flag
	require.Len(t, calls[0].Args, 4)
	assert.Equal(t, "-b", calls[0].Args[1])
	assert.Equal(t, env.Paths.UserBinDir(), calls[0].Args[2])
	assert.Equal(t, "-y", calls[0].Args[3])
}

func TestStarshipStepDownloadError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	b, _, runner := newBuilder(t, func(cfg *config.Config) {
		cfg.Starship.URL = server.URL
	})

	err := b.Starship().Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrDownload, errors.GetCode(err))
	assert.Empty(t, runner.Calls())
}

func TestDeployStepLinksDotfiles(t *testing.T) {
	b, env, _ := newBuilder(t, nil)
	env.WriteDotfile("bashrc", "export PS1='$ '\n")
	env.WriteDotfile("config/spectrwm/spectrwm.conf", "bar_enabled = 1\n")

	step := b.DeployDotfiles()
	require.NoError(t, step.Run(context.Background()))

	for _, target := range []string{
		filepath.Join(env.Home, ".bashrc"),
		filepath.Join(env.Home, ".config", "spectrwm"),
	} {
		info, err := os.Lstat(target)
		require.NoError(t, err, "target %s", target)
		assert.NotZero(t, info.Mode()&os.ModeSymlink)
	}
}

func TestDeployStepReplacesExistingBashrc(t *testing.T) {
	b, env, _ := newBuilder(t, nil)
	env.WriteDotfile("bashrc", "new")

	target := filepath.Join(env.Home, ".bashrc")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0644))

	require.NoError(t, b.DeployDotfiles().Run(context.Background()))

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))
}
