package ffmpeg

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"audio-converter/domain/conversion"
)

// --- Mock implementations for testing ---

type mockFileChecker struct {
	files map[string]bool
}

func (m *mockFileChecker) IsFile(path string) bool { return m.files[path] }
func (m *mockFileChecker) IsDir(path string) bool  { return false }

type mockConfirmer struct {
	answer  bool
	prompts []string
	notices []string
}

func (m *mockConfirmer) Confirm(title, message string) bool {
	m.prompts = append(m.prompts, title)
	return m.answer
}

func (m *mockConfirmer) Notify(title, message string) {
	m.notices = append(m.notices, title)
}

type mockCommandRunner struct {
	runCalls [][]string
	runErr   error
	onRun    func()
	output   []byte
	outErr   error
}

func (m *mockCommandRunner) Run(ctx context.Context, name string, args ...string) error {
	m.runCalls = append(m.runCalls, append([]string{name}, args...))
	if m.onRun != nil {
		m.onRun()
	}
	return m.runErr
}

func (m *mockCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return m.output, m.outErr
}

type mockLauncher struct {
	calls    [][]string
	err      error
	onLaunch func()
}

func (m *mockLauncher) Launch(name string, args ...string) error {
	m.calls = append(m.calls, append([]string{name}, args...))
	if m.onLaunch != nil {
		m.onLaunch()
	}
	return m.err
}

// locatorFixture bundles the fakes behind one Locator
type locatorFixture struct {
	baseDir   string
	pathTools map[string]string
	files     *mockFileChecker
	confirmer *mockConfirmer
	runner    *mockCommandRunner
	launcher  *mockLauncher
}

func newLocatorFixture(t *testing.T) *locatorFixture {
	return &locatorFixture{
		baseDir:   t.TempDir(),
		pathTools: map[string]string{},
		files:     &mockFileChecker{files: map[string]bool{}},
		confirmer: &mockConfirmer{},
		runner:    &mockCommandRunner{},
		launcher:  &mockLauncher{},
	}
}

func (f *locatorFixture) locator(goos string, extra ...LocatorOption) *Locator {
	opts := []LocatorOption{
		WithGOOS(goos),
		WithBaseDir(f.baseDir),
		WithLookPath(func(name string) (string, error) {
			if p, ok := f.pathTools[name]; ok {
				return p, nil
			}
			return "", errors.New("executable file not found in $PATH")
		}),
		WithLocatorFileChecker(f.files),
		WithConfirmer(f.confirmer),
		WithLocatorCommandRunner(f.runner),
		WithConsoleLauncher(f.launcher),
		WithLocatorLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return NewLocator(append(opts, extra...)...)
}

func TestExecutableName(t *testing.T) {
	if got := ExecutableName("windows"); got != "ffmpeg.exe" {
		t.Errorf("ExecutableName(windows) = %q, want ffmpeg.exe", got)
	}
	for _, goos := range []string{"linux", "darwin", "freebsd"} {
		if got := ExecutableName(goos); got != "ffmpeg" {
			t.Errorf("ExecutableName(%s) = %q, want ffmpeg", goos, got)
		}
	}
}

func TestLocator_Probe(t *testing.T) {
	tests := []struct {
		name  string
		goos  string
		setup func(f *locatorFixture) string
	}{
		{
			name: "bundled binary",
			goos: "linux",
			setup: func(f *locatorFixture) string {
				p := filepath.Join(f.baseDir, "ffmpeg")
				f.files.files[p] = true
				return p
			},
		},
		{
			name: "bundled windows binary",
			goos: "windows",
			setup: func(f *locatorFixture) string {
				p := filepath.Join(f.baseDir, "ffmpeg.exe")
				f.files.files[p] = true
				return p
			},
		},
		{
			name: "bundled binary wins over search path",
			goos: "darwin",
			setup: func(f *locatorFixture) string {
				p := filepath.Join(f.baseDir, "ffmpeg")
				f.files.files[p] = true
				f.pathTools["ffmpeg"] = filepath.Join(f.baseDir, "bin", "ffmpeg")
				return p
			},
		},
		{
			name: "search path",
			goos: "linux",
			setup: func(f *locatorFixture) string {
				p := filepath.Join(f.baseDir, "bin", "ffmpeg")
				f.pathTools["ffmpeg"] = p
				return p
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLocatorFixture(t)
			want := tt.setup(f)

			got, err := f.locator(tt.goos).Locate(context.Background())
			if err != nil {
				t.Fatalf("Locate() unexpected error: %v", err)
			}
			if got != want {
				t.Errorf("Locate() = %q, want %q", got, want)
			}
			if len(f.confirmer.prompts) != 0 || len(f.confirmer.notices) != 0 {
				t.Errorf("expected no user interaction, got prompts=%v notices=%v", f.confirmer.prompts, f.confirmer.notices)
			}
		})
	}
}

func TestLocator_ExplicitToolPath(t *testing.T) {
	f := newLocatorFixture(t)
	explicit := filepath.Join(f.baseDir, "custom", "ffmpeg")
	f.files.files[explicit] = true
	f.pathTools["ffmpeg"] = filepath.Join(f.baseDir, "bin", "ffmpeg")

	got, err := f.locator("linux", WithToolPath(explicit)).Locate(context.Background())
	if err != nil {
		t.Fatalf("Locate() unexpected error: %v", err)
	}
	if got != explicit {
		t.Errorf("Locate() = %q, want %q", got, explicit)
	}
}

func TestLocator_ExplicitToolPathMissingFallsBack(t *testing.T) {
	f := newLocatorFixture(t)
	onPath := filepath.Join(f.baseDir, "bin", "ffmpeg")
	f.pathTools["ffmpeg"] = onPath

	got, err := f.locator("linux", WithToolPath(filepath.Join(f.baseDir, "gone"))).Locate(context.Background())
	if err != nil {
		t.Fatalf("Locate() unexpected error: %v", err)
	}
	if got != onPath {
		t.Errorf("Locate() = %q, want %q", got, onPath)
	}
}

func TestLocator_Linux_NoInstallPathway(t *testing.T) {
	f := newLocatorFixture(t)
	f.confirmer.answer = true

	_, err := f.locator("linux").Locate(context.Background())
	if !errors.Is(err, conversion.ErrToolNotFound) {
		t.Fatalf("Locate() error = %v, want ErrToolNotFound", err)
	}
	if len(f.confirmer.prompts) != 0 {
		t.Errorf("expected no prompts, got %v", f.confirmer.prompts)
	}
	assertNotices(t, f, "FFmpeg not available")
}

func TestLocator_Darwin(t *testing.T) {
	tests := []struct {
		name        string
		hasBrew     bool
		answer      bool
		runErr      error
		installs    bool
		wantFound   bool
		wantRuns    int
		wantNotices []string
	}{
		{
			name:        "brew missing",
			wantNotices: []string{"Homebrew not found", "FFmpeg not available"},
		},
		{
			name:        "install declined",
			hasBrew:     true,
			answer:      false,
			wantNotices: []string{"FFmpeg not available"},
		},
		{
			name:      "install succeeds",
			hasBrew:   true,
			answer:    true,
			installs:  true,
			wantFound: true,
			wantRuns:  1,
		},
		{
			name:        "install ran but ffmpeg still missing",
			hasBrew:     true,
			answer:      true,
			wantRuns:    1,
			wantNotices: []string{"FFmpeg not available"},
		},
		{
			name:        "brew could not be started",
			hasBrew:     true,
			answer:      true,
			runErr:      errors.New("permission denied"),
			wantRuns:    1,
			wantNotices: []string{"Install error", "FFmpeg not available"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLocatorFixture(t)
			brew := filepath.Join(f.baseDir, "brew")
			installed := filepath.Join(f.baseDir, "Cellar", "ffmpeg")
			if tt.hasBrew {
				f.pathTools["brew"] = brew
			}
			f.confirmer.answer = tt.answer
			f.runner.runErr = tt.runErr
			if tt.installs {
				f.runner.onRun = func() { f.pathTools["ffmpeg"] = installed }
			}

			got, err := f.locator("darwin").Locate(context.Background())

			if tt.wantFound {
				if err != nil {
					t.Fatalf("Locate() unexpected error: %v", err)
				}
				if got != installed {
					t.Errorf("Locate() = %q, want %q", got, installed)
				}
			} else if !errors.Is(err, conversion.ErrToolNotFound) {
				t.Fatalf("Locate() error = %v, want ErrToolNotFound", err)
			}

			if len(f.runner.runCalls) != tt.wantRuns {
				t.Fatalf("brew runs = %d, want %d", len(f.runner.runCalls), tt.wantRuns)
			}
			if tt.wantRuns > 0 {
				want := []string{brew, "install", "ffmpeg"}
				if !reflect.DeepEqual(f.runner.runCalls[0], want) {
					t.Errorf("brew call = %v, want %v", f.runner.runCalls[0], want)
				}
			}
			assertNotices(t, f, tt.wantNotices...)
		})
	}
}

func TestLocator_Windows(t *testing.T) {
	tests := []struct {
		name        string
		hasScript   bool
		answer      bool
		launchErr   error
		installs    bool
		wantFound   bool
		wantPrompts int
		wantLaunch  int
		wantNotices []string
	}{
		{
			name:        "no installer script",
			answer:      true,
			wantNotices: []string{"FFmpeg Missing"},
		},
		{
			name:        "installer declined",
			hasScript:   true,
			wantPrompts: 1,
			wantNotices: []string{"FFmpeg Missing"},
		},
		{
			name:        "installer finishes before re-probe",
			hasScript:   true,
			answer:      true,
			installs:    true,
			wantFound:   true,
			wantPrompts: 1,
			wantLaunch:  1,
		},
		{
			name:        "installer still running at re-probe",
			hasScript:   true,
			answer:      true,
			wantPrompts: 1,
			wantLaunch:  1,
			wantNotices: []string{"FFmpeg Missing"},
		},
		{
			name:        "installer launch fails",
			hasScript:   true,
			answer:      true,
			launchErr:   errors.New("cmd not found"),
			wantPrompts: 1,
			wantLaunch:  1,
			wantNotices: []string{"Installer error", "FFmpeg Missing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLocatorFixture(t)
			script := filepath.Join(f.baseDir, InstallerScript)
			bundled := filepath.Join(f.baseDir, "ffmpeg.exe")
			f.files.files[script] = tt.hasScript
			f.confirmer.answer = tt.answer
			f.launcher.err = tt.launchErr
			if tt.installs {
				f.launcher.onLaunch = func() { f.files.files[bundled] = true }
			}

			got, err := f.locator("windows").Locate(context.Background())

			if tt.wantFound {
				if err != nil {
					t.Fatalf("Locate() unexpected error: %v", err)
				}
				if got != bundled {
					t.Errorf("Locate() = %q, want %q", got, bundled)
				}
			} else if !errors.Is(err, conversion.ErrToolNotFound) {
				t.Fatalf("Locate() error = %v, want ErrToolNotFound", err)
			}

			if len(f.confirmer.prompts) != tt.wantPrompts {
				t.Errorf("prompts = %v, want %d", f.confirmer.prompts, tt.wantPrompts)
			}
			if len(f.launcher.calls) != tt.wantLaunch {
				t.Fatalf("launches = %d, want %d", len(f.launcher.calls), tt.wantLaunch)
			}
			if tt.wantLaunch > 0 {
				want := []string{"cmd", "/c", script}
				if !reflect.DeepEqual(f.launcher.calls[0], want) {
					t.Errorf("launch = %v, want %v", f.launcher.calls[0], want)
				}
			}
			assertNotices(t, f, tt.wantNotices...)
		})
	}
}

func TestLocator_NilConfirmerDeclines(t *testing.T) {
	f := newLocatorFixture(t)
	f.pathTools["brew"] = filepath.Join(f.baseDir, "brew")

	_, err := f.locator("darwin", WithConfirmer(nil)).Locate(context.Background())
	if !errors.Is(err, conversion.ErrToolNotFound) {
		t.Fatalf("Locate() error = %v, want ErrToolNotFound", err)
	}
	if len(f.runner.runCalls) != 0 {
		t.Errorf("expected brew not to run without confirmation, got %v", f.runner.runCalls)
	}
}

func TestLocator_DoesNotCache(t *testing.T) {
	f := newLocatorFixture(t)
	loc := f.locator("linux")

	if _, err := loc.Locate(context.Background()); !errors.Is(err, conversion.ErrToolNotFound) {
		t.Fatalf("first Locate() error = %v, want ErrToolNotFound", err)
	}

	onPath := filepath.Join(f.baseDir, "bin", "ffmpeg")
	f.pathTools["ffmpeg"] = onPath

	got, err := loc.Locate(context.Background())
	if err != nil {
		t.Fatalf("second Locate() unexpected error: %v", err)
	}
	if got != onPath {
		t.Errorf("second Locate() = %q, want %q", got, onPath)
	}
}

func TestLocator_Version(t *testing.T) {
	f := newLocatorFixture(t)
	f.runner.output = []byte("ffmpeg version 6.1.1 Copyright (c) 2000-2023\nbuilt with gcc 13\n")

	got, err := f.locator("linux").Version(context.Background(), "/usr/bin/ffmpeg")
	if err != nil {
		t.Fatalf("Version() unexpected error: %v", err)
	}
	if !strings.HasPrefix(got, "ffmpeg version 6.1.1") || strings.Contains(got, "gcc") {
		t.Errorf("Version() = %q, want first line only", got)
	}

	f.runner.outErr = errors.New("exec: not found")
	if _, err := f.locator("linux").Version(context.Background(), "/usr/bin/ffmpeg"); err == nil {
		t.Error("Version() expected error when the binary cannot run")
	}
}

func assertNotices(t *testing.T, f *locatorFixture, want ...string) {
	t.Helper()
	if len(want) == 0 {
		if len(f.confirmer.notices) != 0 {
			t.Errorf("notices = %v, want none", f.confirmer.notices)
		}
		return
	}
	if !reflect.DeepEqual(f.confirmer.notices, want) {
		t.Errorf("notices = %v, want %v", f.confirmer.notices, want)
	}
}
