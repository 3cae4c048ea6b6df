package deps

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vapourbox/internal/services"
)

func writeStub(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
}

func newTestLocator(root, goos string) *Locator {
	return &Locator{
		root:     root,
		platform: Platform(goos, "amd64"),
		goos:     goos,
		lookPath: func(string) (string, error) { return "", errors.New("not on PATH") },
	}
}

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	writeStub(t, present)
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}

	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
}

func TestPlatform(t *testing.T) {
	cases := map[[2]string]string{
		{"darwin", "arm64"}:  "macos-arm64",
		{"darwin", "amd64"}:  "macos-x64",
		{"windows", "amd64"}: "windows-x64",
		{"linux", "arm64"}:   "linux-arm64",
	}
	for in, want := range cases {
		if got := Platform(in[0], in[1]); got != want {
			t.Fatalf("Platform(%s, %s) = %q, want %q", in[0], in[1], got, want)
		}
	}
}

func TestFindRootWalksUpward(t *testing.T) {
	tmp := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmp, "deps", "macos-arm64"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	nested := filepath.Join(tmp, "app", "bin", "release")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	root, ok := FindRoot(nested)
	if !ok {
		t.Fatal("expected deps root to be found")
	}
	if root != filepath.Join(tmp, "deps") {
		t.Fatalf("unexpected root %q", root)
	}
}

func TestFindRootIgnoresDepsWithoutPlatform(t *testing.T) {
	tmp := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmp, "deps", "build"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if root, ok := FindRoot(tmp); ok {
		t.Fatalf("expected no root, got %q", root)
	}
}

func TestVSPipePathPrefersBundle(t *testing.T) {
	root := t.TempDir()
	loc := newTestLocator(root, "linux")
	bundled := filepath.Join(root, "linux-x64", "vapoursynth", "vspipe")
	writeStub(t, bundled)

	got, err := loc.VSPipePath()
	if err != nil {
		t.Fatalf("VSPipePath failed: %v", err)
	}
	if got != bundled {
		t.Fatalf("expected %q, got %q", bundled, got)
	}
}

func TestVSPipePathWindowsName(t *testing.T) {
	root := t.TempDir()
	loc := newTestLocator(root, "windows")
	bundled := filepath.Join(root, "windows-x64", "vapoursynth", "VSPipe.exe")
	writeStub(t, bundled)

	got, err := loc.VSPipePath()
	if err != nil {
		t.Fatalf("VSPipePath failed: %v", err)
	}
	if got != bundled {
		t.Fatalf("expected %q, got %q", bundled, got)
	}
}

func TestFFmpegPathFallsBackToPath(t *testing.T) {
	loc := newTestLocator(t.TempDir(), "linux")
	loc.lookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }

	got, err := loc.FFmpegPath()
	if err != nil {
		t.Fatalf("FFmpegPath failed: %v", err)
	}
	if got != "/usr/bin/ffmpeg" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestMissingBinaryIsNotFound(t *testing.T) {
	loc := newTestLocator(t.TempDir(), "linux")
	_, err := loc.VSPipePath()
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "vspipe") {
		t.Fatalf("expected binary name in error, got %v", err)
	}
}

func TestVariablesWithoutBundle(t *testing.T) {
	loc := newTestLocator(t.TempDir(), "linux")
	vars := loc.Variables()
	if vars["PYTHONNOUSERSITE"] != "1" {
		t.Fatalf("expected PYTHONNOUSERSITE, got %v", vars)
	}
	if _, ok := vars["PYTHONHOME"]; ok {
		t.Fatalf("did not expect PYTHONHOME without a bundle: %v", vars)
	}
}

func TestVariablesForMacBundle(t *testing.T) {
	root := t.TempDir()
	loc := newTestLocator(root, "darwin")
	platformDir := filepath.Join(root, "macos-x64")
	site := filepath.Join(platformDir, "python", "Python.framework", "Versions", "Current", "lib", "python3.11", "site-packages")
	if err := os.MkdirAll(site, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Setenv("PATH", "/usr/bin")

	vars := loc.Variables()
	if vars["PYTHONHOME"] != filepath.Join(platformDir, "python", "Python.framework", "Versions", "Current") {
		t.Fatalf("unexpected PYTHONHOME %q", vars["PYTHONHOME"])
	}
	wantPythonPath := filepath.Join(platformDir, "python-packages") + ":" + site
	if vars["PYTHONPATH"] != wantPythonPath {
		t.Fatalf("PYTHONPATH = %q, want %q", vars["PYTHONPATH"], wantPythonPath)
	}
	if vars["VAPOURSYNTH_PLUGIN_PATH"] != filepath.Join(platformDir, "vapoursynth", "plugins") {
		t.Fatalf("unexpected plugin path %q", vars["VAPOURSYNTH_PLUGIN_PATH"])
	}
	if vars["NNEDI3CL_WEIGHTS_PATH"] != filepath.Join(platformDir, "resources", "NNEDI3CL", "nnedi3_weights.bin") {
		t.Fatalf("unexpected weights path %q", vars["NNEDI3CL_WEIGHTS_PATH"])
	}
	if !strings.HasPrefix(vars["PATH"], filepath.Join(platformDir, "ffmpeg")+":") || !strings.HasSuffix(vars["PATH"], ":/usr/bin") {
		t.Fatalf("unexpected PATH %q", vars["PATH"])
	}
	if vars["DYLD_LIBRARY_PATH"] != filepath.Join(platformDir, "vapoursynth") {
		t.Fatalf("unexpected DYLD_LIBRARY_PATH %q", vars["DYLD_LIBRARY_PATH"])
	}
}

func TestEnvironmentOverridesInheritedValues(t *testing.T) {
	loc := newTestLocator(t.TempDir(), "linux")
	t.Setenv("PYTHONNOUSERSITE", "0")
	t.Setenv("VAPOURBOX_TEST_MARKER", "kept")

	env := loc.Environment()
	var count int
	var kept bool
	for _, kv := range env {
		if strings.HasPrefix(kv, "PYTHONNOUSERSITE=") {
			count++
			if kv != "PYTHONNOUSERSITE=1" {
				t.Fatalf("expected override, got %q", kv)
			}
		}
		if kv == "VAPOURBOX_TEST_MARKER=kept" {
			kept = true
		}
	}
	if count != 1 || !kept {
		t.Fatalf("unexpected environment: count=%d kept=%v", count, kept)
	}
}

func TestCheckReportsBundledBinaries(t *testing.T) {
	root := t.TempDir()
	loc := newTestLocator(root, "linux")
	writeStub(t, filepath.Join(root, "linux-x64", "vapoursynth", "vspipe"))
	t.Setenv("PATH", t.TempDir())

	results := loc.Check()
	if len(results) != 4 {
		t.Fatalf("expected 4 statuses, got %d", len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected vspipe available: %#v", results[0])
	}
	if results[1].Available {
		t.Fatalf("expected ffmpeg missing: %#v", results[1])
	}
}
