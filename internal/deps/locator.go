package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strings"

	"vapourbox/internal/services"
)

// Locator resolves the frame engine, the encoder, and the environment
// both run under. Bundled binaries live in <root>/<platform>/ and win over
// anything on PATH.
type Locator struct {
	root     string
	platform string
	goos     string
	lookPath func(string) (string, error)
}

// NewLocator returns a locator rooted at depsDir. An empty depsDir searches
// upward from the running executable for a deps directory that contains a
// platform subdirectory, falling back to ./deps.
func NewLocator(depsDir string) *Locator {
	root := strings.TrimSpace(depsDir)
	if root == "" {
		root = discoverRoot()
	}
	return &Locator{
		root:     root,
		platform: Platform(runtime.GOOS, runtime.GOARCH),
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
	}
}

// Platform returns the deps subdirectory name for an OS/arch pair, e.g.
// "macos-arm64" or "windows-x64".
func Platform(goos, goarch string) string {
	osName := goos
	if goos == "darwin" {
		osName = "macos"
	}
	arch := goarch
	if goarch == "amd64" {
		arch = "x64"
	}
	return osName + "-" + arch
}

var knownPlatforms = []string{
	"macos-arm64", "macos-x64",
	"windows-x64", "windows-arm64",
	"linux-x64", "linux-arm64",
}

func discoverRoot() string {
	exe, err := os.Executable()
	if err != nil {
		return "deps"
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	if root, ok := FindRoot(filepath.Dir(exe)); ok {
		return root
	}
	return "deps"
}

// FindRoot walks upward from start looking for deps/<platform>. On macOS
// app bundles the Contents/deps directory is also accepted.
func FindRoot(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, "deps")
		if hasPlatformDir(candidate) {
			return candidate, true
		}
		bundle := filepath.Join(dir, "Contents", "deps")
		if isDir(bundle) {
			return bundle, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func hasPlatformDir(root string) bool {
	return slices.ContainsFunc(knownPlatforms, func(p string) bool {
		return isDir(filepath.Join(root, p))
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Root returns the dependency root directory.
func (l *Locator) Root() string { return l.root }

// PlatformDir returns the platform-specific bundle directory.
func (l *Locator) PlatformDir() string {
	return filepath.Join(l.root, l.platform)
}

// Bundled reports whether a platform bundle is present.
func (l *Locator) Bundled() bool {
	return isDir(l.PlatformDir())
}

func (l *Locator) windows() bool { return l.goos == "windows" }

func (l *Locator) exe(name string) string {
	if l.windows() {
		return name + ".exe"
	}
	return name
}

// VSPipePath resolves the frame engine binary.
func (l *Locator) VSPipePath() (string, error) {
	dir := filepath.Join(l.PlatformDir(), "vapoursynth")
	candidates := []string{filepath.Join(dir, l.exe("vspipe"))}
	if l.windows() {
		candidates = append([]string{filepath.Join(dir, "VSPipe.exe")}, candidates...)
	}
	return l.resolve("vspipe", dir, candidates)
}

// FFmpegPath resolves the encoder binary.
func (l *Locator) FFmpegPath() (string, error) {
	dir := filepath.Join(l.PlatformDir(), "ffmpeg")
	return l.resolve("ffmpeg", dir, []string{filepath.Join(dir, l.exe("ffmpeg"))})
}

func (l *Locator) resolve(name, dir string, candidates []string) (string, error) {
	for _, candidate := range candidates {
		if isFile(candidate) {
			return candidate, nil
		}
	}
	if path, err := l.lookPath(name); err == nil {
		return path, nil
	}
	return "", services.Wrap(services.ErrNotFound, name, "locate", fmt.Sprintf("not found in %s or PATH", dir), nil)
}

// PythonHome returns the bundled interpreter root.
func (l *Locator) PythonHome() string {
	switch l.goos {
	case "windows":
		return filepath.Join(l.PlatformDir(), "vapoursynth")
	case "darwin":
		return filepath.Join(l.PlatformDir(), "python", "Python.framework", "Versions", "Current")
	default:
		return filepath.Join(l.PlatformDir(), "python")
	}
}

// PythonPath returns the module search path for the bundled interpreter.
func (l *Locator) PythonPath() string {
	var paths []string
	if l.windows() {
		paths = append(paths, filepath.Join(l.PlatformDir(), "vapoursynth", "Lib", "site-packages"))
	} else {
		paths = append(paths, filepath.Join(l.PlatformDir(), "python-packages"))
		matches, _ := filepath.Glob(filepath.Join(l.PythonHome(), "lib", "python3*", "site-packages"))
		// Newest interpreter first.
		sort.Sort(sort.Reverse(sort.StringSlice(matches)))
		paths = append(paths, matches...)
	}
	return strings.Join(paths, l.listSeparator())
}

// PluginPath returns the frame-engine plugin directory.
func (l *Locator) PluginPath() string {
	if l.windows() {
		return filepath.Join(l.PlatformDir(), "vapoursynth", "vs-plugins")
	}
	return filepath.Join(l.PlatformDir(), "vapoursynth", "plugins")
}

// NNEDI3WeightsPath returns the neural interpolator weights file.
func (l *Locator) NNEDI3WeightsPath() string {
	if l.windows() {
		return filepath.Join(l.PluginPath(), "nnedi3_weights.bin")
	}
	return filepath.Join(l.PlatformDir(), "resources", "NNEDI3CL", "nnedi3_weights.bin")
}

func (l *Locator) binDirs() []string {
	dirs := []string{
		filepath.Join(l.PlatformDir(), "ffmpeg"),
		filepath.Join(l.PlatformDir(), "vapoursynth"),
	}
	if !l.windows() {
		dirs = append(dirs, filepath.Join(l.PythonHome(), "bin"))
	}
	return dirs
}

func (l *Locator) listSeparator() string {
	if l.windows() {
		return ";"
	}
	return ":"
}

// Variables returns the overrides applied to child processes. Interpreter
// and plugin paths are only set when a platform bundle exists so a
// system-wide install keeps its own configuration.
func (l *Locator) Variables() map[string]string {
	vars := map[string]string{"PYTHONNOUSERSITE": "1"}
	if !l.Bundled() {
		return vars
	}
	vars["PYTHONHOME"] = l.PythonHome()
	vars["PYTHONPATH"] = l.PythonPath()
	vars["VAPOURSYNTH_PLUGIN_PATH"] = l.PluginPath()
	vars["NNEDI3CL_WEIGHTS_PATH"] = l.NNEDI3WeightsPath()

	path := strings.Join(l.binDirs(), l.listSeparator())
	if existing := os.Getenv("PATH"); existing != "" {
		path += l.listSeparator() + existing
	}
	vars["PATH"] = path
	if l.goos == "darwin" {
		vars["DYLD_LIBRARY_PATH"] = filepath.Join(l.PlatformDir(), "vapoursynth")
	}
	return vars
}

// Environment returns the current process environment with Variables
// applied, suitable for exec.Cmd.Env.
func (l *Locator) Environment() []string {
	vars := l.Variables()
	env := make([]string, 0, len(os.Environ())+len(vars))
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if _, overridden := vars[key]; overridden {
			continue
		}
		env = append(env, kv)
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		env = append(env, key+"="+vars[key])
	}
	return env
}

// Check reports the status of every dependency the worker uses.
func (l *Locator) Check() []Status {
	var reqs []Requirement
	vspipe, err := l.VSPipePath()
	if err != nil {
		vspipe = l.exe("vspipe")
	}
	ffmpeg, err := l.FFmpegPath()
	if err != nil {
		ffmpeg = l.exe("ffmpeg")
	}
	reqs = append(reqs,
		Requirement{Name: "VapourSynth", Command: vspipe, Description: "Frame engine (vspipe)"},
		Requirement{Name: "FFmpeg", Command: ffmpeg, Description: "Encoder and preview extraction"},
	)
	results := CheckBinaries(reqs)
	results = append(results,
		CheckPath("Plugins", l.PluginPath(), "VapourSynth plugin directory", !l.Bundled()),
		CheckPath("NNEDI3CL weights", l.NNEDI3WeightsPath(), "Weights for OpenCL interpolation", true),
	)
	return results
}
