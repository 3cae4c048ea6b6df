package pipeline

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"vapourbox/internal/services"
)

// process is a started child the controller may still have to kill.
type process struct {
	name string
	cmd  *exec.Cmd

	mu   sync.Mutex
	done bool
}

func (p *process) kill() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.done {
		killProcess(p.cmd)
	}
}

func (p *process) wait() error {
	err := p.cmd.Wait()
	p.mu.Lock()
	p.done = true
	p.mu.Unlock()
	return err
}

func (p *process) finished() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// chain is a frame engine piped into an encoder.
type chain struct {
	frame        *process
	encode       *process
	frameStderr  io.ReadCloser
	encodeStderr io.ReadCloser
	// encodeStdout is set only when the encoder output is captured.
	encodeStdout io.ReadCloser
}

func (ch *chain) kill() {
	ch.frame.kill()
	ch.encode.kill()
}

type chainSpec struct {
	vspipe        string
	frameArgs     []string
	ffmpeg        string
	encodeArgs    []string
	env           []string
	captureStdout bool
}

// startChain spawns both processes connected by an OS pipe. The parent's
// copies of the pipe ends are closed once both children hold them, so the
// encoder sees EOF when the frame engine exits and the frame engine sees a
// broken pipe when the encoder exits.
func (c *Controller) startChain(spec chainSpec) (*chain, error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, services.Wrap(services.ErrStream, "", "create pipe", "", err)
	}
	closePipe := func() {
		_ = pr.Close()
		_ = pw.Close()
	}

	frameCmd := exec.Command(spec.vspipe, spec.frameArgs...) //nolint:gosec
	frameCmd.Env = spec.env
	frameCmd.Stdout = pw
	setProcessGroup(frameCmd)
	frameStderr, err := frameCmd.StderrPipe()
	if err != nil {
		closePipe()
		return nil, services.Wrap(services.ErrStream, StageFrameEngine, "stderr pipe", "", err)
	}

	encodeCmd := exec.Command(spec.ffmpeg, spec.encodeArgs...) //nolint:gosec
	encodeCmd.Env = spec.env
	encodeCmd.Stdin = pr
	setProcessGroup(encodeCmd)
	encodeStderr, err := encodeCmd.StderrPipe()
	if err != nil {
		closePipe()
		closeReaders(frameStderr)
		return nil, services.Wrap(services.ErrStream, StageEncoder, "stderr pipe", "", err)
	}
	var encodeStdout io.ReadCloser
	if spec.captureStdout {
		if encodeStdout, err = encodeCmd.StdoutPipe(); err != nil {
			closePipe()
			closeReaders(frameStderr, encodeStderr)
			return nil, services.Wrap(services.ErrStream, StageEncoder, "stdout pipe", "", err)
		}
	}

	// A failed Start closes the failing command's own pipes but not the
	// encoder's, which was never started.
	if err := frameCmd.Start(); err != nil {
		closePipe()
		closeReaders(encodeStderr, encodeStdout)
		return nil, services.Wrap(services.ErrSpawn, StageFrameEngine, "start", spec.vspipe, err)
	}
	frame := c.track(StageFrameEngine, frameCmd)

	if err := encodeCmd.Start(); err != nil {
		closePipe()
		frame.kill()
		_ = frame.wait()
		c.untrack(frame)
		return nil, services.Wrap(services.ErrSpawn, StageEncoder, "start", spec.ffmpeg, err)
	}
	encode := c.track(StageEncoder, encodeCmd)
	closePipe()

	return &chain{
		frame:        frame,
		encode:       encode,
		frameStderr:  frameStderr,
		encodeStderr: encodeStderr,
		encodeStdout: encodeStdout,
	}, nil
}

func closeReaders(readers ...io.ReadCloser) {
	for _, r := range readers {
		if r != nil {
			_ = r.Close()
		}
	}
}

// release kills and reaps anything the run left behind and forgets both
// processes.
func (c *Controller) release(ch *chain) {
	if ch == nil {
		return
	}
	for _, p := range []*process{ch.frame, ch.encode} {
		if p == nil {
			continue
		}
		if !p.finished() {
			p.kill()
			_ = p.wait()
		}
		c.untrack(p)
	}
}

const maxLineSize = 1 << 20

// newLineScanner splits on either line terminator; encoder stats lines end
// in a bare carriage return.
func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(scanAnyLines)
	return scanner
}

func scanAnyLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		advance := i + 1
		if data[i] == '\r' && i+1 < len(data) && data[i+1] == '\n' {
			advance++
		}
		return advance, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// lineTail keeps the last few diagnostic lines for error messages.
type lineTail struct {
	limit int
	lines []string
}

func newLineTail(limit int) *lineTail {
	return &lineTail{limit: limit}
}

func (t *lineTail) add(line string) {
	if t == nil {
		return
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	t.lines = append(t.lines, line)
	if len(t.lines) > t.limit {
		t.lines = t.lines[len(t.lines)-t.limit:]
	}
}

func (t *lineTail) String() string {
	if t == nil {
		return ""
	}
	return strings.Join(t.lines, " | ")
}

// isProgressLine reports encoder lines that carry only progress data:
// "-progress" key=value pairs and stats lines.
func isProgressLine(line string) bool {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, framePrefix) {
		return true
	}
	key, _, ok := strings.Cut(line, "=")
	return ok && key != "" && !strings.ContainsAny(key, " \t")
}
