package gui

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// LogViewer mirrors stdout and stderr into a read-only text area, so the
// progress lines and warnings printed by the pipeline show up in the window
type LogViewer struct {
	widget.BaseWidget

	container  *fyne.Container
	logEntry   *widget.Entry
	scrollView *container.Scroll

	mu          sync.Mutex
	lines       []string
	maxMessages int

	originalStdout *os.File
	originalStderr *os.File
}

// NewLogViewer creates a log viewer keeping the last 1000 lines
func NewLogViewer() *LogViewer {
	v := &LogViewer{maxMessages: 1000}

	v.logEntry = widget.NewMultiLineEntry()
	v.logEntry.Disable()
	v.logEntry.Wrapping = fyne.TextWrapWord

	v.scrollView = container.NewVScroll(v.logEntry)
	v.scrollView.SetMinSize(fyne.NewSize(0, 120))

	v.container = container.NewBorder(widget.NewLabel("Log:"), nil, nil, nil, v.scrollView)

	v.ExtendBaseWidget(v)
	return v
}

// CreateRenderer implements fyne.Widget
func (v *LogViewer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.container)
}

// StartCapture redirects stdout and stderr through the viewer. Output still
// reaches the original terminal.
func (v *LogViewer) StartCapture() error {
	v.originalStdout = os.Stdout
	v.originalStderr = os.Stderr

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("failed to capture stdout: %w", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdoutR.Close()
		stdoutW.Close()
		return fmt.Errorf("failed to capture stderr: %w", err)
	}

	os.Stdout = stdoutW
	os.Stderr = stderrW
	log.SetOutput(stderrW)

	go v.forward(stdoutR, v.originalStdout)
	go v.forward(stderrR, v.originalStderr)
	return nil
}

// forward copies each line from r to the terminal and the viewer
func (v *LogViewer) forward(r io.ReadCloser, terminal *os.File) {
	defer r.Close()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		fmt.Fprintln(terminal, line)
		if strings.TrimSpace(line) != "" {
			v.AddMessage(line)
		}
	}
}

// StopCapture restores stdout and stderr
func (v *LogViewer) StopCapture() {
	if v.originalStdout != nil {
		os.Stdout.Close()
		os.Stdout = v.originalStdout
		v.originalStdout = nil
	}
	if v.originalStderr != nil {
		os.Stderr.Close()
		os.Stderr = v.originalStderr
		v.originalStderr = nil
	}
	log.SetOutput(os.Stderr)
}

// AddMessage appends a timestamped line and scrolls to it
func (v *LogViewer) AddMessage(message string) {
	v.mu.Lock()
	v.lines = appendCapped(v.lines, fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), message), v.maxMessages)
	text := strings.Join(v.lines, "\n")
	v.mu.Unlock()

	fyne.Do(func() {
		v.logEntry.SetText(text)
		v.scrollView.ScrollToBottom()
	})
}

// appendCapped appends line and drops the oldest lines beyond limit
func appendCapped(lines []string, line string, limit int) []string {
	lines = append(lines, line)
	if len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return lines
}
