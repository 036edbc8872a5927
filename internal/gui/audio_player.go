package gui

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"
)

// AudioPlayer is a compact play/stop control for one MP3
type AudioPlayer struct {
	widget.BaseWidget

	container   *fyne.Container
	playButton  *ttwidget.Button
	stopButton  *ttwidget.Button
	statusLabel *widget.Label

	audioFile string
	isPlaying bool
	playCmd   *exec.Cmd
}

// NewAudioPlayer creates a player for audioFile, which may be empty
func NewAudioPlayer(audioFile string) *AudioPlayer {
	p := &AudioPlayer{}

	p.playButton = ttwidget.NewButtonWithIcon("", theme.MediaPlayIcon(), p.onPlay)
	p.playButton.SetToolTip("Play audio")

	p.stopButton = ttwidget.NewButtonWithIcon("", theme.MediaStopIcon(), p.onStop)
	p.stopButton.SetToolTip("Stop audio")
	p.stopButton.Disable()

	p.statusLabel = widget.NewLabel("")

	p.container = container.NewHBox(p.playButton, p.stopButton, p.statusLabel)
	p.SetAudioFile(audioFile)

	p.ExtendBaseWidget(p)
	return p
}

// CreateRenderer implements fyne.Widget
func (p *AudioPlayer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.container)
}

// SetAudioFile points the player at another file
func (p *AudioPlayer) SetAudioFile(audioFile string) {
	p.onStop()
	p.audioFile = audioFile

	if audioFile == "" {
		p.playButton.Disable()
		p.statusLabel.SetText("No audio")
		return
	}
	p.playButton.Enable()
	p.statusLabel.SetText(filepath.Base(audioFile))
}

func (p *AudioPlayer) onPlay() {
	if p.audioFile == "" {
		return
	}
	if p.isPlaying {
		p.onStop()
		return
	}

	cmd, err := playerCommand(p.audioFile)
	if err != nil {
		p.statusLabel.SetText(fmt.Sprintf("Error: %v", err))
		return
	}
	p.playCmd = cmd
	p.isPlaying = true
	p.playButton.SetIcon(theme.MediaPauseIcon())
	p.stopButton.Enable()

	go func() {
		err := cmd.Run()
		fyne.Do(func() {
			if p.playCmd != cmd {
				return
			}
			p.playCmd = nil
			p.isPlaying = false
			p.playButton.SetIcon(theme.MediaPlayIcon())
			p.stopButton.Disable()
			if err != nil {
				p.statusLabel.SetText(fmt.Sprintf("Playback failed: %v", err))
			}
		})
	}()
}

func (p *AudioPlayer) onStop() {
	if p.playCmd != nil && p.playCmd.Process != nil {
		p.playCmd.Process.Kill()
	}
	p.playCmd = nil
	p.isPlaying = false
	p.playButton.SetIcon(theme.MediaPlayIcon())
	p.stopButton.Disable()
}

// playerCommand picks a command line audio player for the platform
func playerCommand(file string) (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("afplay", file), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", "/min", file), nil
	case "linux":
		// mpg123 handles MP3 best
		candidates := [][]string{
			{"mpg123", "-q"},
			{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
			{"play", "-q"},
			{"paplay"},
		}
		for _, c := range candidates {
			if _, err := exec.LookPath(c[0]); err == nil {
				return exec.Command(c[0], append(c[1:], file)...), nil
			}
		}
		return nil, fmt.Errorf("no audio player found. Install mpg123, ffplay, sox or paplay")
	default:
		return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}
