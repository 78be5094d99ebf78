// Package audio loads recorded clips and plays synthesized speech.
package audio

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/verte-zerg/tfquiz/internal/api"
)

// MaxClipBytes bounds the size of a clip uploaded for transcription.
const MaxClipBytes = 25 << 20

// DefaultPlayer is used when no player command is configured.
const DefaultPlayer = "ffplay -nodisp -autoexit -loglevel quiet"

// LoadClip reads a recorded clip from path.
func LoadClip(path string) (api.Clip, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return api.Clip{}, fmt.Errorf("clip path is empty")
	}
	info, err := os.Stat(path)
	if err != nil {
		return api.Clip{}, fmt.Errorf("failed to stat clip: %w", err)
	}
	if info.IsDir() {
		return api.Clip{}, fmt.Errorf("clip path is a directory: %s", path)
	}
	if info.Size() == 0 {
		return api.Clip{}, fmt.Errorf("clip is empty: %s", path)
	}
	if info.Size() > MaxClipBytes {
		return api.Clip{}, fmt.Errorf("clip is larger than %d bytes: %s", MaxClipBytes, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return api.Clip{}, fmt.Errorf("failed to read clip: %w", err)
	}
	return api.Clip{
		Name:        filepath.Base(path),
		ContentType: contentType(path, data),
		Data:        data,
	}, nil
}

func contentType(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".webm":
		return "audio/webm"
	case ".ogg", ".oga", ".opus":
		return "audio/ogg"
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".m4a":
		return "audio/mp4"
	}
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

// Player runs an external command to play audio files.
type Player struct {
	command []string
}

// NewPlayer parses a player command line. An empty line selects DefaultPlayer.
func NewPlayer(command string) (Player, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		command = DefaultPlayer
	}
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return Player{}, fmt.Errorf("player command is empty")
	}
	return Player{command: parts}, nil
}

// Command returns the parsed command line.
func (p Player) Command() []string {
	return append([]string(nil), p.command...)
}

// Play writes data to a temporary file and runs the player on it.
func (p Player) Play(ctx context.Context, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("no audio to play")
	}
	if len(p.command) == 0 {
		return fmt.Errorf("player command is empty")
	}
	tmpFile, err := os.CreateTemp("", "tfquiz-speech-*"+extensionFor(data))
	if err != nil {
		return fmt.Errorf("failed to create temp audio file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write temp audio file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp audio file: %w", err)
	}

	cmd := exec.CommandContext(ctx, p.command[0], append(p.command[1:], tmpPath)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("failed to run player: %w: %s", err, msg)
		}
		return fmt.Errorf("failed to run player: %w", err)
	}
	return nil
}

// Save writes data to path, replacing any existing file.
func Save(path string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("no audio to save")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "speech-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp audio file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close audio: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}
	return nil
}

func extensionFor(data []byte) string {
	switch ct := http.DetectContentType(data); {
	case strings.HasPrefix(ct, "audio/mpeg"):
		return ".mp3"
	case strings.HasPrefix(ct, "audio/wave"), strings.HasPrefix(ct, "audio/wav"):
		return ".wav"
	case strings.HasPrefix(ct, "application/ogg"), strings.HasPrefix(ct, "audio/ogg"):
		return ".ogg"
	case strings.HasPrefix(ct, "video/webm"), strings.HasPrefix(ct, "audio/webm"):
		return ".webm"
	default:
		return ".mp3"
	}
}
