package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// ErrNoSound is returned by Play before a sound has been loaded.
var ErrNoSound = errors.New("no sound loaded")

// Player holds one decoded sound and plays it on the speaker.
type Player struct {
	mu     sync.Mutex
	logger *slog.Logger

	// Volume control (0.0 to 1.0)
	volume float64

	initialized bool
	sampleRate  beep.SampleRate

	buffer *beep.Buffer
	path   string

	// Speaker hooks, replaced in tests
	initSpeaker func(sr beep.SampleRate, bufferSize int) error
	play        func(s ...beep.Streamer)
	closeSpeak  func()
}

// NewPlayer creates a new audio player.
func NewPlayer(logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}

	return &Player{
		logger:      logger,
		volume:      1.0,
		initSpeaker: speaker.Init,
		play:        speaker.Play,
		closeSpeak:  speaker.Close,
	}
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (p *Player) SetVolume(volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.volume = min(max(volume, 0), 1)
	p.logger.Debug("volume set", "volume", p.volume)
}

// Volume returns the current volume.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Path returns the path of the loaded sound.
func (p *Player) Path() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.path
}

// Load decodes the sound at path, replacing the current one. An empty path
// unloads the sound. Supports WAV, OGG, and MP3 formats.
func (p *Player) Load(path string) error {
	if path == "" {
		p.mu.Lock()
		p.buffer, p.path = nil, ""
		p.mu.Unlock()
		return nil
	}

	path = expandPath(path)
	buffer, err := p.decode(path)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureInitialized(buffer.Format().SampleRate); err != nil {
		return err
	}
	p.buffer, p.path = buffer, path

	p.logger.Debug("loaded sound", "path", path)
	return nil
}

// decode reads the whole sound file into a buffer.
func (p *Player) decode(path string) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sound file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode sound: %w", err)
	}
	defer func() { _ = streamer.Close() }()

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	return buffer, nil
}

// ensureInitialized initializes the speaker once. Callers hold p.mu.
func (p *Player) ensureInitialized(sampleRate beep.SampleRate) error {
	if p.initialized {
		return nil
	}

	// 100ms keeps the cue responsive
	if err := p.initSpeaker(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	p.sampleRate = sampleRate
	p.initialized = true
	p.logger.Debug("speaker initialized", "sample_rate", sampleRate)
	return nil
}

// Play starts the loaded sound and returns immediately.
func (p *Player) Play() error {
	p.mu.Lock()
	buffer := p.buffer
	volume := p.volume
	sampleRate := p.sampleRate
	p.mu.Unlock()

	if buffer == nil {
		return ErrNoSound
	}

	var streamer beep.Streamer = buffer.Streamer(0, buffer.Len())

	if buffer.Format().SampleRate != sampleRate {
		streamer = beep.Resample(4, buffer.Format().SampleRate, sampleRate, streamer)
	}

	if volume < 1.0 {
		streamer = &effects.Volume{
			Streamer: streamer,
			Base:     2,
			Volume:   volumeToExponent(volume),
			Silent:   volume == 0,
		}
	}

	p.play(streamer)
	return nil
}

// Close stops playback and releases the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		p.closeSpeak()
		p.initialized = false
	}
	p.buffer, p.path = nil, ""
	p.logger.Debug("audio player closed")
}

// volumeToExponent converts a linear volume (0-1) to the base 2 exponent
// effects.Volume expects. 0.5 halves the amplitude.
func volumeToExponent(volume float64) float64 {
	if volume <= 0 {
		return -10
	}
	return math.Log2(volume)
}

// expandPath expands ~ to home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
