package audio

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// fakeSpeaker records what the player sends to the speaker.
type fakeSpeaker struct {
	inits   int
	played  []beep.Streamer
	closed  int
	initErr error
}

func newTestPlayer(fs *fakeSpeaker) *Player {
	p := NewPlayer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.initSpeaker = func(beep.SampleRate, int) error {
		fs.inits++
		return fs.initErr
	}
	p.play = func(s ...beep.Streamer) { fs.played = append(fs.played, s...) }
	p.closeSpeak = func() { fs.closed++ }
	return p
}

func writeWAV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cue.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	format := beep.Format{SampleRate: 8000, NumChannels: 1, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Silence(800), format))
	return path
}

func TestPlayer_LoadAndPlay(t *testing.T) {
	fs := &fakeSpeaker{}
	p := newTestPlayer(fs)
	path := writeWAV(t)

	require.NoError(t, p.Load(path))
	assert.Equal(t, path, p.Path())
	assert.Equal(t, 1, fs.inits)

	require.NoError(t, p.Play())
	require.NoError(t, p.Play())
	assert.Len(t, fs.played, 2)

	// Speaker is initialized once
	require.NoError(t, p.Load(path))
	assert.Equal(t, 1, fs.inits)

	p.Close()
	assert.Equal(t, 1, fs.closed)
	assert.ErrorIs(t, p.Play(), ErrNoSound)
}

func TestPlayer_Volume(t *testing.T) {
	fs := &fakeSpeaker{}
	p := newTestPlayer(fs)
	require.NoError(t, p.Load(writeWAV(t)))

	p.SetVolume(1.5)
	assert.Equal(t, 1.0, p.Volume())
	require.NoError(t, p.Play())
	_, isVolume := fs.played[0].(*effects.Volume)
	assert.False(t, isVolume, "full volume plays the buffer directly")

	p.SetVolume(0.5)
	require.NoError(t, p.Play())
	v, ok := fs.played[1].(*effects.Volume)
	require.True(t, ok)
	assert.InDelta(t, -1.0, v.Volume, 1e-9)
	assert.False(t, v.Silent)

	p.SetVolume(-1)
	assert.Equal(t, 0.0, p.Volume())
	require.NoError(t, p.Play())
	assert.True(t, fs.played[2].(*effects.Volume).Silent)
}

func TestPlayer_LoadErrors(t *testing.T) {
	p := newTestPlayer(&fakeSpeaker{})

	assert.Error(t, p.Load(filepath.Join(t.TempDir(), "missing.wav")))

	txt := filepath.Join(t.TempDir(), "cue.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o644))
	assert.ErrorContains(t, p.Load(txt), "unsupported audio format")

	bad := filepath.Join(t.TempDir(), "bad.wav")
	require.NoError(t, os.WriteFile(bad, []byte("not a wav"), 0o644))
	assert.ErrorContains(t, p.Load(bad), "failed to decode")
}

func TestPlayer_SpeakerInitError(t *testing.T) {
	p := newTestPlayer(&fakeSpeaker{initErr: errors.New("no device")})

	err := p.Load(writeWAV(t))
	assert.ErrorContains(t, err, "failed to initialize speaker")
	assert.ErrorIs(t, p.Play(), ErrNoSound)
}

func TestCue_PlaysOnAppeared(t *testing.T) {
	fs := &fakeSpeaker{}
	p := newTestPlayer(fs)
	cue := NewCue(p, config.AudioConfig{Enabled: true, Volume: 80, Sound: writeWAV(t)}, nil)
	require.True(t, cue.Enabled())
	assert.InDelta(t, 0.8, p.Volume(), 1e-9)

	req := snackbar.NewRequest("Saved")
	cue.Appeared(req)
	cue.Disappeared(req, snackbar.ReasonTimer)
	cue.ActionTriggered(req)

	assert.Len(t, fs.played, 1)
}

func TestCue_Disabled(t *testing.T) {
	fs := &fakeSpeaker{}
	cue := NewCue(newTestPlayer(fs), config.AudioConfig{Enabled: false, Sound: writeWAV(t)}, nil)

	cue.Appeared(snackbar.NewRequest("Saved"))

	assert.False(t, cue.Enabled())
	assert.Empty(t, fs.played)
}

func TestCue_MissingSoundDisables(t *testing.T) {
	cue := NewCue(newTestPlayer(&fakeSpeaker{}), config.AudioConfig{Enabled: true, Sound: "/nonexistent/cue.wav"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.False(t, cue.Enabled())
}

func TestCue_Reconfigure(t *testing.T) {
	fs := &fakeSpeaker{}
	p := newTestPlayer(fs)
	cue := NewCue(p, config.AudioConfig{}, nil)
	assert.False(t, cue.Enabled())

	cue.Configure(config.AudioConfig{Enabled: true, Volume: 100, Sound: writeWAV(t)})
	assert.True(t, cue.Enabled())

	cue.Configure(config.AudioConfig{Enabled: false})
	assert.False(t, cue.Enabled())
	assert.Empty(t, p.Path())
}

func TestVolumeToExponent(t *testing.T) {
	assert.InDelta(t, 0.0, volumeToExponent(1), 1e-9)
	assert.InDelta(t, -2.0, volumeToExponent(0.25), 1e-9)
	assert.Equal(t, -10.0, volumeToExponent(0))
}
