// Package audio plays the sound cue for a snackbar appearing. It uses the
// beep library to decode WAV, OGG and MP3 files and plays them with volume
// control.
package audio
