// Package audio drives the host speaker from the VM's sound-gate flag and
// XO-CHIP audio pattern. It replaces the teacher's bundled-mp3 playback
// (bradford-hamilton-chippy/internal/chip8/chip8.go's ManageAudio) with a
// generated waveform, since the VM's sound model is a gate plus a 16-byte
// pattern plus a pitch register rather than a pre-recorded clip — see
// DESIGN.md's "Dropped teacher dependencies".
package audio

import (
	"math"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// gateSource is the subset of *chip8.VM the streamer reads every sample.
// A narrow interface keeps this package testable without a real VM.
type gateSource interface {
	SoundGate() bool
	AudioPattern() [16]byte
	AudioPitch() byte
}

// Gate is a beep.Streamer that plays silence while the VM's sound timer
// is at zero, and otherwise either loops the XO-CHIP audio pattern at its
// programmed pitch or, if no pattern has been loaded, a plain square wave
// — spec.md §4.6's fallback for hosts that don't need pattern-accurate
// audio.
type Gate struct {
	vm         gateSource
	sampleRate beep.SampleRate
	phase      float64
}

// NewGate returns a Gate sampling vm at sampleRate.
func NewGate(vm gateSource, sampleRate beep.SampleRate) *Gate {
	return &Gate{vm: vm, sampleRate: sampleRate}
}

// patternFrequency converts the FX3A pitch register into a playback rate
// in Hz, following the formula Octo (the XO-CHIP reference runtime) uses.
func patternFrequency(pitch byte) float64 {
	return 4000 * math.Pow(2, (float64(pitch)-64)/48)
}

func (g *Gate) Stream(samples [][2]float64) (n int, ok bool) {
	pattern := g.vm.AudioPattern()
	empty := pattern == [16]byte{}
	freq := patternFrequency(g.vm.AudioPitch())
	bitsPerSample := freq / float64(g.sampleRate)

	for i := range samples {
		if !g.vm.SoundGate() {
			samples[i][0], samples[i][1] = 0, 0
			g.phase = 0
			continue
		}

		var amp float64
		if empty {
			// Plain 50%-duty square wave fallback.
			if int(g.phase)%2 == 0 {
				amp = 0.5
			} else {
				amp = -0.5
			}
		} else {
			bit := int(g.phase) % 128
			byteIdx, mask := bit/8, byte(0x80>>uint(bit%8))
			if pattern[byteIdx]&mask != 0 {
				amp = 0.5
			} else {
				amp = -0.5
			}
		}

		samples[i][0], samples[i][1] = amp, amp
		g.phase += bitsPerSample
	}

	return len(samples), true
}

func (g *Gate) Err() error { return nil }

// Play initializes the speaker, starts playing a Gate over vm, and blocks
// until the done channel closes. It does not stop or clear the speaker
// when it returns.
// Grounded on the teacher's ManageAudio speaker.Init/speaker.Play shape.
func Play(vm gateSource, sampleRate beep.SampleRate, done <-chan struct{}) {
	speaker.Init(sampleRate, sampleRate.N(time.Second/20))
	gate := NewGate(vm, sampleRate)
	speaker.Play(gate)
	<-done
}
