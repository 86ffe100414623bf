package shutter

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	sampleRate   = 44100
	channelCount = 2
)

// ErrInvalidWAV is returned for files the WAV decoder cannot read.
var ErrInvalidWAV = errors.New("invalid WAV file")

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channelCount,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// Shutter plays a short camera click.
type Shutter struct {
	ctx    *oto.Context
	pcm    []byte
	volume float64
}

// New prepares the click. wavPath may be empty to use the built-in sound.
func New(wavPath string, volume float64) (*Shutter, error) {
	var pcm []byte
	if wavPath != "" {
		var err error
		if pcm, err = loadWAV(wavPath); err != nil {
			return nil, err
		}
	} else {
		pcm = encodePCM(synthClick(sampleRate), sampleRate, 1)
	}

	ctx, err := initOto()
	if err != nil {
		return nil, fmt.Errorf("audio output: %w", err)
	}
	return &Shutter{ctx: ctx, pcm: pcm, volume: volume}, nil
}

// Play starts the click and returns immediately.
func (s *Shutter) Play() {
	p := s.ctx.NewPlayer(bytes.NewReader(s.pcm))
	p.SetVolume(s.volume)
	p.Play()
	go func() {
		for p.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		p.Close()
	}()
}

// Duration returns the click length.
func (s *Shutter) Duration() time.Duration {
	frames := len(s.pcm) / (2 * channelCount)
	return time.Duration(frames) * time.Second / sampleRate
}

// synthClick returns a mono 60ms noise burst with an exponential decay.
func synthClick(rate int) []float64 {
	n := rate * 60 / 1000
	rng := rand.New(rand.NewPCG(1, 2))
	out := make([]float64, n)
	for i := range out {
		env := math.Exp(-float64(i) / (float64(rate) * 0.008))
		out[i] = (rng.Float64()*2 - 1) * env * 0.9
	}
	return out
}

// loadWAV decodes path into the player's PCM format.
func loadWAV(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidWAV)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	channels := int(dec.NumChans)
	if channels < 1 || dec.SampleRate == 0 || len(buf.Data) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidWAV)
	}

	maxVal := float64(audio.IntMaxSignedValue(int(dec.BitDepth)))
	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v) / maxVal
	}
	return encodePCM(samples, int(dec.SampleRate), channels), nil
}

// encodePCM converts interleaved float samples at srcRate into 16-bit LE
// stereo at sampleRate. Extra channels beyond two are dropped; mono is duplicated.
func encodePCM(samples []float64, srcRate, channels int) []byte {
	srcFrames := len(samples) / channels
	frames := int(int64(srcFrames) * sampleRate / int64(srcRate))
	out := make([]byte, frames*channelCount*2)
	for i := 0; i < frames; i++ {
		src := int(int64(i) * int64(srcRate) / sampleRate)
		left := samples[src*channels]
		right := left
		if channels > 1 {
			right = samples[src*channels+1]
		}
		binary.LittleEndian.PutUint16(out[i*4:], uint16(toInt16(left)))
		binary.LittleEndian.PutUint16(out[i*4+2:], uint16(toInt16(right)))
	}
	return out
}

func toInt16(v float64) int16 {
	v = max(-1, min(1, v))
	return int16(math.Round(v * math.MaxInt16))
}
