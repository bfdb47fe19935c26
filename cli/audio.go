//go:build !libretro

package cli

import (
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

const (
	audioSampleRate = 48000

	// maxQueuedBytes bounds latency to ~100ms of 16-bit stereo audio.
	maxQueuedBytes = audioSampleRate / 10 * 4
)

// AudioPlayer streams emulator samples to the Ebiten audio context.
type AudioPlayer struct {
	player *audio.Player
	stream *sampleStream
}

// sampleStream is the io.Reader the audio player pulls from. Underruns
// read as silence.
type sampleStream struct {
	mu  sync.Mutex
	buf []byte
}

func (s *sampleStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := copy(p, s.buf)
	s.buf = append(s.buf[:0], s.buf[n:]...)
	clear(p[n:])
	return len(p), nil
}

func (s *sampleStream) push(samples []int16) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sample := range samples {
		s.buf = append(s.buf, byte(sample), byte(sample>>8))
	}
	if over := len(s.buf) - maxQueuedBytes; over > 0 {
		over = (over + 3) &^ 3 // whole stereo frames
		s.buf = append(s.buf[:0], s.buf[over:]...)
	}
}

// NewAudioPlayer opens a player on the shared audio context.
func NewAudioPlayer() (*AudioPlayer, error) {
	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(audioSampleRate)
	}

	stream := &sampleStream{buf: make([]byte, 0, maxQueuedBytes)}
	player, err := ctx.NewPlayer(stream)
	if err != nil {
		return nil, err
	}
	player.SetBufferSize(50 * time.Millisecond)
	player.Play()

	return &AudioPlayer{player: player, stream: stream}, nil
}

// QueueSamples appends int16 stereo samples to the playback stream.
func (a *AudioPlayer) QueueSamples(samples []int16) {
	if len(samples) == 0 {
		return
	}
	a.stream.push(samples)
}

// Close stops playback.
func (a *AudioPlayer) Close() {
	if a.player != nil {
		a.player.Close()
		a.player = nil
	}
}
