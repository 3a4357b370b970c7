package audio

import (
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Recorder tees a SampleSource's stereo float32 stream to a WAV file while
// still forwarding every frame to the wrapped source's caller, so a live
// session can be auditioned and archived at once.
type Recorder struct {
	SampleSource
	enc        *wav.Encoder
	file       *os.File
	sampleRate int
}

// NewRecorder opens path and wraps source so that every call to Process
// also appends the rendered frames to the WAV file. Call Close when the
// session ends to flush the header and file.
func NewRecorder(path string, sampleRate int, source SampleSource) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	enc := wav.NewEncoder(f, sampleRate, 16, 2, 1)
	return &Recorder{SampleSource: source, enc: enc, file: f, sampleRate: sampleRate}, nil
}

// Process renders into dst via the wrapped source, then archives the same
// frames as 16-bit PCM.
func (r *Recorder) Process(dst []float32) {
	r.SampleSource.Process(dst)

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: 2, SampleRate: r.sampleRate},
		Data:   make([]int, len(dst)),
	}
	for i, s := range dst {
		v := int(s * 32767)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		buf.Data[i] = v
	}
	_ = r.enc.Write(buf)
}

// Finished proxies to the wrapped source when it implements FinishingSource.
func (r *Recorder) Finished() bool {
	fs, ok := r.SampleSource.(FinishingSource)
	return ok && fs.Finished()
}

// Close flushes the WAV encoder and closes the underlying file.
func (r *Recorder) Close() error {
	if err := r.enc.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}
