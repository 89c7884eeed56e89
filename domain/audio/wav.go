package audio

import (
	"errors"
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Sink persists the concatenated recording.
type Sink interface {
	Write(path string, f Format, samples []int16) error
}

// WAVSink writes 16-bit PCM WAV files.
type WAVSink struct{}

func (WAVSink) Write(path string, f Format, samples []int16) (err error) {
	if err := f.Validate(); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audio: create %q: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("audio: close %q: %w", path, cerr))
		}
	}()

	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = int(v)
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: f.Channels, SampleRate: f.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	enc := wav.NewEncoder(out, f.SampleRate, 16, f.Channels, 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("audio: encode %q: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("audio: finish %q: %w", path, err)
	}
	return nil
}

// ReadWAV loads a 16-bit PCM file written by WAVSink.
func ReadWAV(path string) (Format, []int16, error) {
	in, err := os.Open(path)
	if err != nil {
		return Format{}, nil, fmt.Errorf("audio: open %q: %w", path, err)
	}
	defer in.Close()
	dec := wav.NewDecoder(in)
	if !dec.IsValidFile() {
		return Format{}, nil, fmt.Errorf("audio: %q is not a wav file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Format{}, nil, fmt.Errorf("audio: decode %q: %w", path, err)
	}
	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = int16(v)
	}
	return Format{SampleRate: int(dec.SampleRate), Channels: int(dec.NumChans)}, samples, nil
}
