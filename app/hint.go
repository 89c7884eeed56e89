package app

import (
	"errors"
	"os/exec"

	"github.com/soocke/screenrec/domain/audio"
	"github.com/soocke/screenrec/domain/capture"
	"github.com/soocke/screenrec/domain/coord"
	"github.com/soocke/screenrec/domain/mux"
	"github.com/soocke/screenrec/domain/timeline"
)

// Hint returns a short remedy for well-known failures, or "" when there is
// nothing more useful to say than the error itself.
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, audio.ErrDeviceUnavailable):
		return "no loopback source found; enable a monitor or stereo mix device for the default speaker"
	case errors.Is(err, audio.ErrNoAudio):
		return "the recording stopped before any audio arrived; record for longer"
	case errors.Is(err, exec.ErrNotFound):
		return "ffmpeg was not found; install it or set ffmpeg_path"
	case errors.Is(err, mux.ErrMissingArtifact):
		return "an intermediate file is missing; record again before muxing"
	case errors.Is(err, timeline.ErrDegenerateLog):
		return "too few frames were captured to derive a frame rate; record for longer"
	case errors.Is(err, mux.ErrEncoderFailed):
		return "ffmpeg rejected the inputs; the intermediate files were kept for inspection"
	case errors.Is(err, capture.ErrInvalidRegion):
		return "the selected area is empty; resize the frame before starting"
	case errors.Is(err, coord.ErrAborted):
		return "the other capture could not start"
	}
	return ""
}
