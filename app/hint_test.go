package app

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"testing"

	"github.com/soocke/screenrec/domain/audio"
	"github.com/soocke/screenrec/domain/coord"
	"github.com/soocke/screenrec/domain/mux"
)

func TestHint_KnownFailures(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("start: %w", audio.ErrDeviceUnavailable), "loopback"},
		{audio.ErrNoAudio, "before any audio"},
		{&mux.EncoderError{ExitCode: -1, Err: &exec.Error{Name: "ffmpeg", Err: exec.ErrNotFound}}, "ffmpeg was not found"},
		{&mux.EncoderError{ExitCode: 1, Err: errors.New("exit status 1")}, "kept for inspection"},
		{&mux.MissingArtifactError{Paths: []string{"aufnahme.wav"}}, "missing"},
		{fmt.Errorf("%w: %w", coord.ErrAborted, errors.New("x")), "could not start"},
	}
	for _, c := range cases {
		if got := Hint(c.err); !strings.Contains(got, c.want) {
			t.Fatalf("Hint(%v)=%q, want it to mention %q", c.err, got, c.want)
		}
	}
}

func TestHint_UnknownIsEmpty(t *testing.T) {
	if got := Hint(errors.New("boom")); got != "" {
		t.Fatalf("got %q", got)
	}
	if got := Hint(nil); got != "" {
		t.Fatalf("got %q", got)
	}
}
