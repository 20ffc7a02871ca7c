package tui

import (
	"log/slog"

	"github.com/alkime/soundboard/internal/keyrec"
	"github.com/alkime/soundboard/pkg/uictl"
)

// recorderKnob arms the key recorder for the selected soundbite.
type recorderKnob struct {
	recorder *keyrec.Recorder
	feed     *keyrec.Feed
	target   func() string
	logger   *slog.Logger
}

var _ uictl.Knob = (*recorderKnob)(nil)

func (k *recorderKnob) Read() bool {
	return k.recorder.IsRecording()
}

// On starts recording. Failures leave the knob off; callers check Read.
func (k *recorderKnob) On() {
	if err := k.recorder.Start(k.target(), k.feed); err != nil {
		k.logger.Debug("key recorder not started", "error", err)
	}
}

func (k *recorderKnob) Off() {
	k.recorder.Stop()
}

func (k *recorderKnob) Toggle() {
	if k.Read() {
		k.Off()
		return
	}

	k.On()
}
