// Package audio lists the host's audio output devices.
package audio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alkime/soundboard/pkg/collections"
	"github.com/gen2brain/malgo"
)

// Info describes one playback device.
type Info struct {
	Name        string
	IsDefault   bool
	FormatCount int
	Formats     []string
}

// Enumerator lists playback devices.
type Enumerator interface {
	PlaybackDevices(ctx context.Context) ([]Info, error)
}

// Malgo enumerates devices through miniaudio.
type Malgo struct{}

// PlaybackDevices lists available output devices.
func (Malgo) PlaybackDevices(_ context.Context) ([]Info, error) {
	// An empty context is enough for enumeration.
	devCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	defer uninitializeContext(devCtx)

	playbackDevices, err := devCtx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("failed to get playback devices: %w", err)
	}

	return collections.Apply(playbackDevices, malgoDeviceInfoToDeviceInfo), nil
}

// Default picks the default device, if one is flagged.
func Default(devices []Info) (Info, bool) {
	defaults := collections.Filter(devices, func(i Info) bool { return i.IsDefault })
	if len(defaults) == 0 {
		return Info{}, false
	}

	return defaults[0], true
}

func malgoDeviceInfoToDeviceInfo(mdi malgo.DeviceInfo) Info {
	count := min(int(mdi.FormatCount), len(mdi.Formats))

	formats := make([]string, count)
	for i, mf := range mdi.Formats[:count] {
		formats[i] = formatString(mf.Format, mf.Channels, mf.SampleRate)
	}

	return Info{
		Name:        mdi.Name(),
		IsDefault:   mdi.IsDefault != 0,
		FormatCount: count,
		Formats:     formats,
	}
}

func formatString(format malgo.FormatType, channels, sampleRate uint32) string {
	return fmt.Sprintf("(SampleSizeBytes: %d, Channels: %d, SampleRate: %d)",
		malgo.SampleSizeInBytes(format), channels, sampleRate)
}

func uninitializeContext(deviceCtx *malgo.AllocatedContext) {
	if deviceCtx == nil {
		return
	}

	if err := deviceCtx.Uninit(); err != nil {
		slog.Error("failed to uninitialize malgo context", "error", err)
	}
	deviceCtx.Free()
}
