package engine

import (
	"context"
	"log/slog"
)

// Player plays a soundbite at its configured volume and speed.
type Player interface {
	Play(ctx context.Context, sb Soundbite) error
}

// LogPlayer records playback requests in the log. It stands in for an audio
// output device.
type LogPlayer struct {
	Logger *slog.Logger
}

// Play logs the request.
func (p LogPlayer) Play(_ context.Context, sb Soundbite) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("soundbite played",
		"name", sb.Name,
		"mime", sb.MIME,
		"bytes", len(sb.Buffer),
		"volume", sb.Volume,
		"speed", sb.Speed,
	)

	return nil
}
