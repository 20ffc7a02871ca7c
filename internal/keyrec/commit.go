package keyrec

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alkime/soundboard/internal/keytask"
)

// Binding is a captured chord ready to be sent to the engine.
type Binding struct {
	Target         string
	Code           keytask.Code
	Label          string
	Modifier       keytask.Modifier
	SysKey         keytask.SysKey
	PrimaryKeyCode int
	PrimaryKeyName string
}

// ModifierDropped reports whether a modifier was pressed but could not be
// encoded because its side was unknown. Such a chord has the same code as
// the bare primary key.
func (b Binding) ModifierDropped() bool {
	return b.Modifier != "" && b.SysKey == keytask.SysNone
}

// Commit sends a Binding to the engine. The recorder is already idle by the
// time a Commit exists.
type Commit struct {
	Binding

	engine Engine
	logger *slog.Logger
}

// Run issues set_keytask_code. Cancelling ctx does not abort an issued call.
// Failures are logged and returned; nothing is retried.
func (c *Commit) Run(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)

	if err := c.engine.SetKeytaskCode(ctx, c.Target, c.Code); err != nil {
		c.logger.Error("failed to set key binding",
			"name", c.Target,
			"keytask_code", uint32(c.Code),
			"error", err,
		)

		return fmt.Errorf("failed to set key binding for %s: %w", c.Target, err)
	}

	c.logger.Info("key binding set",
		"name", c.Target,
		"keytask_code", uint32(c.Code),
		"label", c.Label,
	)

	return nil
}

// Label renders a chord as "<modifier> + <key>", omitting an empty modifier.
func Label(mod keytask.Modifier, primary string) string {
	switch {
	case mod == "":
		return primary
	case primary == "":
		return string(mod)
	default:
		return string(mod) + " + " + primary
	}
}
