package engine

import (
	"context"

	"github.com/alkime/soundboard/internal/invoke"
	"github.com/alkime/soundboard/internal/keytask"
)

// Command names understood by the engine.
const (
	CmdAddSoundbite      = "add_soundbite"
	CmdRemoveSoundbite   = "remove_soundbite"
	CmdSetName           = "set_name"
	CmdSetVolume         = "set_volume"
	CmdSetSpeed          = "set_speed"
	CmdSetKeytaskCode    = "set_keytask_code"
	CmdRemoveKeytaskCode = "remove_keytask_code"
	CmdGetSoundbite      = "get_soundbite"
	CmdGetSoundbites     = "get_soundbites"
	CmdPlaySoundbite     = "play_soundbite"
	CmdTriggerKeytask    = "trigger_keytask"
)

// NameArgs addresses a single soundbite.
type NameArgs struct {
	Name string `json:"name"`
}

// AddArgs carries an imported file. Buffer is base64 in JSON.
type AddArgs struct {
	Name   string `json:"name"`
	Buffer []byte `json:"buffer"`
}

// RenameArgs renames Name to NewName.
type RenameArgs struct {
	Name    string `json:"name"`
	NewName string `json:"newName"`
}

// VolumeArgs sets a soundbite volume.
type VolumeArgs struct {
	Name   string  `json:"name"`
	Volume float32 `json:"volume"`
}

// SpeedArgs sets a soundbite speed.
type SpeedArgs struct {
	Name  string  `json:"name"`
	Speed float32 `json:"speed"`
}

// KeytaskArgs is the payload of set_keytask_code.
type KeytaskArgs struct {
	Name        string       `json:"name"`
	KeytaskCode keytask.Code `json:"keytaskCode"`
}

// TriggerArgs is the payload of trigger_keytask.
type TriggerArgs struct {
	KeytaskCode keytask.Code `json:"keytaskCode"`
}

// Ack is the empty result of commands that only report success.
type Ack struct{}

// Register installs every engine command on bus.
func (e *Engine) Register(bus *invoke.Bus) {
	bus.Register(CmdAddSoundbite, invoke.Handle(func(_ context.Context, a AddArgs) (string, error) {
		return e.Add(a.Name, a.Buffer)
	}))
	bus.Register(CmdRemoveSoundbite, invoke.Handle(func(_ context.Context, a NameArgs) (Ack, error) {
		return Ack{}, e.Remove(a.Name)
	}))
	bus.Register(CmdSetName, invoke.Handle(func(_ context.Context, a RenameArgs) (Ack, error) {
		return Ack{}, e.Rename(a.Name, a.NewName)
	}))
	bus.Register(CmdSetVolume, invoke.Handle(func(_ context.Context, a VolumeArgs) (Ack, error) {
		return Ack{}, e.SetVolume(a.Name, a.Volume)
	}))
	bus.Register(CmdSetSpeed, invoke.Handle(func(_ context.Context, a SpeedArgs) (Ack, error) {
		return Ack{}, e.SetSpeed(a.Name, a.Speed)
	}))
	bus.Register(CmdSetKeytaskCode, invoke.Handle(func(_ context.Context, a KeytaskArgs) (Ack, error) {
		return Ack{}, e.SetKeytaskCode(a.Name, a.KeytaskCode)
	}))
	bus.Register(CmdRemoveKeytaskCode, invoke.Handle(func(_ context.Context, a NameArgs) (Ack, error) {
		return Ack{}, e.RemoveKeytaskCode(a.Name)
	}))
	bus.Register(CmdGetSoundbite, invoke.Handle(func(_ context.Context, a NameArgs) (Info, error) {
		return e.Soundbite(a.Name)
	}))
	bus.Register(CmdGetSoundbites, invoke.Handle(func(_ context.Context, _ struct{}) ([]string, error) {
		return e.Soundbites(), nil
	}))
	bus.Register(CmdPlaySoundbite, invoke.Handle(func(ctx context.Context, a NameArgs) (Ack, error) {
		return Ack{}, e.Play(ctx, a.Name)
	}))
	bus.Register(CmdTriggerKeytask, invoke.Handle(func(ctx context.Context, a TriggerArgs) (string, error) {
		return e.Trigger(ctx, a.KeytaskCode)
	}))
}
