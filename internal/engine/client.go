package engine

import (
	"context"
	"fmt"

	"github.com/alkime/soundboard/internal/keytask"
)

// Invoker calls a named command. *invoke.Bus satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, name string, args, result any) error
}

// Client is a typed front for the engine's commands. Everything goes
// through the invoker, so the same client works in-process or remotely.
type Client struct {
	inv Invoker
}

// NewClient wraps inv.
func NewClient(inv Invoker) *Client {
	return &Client{inv: inv}
}

// AddSoundbite imports buffer under name and returns the stored name.
func (c *Client) AddSoundbite(ctx context.Context, name string, buffer []byte) (string, error) {
	var stored string
	if err := c.inv.Invoke(ctx, CmdAddSoundbite, AddArgs{Name: name, Buffer: buffer}, &stored); err != nil {
		return "", fmt.Errorf("failed to add soundbite %s: %w", name, err)
	}

	return stored, nil
}

func (c *Client) RemoveSoundbite(ctx context.Context, name string) error {
	return c.inv.Invoke(ctx, CmdRemoveSoundbite, NameArgs{Name: name}, nil)
}

func (c *Client) SetName(ctx context.Context, name, newName string) error {
	return c.inv.Invoke(ctx, CmdSetName, RenameArgs{Name: name, NewName: newName}, nil)
}

func (c *Client) SetVolume(ctx context.Context, name string, volume float32) error {
	return c.inv.Invoke(ctx, CmdSetVolume, VolumeArgs{Name: name, Volume: volume}, nil)
}

func (c *Client) SetSpeed(ctx context.Context, name string, speed float32) error {
	return c.inv.Invoke(ctx, CmdSetSpeed, SpeedArgs{Name: name, Speed: speed}, nil)
}

// SetKeytaskCode emits set_keytask_code. It satisfies the recorder's Engine.
func (c *Client) SetKeytaskCode(ctx context.Context, name string, code keytask.Code) error {
	return c.inv.Invoke(ctx, CmdSetKeytaskCode, KeytaskArgs{Name: name, KeytaskCode: code}, nil)
}

func (c *Client) RemoveKeytaskCode(ctx context.Context, name string) error {
	return c.inv.Invoke(ctx, CmdRemoveKeytaskCode, NameArgs{Name: name}, nil)
}

func (c *Client) Soundbite(ctx context.Context, name string) (Info, error) {
	var info Info
	err := c.inv.Invoke(ctx, CmdGetSoundbite, NameArgs{Name: name}, &info)

	return info, err
}

func (c *Client) Soundbites(ctx context.Context) ([]string, error) {
	var names []string
	err := c.inv.Invoke(ctx, CmdGetSoundbites, nil, &names)

	return names, err
}

// List fetches every soundbite in order.
func (c *Client) List(ctx context.Context) ([]Info, error) {
	names, err := c.Soundbites(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list soundbites: %w", err)
	}

	infos := make([]Info, 0, len(names))
	for _, name := range names {
		info, err := c.Soundbite(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to get soundbite %s: %w", name, err)
		}
		infos = append(infos, info)
	}

	return infos, nil
}

func (c *Client) Play(ctx context.Context, name string) error {
	return c.inv.Invoke(ctx, CmdPlaySoundbite, NameArgs{Name: name}, nil)
}

// Trigger plays whatever is bound to code and returns its name.
func (c *Client) Trigger(ctx context.Context, code keytask.Code) (string, error) {
	var name string
	err := c.inv.Invoke(ctx, CmdTriggerKeytask, TriggerArgs{KeytaskCode: code}, &name)

	return name, err
}
