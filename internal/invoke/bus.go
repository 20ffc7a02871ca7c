// Package invoke is a named-command request/response boundary. Callers
// invoke a command by name with JSON arguments and receive a JSON result,
// the way a webview frontend invokes backend commands.
package invoke

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

var (
	// ErrUnknownCommand is returned when no handler is registered for a name.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrBadArguments wraps argument decoding failures.
	ErrBadArguments = errors.New("bad arguments")
)

// Handler serves one command. args is nil or "null" when the caller sent none.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Handle adapts a typed function into a Handler, decoding args into A.
func Handle[A, R any](fn func(ctx context.Context, args A) (R, error)) Handler {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args A
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrBadArguments, err)
			}
		}

		return fn(ctx, args)
	}
}

// Bus routes invocations to registered handlers. It is safe for concurrent use.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   *slog.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}

	return &Bus{
		handlers: make(map[string]Handler),
		logger:   logger,
	}
}

// Register installs h under name, replacing any previous handler.
func (b *Bus) Register(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[name] = h
}

// Commands lists the registered command names in sorted order.
func (b *Bus) Commands() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.handlers))
	for name := range b.handlers {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// Call invokes name with raw JSON args and returns the JSON encoded result.
func (b *Bus) Call(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	b.mu.RLock()
	h, ok := b.handlers[name]
	b.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	b.logger.Debug("command invoked", "command", name)

	result, err := h(ctx, args)
	if err != nil {
		b.logger.Debug("command failed", "command", name, "error", err)
		return nil, err
	}

	out, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s result: %w", name, err)
	}

	return out, nil
}

// Invoke encodes args, calls name and decodes the result into result
// (which may be nil when the caller does not need it).
func (b *Bus) Invoke(ctx context.Context, name string, args, result any) error {
	var raw json.RawMessage
	if args != nil {
		encoded, err := json.Marshal(args)
		if err != nil {
			return fmt.Errorf("failed to encode %s arguments: %w", name, err)
		}
		raw = encoded
	}

	out, err := b.Call(ctx, name, raw)
	if err != nil {
		return err
	}

	if result == nil {
		return nil
	}

	if err := json.Unmarshal(out, result); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", name, err)
	}

	return nil
}
