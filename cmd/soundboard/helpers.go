package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/alkime/soundboard/internal/engine"
	"github.com/alkime/soundboard/internal/keyrec"
	"github.com/alkime/soundboard/internal/keytask"
)

// importFiles adds each file as a soundbite named after its stem. Every file
// is attempted; failures are joined.
func importFiles(ctx context.Context, client *engine.Client, paths []string, log *slog.Logger) error {
	var errs []error
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to read %s: %w", path, err))
			continue
		}

		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if _, err := client.AddSoundbite(ctx, name, data); err != nil {
			log.Error("failed to import soundbite", "path", path, "error", err)
			errs = append(errs, err)

			continue
		}

		log.Debug("imported soundbite", "path", path, "name", name)
	}

	return errors.Join(errs...)
}

type chord struct {
	Code  keytask.Code
	Label string
}

// encodeChord mirrors what the recorder commits for the same key presses.
func encodeChord(modifier, side, key string) (chord, error) {
	primary, err := parsePrimary(key)
	if err != nil {
		return chord{}, err
	}

	var mod keytask.Modifier
	if modifier != "" {
		m, ok := keytask.ParseModifier(strings.ToUpper(modifier[:1]) + strings.ToLower(modifier[1:]))
		if !ok {
			return chord{}, fmt.Errorf("unknown modifier %q", modifier)
		}
		mod = m
	}

	loc := keytask.LocationUnknown
	switch side {
	case "":
	case "left":
		loc = keytask.LocationLeft
	case "right":
		loc = keytask.LocationRight
	default:
		return chord{}, fmt.Errorf("unknown side %q", side)
	}

	var sys keytask.SysKey
	if mod != "" {
		sys = keytask.SysKeyFor(mod, loc)
	}

	return chord{
		Code:  keytask.Encode(sys, primary.VK),
		Label: keyrec.Label(mod, primary.Name),
	}, nil
}

func parsePrimary(key string) (keytask.Key, error) {
	if k, ok := keytask.NamedKey(key); ok {
		return k, nil
	}

	if utf8.RuneCountInString(key) == 1 {
		r, _ := utf8.DecodeRuneInString(key)
		if k, _, ok := keytask.RuneKey(r); ok {
			return k, nil
		}
	}

	return keytask.Key{}, fmt.Errorf("unknown key %q", key)
}
