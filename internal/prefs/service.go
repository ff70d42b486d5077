// Package prefs stores player preferences (progress, volumes, high score)
// behind a key-value Store and announces changes on the event bus.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/trijam/forcerun/internal/core/event"
	"go.uber.org/zap"
)

const (
	KeyCurrentLevel = "CurrentLevel"
	KeySoundVolume  = "SoundVolume"
	KeyMusicVolume  = "MusicVolume"
	KeyHighScore    = "HighScore"

	// KeyAll is the key reported after ResetAll.
	KeyAll = "ALL"
)

// Service reads and writes typed preferences. Missing or unreadable values
// fall back to their defaults.
type Service struct {
	store Store
	bus   *event.Bus
	log   *zap.Logger
}

func NewService(store Store, bus *event.Bus, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, bus: bus, log: log}
}

// CurrentLevel defaults to 1.
func (s *Service) CurrentLevel(ctx context.Context) (int, error) {
	v, err := s.getInt(ctx, KeyCurrentLevel, 1)
	if err != nil {
		return 1, err
	}
	return max(v, 1), nil
}

func (s *Service) SetCurrentLevel(ctx context.Context, level int) error {
	return s.set(ctx, KeyCurrentLevel, strconv.Itoa(level))
}

// SoundVolume defaults to 1.
func (s *Service) SoundVolume(ctx context.Context) (float64, error) {
	return s.getFloat(ctx, KeySoundVolume, 1)
}

// SetSoundVolume stores v clamped to [0, 1].
func (s *Service) SetSoundVolume(ctx context.Context, v float64) error {
	return s.set(ctx, KeySoundVolume, formatFloat(clamp01(v)))
}

// MusicVolume defaults to 1.
func (s *Service) MusicVolume(ctx context.Context) (float64, error) {
	return s.getFloat(ctx, KeyMusicVolume, 1)
}

// SetMusicVolume stores v clamped to [0, 1].
func (s *Service) SetMusicVolume(ctx context.Context, v float64) error {
	return s.set(ctx, KeyMusicVolume, formatFloat(clamp01(v)))
}

// HighScore defaults to 0.
func (s *Service) HighScore(ctx context.Context) (int, error) {
	return s.getInt(ctx, KeyHighScore, 0)
}

// SubmitScore records score if it beats the stored high score and reports
// whether it did.
func (s *Service) SubmitScore(ctx context.Context, score int) (bool, error) {
	best, err := s.HighScore(ctx)
	if err != nil {
		return false, err
	}
	if score <= best {
		return false, nil
	}
	if err := s.set(ctx, KeyHighScore, strconv.Itoa(score)); err != nil {
		return false, err
	}
	return true, nil
}

// ResetAll deletes every preference.
func (s *Service) ResetAll(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset preferences: %w", err)
	}
	s.notify(KeyAll)
	return nil
}

// DeleteKey deletes one preference.
func (s *Service) DeleteKey(ctx context.Context, key string) error {
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete preference %s: %w", key, err)
	}
	s.notify(key)
	return nil
}

func (s *Service) set(ctx context.Context, key, value string) error {
	if err := s.store.Set(ctx, key, value); err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	s.notify(key)
	return nil
}

func (s *Service) getInt(ctx context.Context, key string, def int) (int, error) {
	raw, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		s.log.Warn("unreadable preference, using default", zap.String("key", key), zap.String("value", raw))
		return def, nil
	}
	return v, nil
}

func (s *Service) getFloat(ctx context.Context, key string, def float64) (float64, error) {
	raw, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		s.log.Warn("unreadable preference, using default", zap.String("key", key), zap.String("value", raw))
		return def, nil
	}
	return clamp01(v), nil
}

func (s *Service) get(ctx context.Context, key string) (string, bool, error) {
	raw, err := s.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get preference %s: %w", key, err)
	}
	return raw, true, nil
}

func (s *Service) notify(key string) {
	if s.bus != nil {
		event.Emit(s.bus, event.PreferenceChanged{Key: key})
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(v, 1))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
