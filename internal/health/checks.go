package health

import (
	"context"
	"errors"
	"fmt"
)

// ListenerCheck fails while url reports no bound listener
func ListenerCheck(url func() string) Check {
	return func(ctx context.Context) error {
		if url() == "" {
			return errors.New("listener not bound")
		}
		return nil
	}
}

// ReloadCheck fails while the most recent config reload failed
func ReloadCheck(lastErr func() error) Check {
	return func(ctx context.Context) error {
		if err := lastErr(); err != nil {
			return fmt.Errorf("last reload failed: %w", err)
		}
		return nil
	}
}
