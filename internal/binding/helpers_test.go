package binding

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dyluth/careersync/internal/domain"
	"github.com/dyluth/careersync/internal/persist"
	"github.com/dyluth/careersync/internal/syncdoc"
	"github.com/rs/zerolog"
)

type captureNotifier struct {
	mu       sync.Mutex
	success  []string
	warnings []string
}

func (c *captureNotifier) Success(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.success = append(c.success, msg)
}

func (c *captureNotifier) Warning(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, msg)
}

func (c *captureNotifier) successes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.success...)
}

func (c *captureNotifier) warns() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.warnings...)
}

func adminDoc(t *testing.T, backend persist.Backend) *syncdoc.Document[domain.AdminSettings] {
	t.Helper()
	adapter := persist.NewAdapter[domain.AdminSettings](backend, domain.SlotAdminSettings, zerolog.Nop())
	return syncdoc.Open(context.Background(), adapter, syncdoc.Options[domain.AdminSettings]{
		Defaults:   domain.DefaultAdminSettings(),
		Durability: syncdoc.Deferred,
		Logger:     zerolog.Nop(),
	})
}

func employerDoc(t *testing.T, backend persist.Backend) *syncdoc.Document[domain.EmployerSettings] {
	t.Helper()
	adapter := persist.NewAdapter[domain.EmployerSettings](backend, domain.SlotEmployerSettings, zerolog.Nop())
	return syncdoc.Open(context.Background(), adapter, syncdoc.Options[domain.EmployerSettings]{
		Defaults:   domain.DefaultEmployerSettings(),
		Durability: syncdoc.Deferred,
		Logger:     zerolog.Nop(),
	})
}

func contentDoc(t *testing.T, backend persist.Backend) *syncdoc.Document[[]domain.ContentItem] {
	t.Helper()
	adapter := persist.NewAdapter[[]domain.ContentItem](backend, domain.SlotContent, zerolog.Nop())
	return syncdoc.Open(context.Background(), adapter, syncdoc.Options[[]domain.ContentItem]{
		Defaults:   domain.DefaultContent(),
		Durability: syncdoc.Immediate,
		Normalize:  domain.UniqueContent,
		Logger:     zerolog.Nop(),
	})
}

func partnersDoc(t *testing.T, backend persist.Backend) *syncdoc.Document[[]domain.Partner] {
	t.Helper()
	adapter := persist.NewAdapter[[]domain.Partner](backend, domain.SlotPartners, zerolog.Nop())
	return syncdoc.Open(context.Background(), adapter, syncdoc.Options[[]domain.Partner]{
		Defaults:   domain.DefaultPartners(),
		Durability: syncdoc.Immediate,
		Normalize:  domain.UniquePartners,
		Logger:     zerolog.Nop(),
	})
}

// steppingClock returns start, then start plus step, and so on.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(step)
		return now
	}
}
