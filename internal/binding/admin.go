package binding

import (
	"context"

	"github.com/dyluth/careersync/internal/domain"
	"github.com/dyluth/careersync/internal/syncdoc"
)

// AdminSettings binds the platform settings document. Edits stay local to
// the process until SaveAllSettings.
type AdminSettings struct {
	*Binding[domain.AdminSettings]
	opts hookOptions
}

// NewAdminSettings creates a mounted hook.
func NewAdminSettings(doc *syncdoc.Document[domain.AdminSettings], opts ...Option) *AdminSettings {
	h := &AdminSettings{Binding: Bind(doc), opts: newHookOptions(opts)}
	h.Mount()
	return h
}

func (h *AdminSettings) Settings() domain.AdminSettings { return h.Value() }

func (h *AdminSettings) GeneralSettings() domain.GeneralSettings { return h.Value().General }

func (h *AdminSettings) AppearanceSettings() domain.AppearanceSettings { return h.Value().Appearance }

func (h *AdminSettings) NotificationSettings() domain.NotificationSettings {
	return h.Value().Notifications
}

// UpdateGeneralSettings applies fn to the general section.
func (h *AdminSettings) UpdateGeneralSettings(ctx context.Context, fn func(*domain.GeneralSettings)) error {
	return h.update(ctx, func(s *domain.AdminSettings) { fn(&s.General) }, "General settings updated")
}

// UpdateAppearanceSettings applies fn to the appearance section.
func (h *AdminSettings) UpdateAppearanceSettings(ctx context.Context, fn func(*domain.AppearanceSettings)) error {
	return h.update(ctx, func(s *domain.AdminSettings) { fn(&s.Appearance) }, "Appearance settings updated")
}

// UpdateNotificationSettings applies fn to the notifications section.
func (h *AdminSettings) UpdateNotificationSettings(ctx context.Context, fn func(*domain.NotificationSettings)) error {
	return h.update(ctx, func(s *domain.AdminSettings) { fn(&s.Notifications) }, "Notification settings updated")
}

func (h *AdminSettings) update(ctx context.Context, fn func(*domain.AdminSettings), message string) error {
	if err := h.opts.settle(ctx); err != nil {
		return err
	}
	_, err := h.doc.Update(ctx, func(s *domain.AdminSettings) error {
		fn(s)
		return domain.Validate(*s)
	})
	if err != nil {
		return err
	}
	h.opts.confirm(h, message)
	return nil
}

// SetField sets one field addressed as section.field, e.g. general.siteName.
func (h *AdminSettings) SetField(ctx context.Context, path, value string) error {
	if err := h.opts.settle(ctx); err != nil {
		return err
	}
	if err := setField(ctx, h.doc, path, value); err != nil {
		return err
	}
	h.opts.confirm(h, "Setting "+path+" updated")
	return nil
}

// SaveAllSettings persists every pending edit.
func (h *AdminSettings) SaveAllSettings(ctx context.Context) error {
	if err := h.opts.settle(ctx); err != nil {
		return err
	}
	if !h.doc.Save(ctx) {
		h.opts.warn(h, "Settings could not be saved; changes are kept for this session")
		return ErrNotPersisted
	}
	h.opts.confirm(h, "All settings saved")
	return nil
}

// HasUnsavedChanges reports whether edits are pending.
func (h *AdminSettings) HasUnsavedChanges() bool {
	return h.doc.Dirty()
}

// ResetSettings restores the defaults. The reset is pending until saved.
func (h *AdminSettings) ResetSettings(ctx context.Context) error {
	if err := h.opts.settle(ctx); err != nil {
		return err
	}
	h.doc.Reset(ctx)
	h.opts.confirm(h, "Settings reset to defaults")
	return nil
}
