package binding

import (
	"context"

	"github.com/dyluth/careersync/internal/domain"
	"github.com/dyluth/careersync/internal/syncdoc"
)

// EmployerSettings binds an employer's settings document. Edits stay local
// to the process until SaveAllSettings.
type EmployerSettings struct {
	*Binding[domain.EmployerSettings]
	opts hookOptions
}

// NewEmployerSettings creates a mounted hook.
func NewEmployerSettings(doc *syncdoc.Document[domain.EmployerSettings], opts ...Option) *EmployerSettings {
	h := &EmployerSettings{Binding: Bind(doc), opts: newHookOptions(opts)}
	h.Mount()
	return h
}

func (h *EmployerSettings) Settings() domain.EmployerSettings { return h.Value() }

func (h *EmployerSettings) CompanySettings() domain.CompanySettings { return h.Value().Company }

func (h *EmployerSettings) RecruitmentSettings() domain.RecruitmentSettings {
	return h.Value().Recruitment
}

func (h *EmployerSettings) UpdateCompanySettings(ctx context.Context, fn func(*domain.CompanySettings)) error {
	return h.update(ctx, func(s *domain.EmployerSettings) { fn(&s.Company) }, "Company profile updated")
}

func (h *EmployerSettings) UpdateRecruitmentSettings(ctx context.Context, fn func(*domain.RecruitmentSettings)) error {
	return h.update(ctx, func(s *domain.EmployerSettings) { fn(&s.Recruitment) }, "Recruitment settings updated")
}

func (h *EmployerSettings) update(ctx context.Context, fn func(*domain.EmployerSettings), message string) error {
	if err := h.opts.settle(ctx); err != nil {
		return err
	}
	_, err := h.doc.Update(ctx, func(s *domain.EmployerSettings) error {
		fn(s)
		return domain.Validate(*s)
	})
	if err != nil {
		return err
	}
	h.opts.confirm(h, message)
	return nil
}

// SetField sets one field addressed as section.field, e.g. company.name.
func (h *EmployerSettings) SetField(ctx context.Context, path, value string) error {
	if err := h.opts.settle(ctx); err != nil {
		return err
	}
	if err := setField(ctx, h.doc, path, value); err != nil {
		return err
	}
	h.opts.confirm(h, "Setting "+path+" updated")
	return nil
}

func (h *EmployerSettings) SaveAllSettings(ctx context.Context) error {
	if err := h.opts.settle(ctx); err != nil {
		return err
	}
	if !h.doc.Save(ctx) {
		h.opts.warn(h, "Settings could not be saved; changes are kept for this session")
		return ErrNotPersisted
	}
	h.opts.confirm(h, "Employer settings saved")
	return nil
}

func (h *EmployerSettings) HasUnsavedChanges() bool {
	return h.doc.Dirty()
}

func (h *EmployerSettings) ResetSettings(ctx context.Context) error {
	if err := h.opts.settle(ctx); err != nil {
		return err
	}
	h.doc.Reset(ctx)
	h.opts.confirm(h, "Employer settings reset to defaults")
	return nil
}
