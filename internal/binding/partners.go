package binding

import (
	"context"
	"fmt"

	"github.com/dyluth/careersync/internal/domain"
	"github.com/dyluth/careersync/internal/syncdoc"
	"github.com/google/uuid"
)

// Partners binds the partner directory. Every mutation is persisted immediately.
type Partners struct {
	*Binding[[]domain.Partner]
	opts hookOptions
}

// NewPartners creates a mounted hook.
func NewPartners(doc *syncdoc.Document[[]domain.Partner], opts ...Option) *Partners {
	h := &Partners{Binding: Bind(doc), opts: newHookOptions(opts)}
	h.Mount()
	return h
}

func (h *Partners) Partners() []domain.Partner { return h.Value() }

// AddPartner appends a partner with a generated id. Status defaults to active.
func (h *Partners) AddPartner(ctx context.Context, in domain.PartnerInput) (domain.Partner, error) {
	if err := h.opts.settle(ctx); err != nil {
		return domain.Partner{}, err
	}

	p := domain.Partner{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Logo:        in.Logo,
		Website:     in.Website,
		Category:    in.Category,
		Status:      in.Status,
		Description: in.Description,
		CreatedAt:   h.opts.now(),
	}
	if p.Status == "" {
		p.Status = domain.PartnerStatusActive
	}
	if err := domain.Validate(p); err != nil {
		return domain.Partner{}, err
	}

	_, persisted, err := h.doc.Commit(ctx, func(list *[]domain.Partner) error {
		for _, existing := range *list {
			if existing.ID == p.ID {
				return fmt.Errorf("partner id %s already exists", p.ID)
			}
		}
		*list = append(*list, p)
		return nil
	})
	if err != nil {
		return domain.Partner{}, err
	}

	h.opts.report(h, persisted, fmt.Sprintf("Partner %q added", p.Name))
	return p, nil
}

// UpdatePartner applies patch to the partner with the given id.
func (h *Partners) UpdatePartner(ctx context.Context, id string, patch domain.PartnerPatch) (domain.Partner, error) {
	if err := h.opts.settle(ctx); err != nil {
		return domain.Partner{}, err
	}

	var updated domain.Partner
	_, persisted, err := h.doc.Commit(ctx, func(list *[]domain.Partner) error {
		i := indexOfPartner(*list, id)
		if i < 0 {
			return fmt.Errorf("partner %s: %w", id, ErrNotFound)
		}
		p := (*list)[i]
		patch.Apply(&p)
		if err := domain.Validate(p); err != nil {
			return err
		}
		(*list)[i] = p
		updated = p
		return nil
	})
	if err != nil {
		return domain.Partner{}, err
	}

	h.opts.report(h, persisted, fmt.Sprintf("Partner %q updated", updated.Name))
	return updated, nil
}

// TogglePartnerStatus flips a partner between active and inactive.
func (h *Partners) TogglePartnerStatus(ctx context.Context, id string) (domain.Partner, error) {
	p, ok := h.GetPartner(id)
	if !ok {
		return domain.Partner{}, fmt.Errorf("partner %s: %w", id, ErrNotFound)
	}

	next := domain.PartnerStatusInactive
	if !p.Active() {
		next = domain.PartnerStatusActive
	}
	return h.UpdatePartner(ctx, id, domain.PartnerPatch{Status: &next})
}

// DeletePartner removes the partner with the given id.
func (h *Partners) DeletePartner(ctx context.Context, id string) error {
	if err := h.opts.settle(ctx); err != nil {
		return err
	}

	_, persisted, err := h.doc.Commit(ctx, func(list *[]domain.Partner) error {
		i := indexOfPartner(*list, id)
		if i < 0 {
			return fmt.Errorf("partner %s: %w", id, ErrNotFound)
		}
		*list = append((*list)[:i], (*list)[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}

	h.opts.report(h, persisted, "Partner removed")
	return nil
}

func (h *Partners) GetPartner(id string) (domain.Partner, bool) {
	list := h.Value()
	if i := indexOfPartner(list, id); i >= 0 {
		return list[i], true
	}
	return domain.Partner{}, false
}

func (h *Partners) PartnersByCategory(category string) []domain.Partner {
	var out []domain.Partner
	for _, p := range h.Value() {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

func (h *Partners) ActivePartners() []domain.Partner {
	var out []domain.Partner
	for _, p := range h.Value() {
		if p.Active() {
			out = append(out, p)
		}
	}
	return out
}

func indexOfPartner(list []domain.Partner, id string) int {
	for i, p := range list {
		if p.ID == id {
			return i
		}
	}
	return -1
}
