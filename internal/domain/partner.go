package domain

import "time"

type PartnerStatus string

const (
	PartnerStatusActive   PartnerStatus = "active"
	PartnerStatusInactive PartnerStatus = "inactive"
)

// Partner is an entry of the partner directory. IDs are unique within the list.
type Partner struct {
	ID          string        `json:"id" validate:"required"`
	Name        string        `json:"name" validate:"required,max=120"`
	Logo        string        `json:"logo" validate:"omitempty,url"`
	Website     string        `json:"website" validate:"omitempty,url"`
	Category    string        `json:"category" validate:"required"`
	Status      PartnerStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	Description string        `json:"description,omitempty" validate:"max=1000"`
	CreatedAt   time.Time     `json:"createdAt,omitzero"`
}

// Active reports whether the partner is shown publicly. A missing status counts as active.
func (p Partner) Active() bool {
	return p.Status != PartnerStatusInactive
}

// PartnerInput carries the caller-supplied fields of a new partner.
type PartnerInput struct {
	Name        string        `json:"name"`
	Logo        string        `json:"logo,omitempty"`
	Website     string        `json:"website,omitempty"`
	Category    string        `json:"category"`
	Status      PartnerStatus `json:"status,omitempty"`
	Description string        `json:"description,omitempty"`
}

// PartnerPatch updates the non-nil fields of a partner.
type PartnerPatch struct {
	Name        *string        `json:"name,omitempty"`
	Logo        *string        `json:"logo,omitempty"`
	Website     *string        `json:"website,omitempty"`
	Category    *string        `json:"category,omitempty"`
	Status      *PartnerStatus `json:"status,omitempty"`
	Description *string        `json:"description,omitempty"`
}

// Apply copies every non-nil field onto p.
func (pp PartnerPatch) Apply(p *Partner) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Logo != nil {
		p.Logo = *pp.Logo
	}
	if pp.Website != nil {
		p.Website = *pp.Website
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.Status != nil {
		p.Status = *pp.Status
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
}

// DefaultPartners returns the seed directory shown before anything is persisted.
func DefaultPartners() []Partner {
	return []Partner{
		{
			ID:       "partner-techcorp",
			Name:     "TechCorp",
			Logo:     "https://cdn.careersync.example/partners/techcorp.png",
			Website:  "https://techcorp.example",
			Category: "technology",
			Status:   PartnerStatusActive,
		},
		{
			ID:       "partner-northwind",
			Name:     "Northwind Academy",
			Logo:     "https://cdn.careersync.example/partners/northwind.png",
			Website:  "https://northwind.example",
			Category: "education",
			Status:   PartnerStatusActive,
		},
		{
			ID:       "partner-brightpath",
			Name:     "BrightPath Staffing",
			Logo:     "https://cdn.careersync.example/partners/brightpath.png",
			Website:  "https://brightpath.example",
			Category: "recruitment",
			Status:   PartnerStatusInactive,
		},
	}
}
