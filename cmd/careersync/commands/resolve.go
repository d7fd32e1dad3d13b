package commands

import (
	"errors"

	"github.com/dyluth/careersync/internal/domain"
	"github.com/dyluth/careersync/internal/printer"
	"github.com/dyluth/careersync/internal/resolver"
)

func contentIDs(items []domain.ContentItem) []string {
	ids := make([]string, len(items))
	for i, c := range items {
		ids[i] = c.ID
	}
	return ids
}

func partnerIDs(partners []domain.Partner) []string {
	ids := make([]string, len(partners))
	for i, p := range partners {
		ids[i] = p.ID
	}
	return ids
}

// resolveID maps a full or short id to one record, printing a friendly error.
func resolveID(kind string, ids []string, ref string) (string, error) {
	id, err := resolver.Resolve(kind, ids, ref)
	if err == nil {
		return id, nil
	}

	var amb *resolver.AmbiguousError
	if errors.As(err, &amb) {
		return "", printer.Error("ambiguous id", resolver.FormatAmbiguousError(amb), nil)
	}
	return "", printer.Error(
		kind+" not found",
		err.Error(),
		[]string{"Use at least 6 characters of a generated id, or the full id"},
	)
}

// validationError prints field-level validation failures.
func validationError(title string, err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return printer.ErrorWithContext(title, "The record failed validation.", verr.Fields, nil)
	}
	return printer.Error(title, err.Error(), nil)
}
