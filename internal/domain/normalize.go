package domain

// UniqueContent drops items whose ID was already seen, keeping order.
func UniqueContent(items []ContentItem) []ContentItem {
	return uniqueBy(items, func(c ContentItem) string { return c.ID })
}

// UniquePartners drops partners whose ID was already seen, keeping order.
func UniquePartners(partners []Partner) []Partner {
	return uniqueBy(partners, func(p Partner) string { return p.ID })
}

func uniqueBy[T any](items []T, id func(T) string) []T {
	seen := make(map[string]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		key := id(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
