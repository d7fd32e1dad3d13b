// Package domain defines the records synced by careersync: admin and employer
// settings, CMS content items, the partner directory, analytics events and the
// cross-instance sync signal. It also owns the slot names those records are
// persisted under, their defaults and their validation rules.
package domain
