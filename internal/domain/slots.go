package domain

// Slot names. These are part of the persisted format and must not change.
const (
	SlotAdminSettings    = "admin_settings"
	SlotEmployerSettings = "employer_settings"
	SlotContent          = "cms_content"
	SlotPartners         = "partners"
	SlotAnalyticsEvents  = "analytics_events"
	SlotSyncTimestamp    = "realtime_sync"
	SlotSyncData         = "realtime_sync_data"
)

// DocumentSlots lists the slots holding synced documents, in display order.
var DocumentSlots = []string{
	SlotAdminSettings,
	SlotEmployerSettings,
	SlotContent,
	SlotPartners,
}
