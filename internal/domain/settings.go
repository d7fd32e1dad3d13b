package domain

// AdminSettings is the platform-wide configuration edited by administrators.
type AdminSettings struct {
	General       GeneralSettings      `json:"general"`
	Appearance    AppearanceSettings   `json:"appearance"`
	Notifications NotificationSettings `json:"notifications"`
}

type GeneralSettings struct {
	SiteName           string `json:"siteName" validate:"required,max=120"`
	SiteDescription    string `json:"siteDescription" validate:"max=500"`
	ContactEmail       string `json:"contactEmail" validate:"omitempty,email"`
	SupportPhone       string `json:"supportPhone"`
	Timezone           string `json:"timezone"`
	Language           string `json:"language" validate:"required,bcp47_language_tag"`
	MaintenanceMode    bool   `json:"maintenanceMode"`
	AllowRegistrations bool   `json:"allowRegistrations"`
}

type AppearanceSettings struct {
	Theme          string `json:"theme" validate:"required,oneof=light dark system"`
	PrimaryColor   string `json:"primaryColor" validate:"omitempty,hexcolor"`
	SecondaryColor string `json:"secondaryColor" validate:"omitempty,hexcolor"`
	LogoURL        string `json:"logoUrl" validate:"omitempty,url"`
	FaviconURL     string `json:"faviconUrl" validate:"omitempty,url"`
	FontFamily     string `json:"fontFamily"`
}

type NotificationSettings struct {
	EmailNotifications bool `json:"emailNotifications"`
	PushNotifications  bool `json:"pushNotifications"`
	NewUserAlerts      bool `json:"newUserAlerts"`
	NewJobAlerts       bool `json:"newJobAlerts"`
	WeeklyDigest       bool `json:"weeklyDigest"`
	SystemAlerts       bool `json:"systemAlerts"`
}

// EmployerSettings is the configuration of a single employer account.
type EmployerSettings struct {
	Company     CompanySettings     `json:"company"`
	Recruitment RecruitmentSettings `json:"recruitment"`
}

type CompanySettings struct {
	Name        string `json:"name" validate:"max=120"`
	Website     string `json:"website" validate:"omitempty,url"`
	Industry    string `json:"industry"`
	Size        string `json:"size" validate:"omitempty,oneof=1-10 11-50 51-200 201-500 501-1000 1000+"`
	Location    string `json:"location"`
	Description string `json:"description" validate:"max=2000"`
	LogoURL     string `json:"logoUrl" validate:"omitempty,url"`
}

type RecruitmentSettings struct {
	AutoReply              bool   `json:"autoReply"`
	AutoReplyMessage       string `json:"autoReplyMessage" validate:"max=1000"`
	DefaultJobDurationDays int    `json:"defaultJobDurationDays" validate:"min=1,max=365"`
	RequireCoverLetter     bool   `json:"requireCoverLetter"`
	NotifyOnApplication    bool   `json:"notifyOnApplication"`
	AllowRemote            bool   `json:"allowRemote"`
}

// DefaultAdminSettings returns the settings used when nothing has been persisted.
func DefaultAdminSettings() AdminSettings {
	return AdminSettings{
		General: GeneralSettings{
			SiteName:           "CareerSync",
			SiteDescription:    "Connecting job seekers, freelancers and employers",
			ContactEmail:       "support@careersync.example",
			SupportPhone:       "",
			Timezone:           "UTC",
			Language:           "en",
			MaintenanceMode:    false,
			AllowRegistrations: true,
		},
		Appearance: AppearanceSettings{
			Theme:          "system",
			PrimaryColor:   "#2563eb",
			SecondaryColor: "#64748b",
			FontFamily:     "Inter",
		},
		Notifications: NotificationSettings{
			EmailNotifications: true,
			PushNotifications:  false,
			NewUserAlerts:      true,
			NewJobAlerts:       true,
			WeeklyDigest:       true,
			SystemAlerts:       true,
		},
	}
}

// DefaultEmployerSettings returns the settings used when nothing has been persisted.
func DefaultEmployerSettings() EmployerSettings {
	return EmployerSettings{
		Company: CompanySettings{
			Size: "1-10",
		},
		Recruitment: RecruitmentSettings{
			AutoReply:              false,
			AutoReplyMessage:       "Thank you for your application. We will be in touch soon.",
			DefaultJobDurationDays: 30,
			RequireCoverLetter:     false,
			NotifyOnApplication:    true,
			AllowRemote:            true,
		},
	}
}
