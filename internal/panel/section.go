package panel

// Section is a named screen shown in the main panel.
type Section string

const (
	SectionDashboard   Section = "dashboard"
	SectionCompanies   Section = "companies"
	SectionServices    Section = "services"
	SectionSchedule    Section = "schedule"
	SectionBookings    Section = "bookings"
	SectionNewBookings Section = "new-bookings"
	SectionAnalytics   Section = "analytics"
	SectionReports     Section = "reports"
	SectionModeration  Section = "moderation"
	SectionTelegram    Section = "telegram"
	SectionProfile     Section = "profile"
)

// AllSections lists every section in navigation order.
var AllSections = []Section{
	SectionDashboard,
	SectionCompanies,
	SectionServices,
	SectionSchedule,
	SectionBookings,
	SectionNewBookings,
	SectionAnalytics,
	SectionReports,
	SectionModeration,
	SectionTelegram,
	SectionProfile,
}

var sectionTitles = map[Section]string{
	SectionDashboard:   "Situational Center",
	SectionCompanies:   "Companies",
	SectionServices:    "Services",
	SectionSchedule:    "Schedule",
	SectionBookings:    "Bookings",
	SectionNewBookings: "New Bookings",
	SectionAnalytics:   "Analytics",
	SectionReports:     "Reports",
	SectionModeration:  "Moderation",
	SectionTelegram:    "Telegram Bot",
	SectionProfile:     "Profile",
}

// ParseSection maps a raw key onto a known section.
func ParseSection(key string) (Section, bool) {
	s := Section(key)
	_, ok := sectionTitles[s]
	return s, ok
}

// Title returns the human readable section name, or the raw key for unknown sections.
func (s Section) Title() string {
	if t, ok := sectionTitles[s]; ok {
		return t
	}
	return string(s)
}

// TemplateID is the fragment id rendered into the main panel.
func (s Section) TemplateID() string {
	return string(s) + "-template"
}

// BottomPanelKind selects which bottom panel accompanies a section.
type BottomPanelKind string

const (
	BottomStats        BottomPanelKind = "stats"
	BottomCalendar     BottomPanelKind = "calendar"
	BottomDefaultStats BottomPanelKind = "default-stats"
)

// BottomPanelFor maps a section onto its bottom panel. Unknown sections get the default stats.
func BottomPanelFor(s Section) BottomPanelKind {
	switch s {
	case SectionBookings, SectionNewBookings, SectionSchedule:
		return BottomCalendar
	case SectionDashboard, SectionCompanies:
		return BottomStats
	default:
		return BottomDefaultStats
	}
}

// TemplateID is the fragment id for the bottom panel kind.
func (k BottomPanelKind) TemplateID() string {
	if k == BottomCalendar {
		return "bottom-panel-calendar-template"
	}
	return "bottom-panel-stats-template"
}
