package models

// UnitSystem selects how weights are displayed.
type UnitSystem string

const (
	Metric   UnitSystem = "metric"
	Imperial UnitSystem = "imperial"
)

// Valid reports whether u is a known unit system.
func (u UnitSystem) Valid() bool {
	return u == Metric || u == Imperial
}

// Appearance is the colour scheme preference.
type Appearance string

const (
	AppearanceLight  Appearance = "light"
	AppearanceDark   Appearance = "dark"
	AppearanceSystem Appearance = "system"
)

// Valid reports whether a is a known appearance.
func (a Appearance) Valid() bool {
	switch a {
	case AppearanceLight, AppearanceDark, AppearanceSystem:
		return true
	}
	return false
}

// UserSettings is the process-wide user configuration.
type UserSettings struct {
	Units      UnitSystem `json:"units"`
	IsMuted    bool       `json:"isMuted"`
	Language   string     `json:"language"`
	Appearance Appearance `json:"appearance"`
	IsPro      bool       `json:"isPro"`
}

// DefaultSettings returns the settings used when nothing is persisted.
// The language is supplied by the caller (usually a system probe).
func DefaultSettings(language string) UserSettings {
	return UserSettings{
		Units:      Metric,
		IsMuted:    false,
		Language:   language,
		Appearance: AppearanceSystem,
		IsPro:      false,
	}
}
