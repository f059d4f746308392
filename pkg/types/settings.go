package types

// Versions of the settings and highlights onboarding surfaces. Clients
// compare these against the seen_* fields to decide whether to show
// changelog hints.
const (
	LatestSettingsVersion   = 1
	LatestHighlightsVersion = 1
)

// Settings is the versioned singleton record stored under SettingsKey. All
// fields are optional; an absent record reads as the zero value. Updates are
// shallow merge patches, never full overwrites.
type Settings struct {
	TutorialStage         *int `json:"tutorial_stage,omitempty"`
	SeenSettingsVersion   *int `json:"seen_settings_version,omitempty"`
	SeenHighlightsVersion *int `json:"seen_highlights_version,omitempty"`
}

// Merge overlays patch onto s and returns the result. Fields unset in the
// patch persist from s.
func (s Settings) Merge(patch Settings) Settings {
	if patch.TutorialStage != nil {
		s.TutorialStage = patch.TutorialStage
	}
	if patch.SeenSettingsVersion != nil {
		s.SeenSettingsVersion = patch.SeenSettingsVersion
	}
	if patch.SeenHighlightsVersion != nil {
		s.SeenHighlightsVersion = patch.SeenHighlightsVersion
	}
	return s
}

// Sign-in providers recognized in UserInfo.
const (
	SigninEmail  = "email"
	SigninGoogle = "google"
	SigninGitHub = "github"
)

// UserInfo is the singleton record describing the signed-in user and
// entitlement flags, stored under UserInfoKey. Same merge-patch discipline
// as Settings.
type UserInfo struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`

	AccountEnabled bool   `json:"accountEnabled,omitempty"`
	SigninProvider string `json:"signinProvider,omitempty"`
	Email          string `json:"email,omitempty"`

	AIEnabled bool `json:"aiEnabled,omitempty"`
}

// UserInfoPatch is a shallow merge patch for UserInfo.
type UserInfoPatch struct {
	ID   *string `json:"id,omitempty"`
	Name *string `json:"name,omitempty"`

	AccountEnabled *bool   `json:"accountEnabled,omitempty"`
	SigninProvider *string `json:"signinProvider,omitempty"`
	Email          *string `json:"email,omitempty"`

	AIEnabled *bool `json:"aiEnabled,omitempty"`
}

// Merge overlays patch onto u and returns the result.
func (u UserInfo) Merge(patch UserInfoPatch) UserInfo {
	if patch.ID != nil {
		u.ID = *patch.ID
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.AccountEnabled != nil {
		u.AccountEnabled = *patch.AccountEnabled
	}
	if patch.SigninProvider != nil {
		u.SigninProvider = *patch.SigninProvider
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.AIEnabled != nil {
		u.AIEnabled = *patch.AIEnabled
	}
	return u
}
