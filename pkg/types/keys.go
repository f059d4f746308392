package types

// Key prefixes for replicated entity collections. Every entity is stored
// under its prefix followed by its id.
const (
	PrefixArticles      = "articles/"
	PrefixTopics        = "topics/"
	PrefixArticleTexts  = "text/"
	PrefixArticleLinks  = "link/"
	PrefixAnnotations   = "annotations/"
	PrefixSubscriptions = "feeds/"
)

// Singleton keys, each holding one JSON object.
const (
	SettingsKey         = "settings"
	UserInfoKey         = "userInfo"
	PartialSyncStateKey = "control/partialSync"
)
