package access

type AccessState string

const (
	AccessFree    AccessState = "free"
	AccessPremium AccessState = "premium"
)

const (
	CapabilityBrowse         = "browse"
	CapabilityAuthor         = "author"
	CapabilityPremiumLessons = "premium_lessons"
	CapabilityModerate       = "moderate"
)
