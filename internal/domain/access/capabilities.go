package access

func CapabilitiesFor(state AccessState, admin bool) []string {
	caps := []string{CapabilityBrowse, CapabilityAuthor}
	if state == AccessPremium {
		caps = append(caps, CapabilityPremiumLessons)
	}
	if admin {
		caps = append(caps, CapabilityModerate)
	}
	return caps
}
