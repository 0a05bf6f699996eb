package model

// All lists every storage document, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&SocialProfile{},
		&SocialMetrics{},
		&ContentSuggestion{},
	}
}
