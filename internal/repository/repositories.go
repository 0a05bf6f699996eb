package repository

import (
	"socialdash/internal/db"
	"socialdash/internal/logging"
	"socialdash/internal/model"
)

// Repositories holds one store per storage document.
type Repositories struct {
	Users       *Repository[model.User]
	Profiles    *Repository[model.SocialProfile]
	Metrics     *Repository[model.SocialMetrics]
	Suggestions *Repository[model.ContentSuggestion]
}

// NewRepositories builds every repository on a shared connector.
func NewRepositories(conn *db.Connector, logger logging.Logger) Repositories {
	return Repositories{
		Users:       New[model.User](conn, "user", logger),
		Profiles:    New[model.SocialProfile](conn, "socialProfile", logger),
		Metrics:     New[model.SocialMetrics](conn, "socialMetrics", logger),
		Suggestions: New[model.ContentSuggestion](conn, "contentSuggestion", logger),
	}
}
