package site

import "time"

// BuildReport summarizes one generation run.
type BuildReport struct {
	BuildID   string        `json:"build_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	SiteURL   string        `json:"site_url"`
	Pages     int           `json:"pages"`
	Assets    int           `json:"assets"`
}
