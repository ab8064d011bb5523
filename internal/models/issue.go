package models

import "time"

type (
	// Issue is an open issue returned by the issue tracker.
	Issue struct {
		Number    int
		Title     string
		Body      string
		Author    string
		Labels    []string
		URL       string
		UpdatedAt time.Time
	}

	// Comment is a single comment posted on an issue.
	Comment struct {
		Author string
		Body   string
	}
)
