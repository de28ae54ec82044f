package model

// MatchResult is the matcher's guess for one filename. UserID is nil when no
// user reached the acceptance threshold; Score is reported either way.
type MatchResult struct {
	Filename string `json:"filename"`
	UserID   *int64 `json:"user_id"`
	Score    int    `json:"score"`
	Rule     string `json:"rule,omitempty"`
}

// Matched reports whether an owner was found.
func (r MatchResult) Matched() bool { return r.UserID != nil }

// Assignment is the admin-confirmed owner of a file.
type Assignment struct {
	Filename string `json:"filename"`
	UserID   int64  `json:"user_id"`
}
