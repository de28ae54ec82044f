// Package matcher guesses which user a bulk-uploaded file belongs to from its
// filename. Matching is pure: the same filename and roster always give the
// same result, and nothing here touches I/O.
package matcher

import (
	"strings"

	"extranet/internal/model"
)

const (
	// DefaultThreshold is the lowest score that still yields an owner. It
	// equals the initials score so "RA_..." style prefixes are accepted while
	// three-letter fragments alone are not.
	DefaultThreshold = 75
	// DefaultWorkers bounds MatchBatch parallelism.
	DefaultWorkers = 8
)

// Rule names reported in MatchResult.Rule.
const (
	RuleExact       = "exact"
	RuleFullName    = "full_name"
	RuleBothNames   = "both_names"
	RuleEmail       = "email"
	RuleInitials    = "initials"
	RuleLastPrefix  = "last_prefix"
	RuleFirstPrefix = "first_prefix"
)

const (
	scoreExact      = 100
	scoreFullName   = 95
	scoreBothNames  = 90
	scoreEmail      = 85
	scoreInitials   = 75
	scoreNamePrefix = 70

	prefixLen = 3
)

// Matcher scores filenames against a roster. It holds only configuration and
// is safe for concurrent use.
type Matcher struct {
	threshold int
	workers   int
}

// New returns a Matcher. Out-of-range values fall back to the defaults.
func New(threshold, workers int) *Matcher {
	if threshold < 1 || threshold > 100 {
		threshold = DefaultThreshold
	}
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Matcher{threshold: threshold, workers: workers}
}

// Threshold returns the acceptance threshold in use.
func (m *Matcher) Threshold() int { return m.threshold }

// profile is the normalized view of one user, computed once per pass.
type profile struct {
	id          int64
	first       string
	last        string
	fullA       string
	fullB       string
	initials    []string
	email       string
	firstPrefix string
	lastPrefix  string
}

func newProfile(u model.User) profile {
	p := profile{
		id:    u.ID,
		first: NormalizeName(u.FirstName),
		last:  NormalizeName(u.LastName),
	}
	if p.first != "" && p.last != "" {
		p.fullA = p.first + " " + p.last
		p.fullB = p.last + " " + p.first
		fi, li := string([]rune(p.first)[0]), string([]rune(p.last)[0])
		p.initials = []string{fi + li, li + fi}
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		p.email = NormalizeName(u.Email[:at])
	}
	p.firstPrefix = runePrefix(p.first, prefixLen)
	p.lastPrefix = runePrefix(p.last, prefixLen)
	return p
}

func runePrefix(s string, n int) string {
	r := []rune(s)
	if len(r) < n {
		return ""
	}
	return string(r[:n])
}

// score applies every rule and keeps the highest one that fires.
func (p profile) score(file string) (int, string) {
	best, rule := 0, ""
	raise := func(ok bool, s int, r string) {
		if ok && s > best {
			best, rule = s, r
		}
	}

	hasBoth := p.fullA != ""
	raise(hasBoth && (file == p.fullA || file == p.fullB), scoreExact, RuleExact)
	raise(hasBoth && (strings.Contains(file, p.fullA) || strings.Contains(file, p.fullB)), scoreFullName, RuleFullName)
	raise(hasBoth && strings.Contains(file, p.first) && strings.Contains(file, p.last), scoreBothNames, RuleBothNames)

	emailHasName := (p.last != "" && strings.Contains(p.email, p.last)) ||
		(p.first != "" && strings.Contains(p.email, p.first))
	raise(p.email != "" && emailHasName && strings.Contains(file, p.email), scoreEmail, RuleEmail)

	for _, in := range p.initials {
		raise(strings.Contains(file, in), scoreInitials, RuleInitials)
	}
	raise(p.lastPrefix != "" && strings.Contains(file, p.lastPrefix), scoreNamePrefix, RuleLastPrefix)
	raise(p.firstPrefix != "" && strings.Contains(file, p.firstPrefix), scoreNamePrefix, RuleFirstPrefix)
	return best, rule
}

func buildProfiles(roster []model.User) []profile {
	out := make([]profile, len(roster))
	for i, u := range roster {
		out[i] = newProfile(u)
	}
	return out
}

// Match returns the best owner for filename. Below the threshold the owner is
// nil but the best score seen is still reported.
func (m *Matcher) Match(filename string, roster []model.User) model.MatchResult {
	return m.match(filename, buildProfiles(roster))
}

func (m *Matcher) match(filename string, profiles []profile) model.MatchResult {
	res := model.MatchResult{Filename: filename}
	file := Normalize(filename)
	if file == "" || len(profiles) == 0 {
		return res
	}

	var (
		bestID   int64
		found    bool
		bestRule string
	)
	for _, p := range profiles {
		s, rule := p.score(file)
		if s == 0 {
			continue
		}
		// Equal scores go to the lowest id so roster order never matters.
		if !found || s > res.Score || (s == res.Score && p.id < bestID) {
			res.Score, bestID, bestRule, found = s, p.id, rule, true
		}
	}

	if !found || res.Score < m.threshold {
		return res
	}
	id := bestID
	res.UserID = &id
	res.Rule = bestRule
	return res
}
