package models

import (
	"sort"
	"strings"
	"time"
)

// EntryVersion is stamped on every entry written by this server.
const EntryVersion = "2.0"

// Store type constants
const (
	StoreJSON     = "json"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Tag limits
const (
	MaxTags      = 10
	MaxTagLength = 30
)

// Domain types

type User struct {
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	// RememberVersion is bumped on logout to revoke remember-me tokens
	RememberVersion int `json:"remember_version,omitempty"`
}

type Entry struct {
	ID         int        `json:"id"`
	Username   string     `json:"username"`
	Timestamp  string     `json:"timestamp"` // 2006-01-02 15:04:05, local time
	Date       string     `json:"date"`      // January 02, 2006
	Time       string     `json:"time"`      // 03:04 PM
	Focus      string     `json:"focus"`
	Content    string     `json:"content"`
	Mood       string     `json:"mood"`
	Energy     string     `json:"energy"`
	Gratitude  []string   `json:"gratitude"`
	ActionItem string     `json:"action_item"`
	Tags       []string   `json:"tags"`
	Version    string     `json:"version"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// Stamp fills the display timestamps from t.
func (e *Entry) Stamp(t time.Time) {
	e.Timestamp = t.Format("2006-01-02 15:04:05")
	e.Date = t.Format("January 02, 2006")
	e.Time = t.Format("03:04 PM")
}

// CreatedAt parses Timestamp back into a time. Zero if unparseable.
func (e Entry) CreatedAt() time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", e.Timestamp, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// EntryInput is the user-editable part of an entry.
type EntryInput struct {
	Focus      string
	Content    string
	Mood       string
	Energy     string
	Gratitude  []string
	ActionItem string
	Tags       []string
}

// Apply copies the editable fields onto e.
func (in EntryInput) Apply(e *Entry) {
	e.Focus = in.Focus
	e.Content = in.Content
	e.Mood = in.Mood
	e.Energy = in.Energy
	e.Gratitude = in.Gratitude
	e.ActionItem = in.ActionItem
	e.Tags = in.Tags
	if e.Gratitude == nil {
		e.Gratitude = []string{}
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
}

// HasTag reports whether the entry carries tag (case-insensitive).
func (e Entry) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// CountTags returns distinct tags across entries, most used first.
func CountTags(entries []Entry) []TagCount {
	counts := map[string]int{}
	for _, e := range entries {
		for _, t := range e.Tags {
			counts[t]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

// ParseTags splits a comma separated tag list into normalized tags.
// Tags are lowercased, trimmed, deduplicated and truncated to MaxTagLength.
// At most MaxTags are kept.
func ParseTags(raw string) []string {
	tags := []string{}
	seen := map[string]bool{}
	for _, part := range strings.Split(raw, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag == "" {
			continue
		}
		if r := []rune(tag); len(r) > MaxTagLength {
			tag = string(r[:MaxTagLength])
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
		if len(tags) == MaxTags {
			break
		}
	}
	return tags
}

type Download struct {
	ID       string
	FileName string
	Title    string
}

// Response types

type HealthResponse struct {
	Status string `json:"status"`
	Backup bool   `json:"backup"`
	Store  string `json:"store"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
