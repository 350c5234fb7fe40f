// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/Dr-Payne25/GVisit/models"
)

var (
	// ErrNotFound is returned for missing entries and for entries owned by
	// another user; callers cannot tell the two apart.
	ErrNotFound   = errors.New("not found")
	ErrUserExists = errors.New("username already exists")
)

type UserStore interface {
	GetUser(ctx context.Context, username string) (models.User, error)
	CreateUser(ctx context.Context, user models.User) error
	CountUsers(ctx context.Context) (int, error)
	// RevokeRemember invalidates every remember-me token issued to username.
	RevokeRemember(ctx context.Context, username string) error
}

// JournalStore methods that take a username only ever see that user's entries.
type JournalStore interface {
	ListEntries(ctx context.Context, username string, f Filter) ([]models.Entry, error)
	GetEntry(ctx context.Context, username string, id int) (models.Entry, error)
	AddEntry(ctx context.Context, username string, in models.EntryInput) (models.Entry, error)
	UpdateEntry(ctx context.Context, username string, id int, in models.EntryInput) (models.Entry, error)
	DeleteEntry(ctx context.Context, username string, id int) error
	Tags(ctx context.Context, username string) ([]models.TagCount, error)
	AllEntries(ctx context.Context) ([]models.Entry, error)
}

type Store interface {
	UserStore
	JournalStore
	// Kind is one of the models.Store* constants
	Kind() string
	Close() error
}

// Filter narrows a user's entry list. Empty fields match everything.
type Filter struct {
	Query string // substring of content, focus, action item, gratitude or tags
	Tag   string
	Mood  string
	Focus string
}

func (f Filter) IsZero() bool {
	return f == Filter{}
}

func (f Filter) Match(e models.Entry) bool {
	if f.Tag != "" && !e.HasTag(f.Tag) {
		return false
	}
	if f.Mood != "" && e.Mood != f.Mood {
		return false
	}
	if f.Focus != "" && e.Focus != f.Focus {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		fields := []string{e.Content, e.Focus, e.ActionItem}
		fields = append(fields, e.Gratitude...)
		fields = append(fields, e.Tags...)
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field), q) {
				return true
			}
		}
		return false
	}
	return true
}

// filterEntries returns username's entries matching f, newest first
func filterEntries(entries []models.Entry, username string, f Filter) []models.Entry {
	out := []models.Entry{}
	for _, e := range entries {
		if e.Username == username && f.Match(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func nextID(entries []models.Entry) int {
	highest := 0
	for _, e := range entries {
		if e.ID > highest {
			highest = e.ID
		}
	}
	return highest + 1
}
