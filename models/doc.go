// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain and response types shared by the server.

# Domain Types

  - User: a journal account, keyed by lowercase username
  - Entry: one journal entry, owned by exactly one user
  - EntryInput: the editable fields of an entry, as parsed from a form
  - Download: one of the two password-gated files

# Journal Vocabulary

The entry form offers a fixed vocabulary:

	JournalFocuses  // seven focuses, each with a prompt in FocusPrompts
	MoodOptions     // excellent, good, okay, bad, awful
	EnergyLevels    // High, Medium, Low

Tags are free text, normalized by ParseTags:

	models.ParseTags("Work, personal,, WORK") // ["work", "personal"]

# Response Types

  - HealthResponse: status, backup, store
  - ErrorResponse: error, message
*/
package models
