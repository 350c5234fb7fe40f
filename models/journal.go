// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Journal focus constants
const (
	FocusDailyReflection = "Daily Reflection"
	FocusWeeklyGoals     = "Weekly Goals"
	FocusMonthlyReview   = "Monthly Review"
	FocusBrainDump       = "Brain Dump"
	FocusGratitudeList   = "Gratitude List"
	FocusProjectPlanning = "Project Planning"
	FocusLearningLog     = "Learning Log"
)

// JournalFocuses is the ordered list shown in the entry form.
var JournalFocuses = []string{
	FocusDailyReflection,
	FocusWeeklyGoals,
	FocusMonthlyReview,
	FocusBrainDump,
	FocusGratitudeList,
	FocusProjectPlanning,
	FocusLearningLog,
}

// FocusPrompts maps each focus to its writing prompt.
var FocusPrompts = map[string]string{
	FocusDailyReflection: "What was a win today? What was a challenge? What did you learn?",
	FocusWeeklyGoals:     "What are your top 3 goals for this week? What steps will you take?",
	FocusMonthlyReview:   "What progress did you make this month? What habits served you well?",
	FocusBrainDump:       "What's on your mind? Get it all out here...",
	FocusGratitudeList:   "List everything you're grateful for today, big or small.",
	FocusProjectPlanning: "What project are you working on? Break down the next steps.",
	FocusLearningLog:     "What did you learn today? How can you apply it?",
}

type MoodOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var MoodOptions = []MoodOption{
	{Value: "excellent", Label: "😀 Excellent"},
	{Value: "good", Label: "🙂 Good"},
	{Value: "okay", Label: "😐 Okay"},
	{Value: "bad", Label: "🙁 Bad"},
	{Value: "awful", Label: "😩 Awful"},
}

var EnergyLevels = []string{"High", "Medium", "Low"}

// MaxGratitudeItems is the number of gratitude inputs on the entry form.
const MaxGratitudeItems = 3

// MaxContentLength bounds journal content, in characters.
const MaxContentLength = 10000

func IsValidFocus(focus string) bool {
	_, ok := FocusPrompts[focus]
	return ok
}

func IsValidMood(mood string) bool {
	for _, m := range MoodOptions {
		if m.Value == mood {
			return true
		}
	}
	return false
}

func IsValidEnergy(energy string) bool {
	for _, e := range EnergyLevels {
		if e == energy {
			return true
		}
	}
	return false
}

// MoodLabel returns the display label for a mood value, or the value itself.
func MoodLabel(mood string) string {
	for _, m := range MoodOptions {
		if m.Value == mood {
			return m.Label
		}
	}
	return mood
}

// Downloads are the two password-gated files, keyed by id.
// File names are fixed here and never derived from request input.
var Downloads = map[string]Download{
	"ppt1": {ID: "ppt1", FileName: "presentation1.pptx", Title: "Presentation 1"},
	"ppt2": {ID: "ppt2", FileName: "presentation2.pptx", Title: "Presentation 2"},
}

// DownloadIDs lists download ids in display order.
var DownloadIDs = []string{"ppt1", "ppt2"}

// LookupDownload returns the download registered under id.
func LookupDownload(id string) (Download, bool) {
	d, ok := Downloads[id]
	return d, ok
}
