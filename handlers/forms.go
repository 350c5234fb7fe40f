// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Dr-Payne25/GVisit/models"
)

// Form messages
const (
	msgUsernameTooShort  = "Username must be at least 3 characters long"
	msgUsernameInvalid   = "Username may only contain letters, numbers, underscores and hyphens (max 30 characters)"
	msgPasswordTooShort  = "Password must be at least 6 characters long"
	msgPasswordTooLong   = "Password must be at most 128 characters long"
	msgPasswordsMismatch = "Passwords do not match"
	msgRequiredFields    = "Please fill in all required fields."
	msgContentTooLong    = "Journal entries are limited to 10,000 characters."
	msgFieldTooLong      = "One of the fields is too long."
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

var formValidate *validator.Validate

func init() {
	formValidate = validator.New()

	_ = formValidate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = formValidate.RegisterValidation("focus", func(fl validator.FieldLevel) bool {
		return models.IsValidFocus(fl.Field().String())
	})
	_ = formValidate.RegisterValidation("mood", func(fl validator.FieldLevel) bool {
		return models.IsValidMood(fl.Field().String())
	})
	_ = formValidate.RegisterValidation("energy", func(fl validator.FieldLevel) bool {
		return models.IsValidEnergy(fl.Field().String())
	})
}

type registerForm struct {
	Username string `validate:"min=3,max=30,username"`
	Password string `validate:"min=6,max=128"`
	Confirm  string `validate:"eqfield=Password"`
}

func parseRegisterForm(form url.Values) registerForm {
	return registerForm{
		Username: strings.TrimSpace(form.Get("username")),
		Password: form.Get("password"),
		Confirm:  form.Get("confirm_password"),
	}
}

// validate returns the message for the first problem, checked in field order
func (f registerForm) validate() string {
	err := formValidate.Struct(f)
	if err == nil {
		return ""
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return msgRequiredFields
	}
	fe := errs[0]
	switch fe.Field() {
	case "Username":
		if fe.Tag() == "min" {
			return msgUsernameTooShort
		}
		return msgUsernameInvalid
	case "Password":
		if fe.Tag() == "min" {
			return msgPasswordTooShort
		}
		return msgPasswordTooLong
	default:
		return msgPasswordsMismatch
	}
}

type entryForm struct {
	Focus      string   `validate:"required,focus"`
	Content    string   `validate:"required,max=10000"`
	Mood       string   `validate:"required,mood"`
	Energy     string   `validate:"required,energy"`
	Gratitude  []string `validate:"max=3,dive,max=200"`
	ActionItem string   `validate:"max=500"`
	Tags       string   `validate:"max=500"`
}

func parseEntryForm(form url.Values) entryForm {
	f := entryForm{
		Focus:      strings.TrimSpace(form.Get("focus")),
		Content:    form.Get("content"),
		Mood:       strings.TrimSpace(form.Get("mood")),
		Energy:     strings.TrimSpace(form.Get("energy")),
		ActionItem: strings.TrimSpace(form.Get("action_item")),
		Tags:       form.Get("tags"),
		Gratitude:  []string{},
	}
	for i := 1; i <= models.MaxGratitudeItems; i++ {
		if item := strings.TrimSpace(form.Get(fmt.Sprintf("gratitude_%d", i))); item != "" {
			f.Gratitude = append(f.Gratitude, item)
		}
	}
	return f
}

func (f entryForm) validate() string {
	// Whitespace-only content counts as missing
	if strings.TrimSpace(f.Content) == "" {
		return msgRequiredFields
	}

	err := formValidate.Struct(f)
	if err == nil {
		return ""
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return msgRequiredFields
	}
	for _, fe := range errs {
		if fe.Tag() != "max" {
			return msgRequiredFields
		}
	}
	if errs[0].Field() == "Content" {
		return msgContentTooLong
	}
	return msgFieldTooLong
}

func (f entryForm) input() models.EntryInput {
	return models.EntryInput{
		Focus:      f.Focus,
		Content:    f.Content,
		Mood:       f.Mood,
		Energy:     f.Energy,
		Gratitude:  f.Gratitude,
		ActionItem: f.ActionItem,
		Tags:       models.ParseTags(f.Tags),
	}
}
