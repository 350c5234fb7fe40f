// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package views renders the HTML pages from templates embedded in the binary.
//
// Every page is executed through html/template, so journal content and
// usernames are escaped for the context they appear in. Pages share one
// layout that shows the navigation, flash messages and the logout form.
package views
