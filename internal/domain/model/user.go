// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package model

import "strings"

// Domain is the organization a user or a resource belongs to.
type Domain struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// User is a platform account as returned by the user directory.
type User struct {
	ID             string   `json:"_id"`
	Firstname      string   `json:"firstname"`
	Lastname       string   `json:"lastname"`
	Emails         []string `json:"emails"`
	PreferredEmail string   `json:"preferredEmail"`
	Domains        []Domain `json:"domains"`
}

// DisplayName joins first and last name, falling back to the first email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.Firstname + " " + u.Lastname)
	if name == "" {
		return u.FirstEmail()
	}
	return name
}

// FirstEmail returns the first registered email address.
func (u *User) FirstEmail() string {
	if u == nil || len(u.Emails) == 0 {
		return ""
	}
	return u.Emails[0]
}

// HasDomain reports whether the user belongs to at least one domain.
func (u *User) HasDomain() bool {
	return u != nil && len(u.Domains) > 0
}

// DatetimeOptions are the date display preferences of a user.
type DatetimeOptions struct {
	TimeZone        string `json:"timeZone"`
	Use24HourFormat bool   `json:"use24hourFormat"`
}
