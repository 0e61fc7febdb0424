// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package calendar

import (
	"net/url"
	"strings"
)

// IsAbsoluteURL reports whether location carries a scheme and a host, e.g.
// https://meet.example.org/room.
func IsAbsoluteURL(location string) bool {
	location = strings.TrimSpace(location)
	if location == "" || strings.ContainsAny(location, " \t\r\n") {
		return false
	}
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// IsValidURL reports whether location is a link templates can render, either
// absolute or a bare dotted host such as meet.example.org/room.
func IsValidURL(location string) bool {
	if IsAbsoluteURL(location) {
		return true
	}
	location = strings.TrimSpace(location)
	if location == "" || strings.ContainsAny(location, " \t\r\n") {
		return false
	}
	u, err := url.Parse("//" + location)
	if err != nil {
		return false
	}
	if u.User != nil {
		return false
	}
	host := u.Hostname()
	return strings.Contains(host, ".") && !strings.HasPrefix(host, ".") && !strings.HasSuffix(host, ".")
}
