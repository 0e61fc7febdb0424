// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package calendar

import (
	"sort"
	"strings"

	"github.com/emersion/go-ical"
)

// canonicalText serializes comp with property names and parameter names
// sorted. Properties sharing a name keep their document order, as do child
// components. Two components parsed from the same text always produce the
// same output.
func canonicalText(comp *ical.Component) string {
	if comp == nil {
		return ""
	}
	var b strings.Builder
	writeCanonical(&b, comp)
	return b.String()
}

func writeCanonical(b *strings.Builder, comp *ical.Component) {
	b.WriteString("BEGIN:")
	b.WriteString(comp.Name)
	b.WriteByte('\n')

	names := make([]string, 0, len(comp.Props))
	for name := range comp.Props {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, prop := range comp.Props[name] {
			b.WriteString(name)
			writeParams(b, prop.Params)
			b.WriteByte(':')
			b.WriteString(prop.Value)
			b.WriteByte('\n')
		}
	}

	for _, child := range comp.Children {
		writeCanonical(b, child)
	}

	b.WriteString("END:")
	b.WriteString(comp.Name)
	b.WriteByte('\n')
}

func writeParams(b *strings.Builder, params ical.Params) {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		b.WriteByte(';')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(strings.Join(params[key], ","))
	}
}
