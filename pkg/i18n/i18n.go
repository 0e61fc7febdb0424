// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package i18n resolves user locales and provides the translated strings and
// date names used in calendar notifications.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The English text doubles as the key.
const (
	SubjectInvitation = "New event from %s: %s"
	SubjectUpdate     = "Event %s from %s updated"
	SubjectAccepted   = "Accepted: %s (%s)"
	SubjectDeclined   = "Declined: %s (%s)"
	SubjectTentative  = "Tentatively accepted: %s (%s)"
	SubjectReply      = "Participation updated: %s"
	SubjectCounter    = "New changes proposed to event %s"
	SubjectCancel     = "Event %s from %s canceled"
	SubjectAlarm      = "Notification: %s"

	ReplyAccepted  = "has accepted this invitation"
	ReplyDeclined  = "has declined this invitation"
	ReplyTentative = "has tentatively accepted this invitation"
	ReplyDefault   = "has changed his participation"
)

var supported = []language.Tag{
	language.English,
	language.French,
}

var (
	matcher      = language.NewMatcher(supported)
	translations = newCatalog()
)

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))

	fr := map[string]string{
		SubjectInvitation: "Nouvel événement de %s : %s",
		SubjectUpdate:     "L'événement %s de %s a été mis à jour",
		SubjectAccepted:   "Accepté : %s (%s)",
		SubjectDeclined:   "Refusé : %s (%s)",
		SubjectTentative:  "Accepté provisoirement : %s (%s)",
		SubjectReply:      "Participation mise à jour : %s",
		SubjectCounter:    "Nouvelles modifications proposées pour l'événement %s",
		SubjectCancel:     "L'événement %s de %s a été annulé",
		SubjectAlarm:      "Notification : %s",
		ReplyAccepted:     "a accepté cette invitation",
		ReplyDeclined:     "a refusé cette invitation",
		ReplyTentative:    "a accepté provisoirement cette invitation",
		ReplyDefault:      "a modifié sa participation",
	}

	for key, msg := range fr {
		// SetString only fails on malformed tags
		_ = b.SetString(language.French, key, msg)
		_ = b.SetString(language.English, key, key)
	}

	return b
}

// Match returns the supported language closest to locale, English when
// nothing matches.
func Match(locale string) language.Tag {
	if locale == "" {
		return language.English
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}

	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return language.English
	}
	return supported[index]
}

// Printer returns a message printer translating the keys of this package into
// the language matched by locale.
func Printer(locale string) *message.Printer {
	return message.NewPrinter(Match(locale), message.Catalog(translations))
}
