// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// AuthorizationHeader is the header name for the authorization
const AuthorizationHeader string = "authorization"

// XOnBehalfOfHeader is the header name for the on behalf of principal
const XOnBehalfOfHeader string = "x-on-behalf-of"

// IfMatchHeader carries the ETag a CalDAV write is conditional on
const IfMatchHeader string = "If-Match"

// ContentTypeCalendar is the media type of iCalendar payloads
const ContentTypeCalendar string = "text/calendar; charset=utf-8"
