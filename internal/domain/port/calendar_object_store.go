// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package port

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
)

// CalendarObjectStore reads and writes raw calendar objects by event path.
type CalendarObjectStore interface {
	// GetCalendarObject returns the object with its current ETag, or a
	// NotFound error.
	GetCalendarObject(ctx context.Context, path string) (*model.CalendarObject, error)

	// PutCalendarObject writes the object. A non-empty ETag makes the write
	// conditional: a Conflict error is returned when the stored revision
	// moved. The new ETag is returned.
	PutCalendarObject(ctx context.Context, object *model.CalendarObject) (string, error)
}
