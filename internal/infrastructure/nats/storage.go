// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package nats

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
	errs "github.com/linuxfoundation/lfx-v2-calendar-service/pkg/errors"

	"github.com/nats-io/nats.go/jetstream"
)

type storage struct {
	client *NATSClient
}

// get retrieves a model from the NATS KV store by bucket and key.
// It unmarshals the data into the provided model and returns the revision.
func (s *storage) get(ctx context.Context, bucket, key string, model any) (uint64, error) {
	if key == "" {
		return 0, errs.NewValidation("key cannot be empty")
	}

	kv, err := s.client.bucket(bucket)
	if err != nil {
		return 0, err
	}

	data, errGet := kv.Get(ctx, key)
	if errGet != nil {
		return 0, errGet
	}

	if errUnmarshal := json.Unmarshal(data.Value(), model); errUnmarshal != nil {
		return 0, errUnmarshal
	}

	return data.Revision(), nil
}

// put stores a model in the NATS KV store. A non-zero expectedRevision makes
// the write conditional.
func (s *storage) put(ctx context.Context, bucket, key string, model any, expectedRevision uint64) (uint64, error) {
	if key == "" {
		return 0, errs.NewValidation("key cannot be empty")
	}

	kv, err := s.client.bucket(bucket)
	if err != nil {
		return 0, err
	}

	data, err := json.Marshal(model)
	if err != nil {
		return 0, err
	}

	if expectedRevision == 0 {
		return kv.Put(ctx, key, data)
	}
	return kv.Update(ctx, key, data, expectedRevision)
}

// delete removes a key; a missing key is not an error.
func (s *storage) delete(ctx context.Context, bucket, key string) error {
	kv, err := s.client.bucket(bucket)
	if err != nil {
		return err
	}

	if err := kv.Delete(ctx, key); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		slog.ErrorContext(ctx, "failed to delete key", "error", err, "key", key, "bucket", bucket)
		return errs.NewServiceUnavailable("failed to delete key", err)
	}
	return nil
}

// keys lists the keys of bucket matching filter.
func (s *storage) keys(ctx context.Context, bucket, filter string) ([]string, error) {
	kv, err := s.client.bucket(bucket)
	if err != nil {
		return nil, err
	}

	lister, err := kv.ListKeysFiltered(ctx, filter)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, err
	}
	defer func() {
		if errStop := lister.Stop(); errStop != nil {
			slog.DebugContext(ctx, "failed to stop key lister", "error", errStop)
		}
	}()

	var keys []string
	for key := range lister.Keys() {
		keys = append(keys, key)
	}
	return keys, nil
}

// isConflict reports whether err is a revision mismatch on a conditional write.
func isConflict(err error) bool {
	if errors.Is(err, jetstream.ErrKeyExists) {
		return true
	}
	var apiErr *jetstream.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
}

// IsReady checks if the storage is ready by verifying the client connection
func (s *storage) IsReady(ctx context.Context) error {
	return s.client.IsReady(ctx)
}

// ==================== CALENDAR OBJECTS ====================

type calendarObjectStore struct {
	storage
}

// GetCalendarObject retrieves the object stored at path, its revision being the ETag
func (s *calendarObjectStore) GetCalendarObject(ctx context.Context, path string) (*model.CalendarObject, error) {
	slog.DebugContext(ctx, "nats storage: getting calendar object", "event_path", path)

	object := &model.CalendarObject{}
	rev, err := s.get(ctx, constants.KVBucketNameCalendarObjects, model.EncodeKey(path), object)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, errs.NewNotFound("calendar object not found: " + path)
		}
		slog.ErrorContext(ctx, "failed to get calendar object", "error", err, "event_path", path)
		return nil, errs.NewServiceUnavailable("failed to get calendar object", err)
	}

	object.Path = path
	object.ETag = strconv.FormatUint(rev, 10)
	return object, nil
}

// PutCalendarObject stores the object, checking the ETag when set
func (s *calendarObjectStore) PutCalendarObject(ctx context.Context, object *model.CalendarObject) (string, error) {
	var expected uint64
	if object.ETag != "" {
		rev, err := strconv.ParseUint(object.ETag, 10, 64)
		if err != nil {
			return "", errs.NewValidation("invalid etag: " + object.ETag)
		}
		expected = rev
	}

	stored := model.CalendarObject{Path: object.Path, ICS: object.ICS}
	rev, err := s.put(ctx, constants.KVBucketNameCalendarObjects, model.EncodeKey(object.Path), stored, expected)
	if err != nil {
		if isConflict(err) {
			slog.WarnContext(ctx, "calendar object was modified concurrently",
				"event_path", object.Path,
				"expected_revision", expected,
			)
			return "", errs.NewConflict("calendar object was modified: " + object.Path)
		}
		slog.ErrorContext(ctx, "failed to put calendar object", "error", err, "event_path", object.Path)
		return "", errs.NewServiceUnavailable("failed to put calendar object", err)
	}

	slog.DebugContext(ctx, "nats storage: calendar object stored",
		"event_path", object.Path,
		"revision", rev,
	)
	return strconv.FormatUint(rev, 10), nil
}

// ==================== ALARMS ====================

type alarmRepository struct {
	storage
}

// Save stores alarm under its event path
func (r *alarmRepository) Save(ctx context.Context, alarm *model.Alarm) error {
	rev, err := r.put(ctx, constants.KVBucketNameCalendarAlarms, alarm.Key(), alarm, 0)
	if err != nil {
		slog.ErrorContext(ctx, "failed to save alarm", "error", err, "alarm_id", alarm.ID)
		return errs.NewServiceUnavailable("failed to save alarm", err)
	}

	slog.DebugContext(ctx, "nats storage: alarm saved",
		"alarm_id", alarm.ID,
		"due_date", alarm.DueDate,
		"revision", rev,
	)
	return nil
}

// DeleteByEventPath removes every alarm of eventPath
func (r *alarmRepository) DeleteByEventPath(ctx context.Context, eventPath string) error {
	keys, err := r.keys(ctx, constants.KVBucketNameCalendarAlarms, model.AlarmKeyPrefix(eventPath)+">")
	if err != nil {
		slog.ErrorContext(ctx, "failed to list alarms", "error", err, "event_path", eventPath)
		return errs.NewServiceUnavailable("failed to list alarms", err)
	}

	for _, key := range keys {
		if err := r.delete(ctx, constants.KVBucketNameCalendarAlarms, key); err != nil {
			return err
		}
	}

	slog.DebugContext(ctx, "nats storage: alarms deleted", "event_path", eventPath, "count", len(keys))
	return nil
}

// ListDue scans the bucket for waiting alarms due at or before now
func (r *alarmRepository) ListDue(ctx context.Context, now time.Time) ([]*model.Alarm, error) {
	keys, err := r.keys(ctx, constants.KVBucketNameCalendarAlarms, ">")
	if err != nil {
		slog.ErrorContext(ctx, "failed to list alarms", "error", err)
		return nil, errs.NewServiceUnavailable("failed to list alarms", err)
	}

	var due []*model.Alarm
	for _, key := range keys {
		alarm := &model.Alarm{}
		if _, err := r.get(ctx, constants.KVBucketNameCalendarAlarms, key, alarm); err != nil {
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				continue
			}
			slog.WarnContext(ctx, "skipping unreadable alarm", "error", err, "key", key)
			continue
		}
		if alarm.IsDue(now) {
			due = append(due, alarm)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].DueDate.Before(due[j].DueDate)
	})
	return due, nil
}

// UpdateState moves alarm to state. Claiming an alarm (running) only
// succeeds from waiting, and the write is conditional on the read revision
// so that a single instance sends it.
func (r *alarmRepository) UpdateState(ctx context.Context, alarm *model.Alarm, state string) error {
	stored := &model.Alarm{}
	rev, err := r.get(ctx, constants.KVBucketNameCalendarAlarms, alarm.Key(), stored)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return errs.NewNotFound("alarm not found: " + alarm.ID)
		}
		return errs.NewServiceUnavailable("failed to get alarm", err)
	}

	if state == constants.AlarmStateRunning && stored.State != constants.AlarmStateWaiting {
		return errs.NewConflict("alarm is not waiting: " + alarm.ID)
	}

	stored.State = state
	stored.LastError = alarm.LastError
	stored.UpdatedAt = time.Now().UTC()

	if _, err := r.put(ctx, constants.KVBucketNameCalendarAlarms, alarm.Key(), stored, rev); err != nil {
		if isConflict(err) {
			return errs.NewConflict("alarm was modified concurrently: " + alarm.ID)
		}
		slog.ErrorContext(ctx, "failed to update alarm state", "error", err, "alarm_id", alarm.ID, "state", state)
		return errs.NewServiceUnavailable("failed to update alarm state", err)
	}

	alarm.State = state
	alarm.UpdatedAt = stored.UpdatedAt
	return nil
}

// NewCalendarObjectStore creates a CalendarObjectStore backed by the calendar-objects bucket
func NewCalendarObjectStore(client *NATSClient) port.CalendarObjectStore {
	return &calendarObjectStore{storage{client: client}}
}

// NewAlarmRepository creates an AlarmRepository backed by the calendar-alarms bucket
func NewAlarmRepository(client *NATSClient) port.AlarmRepository {
	return &alarmRepository{storage{client: client}}
}
