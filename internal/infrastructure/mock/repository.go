// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mock

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/errors"
)

// Global mock repository instance to share data between all repositories
var (
	globalMockRepo     *MockRepository
	globalMockRepoOnce = &sync.Once{}
)

// MockRepository provides an in-memory implementation of the directory,
// calendar storage and alarm ports
type MockRepository struct {
	users           map[string]*model.User            // id -> user
	datetime        map[string]*model.DatetimeOptions // user id -> options
	locales         map[string]string                 // user id -> locale
	resources       map[string]*model.Resource        // id -> resource
	objects         map[string]*model.CalendarObject  // event path -> object
	objectRevisions map[string]uint64                 // event path -> revision
	alarms          map[string]*model.Alarm           // key -> alarm
	emails          []*model.EmailMessage

	// error simulation
	globalError     error
	operationErrors map[string]error // operation name -> error
	keyErrors       map[string]error // email, id or path -> error

	mu sync.RWMutex // Protect concurrent access to maps
}

// SampleDomain is the domain of the sample users
var SampleDomain = model.Domain{ID: "domain-1", Name: "example.org"}

// NewMockRepository creates a new mock repository with sample data
func NewMockRepository() *MockRepository {
	globalMockRepoOnce.Do(func() {
		globalMockRepo = newEmptyRepository()
		globalMockRepo.seed()
		slog.Info("mock repository initialized",
			"users", len(globalMockRepo.users),
			"resources", len(globalMockRepo.resources),
		)
	})
	return globalMockRepo
}

func newEmptyRepository() *MockRepository {
	return &MockRepository{
		users:           make(map[string]*model.User),
		datetime:        make(map[string]*model.DatetimeOptions),
		locales:         make(map[string]string),
		resources:       make(map[string]*model.Resource),
		objects:         make(map[string]*model.CalendarObject),
		objectRevisions: make(map[string]uint64),
		alarms:          make(map[string]*model.Alarm),
		operationErrors: make(map[string]error),
		keyErrors:       make(map[string]error),
	}
}

func (m *MockRepository) seed() {
	for _, user := range []*model.User{
		{ID: "user-organizer", Firstname: "John", Lastname: "Doe", Emails: []string{"organizer@example.org"}, Domains: []model.Domain{SampleDomain}},
		{ID: "user-alice", Firstname: "Alice", Lastname: "Martin", Emails: []string{"alice@example.org"}, Domains: []model.Domain{SampleDomain}},
		{ID: "user-bob", Firstname: "Bob", Lastname: "Durand", Emails: []string{"bob@example.org"}, Domains: []model.Domain{SampleDomain}},
	} {
		m.users[user.ID] = user
	}
	m.locales["user-bob"] = "fr"
	m.datetime["user-bob"] = &model.DatetimeOptions{TimeZone: "Europe/Paris", Use24HourFormat: true}

	m.resources["resource-room"] = &model.Resource{
		ID:     "resource-room",
		Name:   "Meeting room",
		Type:   "resource",
		Domain: SampleDomain,
	}
}

// ==================== TEST HELPERS ====================

// AddUser registers a user with optional display preferences
func (m *MockRepository) AddUser(user *model.User, locale string, datetime *model.DatetimeOptions) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[user.ID] = user
	if locale != "" {
		m.locales[user.ID] = locale
	}
	if datetime != nil {
		m.datetime[user.ID] = datetime
	}
}

// AddResource registers a resource
func (m *MockRepository) AddResource(resource *model.Resource) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.resources[resource.ID] = resource
}

// AddCalendarObject stores ics at path with a fresh revision
func (m *MockRepository) AddCalendarObject(path, ics string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objectRevisions[path]++
	m.objects[path] = &model.CalendarObject{Path: path, ICS: ics}
}

// CalendarObject returns the stored text of path
func (m *MockRepository) CalendarObject(path string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	object, ok := m.objects[path]
	if !ok {
		return "", false
	}
	return object.ICS, true
}

// Alarms returns every stored alarm ordered by due date
func (m *MockRepository) Alarms() []*model.Alarm {
	m.mu.RLock()
	defer m.mu.RUnlock()

	alarms := make([]*model.Alarm, 0, len(m.alarms))
	for _, alarm := range m.alarms {
		copied := *alarm
		alarms = append(alarms, &copied)
	}
	sortAlarms(alarms)
	return alarms
}

// SentEmails returns the messages handed to the mailer
func (m *MockRepository) SentEmails() []*model.EmailMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]*model.EmailMessage(nil), m.emails...)
}

// ClearAll clears all mock data and error simulation (useful for testing)
func (m *MockRepository) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	empty := newEmptyRepository()
	m.users = empty.users
	m.datetime = empty.datetime
	m.locales = empty.locales
	m.resources = empty.resources
	m.objects = empty.objects
	m.objectRevisions = empty.objectRevisions
	m.alarms = empty.alarms
	m.emails = nil
	m.globalError = nil
	m.operationErrors = empty.operationErrors
	m.keyErrors = empty.keyErrors
}

// Reset restores the sample data
func (m *MockRepository) Reset() {
	m.ClearAll()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seed()
}

// ==================== ERROR SIMULATION ====================

// SetGlobalError makes every operation fail with err
func (m *MockRepository) SetGlobalError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.globalError = err
}

// SetErrorForOperation makes the named operation fail with err
func (m *MockRepository) SetErrorForOperation(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operationErrors[operation] = err
}

// SetErrorForUser makes lookups of a user email or id fail with err
func (m *MockRepository) SetErrorForUser(key string, err error) {
	m.setKeyError(key, err)
}

// SetErrorForCalendarObject makes reads and writes of path fail with err
func (m *MockRepository) SetErrorForCalendarObject(path string, err error) {
	m.setKeyError(path, err)
}

// SetErrorForResource makes lookups of a resource fail with err
func (m *MockRepository) SetErrorForResource(id string, err error) {
	m.setKeyError(id, err)
}

func (m *MockRepository) setKeyError(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keyErrors[key] = err
}

// ClearErrorSimulation removes every configured error
func (m *MockRepository) ClearErrorSimulation() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.globalError = nil
	m.operationErrors = make(map[string]error)
	m.keyErrors = make(map[string]error)
}

// simulatedError returns the configured error of an operation on key. The
// global error wins over the operation error, which wins over the key error.
// Callers hold the lock.
func (m *MockRepository) simulatedError(operation, key string) error {
	if m.globalError != nil {
		return m.globalError
	}
	if err, ok := m.operationErrors[operation]; ok {
		return err
	}
	if err, ok := m.keyErrors[key]; ok {
		return err
	}
	return nil
}

// ==================== USER DIRECTORY ====================

// MockUserReader implements port.UserReader
type MockUserReader struct {
	mock *MockRepository
}

var _ port.UserReader = (*MockUserReader)(nil)

// FindByEmail returns the user owning email, nil when unknown
func (r *MockUserReader) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mock.mu.RLock()
	defer r.mock.mu.RUnlock()

	if err := r.mock.simulatedError("FindByEmail", email); err != nil {
		return nil, err
	}

	for _, user := range r.mock.users {
		for _, candidate := range user.Emails {
			if candidate == email {
				copied := *user
				return &copied, nil
			}
		}
	}
	return nil, nil
}

// Get returns the user with id, nil when unknown
func (r *MockUserReader) Get(ctx context.Context, id string) (*model.User, error) {
	r.mock.mu.RLock()
	defer r.mock.mu.RUnlock()

	if err := r.mock.simulatedError("GetUser", id); err != nil {
		return nil, err
	}

	user, ok := r.mock.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

// MockUserSettingsReader implements port.UserSettingsReader
type MockUserSettingsReader struct {
	mock *MockRepository
}

var _ port.UserSettingsReader = (*MockUserSettingsReader)(nil)

// DatetimeOptions returns the datetime preferences of user, nil when unset
func (r *MockUserSettingsReader) DatetimeOptions(ctx context.Context, user *model.User) (*model.DatetimeOptions, error) {
	r.mock.mu.RLock()
	defer r.mock.mu.RUnlock()

	if err := r.mock.simulatedError("DatetimeOptions", user.ID); err != nil {
		return nil, err
	}

	options, ok := r.mock.datetime[user.ID]
	if !ok {
		return nil, nil
	}
	copied := *options
	return &copied, nil
}

// Locale returns the locale of user, empty when unset
func (r *MockUserSettingsReader) Locale(ctx context.Context, user *model.User) (string, error) {
	r.mock.mu.RLock()
	defer r.mock.mu.RUnlock()

	if err := r.mock.simulatedError("Locale", user.ID); err != nil {
		return "", err
	}
	return r.mock.locales[user.ID], nil
}

// MockResourceReader implements port.ResourceReader
type MockResourceReader struct {
	mock *MockRepository
}

var _ port.ResourceReader = (*MockResourceReader)(nil)

// Get returns the resource with id, nil when unknown
func (r *MockResourceReader) Get(ctx context.Context, id string) (*model.Resource, error) {
	r.mock.mu.RLock()
	defer r.mock.mu.RUnlock()

	if err := r.mock.simulatedError("GetResource", id); err != nil {
		return nil, err
	}

	resource, ok := r.mock.resources[id]
	if !ok {
		return nil, nil
	}
	copied := *resource
	return &copied, nil
}

// ==================== CALENDAR OBJECT STORE ====================

// MockCalendarObjectStore implements port.CalendarObjectStore with revision
// numbers as entity tags
type MockCalendarObjectStore struct {
	mock *MockRepository
}

var _ port.CalendarObjectStore = (*MockCalendarObjectStore)(nil)

// GetCalendarObject returns the object stored at path
func (s *MockCalendarObjectStore) GetCalendarObject(ctx context.Context, path string) (*model.CalendarObject, error) {
	s.mock.mu.RLock()
	defer s.mock.mu.RUnlock()

	if err := s.mock.simulatedError("GetCalendarObject", path); err != nil {
		return nil, err
	}

	object, ok := s.mock.objects[path]
	if !ok {
		return nil, errors.NewNotFound("calendar object not found: " + path)
	}

	return &model.CalendarObject{
		Path: path,
		ICS:  object.ICS,
		ETag: strconv.FormatUint(s.mock.objectRevisions[path], 10),
	}, nil
}

// PutCalendarObject stores object, checking its ETag when set
func (s *MockCalendarObjectStore) PutCalendarObject(ctx context.Context, object *model.CalendarObject) (string, error) {
	s.mock.mu.Lock()
	defer s.mock.mu.Unlock()

	if err := s.mock.simulatedError("PutCalendarObject", object.Path); err != nil {
		return "", err
	}

	current := strconv.FormatUint(s.mock.objectRevisions[object.Path], 10)
	if object.ETag != "" && object.ETag != current {
		return "", errors.NewConflict("calendar object was modified: " + object.Path)
	}

	s.mock.objectRevisions[object.Path]++
	s.mock.objects[object.Path] = &model.CalendarObject{Path: object.Path, ICS: object.ICS}

	return strconv.FormatUint(s.mock.objectRevisions[object.Path], 10), nil
}

// ==================== ALARMS ====================

// MockAlarmRepository implements port.AlarmRepository
type MockAlarmRepository struct {
	mock *MockRepository
}

var _ port.AlarmRepository = (*MockAlarmRepository)(nil)

// Save stores alarm under its key
func (r *MockAlarmRepository) Save(ctx context.Context, alarm *model.Alarm) error {
	r.mock.mu.Lock()
	defer r.mock.mu.Unlock()

	if err := r.mock.simulatedError("SaveAlarm", alarm.EventPath); err != nil {
		return err
	}

	copied := *alarm
	r.mock.alarms[alarm.Key()] = &copied
	return nil
}

// DeleteByEventPath removes every alarm of eventPath
func (r *MockAlarmRepository) DeleteByEventPath(ctx context.Context, eventPath string) error {
	r.mock.mu.Lock()
	defer r.mock.mu.Unlock()

	if err := r.mock.simulatedError("DeleteAlarms", eventPath); err != nil {
		return err
	}

	prefix := model.AlarmKeyPrefix(eventPath)
	for key := range r.mock.alarms {
		if strings.HasPrefix(key, prefix) {
			delete(r.mock.alarms, key)
		}
	}
	return nil
}

// ListDue returns the waiting alarms due at or before now
func (r *MockAlarmRepository) ListDue(ctx context.Context, now time.Time) ([]*model.Alarm, error) {
	r.mock.mu.RLock()
	defer r.mock.mu.RUnlock()

	if err := r.mock.simulatedError("ListDueAlarms", ""); err != nil {
		return nil, err
	}

	var due []*model.Alarm
	for _, alarm := range r.mock.alarms {
		if alarm.IsDue(now) {
			copied := *alarm
			due = append(due, &copied)
		}
	}
	sortAlarms(due)
	return due, nil
}

// UpdateState moves alarm to state
func (r *MockAlarmRepository) UpdateState(ctx context.Context, alarm *model.Alarm, state string) error {
	r.mock.mu.Lock()
	defer r.mock.mu.Unlock()

	if err := r.mock.simulatedError("UpdateAlarmState", alarm.EventPath); err != nil {
		return err
	}

	stored, ok := r.mock.alarms[alarm.Key()]
	if !ok {
		return errors.NewNotFound("alarm not found: " + alarm.ID)
	}
	if state == constants.AlarmStateRunning && stored.State != constants.AlarmStateWaiting {
		return errors.NewConflict("alarm is not waiting: " + alarm.ID)
	}

	stored.State = state
	stored.LastError = alarm.LastError
	stored.UpdatedAt = time.Now().UTC()
	alarm.State = state
	return nil
}

func sortAlarms(alarms []*model.Alarm) {
	sort.Slice(alarms, func(i, j int) bool {
		if alarms[i].DueDate.Equal(alarms[j].DueDate) {
			return alarms[i].ID < alarms[j].ID
		}
		return alarms[i].DueDate.Before(alarms[j].DueDate)
	})
}

// ==================== MAILER ====================

// MockMailer implements port.Mailer by recording messages
type MockMailer struct {
	mock *MockRepository
}

var _ port.Mailer = (*MockMailer)(nil)

// Send records message
func (m *MockMailer) Send(ctx context.Context, message *model.EmailMessage) error {
	m.mock.mu.Lock()
	defer m.mock.mu.Unlock()

	if err := m.mock.simulatedError("SendEmail", message.To); err != nil {
		return err
	}

	m.mock.emails = append(m.mock.emails, message)
	slog.DebugContext(ctx, "mock mailer: email recorded",
		"template", message.Template.Name,
		"subject", message.Subject,
	)
	return nil
}

// ==================== BASE URL ====================

// MockBaseURLResolver returns the same URL for every user
type MockBaseURLResolver struct {
	URL string
}

var _ port.BaseURLResolver = (*MockBaseURLResolver)(nil)

// BaseURL returns the configured URL
func (r *MockBaseURLResolver) BaseURL(ctx context.Context, user *model.User) (string, error) {
	return r.URL, nil
}

// ==================== CONSTRUCTORS ====================

// NewMockUserReader creates a mock user reader
func NewMockUserReader(mock *MockRepository) port.UserReader {
	return &MockUserReader{mock: mock}
}

// NewMockUserSettingsReader creates a mock user settings reader
func NewMockUserSettingsReader(mock *MockRepository) port.UserSettingsReader {
	return &MockUserSettingsReader{mock: mock}
}

// NewMockResourceReader creates a mock resource reader
func NewMockResourceReader(mock *MockRepository) port.ResourceReader {
	return &MockResourceReader{mock: mock}
}

// NewMockCalendarObjectStore creates a mock calendar object store
func NewMockCalendarObjectStore(mock *MockRepository) port.CalendarObjectStore {
	return &MockCalendarObjectStore{mock: mock}
}

// NewMockAlarmRepository creates a mock alarm repository
func NewMockAlarmRepository(mock *MockRepository) port.AlarmRepository {
	return &MockAlarmRepository{mock: mock}
}

// NewMockMailer creates a mock mailer
func NewMockMailer(mock *MockRepository) port.Mailer {
	return &MockMailer{mock: mock}
}

// NewMockBaseURLResolver creates a resolver returning url
func NewMockBaseURLResolver(url string) port.BaseURLResolver {
	return &MockBaseURLResolver{URL: url}
}
