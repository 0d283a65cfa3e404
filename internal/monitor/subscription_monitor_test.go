// internal/monitor/subscription_monitor_test.go
package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"air-quality-alert-bot/internal/core/domain/airquality"
	"air-quality-alert-bot/internal/core/domain/subscription"
	"air-quality-alert-bot/internal/notifier"
)

var cycleNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// fakeResolver выбирает ответ по широте подписки
type fakeResolver struct {
	byLat map[float64]*airquality.Station
	errAt float64
}

func (f *fakeResolver) FindNearest(_ context.Context, lat, _, _ float64) (*airquality.Station, error) {
	if lat == f.errAt && f.errAt != 0 {
		return nil, errors.New("resolver failed")
	}
	return f.byLat[lat], nil
}

type fakeSubStore struct {
	subs    []*subscription.Subscription
	listErr error
	saved   []*subscription.Subscription
	saveErr error
}

func (f *fakeSubStore) ListActive(_ context.Context) ([]*subscription.Subscription, error) {
	return f.subs, f.listErr
}

func (f *fakeSubStore) SaveStates(_ context.Context, subs []*subscription.Subscription) error {
	f.saved = subs
	return f.saveErr
}

type fakeSessionCreator struct {
	created []*subscription.SafetyNetSession
	exists  bool
	err     error
}

func (f *fakeSessionCreator) CreateExclusive(_ context.Context, sess *subscription.SafetyNetSession) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.exists {
		return false, nil
	}
	f.created = append(f.created, sess)
	return true, nil
}

type fakeNotifier struct {
	sent []notifier.Notification
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, n notifier.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeNotifier) Name() string      { return "fake" }
func (f *fakeNotifier) IsEnabled() bool   { return true }
func (f *fakeNotifier) SetEnabled(_ bool) {}

type fixedLangs struct{}

func (fixedLangs) Language(_ context.Context, _ int64) string { return "ru" }

func intPtr(v int) *int { return &v }

func stationAt(name string, aqi int) *airquality.Station {
	return &airquality.Station{ID: 1, StationID: name, Name: name, AQI: &aqi}
}

func newTestMonitor(store *fakeSubStore, resolver *fakeResolver, sessions *fakeSessionCreator, notif *fakeNotifier) *SubscriptionMonitor {
	pipeline := subscription.NewPipeline(resolver, 50.0, 4*time.Hour)
	m := NewSubscriptionMonitor(store, pipeline, sessions, notif, fixedLangs{}, 4*time.Hour)
	m.nowFn = func() time.Time { return cycleNow }
	return m
}

func TestRunCycle_TransitionNotifies(t *testing.T) {
	store := &fakeSubStore{subs: []*subscription.Subscription{
		{ID: 1, UserID: 100, Latitude: 43.1, IsActive: true, LastAQILevel: intPtr(80)},
	}}
	notif := &fakeNotifier{}
	m := newTestMonitor(store,
		&fakeResolver{byLat: map[float64]*airquality.Station{43.1: stationAt("Центр", 40)}},
		&fakeSessionCreator{}, notif)

	require.NoError(t, m.RunCycle(context.Background()))

	require.Len(t, notif.sent, 1)
	assert.Equal(t, notifier.KindCleanAir, notif.sent[0].Kind)
	assert.Equal(t, int64(100), notif.sent[0].UserID)

	// Состояние зафиксировано единым снапшотом времени цикла
	require.Len(t, store.saved, 1)
	require.NotNil(t, store.saved[0].LastNotifiedAt)
	assert.Equal(t, cycleNow, *store.saved[0].LastNotifiedAt)
	assert.Equal(t, 40, *store.saved[0].LastAQILevel)
}

func TestRunCycle_FailureIsolation(t *testing.T) {
	store := &fakeSubStore{subs: []*subscription.Subscription{
		{ID: 1, UserID: 100, Latitude: 99.0, IsActive: true, LastAQILevel: intPtr(80)},
		{ID: 2, UserID: 200, Latitude: 43.1, IsActive: true, LastAQILevel: intPtr(80)},
	}}
	notif := &fakeNotifier{}
	m := newTestMonitor(store,
		&fakeResolver{
			byLat: map[float64]*airquality.Station{43.1: stationAt("Центр", 40)},
			errAt: 99.0,
		},
		&fakeSessionCreator{}, notif)

	require.NoError(t, m.RunCycle(context.Background()))

	// Сбойная подписка не попала в фиксацию, остальные обработаны
	require.Len(t, store.saved, 1)
	assert.Equal(t, int64(2), store.saved[0].ID)
	require.Len(t, notif.sent, 1)
	assert.Equal(t, int64(200), notif.sent[0].UserID)
}

func TestRunCycle_ExpiredNotifiesAndDeactivates(t *testing.T) {
	past := cycleNow.Add(-time.Hour)
	store := &fakeSubStore{subs: []*subscription.Subscription{
		{ID: 1, UserID: 100, ExpiryDate: &past, IsActive: true},
	}}
	notif := &fakeNotifier{}
	m := newTestMonitor(store, &fakeResolver{}, &fakeSessionCreator{}, notif)

	require.NoError(t, m.RunCycle(context.Background()))

	require.Len(t, notif.sent, 1)
	assert.Equal(t, notifier.KindExpired, notif.sent[0].Kind)

	require.Len(t, store.saved, 1)
	assert.False(t, store.saved[0].IsActive)
}

func TestRunCycle_AutoSafetyNet(t *testing.T) {
	store := &fakeSubStore{subs: []*subscription.Subscription{
		{ID: 7, UserID: 100, Latitude: 43.1, IsActive: true, LastAQILevel: intPtr(80), AutoSafetyNet: true},
	}}
	sessions := &fakeSessionCreator{}
	m := newTestMonitor(store,
		&fakeResolver{byLat: map[float64]*airquality.Station{43.1: stationAt("Центр", 40)}},
		sessions, &fakeNotifier{})

	require.NoError(t, m.RunCycle(context.Background()))

	require.Len(t, sessions.created, 1)
	sess := sessions.created[0]
	assert.Equal(t, int64(7), sess.SubscriptionID)
	assert.Equal(t, int64(100), sess.UserID)
	assert.Equal(t, 40, sess.StartAQI)
	assert.Equal(t, cycleNow.Add(4*time.Hour), sess.SessionExpiry)
}

func TestRunCycle_NoSafetyNetWithoutFlag(t *testing.T) {
	store := &fakeSubStore{subs: []*subscription.Subscription{
		{ID: 1, UserID: 100, Latitude: 43.1, IsActive: true, LastAQILevel: intPtr(80), AutoSafetyNet: false},
	}}
	sessions := &fakeSessionCreator{}
	m := newTestMonitor(store,
		&fakeResolver{byLat: map[float64]*airquality.Station{43.1: stationAt("Центр", 40)}},
		sessions, &fakeNotifier{})

	require.NoError(t, m.RunCycle(context.Background()))
	assert.Empty(t, sessions.created)
}

func TestRunCycle_DeliveryFailureDoesNotRollBackState(t *testing.T) {
	store := &fakeSubStore{subs: []*subscription.Subscription{
		{ID: 1, UserID: 100, Latitude: 43.1, IsActive: true, LastAQILevel: intPtr(80)},
	}}
	m := newTestMonitor(store,
		&fakeResolver{byLat: map[float64]*airquality.Station{43.1: stationAt("Центр", 40)}},
		&fakeSessionCreator{}, &fakeNotifier{err: errors.New("telegram down")})

	require.NoError(t, m.RunCycle(context.Background()))

	// Уведомление не дошло, но состояние все равно записано
	require.Len(t, store.saved, 1)
	require.NotNil(t, store.saved[0].LastNotifiedAt)
}

func TestRunCycle_ListError(t *testing.T) {
	store := &fakeSubStore{listErr: errors.New("db down")}
	m := newTestMonitor(store, &fakeResolver{}, &fakeSessionCreator{}, &fakeNotifier{})

	err := m.RunCycle(context.Background())
	require.Error(t, err)
}

func TestRunCycle_NoopStillSaved(t *testing.T) {
	// Обновленный last_aqi_level должен дойти до хранилища даже без уведомления
	store := &fakeSubStore{subs: []*subscription.Subscription{
		{ID: 1, UserID: 100, Latitude: 43.1, IsActive: true, LastAQILevel: intPtr(30)},
	}}
	m := newTestMonitor(store,
		&fakeResolver{byLat: map[float64]*airquality.Station{43.1: stationAt("Центр", 120)}},
		&fakeSessionCreator{}, &fakeNotifier{})

	require.NoError(t, m.RunCycle(context.Background()))

	require.Len(t, store.saved, 1)
	assert.Equal(t, 120, *store.saved[0].LastAQILevel)
}
