// internal/monitor/safetynet_monitor_test.go
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

type fakeSessionStore struct {
	sessions []*subscription.SafetyNetSession
	listErr  error
	deleted  []int64
	delErr   error
}

func (f *fakeSessionStore) ListUnexpired(_ context.Context, _ time.Time) ([]*subscription.SafetyNetSession, error) {
	return f.sessions, f.listErr
}

func (f *fakeSessionStore) DeleteBatch(_ context.Context, ids []int64) error {
	f.deleted = ids
	return f.delErr
}

type fakeSubGetter struct {
	subs map[int64]*subscription.Subscription
	err  error
}

func (f *fakeSubGetter) GetByID(_ context.Context, id int64) (*subscription.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.subs[id], nil
}

func session(id, subID int64, startAQI int) *subscription.SafetyNetSession {
	return &subscription.SafetyNetSession{
		ID:             id,
		UserID:         100,
		SubscriptionID: subID,
		StartAQI:       startAQI,
		SessionExpiry:  cycleNow.Add(time.Hour),
	}
}

func newSafetyTestMonitor(store *fakeSessionStore, subs *fakeSubGetter, resolver *fakeResolver, notif *fakeNotifier) *SafetyNetMonitor {
	evaluator := subscription.NewSafetyNetEvaluator(resolver, 50.0)
	m := NewSafetyNetMonitor(store, subs, evaluator, notif, fixedLangs{})
	m.nowFn = func() time.Time { return cycleNow }
	return m
}

func TestSafetyNetRunCycle_AlertsAndDeletes(t *testing.T) {
	store := &fakeSessionStore{sessions: []*subscription.SafetyNetSession{
		session(10, 1, 30),
	}}
	subs := &fakeSubGetter{subs: map[int64]*subscription.Subscription{
		1: {ID: 1, UserID: 100, Latitude: 43.1, IsActive: true},
	}}
	notif := &fakeNotifier{}
	m := newSafetyTestMonitor(store, subs,
		&fakeResolver{byLat: map[float64]*airquality.Station{43.1: stationAt("Центр", 180)}}, notif)

	require.NoError(t, m.RunCycle(context.Background()))

	require.Len(t, notif.sent, 1)
	assert.Equal(t, notifier.KindBadAir, notif.sent[0].Kind)
	assert.Equal(t, int64(100), notif.sent[0].UserID)

	// Защелка: после алерта сессия удаляется
	assert.Equal(t, []int64{10}, store.deleted)
}

func TestSafetyNetRunCycle_ExpiredDeletedSilently(t *testing.T) {
	expired := session(11, 1, 30)
	expired.SessionExpiry = cycleNow.Add(-time.Minute)

	store := &fakeSessionStore{sessions: []*subscription.SafetyNetSession{expired}}
	notif := &fakeNotifier{}
	m := newSafetyTestMonitor(store, &fakeSubGetter{}, &fakeResolver{}, notif)

	require.NoError(t, m.RunCycle(context.Background()))

	assert.Empty(t, notif.sent)
	assert.Equal(t, []int64{11}, store.deleted)
}

func TestSafetyNetRunCycle_OrphanDeleted(t *testing.T) {
	store := &fakeSessionStore{sessions: []*subscription.SafetyNetSession{
		session(12, 999, 30),
	}}
	notif := &fakeNotifier{}
	// Подписки 999 больше нет
	m := newSafetyTestMonitor(store, &fakeSubGetter{subs: map[int64]*subscription.Subscription{}},
		&fakeResolver{}, notif)

	require.NoError(t, m.RunCycle(context.Background()))

	assert.Empty(t, notif.sent)
	assert.Equal(t, []int64{12}, store.deleted)
}

func TestSafetyNetRunCycle_AirStillGoodKeepsSession(t *testing.T) {
	store := &fakeSessionStore{sessions: []*subscription.SafetyNetSession{
		session(13, 1, 30),
	}}
	subs := &fakeSubGetter{subs: map[int64]*subscription.Subscription{
		1: {ID: 1, UserID: 100, Latitude: 43.1, IsActive: true},
	}}
	m := newSafetyTestMonitor(store, subs,
		&fakeResolver{byLat: map[float64]*airquality.Station{43.1: stationAt("Центр", 45)}}, &fakeNotifier{})

	require.NoError(t, m.RunCycle(context.Background()))

	assert.Empty(t, store.deleted)
}

func TestSafetyNetRunCycle_SubscriptionLoadFailureKeepsSession(t *testing.T) {
	store := &fakeSessionStore{sessions: []*subscription.SafetyNetSession{
		session(14, 1, 30),
	}}
	m := newSafetyTestMonitor(store, &fakeSubGetter{err: errors.New("db down")},
		&fakeResolver{}, &fakeNotifier{})

	// Цикл не падает, сбойная сессия доживает до следующего цикла
	require.NoError(t, m.RunCycle(context.Background()))
	assert.Empty(t, store.deleted)
}

func TestSafetyNetRunCycle_MixedOutcomes(t *testing.T) {
	expired := session(21, 1, 30)
	expired.SessionExpiry = cycleNow.Add(-time.Minute)

	store := &fakeSessionStore{sessions: []*subscription.SafetyNetSession{
		expired,
		session(22, 2, 30), // алерт
		session(23, 3, 30), // воздух в норме
	}}
	subs := &fakeSubGetter{subs: map[int64]*subscription.Subscription{
		2: {ID: 2, UserID: 100, Latitude: 43.1, IsActive: true},
		3: {ID: 3, UserID: 100, Latitude: 43.2, IsActive: true},
	}}
	notif := &fakeNotifier{}
	m := newSafetyTestMonitor(store, subs, &fakeResolver{byLat: map[float64]*airquality.Station{
		43.1: stationAt("Грязный район", 180),
		43.2: stationAt("Чистый район", 40),
	}}, notif)

	require.NoError(t, m.RunCycle(context.Background()))

	require.Len(t, notif.sent, 1)
	assert.ElementsMatch(t, []int64{21, 22}, store.deleted)
}
