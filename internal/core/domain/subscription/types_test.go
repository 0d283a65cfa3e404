// internal/core/domain/subscription/types_test.go
package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour int) time.Time {
	return time.Date(2025, 6, 15, hour, 30, 0, 0, time.UTC)
}

func TestInQuietHours_Wraparound(t *testing.T) {
	// Тихие часы 23:00 - 07:00, переход через полночь
	sub := &Subscription{MuteStart: 23, MuteEnd: 7}

	assert.True(t, sub.InQuietHours(at(23)))
	assert.True(t, sub.InQuietHours(at(0)))
	assert.True(t, sub.InQuietHours(at(6)))

	assert.False(t, sub.InQuietHours(at(7)))
	assert.False(t, sub.InQuietHours(at(12)))
	assert.False(t, sub.InQuietHours(at(22)))
}

func TestInQuietHours_SameDay(t *testing.T) {
	sub := &Subscription{MuteStart: 9, MuteEnd: 18}

	assert.True(t, sub.InQuietHours(at(9)))
	assert.True(t, sub.InQuietHours(at(17)))

	assert.False(t, sub.InQuietHours(at(8)))
	assert.False(t, sub.InQuietHours(at(18)))
	assert.False(t, sub.InQuietHours(at(23)))
}

func TestInQuietHours_EmptyRange(t *testing.T) {
	// start == end означает пустой диапазон: тихих часов нет
	sub := &Subscription{MuteStart: 10, MuteEnd: 10}

	for hour := 0; hour < 24; hour++ {
		assert.False(t, sub.InQuietHours(at(hour)), "hour %d", hour)
	}
}

func TestInCooldown_Boundary(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	cooldown := 4 * time.Hour

	justNotified := now.Add(-cooldown + time.Second)
	sub := &Subscription{LastNotifiedAt: &justNotified}
	assert.True(t, sub.InCooldown(now, cooldown))

	// Ровно 4 часа - пауза уже не действует
	exactly := now.Add(-cooldown)
	sub.LastNotifiedAt = &exactly
	assert.False(t, sub.InCooldown(now, cooldown))

	sub.LastNotifiedAt = nil
	assert.False(t, sub.InCooldown(now, cooldown))
}

func TestExpired(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.True(t, (&Subscription{ExpiryDate: &past}).Expired(now))
	assert.False(t, (&Subscription{ExpiryDate: &future}).Expired(now))
	// Бессрочная подписка не истекает
	assert.False(t, (&Subscription{}).Expired(now))
	// Момент истечения еще не считается истекшим
	assert.False(t, (&Subscription{ExpiryDate: &now}).Expired(now))
}

func TestSafetyNetSessionExpired(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.True(t, (&SafetyNetSession{SessionExpiry: now.Add(-time.Second)}).Expired(now))
	assert.False(t, (&SafetyNetSession{SessionExpiry: now.Add(time.Hour)}).Expired(now))
}
