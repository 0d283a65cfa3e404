// internal/notifier/formatter.go
package notifier

import (
	"fmt"

	"air-quality-alert-bot/internal/core/domain/airquality"
	"air-quality-alert-bot/internal/locales"
)

// LocationName возвращает имя датчика, а при его отсутствии -
// координаты точки подписки
func LocationName(station *airquality.Station, lat, lon float64) string {
	if station != nil && station.Name != "" {
		return station.Name
	}
	return fmt.Sprintf("%.4f, %.4f", lat, lon)
}

// CleanAirText рендерит уведомление о переходе в чистый воздух
func CleanAirText(lang string, aqi int, location string) string {
	return locales.GetText(lang, "clean_air_notification", aqi, location)
}

// BadAirText рендерит алерт страховки об ухудшении воздуха,
// дополняя его советом по здоровью для текущего уровня AQI
func BadAirText(lang string, aqi int, location string) string {
	text := locales.GetText(lang, "bad_air_notification", aqi, location)
	advice := locales.GetText(lang, airquality.HealthAdviceKey(aqi))
	return text + "\n\n" + advice
}

// ExpiredText рендерит уведомление об истечении подписки
func ExpiredText(lang string, location string) string {
	return locales.GetText(lang, "subscription_expired", location)
}
