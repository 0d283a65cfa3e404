// internal/core/domain/airquality/aqi.go
package airquality

import "math"

// Граница "хорошего" воздуха по шкале AQI
const GoodAQIThreshold = 50

type aqiBreakpoint struct {
	cLow, cHigh float64
	iLow, iHigh int
}

// Брейкпоинты AQI для PM2.5 по стандарту US EPA
var pm25Breakpoints = []aqiBreakpoint{
	{0.0, 12.0, 0, 50},
	{12.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 150.4, 151, 200},
	{150.5, 250.4, 201, 300},
	{250.5, 350.4, 301, 400},
	{350.5, 500.4, 401, 500},
}

// CalculateAQIPM25 вычисляет AQI по концентрации PM2.5 (мкг/м³)
// линейной интерполяцией между брейкпоинтами EPA.
func CalculateAQIPM25(pm25 float64) int {
	if pm25 < 0 {
		return 0
	}

	for _, bp := range pm25Breakpoints {
		if pm25 >= bp.cLow && pm25 <= bp.cHigh {
			aqi := (float64(bp.iHigh-bp.iLow)/(bp.cHigh-bp.cLow))*(pm25-bp.cLow) + float64(bp.iLow)
			return int(math.Round(aqi))
		}
	}

	// Концентрация выше всех брейкпоинтов
	return 500
}

// Category возвращает ключ локализации категории и эмодзи для AQI
func Category(aqi int) (string, string) {
	switch {
	case aqi <= 50:
		return "status_good", "🟢"
	case aqi <= 100:
		return "status_moderate", "🟡"
	case aqi <= 150:
		return "status_unhealthy_sensitive", "🟠"
	case aqi <= 200:
		return "status_unhealthy", "🔴"
	case aqi <= 300:
		return "status_very_unhealthy", "🟣"
	default:
		return "status_hazardous", "🟤"
	}
}

// HealthAdviceKey возвращает ключ локализации совета по здоровью
func HealthAdviceKey(aqi int) string {
	switch {
	case aqi <= 50:
		return "advice_good"
	case aqi <= 100:
		return "advice_moderate"
	case aqi <= 150:
		return "advice_unhealthy_sensitive"
	case aqi <= 200:
		return "advice_unhealthy"
	case aqi <= 300:
		return "advice_very_unhealthy"
	default:
		return "advice_hazardous"
	}
}
