// internal/locales/locales.go
package locales

import "fmt"

// Поддерживаемые языки
const (
	LangRU = "ru"
	LangKK = "kk"
	LangEN = "en"
)

// DefaultLanguage - язык по умолчанию
const DefaultLanguage = LangRU

// texts - локализованные шаблоны сообщений.
// Плейсхолдеры подставляются через fmt.Sprintf в порядке аргументов.
var texts = map[string]map[string]string{
	LangRU: {
		"clean_air_notification": "🟢 <b>Воздух стал чистым!</b>\n\nAQI: <b>%d</b>\n📍 %s\n\nСамое время проветрить или выйти на прогулку.",
		"bad_air_notification":   "🔴 <b>Воздух испортился!</b>\n\nAQI: <b>%d</b>\n📍 %s\n\nЛучше закрыть окна и остаться дома.",
		"subscription_expired":   "⏰ <b>Подписка истекла</b>\n\n📍 %s\n\nОформите новую подписку, чтобы продолжить получать уведомления.",

		"status_good":                "Хорошо",
		"status_moderate":            "Умеренно",
		"status_unhealthy_sensitive": "Вредно для чувствительных",
		"status_unhealthy":           "Вредно",
		"status_very_unhealthy":      "Очень вредно",
		"status_hazardous":           "Опасно",

		"advice_good":                "Можно гулять и проветривать без ограничений.",
		"advice_moderate":            "Чувствительным людям лучше сократить время на улице.",
		"advice_unhealthy_sensitive": "Людям с астмой и детям лучше остаться дома.",
		"advice_unhealthy":           "Сократите время на улице, закройте окна.",
		"advice_very_unhealthy":      "Не выходите без необходимости, используйте очиститель воздуха.",
		"advice_hazardous":           "Оставайтесь дома, наденьте респиратор при выходе.",
	},
	LangKK: {
		"clean_air_notification": "🟢 <b>Ауа тазарды!</b>\n\nAQI: <b>%d</b>\n📍 %s\n\nЖелдетуге немесе серуендеуге дәл уақыты.",
		"bad_air_notification":   "🔴 <b>Ауа нашарлады!</b>\n\nAQI: <b>%d</b>\n📍 %s\n\nТерезелерді жауып, үйде қалған дұрыс.",
		"subscription_expired":   "⏰ <b>Жазылым мерзімі аяқталды</b>\n\n📍 %s\n\nХабарламаларды алуды жалғастыру үшін жаңа жазылым жасаңыз.",

		"status_good":                "Жақсы",
		"status_moderate":            "Орташа",
		"status_unhealthy_sensitive": "Сезімталдарға зиянды",
		"status_unhealthy":           "Зиянды",
		"status_very_unhealthy":      "Өте зиянды",
		"status_hazardous":           "Қауіпті",

		"advice_good":                "Серуендеуге және желдетуге шектеусіз болады.",
		"advice_moderate":            "Сезімтал адамдарға далада аз жүрген дұрыс.",
		"advice_unhealthy_sensitive": "Демікпесі барларға және балаларға үйде қалған дұрыс.",
		"advice_unhealthy":           "Далада аз жүріп, терезелерді жабыңыз.",
		"advice_very_unhealthy":      "Қажетсіз сыртқа шықпаңыз, ауа тазартқышты қолданыңыз.",
		"advice_hazardous":           "Үйде қалыңыз, шыққанда респиратор киіңіз.",
	},
	LangEN: {
		"clean_air_notification": "🟢 <b>The air is clean now!</b>\n\nAQI: <b>%d</b>\n📍 %s\n\nGood time to air out the room or take a walk.",
		"bad_air_notification":   "🔴 <b>The air got worse!</b>\n\nAQI: <b>%d</b>\n📍 %s\n\nBetter close the windows and stay inside.",
		"subscription_expired":   "⏰ <b>Subscription expired</b>\n\n📍 %s\n\nCreate a new subscription to keep receiving alerts.",

		"status_good":                "Good",
		"status_moderate":            "Moderate",
		"status_unhealthy_sensitive": "Unhealthy for sensitive groups",
		"status_unhealthy":           "Unhealthy",
		"status_very_unhealthy":      "Very unhealthy",
		"status_hazardous":           "Hazardous",

		"advice_good":                "Walks and airing out are fine without limits.",
		"advice_moderate":            "Sensitive people should spend less time outside.",
		"advice_unhealthy_sensitive": "People with asthma and children should stay indoors.",
		"advice_unhealthy":           "Limit time outside and close the windows.",
		"advice_very_unhealthy":      "Avoid going out unless necessary, use an air purifier.",
		"advice_hazardous":           "Stay indoors; wear a respirator if you must go out.",
	},
}

// GetText возвращает локализованный текст по ключу.
// Неизвестный язык откатывается на русский, неизвестный ключ
// возвращается как есть (чтобы не терять сообщение).
func GetText(lang, key string, args ...interface{}) string {
	langTexts, ok := texts[lang]
	if !ok {
		langTexts = texts[DefaultLanguage]
	}

	tmpl, ok := langTexts[key]
	if !ok {
		if fallback, found := texts[DefaultLanguage][key]; found {
			tmpl = fallback
		} else {
			return key
		}
	}

	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// Supported сообщает, поддерживается ли язык
func Supported(lang string) bool {
	_, ok := texts[lang]
	return ok
}
