package pages

import (
	"fmt"
)

// catalog maps message keys to format strings for one locale.
type catalog map[string]string

const defaultLocale = "en"

var catalogs = map[string]catalog{
	"en": {
		"app.title":   "Web Monitor",
		"nav.list":    "Checks",
		"nav.add":     "Add check",
		"nav.docs":    "API docs",
		"nav.metrics": "Metrics",

		"list.heading":       "Monitored pages",
		"list.unnamed":       "Unnamed",
		"list.empty":         "No checks yet. Add a new check.",
		"list.empty_cta":     "Add a check",
		"list.load_failed":   "Could not load the check list: %s",
		"list.retry":         "Try again",
		"list.superseded":    "A newer refresh replaced this one.",
		"list.last_checked":  "Last checked",
		"list.next_check":    "Next check",
		"list.interval":      "Every %d min",
		"list.never_checked": "Never checked",
		"list.not_scheduled": "Not scheduled",
		"list.refresh":       "Refresh",
		"list.preview":       "Current value",

		"result.changed":   "Changed",
		"result.no_change": "No change",
		"result.error":     "Error",
		"result.unknown":   "Unknown",

		"check.active": "Active",
		"check.paused": "Paused",

		"status.heading":      "System status",
		"status.scheduler":    "Scheduler",
		"status.running":      "Running",
		"status.stopped":      "Stopped",
		"status.active_jobs":  "Active jobs",
		"status.time_utc":     "Time (UTC)",
		"status.time_local":   "Server local time",
		"status.version":      "Version",
		"status.last_error":   "Last global error",
		"status.overdue":      "%d overdue job(s)",
		"status.overdue_by":   "overdue by %d s (%s)",
		"status.load_failed":  "Could not load system status: %s",
		"status.diagnostics":  "Scheduler diagnostics",
		"status.force":        "Force scheduler check",
		"status.forced":       "Scheduler check triggered.",
		"status.force_failed": "Could not trigger a scheduler check: %s",
		"status.na":           "N/A",

		"diag.heading":        "Scheduler diagnostics",
		"diag.jobs":           "Jobs: %d",
		"diag.overdue_count":  "Overdue: %d",
		"diag.job":            "Job",
		"diag.next_run_utc":   "Next run (UTC)",
		"diag.next_run_local": "Next run (local)",
		"diag.trigger":        "Trigger",
		"diag.overdue":        "Overdue",
		"diag.no_jobs":        "No scheduled jobs.",
		"diag.load_failed":    "Could not load scheduler diagnostics: %s",
		"diag.back":           "Back to status",

		"form.heading":         "Add a check",
		"form.name":            "Name",
		"form.url":             "URL",
		"form.selector":        "CSS selector",
		"form.threshold":       "Change threshold (%)",
		"form.interval":        "Interval (minutes)",
		"form.submit":          "Add check",
		"form.required":        "Please fill in the required fields: URL and Interval.",
		"form.interval_min":    "The check interval must be at least 1 minute.",
		"form.threshold_range": "The change threshold must be between 0 and 100.",
		"form.created":         "Check added successfully!",
		"form.failed":          "Error adding check: %s",
		"form.duplicate":       "This form was already submitted.",
		"form.redirecting":     "Returning to the list.",
		"form.edit_heading":    "Edit check",
		"form.save":            "Save changes",
		"form.update_failed":   "Error saving check: %s",

		"details.heading":             "Check details",
		"details.bad_id":              "Could not determine the check ID.",
		"details.load_failed":         "Could not load check details: %s",
		"details.whole_page":          "Whole page",
		"details.no_threshold":        "N/A (selector used or not set)",
		"details.no_data":             "No data",
		"details.history":             "Check history",
		"details.history_placeholder": "History will be available later.",
		"details.manual":              "Check now",
		"details.pause":               "Pause",
		"details.resume":              "Resume",
		"details.delete":              "Delete",
		"details.delete_confirm":      "Delete this check?",
		"details.edit":                "Edit",
		"details.name":                "Name",
		"details.url":                 "URL",
		"details.selector":            "Selector",
		"details.threshold":           "Change threshold",
		"details.interval":            "Interval (minutes)",
		"details.status":              "Status",
		"details.last_check":          "Last check",
		"details.next_check":          "Next check",
		"details.last_result":         "Last result",
		"details.action_failed":       "Action failed: %s",

		"notice.created": "Check added successfully!",
		"notice.manual":  "Check ran: %s",
		"notice.toggled": "Check is now %s.",
		"notice.deleted": "Check deleted.",
		"notice.updated": "Check updated.",

		"error.unreachable": "Could not reach the server.",
		"error.internal":    "Something went wrong while rendering this page.",
	},
	"uk": {
		"app.title":   "Веб-монітор",
		"nav.list":    "Перевірки",
		"nav.add":     "Додати перевірку",
		"nav.docs":    "Документація API",
		"nav.metrics": "Метрики",

		"list.heading":       "Перевірки",
		"list.unnamed":       "Без назви",
		"list.empty":         "Список перевірок порожній. Додайте нову перевірку.",
		"list.empty_cta":     "Додати перевірку",
		"list.load_failed":   "Не вдалося завантажити список перевірок: %s",
		"list.retry":         "Спробувати ще раз",
		"list.superseded":    "Це оновлення замінено новішим.",
		"list.last_checked":  "Остання перевірка",
		"list.next_check":    "Наступна перевірка",
		"list.interval":      "Кожні %d хв",
		"list.never_checked": "Ще не перевірялось",
		"list.not_scheduled": "Не заплановано",
		"list.refresh":       "Оновити",
		"list.preview":       "Поточне значення",

		"result.changed":   "Змінено",
		"result.no_change": "Без змін",
		"result.error":     "Помилка",
		"result.unknown":   "Невідомо",

		"check.active": "Активна",
		"check.paused": "Призупинена",

		"status.heading":      "Стан системи",
		"status.scheduler":    "Статус планувальника",
		"status.running":      "Працює",
		"status.stopped":      "Зупинено",
		"status.active_jobs":  "Активних завдань",
		"status.time_utc":     "Час (UTC)",
		"status.time_local":   "Місцевий час сервера",
		"status.version":      "Версія застосунку",
		"status.last_error":   "Остання глобальна помилка",
		"status.overdue":      "Прострочених завдань: %d",
		"status.overdue_by":   "прострочено на %d с (%s)",
		"status.load_failed":  "Не вдалося завантажити стан системи: %s",
		"status.diagnostics":  "Діагностика планувальника",
		"status.force":        "Примусова перевірка планувальника",
		"status.forced":       "Перевірку планувальника запущено.",
		"status.force_failed": "Не вдалося запустити перевірку планувальника: %s",
		"status.na":           "N/A",

		"diag.heading":        "Діагностика планувальника",
		"diag.jobs":           "Завдань: %d",
		"diag.overdue_count":  "Прострочено: %d",
		"diag.job":            "Завдання",
		"diag.next_run_utc":   "Наступний запуск (UTC)",
		"diag.next_run_local": "Наступний запуск (місцевий)",
		"diag.trigger":        "Тригер",
		"diag.overdue":        "Прострочено",
		"diag.no_jobs":        "Немає запланованих завдань.",
		"diag.load_failed":    "Не вдалося завантажити діагностику планувальника: %s",
		"diag.back":           "Назад до стану",

		"form.heading":         "Додати перевірку",
		"form.name":            "Назва",
		"form.url":             "URL",
		"form.selector":        "CSS-селектор",
		"form.threshold":       "Поріг зміни (%)",
		"form.interval":        "Інтервал (хвилини)",
		"form.submit":          "Додати",
		"form.required":        "Будь ласка, заповніть обов'язкові поля: URL та Інтервал.",
		"form.interval_min":    "Інтервал перевірки повинен бути не менше 1 хвилини.",
		"form.threshold_range": "Поріг зміни повинен бути від 0 до 100.",
		"form.created":         "Перевірку успішно додано!",
		"form.failed":          "Помилка додавання перевірки: %s",
		"form.duplicate":       "Цю форму вже надіслано.",
		"form.redirecting":     "Повертаємось до списку.",
		"form.edit_heading":    "Редагувати перевірку",
		"form.save":            "Зберегти",
		"form.update_failed":   "Помилка збереження перевірки: %s",

		"details.heading":             "Деталі перевірки",
		"details.bad_id":              "Не вдалося визначити ID перевірки.",
		"details.load_failed":         "Не вдалося завантажити деталі перевірки: %s",
		"details.whole_page":          "Вся сторінка",
		"details.no_threshold":        "N/A (використовується селектор або не задано)",
		"details.no_data":             "Немає даних",
		"details.history":             "Історія перевірок",
		"details.history_placeholder": "Історія перевірок буде реалізована пізніше.",
		"details.manual":              "Позачергова перевірка",
		"details.pause":               "Деактивувати",
		"details.resume":              "Активувати",
		"details.delete":              "Видалити",
		"details.delete_confirm":      "Видалити цю перевірку?",
		"details.edit":                "Редагувати",
		"details.name":                "Назва",
		"details.url":                 "URL",
		"details.selector":            "Селектор",
		"details.threshold":           "Поріг зміни",
		"details.interval":            "Інтервал (хвилини)",
		"details.status":              "Статус",
		"details.last_check":          "Остання перевірка",
		"details.next_check":          "Наступна перевірка",
		"details.last_result":         "Останній результат",
		"details.action_failed":       "Дію не виконано: %s",

		"notice.created": "Перевірку успішно додано!",
		"notice.manual":  "Перевірку виконано: %s",
		"notice.toggled": "Статус перевірки: %s.",
		"notice.deleted": "Перевірку видалено.",
		"notice.updated": "Перевірку оновлено.",

		"error.unreachable": "Не вдалося зв'язатися з сервером.",
		"error.internal":    "Під час побудови сторінки сталася помилка.",
	},
}

// catalogFor returns the catalog for locale, falling back to English.
func catalogFor(locale string) catalog {
	if c, ok := catalogs[locale]; ok {
		return c
	}
	return catalogs[defaultLocale]
}

// T formats the message for key. Missing keys fall back to English, then to the key itself.
func (c catalog) T(key string, args ...any) string {
	format, ok := c[key]
	if !ok {
		if format, ok = catalogs[defaultLocale][key]; !ok {
			return key
		}
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
