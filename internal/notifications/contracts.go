package notifications

type (
	// Messenger - внешний канал доставки сообщений покупателю.
	Messenger interface {
		SendMessage(chatID int64, text string) error
	}

	// Localizer отдаёт перевод по ключу.
	Localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}
)
