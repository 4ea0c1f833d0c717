package pricing

import "context"

type (
	// RateSource отдаёт текущий курс USD -> UAH.
	RateSource interface {
		Rate() float64
	}

	// SettingsStorage - доступ к настройкам магазина.
	SettingsStorage interface {
		GetSetting(ctx context.Context, key string) (string, error)
		SetSetting(ctx context.Context, key, value string) error
	}
)
