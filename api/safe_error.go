package api

import (
	"fintrack/config"
)

// SafeErrorMessage hides internal error details from API clients in release mode
func SafeErrorMessage(err error, fallback string) string {
	return config.SafeErrorMessage(err, fallback)
}
