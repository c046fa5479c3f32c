package config

// SafeErrorMessage hides internal error details from clients in release mode.
// With no loaded config the process is treated as a development build.
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if GlobalConfig != nil && GlobalConfig.IsRelease() {
		return fallback
	}
	return err.Error()
}
