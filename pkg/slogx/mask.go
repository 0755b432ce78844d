package slogx

import (
	"log/slog"
	"strings"
)

const masked = "[REDACTED]"

// sensitiveKeys are attribute keys whose values never reach the log output.
var sensitiveKeys = []string{
	"password",
	"secret",
	"token",
	"authorization",
	"totp_code",
	"pepper",
}

// IsSensitiveKey reports whether an attribute key names a credential.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// MaskSensitive is a slog ReplaceAttr hook that redacts credential values.
func MaskSensitive(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		return a
	}
	if IsSensitiveKey(a.Key) {
		return slog.String(a.Key, masked)
	}
	return a
}
