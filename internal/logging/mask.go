package logging

import (
	"strings"

	"go.uber.org/zap"
)

// MaskToken hides all but the last four characters of a secret.
func MaskToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}

// MaskAuthorization masks bearer tokens, preserving the scheme.
func MaskAuthorization(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	parts := strings.Fields(value)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return "Bearer " + MaskToken(parts[1])
	}
	return MaskToken(value)
}

// Token is a zap field carrying a masked secret.
func Token(key, value string) zap.Field {
	return zap.String(key, MaskToken(value))
}
