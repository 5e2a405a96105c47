package cache

import (
	"fmt"

	"github.com/google/uuid"
)

func UserRoleKey(userID uuid.UUID) string {
	return fmt.Sprintf("role:%s", userID)
}

func RateLimitKey(subject string) string {
	return fmt.Sprintf("ratelimit:%s", subject)
}

func AuditKey(auditID uuid.UUID) string {
	return fmt.Sprintf("audit:%s", auditID)
}
