package cache

import (
	"fmt"

	"github.com/google/uuid"
)

func JobProgressKey(tenantID, jobID uuid.UUID) string {
	return fmt.Sprintf("analysis:progress:%s:%s", tenantID, jobID)
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
