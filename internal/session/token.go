package session

import (
	"encoding/base64"
	"strconv"
	"time"
)

// TokenIssuer produces the marker stored next to the email in the session record.
type TokenIssuer interface {
	Issue(email string, now time.Time) (string, error)
}

// LegacyTokenIssuer builds base64(email + ":" + epochMillis). The token carries
// no signature and is never checked on restore.
type LegacyTokenIssuer struct{}

func (LegacyTokenIssuer) Issue(email string, now time.Time) (string, error) {
	raw := email + ":" + strconv.FormatInt(now.UnixMilli(), 10)
	return base64.StdEncoding.EncodeToString([]byte(raw)), nil
}
