package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/stockdesk/stockdesk/internal/platform/store"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// MaxEntries is the retention cap of each log stream.
const MaxEntries = 100

// Stream names one of the two independently keyed log collections.
type Stream string

const (
	StreamActivity Stream = "activity"
	StreamStock    Stream = "stock"
)

// ParseStream validates a stream name coming from a request path.
func ParseStream(raw string) (Stream, error) {
	switch Stream(strings.ToLower(strings.TrimSpace(raw))) {
	case StreamActivity:
		return StreamActivity, nil
	case StreamStock:
		return StreamStock, nil
	}
	return "", shared.Validationf("unknown log stream %q", raw)
}

// Key returns the store key backing the stream.
func (s Stream) Key() string {
	if s == StreamStock {
		return store.KeyStockLogs
	}
	return store.KeyActivityLogs
}

// ActivityType classifies activity entries.
type ActivityType string

const (
	TypeLogin  ActivityType = "login"
	TypeLogout ActivityType = "logout"
	TypeUser   ActivityType = "user"
	TypeSystem ActivityType = "system"
)

// ActivityEntry mencatat aksi pengguna seperti login, logout dan perubahan user.
type ActivityEntry struct {
	ID        int64        `json:"id"`
	Type      ActivityType `json:"type"`
	User      string       `json:"user"`
	Action    string       `json:"action"`
	Timestamp time.Time    `json:"timestamp"`
	Details   string       `json:"details"`
}

// StockEntry mencatat mutasi inventori.
type StockEntry struct {
	ID        int64     `json:"id"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Product   string    `json:"product"`
	OldValue  *int      `json:"oldValue"`
	NewValue  *int      `json:"newValue"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details"`
}

// Qty is a convenience for populating the nullable stock values.
func Qty(v int) *int {
	return &v
}

// UserDetails formats the details line of user directory activity.
func UserDetails(action, name, email string) string {
	return fmt.Sprintf("%s for user: %s (%s)", action, name, email)
}
