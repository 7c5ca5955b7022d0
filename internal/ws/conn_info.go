package ws

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// ConnInfo identifies one live connection for logging and auditing. Nothing
// here is persisted; it dies with the socket.
type ConnInfo struct {
	ConnID      string
	Username    string
	DeviceID    string
	RemoteIP    string
	ConnectedAt time.Time
}

func newConnID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "conn-unknown"
	}
	return hex.EncodeToString(buf)
}
