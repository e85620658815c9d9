// Package share identifies shared sessions and fans state updates out to
// every device following one.
package share

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// DefaultBaseURL prefixes share links when none is configured.
const DefaultBaseURL = "https://hiit.app"

// SessionIDLength is the length of a generated session id.
const SessionIDLength = 10

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ErrNoSessionID is returned when a link carries no session id.
var ErrNoSessionID = errors.New("no session id in link")

var (
	sessionPathRe = regexp.MustCompile(`/s/([a-zA-Z0-9]+)`)
	bareIDRe      = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

// GenerateSessionID returns a random alphanumeric session id.
func GenerateSessionID() (string, error) {
	var b strings.Builder
	b.Grow(SessionIDLength)
	limit := big.NewInt(int64(len(idAlphabet)))
	for i := 0; i < SessionIDLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate session id: %w", err)
		}
		b.WriteByte(idAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// ShareURL returns the link other devices use to join session id.
func ShareURL(baseURL, id string) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return strings.TrimRight(baseURL, "/") + "/s/" + id
}

// ParseSessionURL extracts the session id from a share link. A bare id is
// accepted as is.
func ParseSessionURL(link string) (string, error) {
	link = strings.TrimSpace(link)
	if m := sessionPathRe.FindStringSubmatch(link); m != nil {
		return m[1], nil
	}
	if bareIDRe.MatchString(link) {
		return link, nil
	}
	return "", fmt.Errorf("%w: %q", ErrNoSessionID, link)
}

// NewDeviceID returns a unique id for this process's participation in a
// session.
func NewDeviceID() string {
	return uuid.NewString()
}

// Session describes this device's view of a shared session.
type Session struct {
	ID               string `json:"session_id"`
	HostID           string `json:"host_id"`
	DeviceID         string `json:"device_id"`
	ShareURL         string `json:"share_url"`
	ConnectedDevices int    `json:"connected_devices"`
	IsHost           bool   `json:"is_host"`
}

// NewHostSession creates a session hosted by this device.
func NewHostSession(baseURL string) (Session, error) {
	id, err := GenerateSessionID()
	if err != nil {
		return Session{}, err
	}
	device := NewDeviceID()
	return Session{
		ID:               id,
		HostID:           device,
		DeviceID:         device,
		ShareURL:         ShareURL(baseURL, id),
		ConnectedDevices: 1,
		IsHost:           true,
	}, nil
}

// NewGuestSession describes joining session id hosted by hostID.
func NewGuestSession(baseURL, id, hostID string) Session {
	return Session{
		ID:               id,
		HostID:           hostID,
		DeviceID:         NewDeviceID(),
		ShareURL:         ShareURL(baseURL, id),
		ConnectedDevices: 2,
		IsHost:           false,
	}
}
