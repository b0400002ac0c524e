package database

import (
	"strconv"
	"strings"

	"github.com/forumdb/forumdb/internal/config"
	apperrors "github.com/forumdb/forumdb/pkg/errors"
)

// ParsePort validates a user-entered store port. Blank input selects the
// default MongoDB port; anything but a number in 1..65535 is rejected with
// ErrInvalidConnection.
func ParsePort(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return config.DefaultMongoPort, nil
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, apperrors.Newf(apperrors.ErrInvalidConnection, "invalid port number %q", s)
		}
	}
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return 0, apperrors.Newf(apperrors.ErrInvalidConnection, "port %q out of range", s)
	}
	return port, nil
}
