// Package logging configures the process-wide logrus logger and derives
// request-scoped entries from it.
package logging

import (
	"context"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"os"
	"strings"
)

// New returns a logger tagged with the service name. Unknown levels fall back
// to info; format is "json" or "text".
func New(service, level, format string) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.EqualFold(format, "text") {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	return l.WithField("service", service)
}

// FromContext attaches the chi request id, when present.
func FromContext(ctx context.Context, base *logrus.Entry) *logrus.Entry {
	if id := middleware.GetReqID(ctx); id != "" {
		return base.WithField("request_id", id)
	}
	return base
}
