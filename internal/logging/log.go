// Package logging configures the process-wide structured logger. All
// lifecycle transitions and every admin override are logged through it
// as JSON so the audit trail can be shipped to a collector unchanged.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the shared application logger.
var Log *logrus.Logger

func init() {
	Log = logrus.New()
	Log.Out = os.Stdout
	Log.Formatter = &logrus.JSONFormatter{}
	Log.AddHook(&defaultFieldsHook{})
}

type defaultFieldsHook struct{}

func (h *defaultFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *defaultFieldsHook) Fire(e *logrus.Entry) error {
	e.Data["service"] = "pswdirect"
	if host, err := os.Hostname(); err == nil {
		e.Data["host"] = host
	}
	return nil
}
