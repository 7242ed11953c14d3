// Package logging provides a small, typed builder over logrus.Fields so
// call sites use consistent field names instead of ad-hoc string keys.
package logging

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Fields is logrus.Fields with chainable setters for the handful of
// dimensions every component logs by.
type Fields logrus.Fields

// NewFields returns an empty, chainable field set.
func NewFields() Fields {
	return Fields{}
}

func (f Fields) Component(name string) Fields {
	f["component"] = name
	return f
}

func (f Fields) Operation(name string) Fields {
	f["operation"] = name
	return f
}

func (f Fields) Resource(kind, name string) Fields {
	f["resource_type"] = kind
	if name != "" {
		f["resource_name"] = name
	}
	return f
}

func (f Fields) Duration(d time.Duration) Fields {
	f["duration_ms"] = d.Milliseconds()
	return f
}

func (f Fields) Error(err error) Fields {
	if err != nil {
		f["error"] = err.Error()
	}
	return f
}

func (f Fields) UserID(id string) Fields {
	if id != "" {
		f["user_id"] = id
	}
	return f
}

func (f Fields) RequestID(id string) Fields {
	if id != "" {
		f["request_id"] = id
	}
	return f
}

func (f Fields) NodeID(id string) Fields {
	if id != "" {
		f["node_id"] = id
	}
	return f
}

func (f Fields) Count(n int) Fields {
	f["count"] = n
	return f
}

// Logrus converts Fields back to logrus.Fields for use with a *logrus.Entry.
func (f Fields) Logrus() logrus.Fields {
	return logrus.Fields(f)
}
