package tracing

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "tracing")
