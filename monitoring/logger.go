package monitoring

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "monitoring")
