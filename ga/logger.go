package ga

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "ga")
