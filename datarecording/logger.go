package datarecording

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "datarecording")
