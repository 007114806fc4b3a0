package isochrone

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "isochrone")
