package main

import (
	"github.com/rishipandey14/HRMS-Backend/src/internal/config"
	"github.com/rishipandey14/HRMS-Backend/src/internal/logger"
	"github.com/rishipandey14/HRMS-Backend/src/internal/server"

	"github.com/sirupsen/logrus"
)

var log = logrus.StandardLogger()

func main() {
	cfg := config.Load()
	logger.Init(cfg)

	log.WithFields(logrus.Fields{
		"version":  cfg.App.Version,
		"timezone": cfg.App.Timezone,
	}).Infof("Application %s is starting....", cfg.App.Name)

	srv := server.New(cfg)
	if err := srv.Start(); err != nil {
		log.WithError(err).Fatalf("Error starting server: %v", err)
	}
}
