// Copyright 2024, CityPair, Inc.

package main

import (
	log "github.com/sirupsen/logrus"

	"github.com/citypair/matching-service/app"
	"github.com/citypair/matching-service/server"
)

func main() {
	s := server.NewServer(app.Defaults())
	if err := s.Boot(); err != nil {
		log.Fatalf("error starting Matching Service: %s", err)
	}
	if err := s.Run(); err != nil {
		log.Fatalf("error running the web server: %s", err)
	}
}
