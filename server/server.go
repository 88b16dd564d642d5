// Copyright 2024, CityPair, Inc.

// Package server bootstraps and runs the Matching Service.
package server

import (
	"fmt"

	"github.com/citypair/matching-service/api"
	"github.com/citypair/matching-service/app"
	"github.com/citypair/matching-service/request"
	"github.com/citypair/matching-service/user"
)

type Server struct {
	appCtx app.Context
	api    *api.API
}

func NewServer(appCtx app.Context) *Server {
	return &Server{
		appCtx: appCtx,
	}
}

func (s *Server) Boot() error {
	// Load config file
	cfg, err := s.appCtx.Hooks.LoadConfig(s.appCtx)
	if err != nil {
		return fmt.Errorf("error loading config: %s", err)
	}
	s.appCtx.Config = cfg

	// Db connection pool: for users and requests (pretty much everything)
	dbc, err := s.appCtx.Factories.MakeDbConnPool(s.appCtx)
	if err != nil {
		return fmt.Errorf("MakeDbConnPool: %s", err)
	}

	// User Manager: validation, creation, and lookup of users
	s.appCtx.UM = user.NewManager(user.NewDBAccessor(dbc))

	// Request Manager: validation, user existence check, creation, and
	// lookup of requests
	s.appCtx.RM = request.NewManager(request.NewDBAccessor(dbc), s.appCtx.UM)

	// API: endpoints and controllers
	s.api = api.NewAPI(s.appCtx)

	return nil
}

func (s *Server) Run() error {
	if s.api == nil {
		panic("Server.Run called before Server.Boot")
	}
	return s.api.Run()
}

func (s *Server) API() *api.API {
	return s.api
}
