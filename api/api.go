// Copyright 2024, CityPair, Inc.

// Package api provides controllers for each api endpoint. Controllers are
// "dumb wiring"; there is little to no application logic in this package.
// Controllers call and coordinate other packages to satisfy the api endpoint.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"

	"github.com/citypair/matching-service/app"
	serr "github.com/citypair/matching-service/errors"
	"github.com/citypair/matching-service/proto"
	"github.com/citypair/matching-service/request"
	"github.com/citypair/matching-service/user"
	v "github.com/citypair/matching-service/version"
)

// API provides controllers for endpoints it registers with a router.
// It satisfies the http.HandlerFunc interface.
type API struct {
	appCtx app.Context
	um     user.Manager
	rm     request.Manager
	// --
	echo *echo.Echo
}

// NewAPI creates a new API struct. It initializes an echo web server within
// the struct, and registers all of the API's routes with it.
func NewAPI(appCtx app.Context) *API {
	api := &API{
		appCtx: appCtx,
		um:     appCtx.UM,
		rm:     appCtx.RM,
		// --
		echo: echo.New(),
	}

	// //////////////////////////////////////////////////////////////////////
	// Routes
	// //////////////////////////////////////////////////////////////////////

	// Users
	api.echo.POST("/users/", api.createUserHandler)   // create
	api.echo.GET("/users/:id", api.getUserHandler)    // get -> proto.User

	// Requests
	api.echo.POST("/requests/", api.createRequestHandler) // create
	api.echo.GET("/requests/:id", api.getRequestHandler)  // get -> proto.Request

	// Meta
	api.echo.GET("/", api.statusHandler)         // health check
	api.echo.GET("/version", api.versionHandler) // return version.VERSION

	// //////////////////////////////////////////////////////////////////////
	// Middleware and hooks
	// //////////////////////////////////////////////////////////////////////
	api.echo.Use(middleware.Recover())
	api.echo.Use(middleware.Logger())

	api.echo.Use((func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("X-Matching-Service-Version", v.Version())
			return next(c)
		}
	}))

	return api
}

func (api *API) Router() *echo.Echo {
	return api.echo
}

// Run makes the API listen on the configured address.
func (api *API) Run() error {
	var err error
	if api.appCtx.Config.Server.TLS.CertFile != "" && api.appCtx.Config.Server.TLS.KeyFile != "" {
		err = api.echo.StartTLS(api.appCtx.Config.Server.ListenAddress, api.appCtx.Config.Server.TLS.CertFile, api.appCtx.Config.Server.TLS.KeyFile)
	} else {
		err = api.echo.Start(api.appCtx.Config.Server.ListenAddress)
	}
	return err
}

// Stop stops the API when it's running. When Stop is called, Run returns
// immediately. Make sure to wait for Stop to return.
func (api *API) Stop() error {
	var err error
	if api.appCtx.Config.Server.TLS.CertFile != "" && api.appCtx.Config.Server.TLS.KeyFile != "" {
		err = api.echo.TLSServer.Shutdown(context.TODO())
	} else {
		err = api.echo.Server.Shutdown(context.TODO())
	}
	return err
}

// ServeHTTP makes the API implement the http.HandlerFunc interface.
func (api *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.echo.ServeHTTP(w, r)
}

// POST /users/
// Create a new user.
func (api *API) createUserHandler(c echo.Context) error {
	// Convert the payload into a proto.CreateUserParams.
	var params proto.CreateUserParams
	if err := c.Bind(&params); err != nil {
		return handleError(serr.ValidationError{Message: "invalid request body"}, c)
	}

	u, err := api.um.Create(params)
	if err != nil {
		return handleError(err, c)
	}

	// Return the user.
	return c.JSON(http.StatusCreated, u)
}

// GET /users/{id}
// Get a user.
func (api *API) getUserHandler(c echo.Context) error {
	userId, err := parseId(c.Param("id"))
	if err != nil {
		return handleError(err, c)
	}

	u, err := api.um.Get(userId)
	if err != nil {
		return handleError(err, c)
	}

	// Return the user.
	return c.JSON(http.StatusOK, u)
}

// POST /requests/
// Create a new request. The referenced user must exist.
func (api *API) createRequestHandler(c echo.Context) error {
	// Convert the payload into a proto.CreateRequestParams.
	var params proto.CreateRequestParams
	if err := c.Bind(&params); err != nil {
		return handleError(serr.ValidationError{Message: "invalid request body"}, c)
	}

	req, err := api.rm.Create(params)
	if err != nil {
		return handleError(err, c)
	}

	// Return the request.
	return c.JSON(http.StatusCreated, req)
}

// GET /requests/{id}
// Get a request.
func (api *API) getRequestHandler(c echo.Context) error {
	requestId, err := parseId(c.Param("id"))
	if err != nil {
		return handleError(err, c)
	}

	req, err := api.rm.Get(requestId)
	if err != nil {
		return handleError(err, c)
	}

	// Return the request.
	return c.JSON(http.StatusOK, req)
}

// GET /
// Health check.
func (api *API) statusHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (api *API) versionHandler(c echo.Context) error {
	return c.String(http.StatusOK, v.Version())
}

// ------------------------------------------------------------------------- //

func parseId(param string) (int64, error) {
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil {
		return 0, serr.ValidationError{Field: "id", Message: "must be an integer"}
	}
	return id, nil
}

func handleError(err error, c echo.Context) error {
	ret := proto.Error{
		Message:    err.Error(),
		HTTPStatus: http.StatusInternalServerError,
	}

	switch err.(type) {
	case serr.UserNotFound, serr.RequestNotFound:
		ret.HTTPStatus = http.StatusNotFound
	case serr.ValidationError:
		ret.HTTPStatus = http.StatusUnprocessableEntity
	case serr.DuplicateEntry:
		ret.HTTPStatus = http.StatusConflict
	}

	return c.JSON(ret.HTTPStatus, ret)
}
