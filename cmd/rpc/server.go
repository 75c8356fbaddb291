package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/canopy-network/poh/controller"
	"github.com/canopy-network/poh/lib"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

const (
	colon = ":"

	SoftwareVersion = "0.1.0-alpha"
	ContentType     = "Content-Type"
	ApplicationJSON = "application/json; charset=utf-8"
	localhost       = "localhost"
)

// Server is the read only status api of a node
type Server struct {
	// node controller
	controller *controller.Controller

	// node configuration
	config lib.Config

	// the listening server, nil until started
	server *http.Server

	logger lib.LoggerI
}

// NewServer constructs and returns a new RPC server
func NewServer(controller *controller.Controller, config lib.Config, logger lib.LoggerI) *Server {
	return &Server{
		controller: controller,
		config:     config,
		logger:     logger,
	}
}

// Handler() returns the router wrapped in the CORS policy and the request timeout
func (s *Server) Handler() http.Handler {
	cor := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
	})
	timeout := time.Duration(s.config.TimeoutS) * time.Second
	return cor.Handler(http.TimeoutHandler(createRouter(s), timeout, lib.ErrServerTimeout().Error()))
}

// Start() serves the api in the background if enabled
func (s *Server) Start() {
	if !s.config.RPCEnabled {
		return
	}
	s.server = &http.Server{Addr: colon + s.config.RPCPort, Handler: s.Handler()}
	go func() {
		s.logger.Infof("Starting RPC server at 0.0.0.0:%s", s.config.RPCPort)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("RPC server failed with err: %s", err.Error())
		}
	}()
}

// Stop() gracefully shuts the api down
func (s *Server) Stop() {
	if s.server == nil {
		return
	}
	if err := s.server.Shutdown(context.Background()); err != nil {
		s.logger.Error(err.Error())
	}
}

// logsHandler writes the node logfile, newest line first
func logsHandler(s *Server) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		filePath := filepath.Join(s.config.DataDirPath, lib.LogDirectory, lib.LogFileName)
		f, _ := os.ReadFile(filePath)
		split := bytes.Split(f, []byte("\n"))
		var flipped []byte
		for i := len(split) - 1; i >= 0; i-- {
			flipped = append(append(flipped, split[i]...), []byte("\n")...)
		}
		if _, err := w.Write(flipped); err != nil {
			s.logger.Error(err.Error())
		}
	}
}

// logHandler is a middleware that logs incoming RPC calls at debug level
type logHandler struct {
	path   string
	h      httprouter.Handle
	logger lib.LoggerI
}

// Handle() logs the path then calls the wrapped handler
func (h logHandler) Handle(resp http.ResponseWriter, req *http.Request, p httprouter.Params) {
	h.logger.Debugf("RPC %s %s", req.Method, h.path)
	h.h(resp, req, p)
}

// write marshaled payload to w
func (s *Server) write(w http.ResponseWriter, payload interface{}, code int) {
	w.Header().Set(ContentType, ApplicationJSON)
	w.WriteHeader(code)
	bz, _ := json.MarshalIndent(payload, "", "  ")
	if _, err := w.Write(bz); err != nil {
		s.logger.Error(err.Error())
	}
}
