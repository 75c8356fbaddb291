package rpc

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// RPC Paths
const (
	VersionRoutePath       = "/v1/"
	HeightRoutePath        = "/v1/query/height"
	FinalityRoutePath      = "/v1/query/finality"
	AccountRoutePath       = "/v1/query/account/:key"
	ResourceUsageRoutePath = "/v1/admin/resource-usage"
	ConfigRoutePath        = "/v1/admin/config"
	LogsRoutePath          = "/v1/admin/log"
)

// RPC Route Names
const (
	VersionRouteName       = "version"
	HeightRouteName        = "height"
	FinalityRouteName      = "finality"
	AccountRouteName       = "account"
	ResourceUsageRouteName = "resource-usage"
	ConfigRouteName        = "config"
	LogsRouteName          = "logs"
)

// routes contains the method and path for a command
type routes map[string]struct {
	Method string
	Path   string
}

// routePaths is a mapping from route names to their corresponding HTTP methods and paths
var routePaths = routes{
	VersionRouteName:       {Method: http.MethodGet, Path: VersionRoutePath},
	HeightRouteName:        {Method: http.MethodGet, Path: HeightRoutePath},
	FinalityRouteName:      {Method: http.MethodGet, Path: FinalityRoutePath},
	AccountRouteName:       {Method: http.MethodGet, Path: AccountRoutePath},
	ResourceUsageRouteName: {Method: http.MethodGet, Path: ResourceUsageRoutePath},
	ConfigRouteName:        {Method: http.MethodGet, Path: ConfigRoutePath},
	LogsRouteName:          {Method: http.MethodGet, Path: LogsRoutePath},
}

// httpRouteHandlers is a custom type that maps strings to httprouter handle functions
type httpRouteHandlers map[string]httprouter.Handle

// createRouter initializes and returns a new HTTP router with predefined route handlers
func createRouter(s *Server) *httprouter.Router {
	var r = httpRouteHandlers{
		VersionRouteName:       s.Version,
		HeightRouteName:        s.Height,
		FinalityRouteName:      s.Finality,
		AccountRouteName:       s.Account,
		ResourceUsageRouteName: s.ResourceUsage,
		ConfigRouteName:        s.Config,
		LogsRouteName:          logsHandler(s),
	}
	router := httprouter.New()
	for name, handler := range r {
		path := routePaths[name]
		router.Handle(path.Method, path.Path, logHandler{path.Path, handler, s.logger}.Handle)
	}
	return router
}
