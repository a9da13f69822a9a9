package server

import (
	"sort"
	"strings"
)

// Route is one registered endpoint.
type Route struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Handler string `json:"handler"`
}

// systemPaths are the endpoints registered by RegisterDefaultEndpoints.
var systemPaths = map[string]bool{
	"/health":  true,
	"/alive":   true,
	"/ready":   true,
	"/version": true,
	"/metrics": true,
}

// Routes lists the registered routes, API routes first.
func (s *Server) Routes() []Route {
	ginRoutes := s.engine.Routes()
	sort.Slice(ginRoutes, func(i, j int) bool {
		iSys, jSys := systemPaths[ginRoutes[i].Path], systemPaths[ginRoutes[j].Path]
		if iSys != jSys {
			return !iSys
		}
		if ginRoutes[i].Path != ginRoutes[j].Path {
			return ginRoutes[i].Path < ginRoutes[j].Path
		}
		return methodOrder(ginRoutes[i].Method) < methodOrder(ginRoutes[j].Method)
	})

	routes := make([]Route, 0, len(ginRoutes))
	for _, r := range ginRoutes {
		routes = append(routes, Route{Method: r.Method, Path: r.Path, Handler: formatHandlerName(r.Handler)})
	}
	return routes
}

// LogRoutes writes the route table at debug level.
func (s *Server) LogRoutes() {
	for _, r := range s.Routes() {
		s.log.Debug("Route registered", map[string]interface{}{
			"method":  r.Method,
			"path":    r.Path,
			"handler": r.Handler,
		})
	}
}

// formatHandlerName shortens Gin's handler path:
// "github.com/kbukum/pipegen/api.(*Handler).CreateMicroflow-fm" becomes
// "Handler.CreateMicroflow".
func formatHandlerName(fullPath string) string {
	name := strings.TrimSuffix(fullPath, "-fm")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ReplaceAll(name, "(*", "")
	name = strings.ReplaceAll(name, ")", "")

	// Closures: "endpoint.Health.func1" becomes "health".
	if strings.Contains(name, ".func") {
		parts := strings.Split(name, ".")
		for i := len(parts) - 1; i >= 0; i-- {
			if !strings.HasPrefix(parts[i], "func") {
				name = strings.ToLower(parts[i])
				break
			}
		}
	}

	// Drop a lowercase package prefix.
	if pkg, rest, ok := strings.Cut(name, "."); ok && rest != "" && strings.ToLower(pkg) == pkg {
		name = rest
	}
	return name
}

func methodOrder(method string) int {
	switch method {
	case "GET":
		return 0
	case "POST":
		return 1
	case "PUT":
		return 2
	case "PATCH":
		return 3
	case "DELETE":
		return 4
	default:
		return 5
	}
}
