package server

import "net/http"

// Operation describes one registered API endpoint. AuthRequired is explicit
// per-operation metadata set here at registration time: the router wires the
// authentication pipeline in front of exactly the operations that carry it,
// and every other operation bypasses the pipeline entirely.
type Operation struct {
	Name         string
	Method       string
	Path         string
	Handler      http.HandlerFunc
	AuthRequired bool
}

// operations returns the full operation table for the API.
func (s *Server) operations() []Operation {
	return []Operation{
		{
			Name:         "login",
			Method:       http.MethodPost,
			Path:         "/v2/auth/login",
			Handler:      s.handleLogin,
			AuthRequired: true,
		},
		{
			Name:         "whoami",
			Method:       http.MethodGet,
			Path:         "/v2/auth/whoami",
			Handler:      s.handleWhoAmI,
			AuthRequired: true,
		},
		{
			Name:         "logout",
			Method:       http.MethodPost,
			Path:         "/v2/auth/logout",
			Handler:      s.handleLogout,
			AuthRequired: true,
		},
		{
			Name:         "node-list",
			Method:       http.MethodGet,
			Path:         "/v2/nodes",
			Handler:      s.handleNodeList,
			AuthRequired: true,
		},
		{
			Name:         "node-get",
			Method:       http.MethodGet,
			Path:         "/v2/nodes/{name}",
			Handler:      s.handleNodeGet,
			AuthRequired: true,
		},
		{
			Name:         "node-update",
			Method:       http.MethodPut,
			Path:         "/v2/nodes/{name}",
			Handler:      s.handleNodeUpdate,
			AuthRequired: true,
		},
		{
			Name:         "node-update-tags",
			Method:       http.MethodPut,
			Path:         "/v2/nodes/{name}/tags",
			Handler:      s.handleNodeUpdateTags,
			AuthRequired: true,
		},
		{
			Name:         "software-profile-list",
			Method:       http.MethodGet,
			Path:         "/v2/softwareprofiles",
			Handler:      s.handleSoftwareProfileList,
			AuthRequired: true,
		},
		{
			Name:         "software-profile-get",
			Method:       http.MethodGet,
			Path:         "/v2/softwareprofiles/{name}",
			Handler:      s.handleSoftwareProfileGet,
			AuthRequired: true,
		},
		{
			Name:         "software-profile-update-tags",
			Method:       http.MethodPut,
			Path:         "/v2/softwareprofiles/{name}/tags",
			Handler:      s.handleSoftwareProfileUpdateTags,
			AuthRequired: true,
		},
		{
			Name:         "hardware-profile-list",
			Method:       http.MethodGet,
			Path:         "/v2/hardwareprofiles",
			Handler:      s.handleHardwareProfileList,
			AuthRequired: true,
		},
		{
			Name:         "hardware-profile-get",
			Method:       http.MethodGet,
			Path:         "/v2/hardwareprofiles/{name}",
			Handler:      s.handleHardwareProfileGet,
			AuthRequired: true,
		},
		{
			Name:         "event-feed",
			Method:       http.MethodGet,
			Path:         "/v2/events/ws",
			Handler:      s.handleEventFeed,
			AuthRequired: true,
		},
	}
}
