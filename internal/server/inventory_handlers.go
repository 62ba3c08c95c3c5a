package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/corralworks/corral/internal/db/models"
)

type nodeResponse struct {
	Name            string            `json:"name"`
	GUID            string            `json:"guid"`
	State           string            `json:"state"`
	PublicHostname  string            `json:"public_hostname,omitempty"`
	Tags            map[string]string `json:"tags"`
	SoftwareProfile string            `json:"software_profile,omitempty"`
	HardwareProfile string            `json:"hardware_profile,omitempty"`
	LockedState     string            `json:"locked_state"`
	LastUpdate      time.Time         `json:"last_update"`
}

func nodeToResponse(n *models.Node) nodeResponse {
	resp := nodeResponse{
		Name:           n.Name,
		GUID:           n.GUID,
		State:          n.State,
		PublicHostname: n.PublicHostname,
		Tags:           n.Tags,
		LockedState:    n.LockedState,
		LastUpdate:     n.LastUpdate,
	}
	if n.SoftwareProfile != nil {
		resp.SoftwareProfile = n.SoftwareProfile.Name
	}
	if n.HardwareProfile != nil {
		resp.HardwareProfile = n.HardwareProfile.Name
	}
	return resp
}

// handleNodeList lists nodes, narrowed by the optional tag_filter query
// parameter (a boolean expression over tag keys and values).
func (s *Server) handleNodeList(w http.ResponseWriter, r *http.Request) {
	tagFilter := r.URL.Query().Get("tag_filter")

	nodes, err := s.inventory.ListNodes(r.Context(), tagFilter)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]nodeResponse, 0, len(nodes))
	for i := range nodes {
		out = append(out, nodeToResponse(&nodes[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"nodes": out})
}

// handleNodeGet returns one node by name.
func (s *Server) handleNodeGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	node, err := s.inventory.GetNode(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nodeToResponse(node))
}

type nodeUpdateRequest struct {
	State *string            `json:"state,omitempty"`
	Tags  *map[string]string `json:"tags,omitempty"`
}

// handleNodeUpdate applies a state transition and/or tag replacement to a
// node. Either field may be omitted; an empty body is a bad request.
func (s *Server) handleNodeUpdate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req nodeUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.State == nil && req.Tags == nil {
		writeBadRequest(w, "nothing to update: provide state and/or tags")
		return
	}

	var node *models.Node
	var err error

	if req.State != nil {
		node, err = s.inventory.UpdateNodeState(r.Context(), name, *req.State)
		if err != nil {
			writeError(w, err)
			return
		}
	}
	if req.Tags != nil {
		node, err = s.inventory.UpdateNodeTags(r.Context(), name, *req.Tags)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, nodeToResponse(node))
}

// handleNodeUpdateTags replaces a node's tag map.
func (s *Server) handleNodeUpdateTags(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req tagUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	node, err := s.inventory.UpdateNodeTags(r.Context(), name, req.Tags)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nodeToResponse(node))
}

type softwareProfileResponse struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	OSName      string            `json:"os_name,omitempty"`
	OSVersion   string            `json:"os_version,omitempty"`
	Tags        map[string]string `json:"tags"`
	LockedState string            `json:"locked_state"`
}

func softwareProfileToResponse(p *models.SoftwareProfile) softwareProfileResponse {
	return softwareProfileResponse{
		Name:        p.Name,
		Description: p.Description,
		OSName:      p.OSName,
		OSVersion:   p.OSVersion,
		Tags:        p.Tags,
		LockedState: p.LockedState,
	}
}

// handleSoftwareProfileList lists software profiles, narrowed by the
// optional tag_filter query parameter.
func (s *Server) handleSoftwareProfileList(w http.ResponseWriter, r *http.Request) {
	tagFilter := r.URL.Query().Get("tag_filter")

	profiles, err := s.inventory.ListSoftwareProfiles(r.Context(), tagFilter)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]softwareProfileResponse, 0, len(profiles))
	for i := range profiles {
		out = append(out, softwareProfileToResponse(&profiles[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"software_profiles": out})
}

// handleSoftwareProfileGet returns one software profile by name.
func (s *Server) handleSoftwareProfileGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	profile, err := s.inventory.GetSoftwareProfile(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, softwareProfileToResponse(profile))
}

type tagUpdateRequest struct {
	Tags map[string]string `json:"tags"`
}

// handleSoftwareProfileUpdateTags replaces a software profile's tag map.
func (s *Server) handleSoftwareProfileUpdateTags(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req tagUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	profile, err := s.inventory.UpdateSoftwareProfileTags(r.Context(), name, req.Tags)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, softwareProfileToResponse(profile))
}

type hardwareProfileResponse struct {
	Name            string            `json:"name"`
	Description     string            `json:"description,omitempty"`
	NameFormat      string            `json:"name_format,omitempty"`
	ResourceAdapter string            `json:"resource_adapter,omitempty"`
	Tags            map[string]string `json:"tags"`
}

func hardwareProfileToResponse(p *models.HardwareProfile) hardwareProfileResponse {
	return hardwareProfileResponse{
		Name:            p.Name,
		Description:     p.Description,
		NameFormat:      p.NameFormat,
		ResourceAdapter: p.ResourceAdapter,
		Tags:            p.Tags,
	}
}

// handleHardwareProfileList lists hardware profiles.
func (s *Server) handleHardwareProfileList(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.inventory.ListHardwareProfiles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]hardwareProfileResponse, 0, len(profiles))
	for i := range profiles {
		out = append(out, hardwareProfileToResponse(&profiles[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"hardware_profiles": out})
}

// handleHardwareProfileGet returns one hardware profile by name.
func (s *Server) handleHardwareProfileGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	profile, err := s.inventory.GetHardwareProfile(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hardwareProfileToResponse(profile))
}
