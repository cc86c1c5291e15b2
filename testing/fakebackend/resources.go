package fakebackend

import (
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cocofhu/mcp-adapter-console/schema"
)

// SeedApplication stores an application directly and returns it.
func (s *Server) SeedApplication(d schema.ApplicationDraft) schema.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	app := schema.Application{ID: s.allocID(), ApplicationDraft: d, CreatedAt: now, UpdatedAt: now}
	s.apps[app.ID] = app
	return app
}

// SeedCustomType stores a custom type directly and returns it.
func (s *Server) SeedCustomType(d schema.CustomTypeDraft) schema.CustomType {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	ct := schema.CustomType{ID: s.allocID(), CustomTypeDraft: d, CreatedAt: now, UpdatedAt: now}
	s.types[ct.ID] = ct
	return ct
}

// SeedInterface stores an interface directly and returns it.
func (s *Server) SeedInterface(d schema.InterfaceDraft) schema.Interface {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	iface := schema.Interface{ID: s.allocID(), InterfaceDraft: d, CreatedAt: now, UpdatedAt: now}
	s.ifaces[iface.ID] = iface
	return iface
}

// Interface returns the stored interface id.
func (s *Server) Interface(id int64) (schema.Interface, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	iface, ok := s.ifaces[id]
	return iface, ok
}

// CustomType returns the stored custom type id.
func (s *Server) CustomType(id int64) (schema.CustomType, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ct, ok := s.types[id]
	return ct, ok
}

func (s *Server) listApplications(c echo.Context) error {
	s.mu.Lock()
	out := make([]schema.Application, 0, len(s.apps))
	for _, app := range s.apps {
		out = append(out, app)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return c.JSON(http.StatusOK, map[string]any{"applications": out})
}

func (s *Server) createApplication(c echo.Context) error {
	var d schema.ApplicationDraft
	if err := c.Bind(&d); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(d.Name) == "" {
		return jsonError(c, http.StatusBadRequest, "name is required")
	}

	s.mu.Lock()
	for _, app := range s.apps {
		if app.Name == d.Name {
			s.mu.Unlock()
			return jsonError(c, http.StatusConflict, "application name already exists")
		}
	}
	now := s.now()
	app := schema.Application{ID: s.allocID(), ApplicationDraft: d, CreatedAt: now, UpdatedAt: now}
	s.apps[app.ID] = app
	s.mu.Unlock()

	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"message": "application created",
		"data":    app,
	})
}

func (s *Server) updateApplication(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var d schema.ApplicationDraft
	if err := c.Bind(&d); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return c.String(http.StatusNotFound, "application not found")
	}
	app.ApplicationDraft = d
	app.UpdatedAt = s.now()
	s.apps[id] = app
	return c.JSON(http.StatusOK, app)
}

func (s *Server) deleteApplication(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[id]; !ok {
		return c.String(http.StatusNotFound, "application not found")
	}
	delete(s.apps, id)
	for tid, ct := range s.types {
		if ct.AppID == id {
			delete(s.types, tid)
		}
	}
	for iid, iface := range s.ifaces {
		if iface.AppID == id {
			delete(s.ifaces, iid)
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) listCustomTypes(c echo.Context) error {
	appID, err := queryAppID(c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	out := make([]schema.CustomType, 0)
	for _, ct := range s.types {
		if ct.AppID == appID {
			out = append(out, ct)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return c.JSON(http.StatusOK, map[string]any{"custom_types": out})
}

func (s *Server) createCustomType(c echo.Context) error {
	var d schema.CustomTypeDraft
	if err := c.Bind(&d); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if status, msg := s.checkType(0, d); status != 0 {
		return jsonError(c, status, msg)
	}
	now := s.now()
	ct := schema.CustomType{ID: s.allocID(), CustomTypeDraft: d, CreatedAt: now, UpdatedAt: now}
	s.types[ct.ID] = ct
	return c.JSON(http.StatusCreated, ct)
}

func (s *Server) updateCustomType(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var d schema.CustomTypeDraft
	if err := c.Bind(&d); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ct, ok := s.types[id]
	if !ok {
		return c.String(http.StatusNotFound, "custom type not found")
	}
	if status, msg := s.checkType(id, d); status != 0 {
		return jsonError(c, status, msg)
	}
	ct.CustomTypeDraft = d
	ct.UpdatedAt = s.now()
	s.types[id] = ct
	return c.JSON(http.StatusOK, ct)
}

// checkType mirrors the backend's own checks; the caller holds s.mu.
func (s *Server) checkType(id int64, d schema.CustomTypeDraft) (int, string) {
	if _, ok := s.apps[d.AppID]; !ok {
		return http.StatusBadRequest, "application not found"
	}
	for _, ct := range s.types {
		if ct.ID != id && ct.AppID == d.AppID && ct.Name == d.Name {
			return http.StatusConflict, "custom type name already exists"
		}
	}
	return 0, ""
}

func (s *Server) deleteCustomType(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.types[id]; !ok {
		return c.String(http.StatusNotFound, "custom type not found")
	}
	for _, ct := range s.types {
		for _, f := range ct.Fields {
			if f.Ref != nil && *f.Ref == id {
				return jsonError(c, http.StatusConflict, "custom type is referenced by "+ct.Name)
			}
		}
	}
	for _, iface := range s.ifaces {
		for _, p := range iface.Parameters {
			if p.Ref != nil && *p.Ref == id {
				return jsonError(c, http.StatusConflict, "custom type is referenced by interface "+iface.Name)
			}
		}
	}
	delete(s.types, id)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) listInterfaces(c echo.Context) error {
	appID, err := queryAppID(c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	out := make([]schema.Interface, 0)
	for _, iface := range s.ifaces {
		if iface.AppID == appID {
			out = append(out, iface)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return c.JSON(http.StatusOK, out)
}

func (s *Server) createInterface(c echo.Context) error {
	var d schema.InterfaceDraft
	if err := c.Bind(&d); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if status, msg := s.checkInterface(0, d); status != 0 {
		return jsonError(c, status, msg)
	}
	now := s.now()
	iface := schema.Interface{ID: s.allocID(), InterfaceDraft: d, CreatedAt: now, UpdatedAt: now}
	s.ifaces[iface.ID] = iface
	return c.JSON(http.StatusCreated, iface)
}

func (s *Server) updateInterface(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var d schema.InterfaceDraft
	if err := c.Bind(&d); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	iface, ok := s.ifaces[id]
	if !ok {
		return c.String(http.StatusNotFound, "interface not found")
	}
	if status, msg := s.checkInterface(id, d); status != 0 {
		return jsonError(c, status, msg)
	}
	iface.InterfaceDraft = d
	iface.UpdatedAt = s.now()
	s.ifaces[id] = iface
	return c.JSON(http.StatusOK, iface)
}

// checkInterface mirrors the backend's own checks; the caller holds s.mu.
func (s *Server) checkInterface(id int64, d schema.InterfaceDraft) (int, string) {
	if _, ok := s.apps[d.AppID]; !ok {
		return http.StatusBadRequest, "application not found"
	}
	for _, iface := range s.ifaces {
		if iface.ID != id && iface.AppID == d.AppID && iface.Name == d.Name {
			return http.StatusConflict, "interface name already exists"
		}
	}
	return 0, ""
}

func (s *Server) deleteInterface(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ifaces[id]; !ok {
		return c.String(http.StatusNotFound, "interface not found")
	}
	delete(s.ifaces, id)
	return c.NoContent(http.StatusNoContent)
}
