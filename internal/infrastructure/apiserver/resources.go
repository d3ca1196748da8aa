package apiserver

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/academyhq/academy-client/internal/core/domain"
)

type listResponse struct {
	Data  []domain.Entity `json:"data"`
	Total int             `json:"total"`
}

func resourceParam(c echo.Context) (domain.ResourceType, error) {
	resource := domain.ResourceType(c.Param("resource"))
	if !resource.Valid() {
		return "", echo.NewHTTPError(http.StatusNotFound, "unknown resource")
	}
	return resource, nil
}

// handleList serves GET /:resource?page&limit&q plus exact-match field
// filters from any remaining query parameter.
func (s *Server) handleList(c echo.Context) error {
	resource, err := resourceParam(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 20
	}
	search := strings.ToLower(c.QueryParam("q"))

	filters := map[string]string{}
	for k, vs := range c.QueryParams() {
		if k == "page" || k == "limit" || k == "q" || len(vs) == 0 {
			continue
		}
		filters[k] = vs[0]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]domain.Entity, 0)
	for _, e := range s.resources[resource] {
		if !matchesSearch(e, search) || !matchesFilters(e, filters) {
			continue
		}
		matched = append(matched, e)
	}

	total := len(matched)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	items := make([]domain.Entity, 0, end-start)
	for _, e := range matched[start:end] {
		items = append(items, e.Clone())
	}
	return c.JSON(http.StatusOK, listResponse{Data: items, Total: total})
}

func (s *Server) handleCreate(c echo.Context) error {
	resource, err := resourceParam(c)
	if err != nil {
		return err
	}

	var entity domain.Entity
	if err := c.Bind(&entity); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(entity) == 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "empty entity")
	}
	if entity.ID() != "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "id is server-assigned")
	}

	s.mu.Lock()
	s.nextID++
	entity = entity.Clone()
	entity["id"] = fmt.Sprintf("%s-%d", resource, s.nextID)
	s.resources[resource] = append(s.resources[resource], entity)
	stored := entity.Clone()
	s.mu.Unlock()

	return c.JSON(http.StatusCreated, stored)
}

func (s *Server) handleUpdate(c echo.Context) error {
	resource, err := resourceParam(c)
	if err != nil {
		return err
	}
	id := c.Param("id")

	var patch domain.Entity
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.resources[resource] {
		if e.ID() != id {
			continue
		}
		merged := e.Clone()
		for k, v := range patch {
			if k == "id" {
				continue
			}
			merged[k] = v
		}
		s.resources[resource][i] = merged
		return c.JSON(http.StatusOK, merged.Clone())
	}
	return echo.NewHTTPError(http.StatusNotFound, "entity not found")
}

func (s *Server) handleDelete(c echo.Context) error {
	resource, err := resourceParam(c)
	if err != nil {
		return err
	}
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	entities := s.resources[resource]
	for i, e := range entities {
		if e.ID() != id {
			continue
		}
		s.resources[resource] = append(entities[:i], entities[i+1:]...)
		return c.JSON(http.StatusOK, map[string]string{"deleted": id})
	}
	return echo.NewHTTPError(http.StatusNotFound, "entity not found")
}

// matchesSearch reports whether any string field contains the lowercase
// search term. An empty term matches everything.
func matchesSearch(e domain.Entity, term string) bool {
	if term == "" {
		return true
	}
	for _, v := range e {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}

func matchesFilters(e domain.Entity, filters map[string]string) bool {
	for k, want := range filters {
		got, ok := e[k].(string)
		if !ok || got != want {
			return false
		}
	}
	return true
}
