package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	internalmiddleware "github.com/ecolehub/school-admin-api/internal/middleware"
	"github.com/ecolehub/school-admin-api/internal/models"
	"github.com/ecolehub/school-admin-api/internal/service"
)

type classRepoStub struct {
	items map[string]*models.Class
	refs  map[string]int
}

func (m *classRepoStub) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error) {
	out := make([]models.Class, 0, len(m.items))
	for _, c := range m.items {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *classRepoStub) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if c, ok := m.items[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *classRepoStub) CountReferences(ctx context.Context, id string) (int, error) {
	return m.refs[id], nil
}

func (m *classRepoStub) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = "cls-new"
	}
	cp := *class
	m.items[class.ID] = &cp
	return nil
}

func (m *classRepoStub) Update(ctx context.Context, class *models.Class) error {
	cp := *class
	m.items[class.ID] = &cp
	return nil
}

func (m *classRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

type teacherExistsStub struct{ known map[string]bool }

func (m *teacherExistsStub) ExistsByID(ctx context.Context, id string) (bool, error) {
	return m.known[id], nil
}

func buildClassRouter(repo *classRepoStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if role := c.GetHeader("X-Test-Role"); role != "" {
			c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{
				UserID:   "test-user",
				FullName: "Test User",
				Role:     models.UserRole(role),
			})
		}
		c.Next()
	})

	classes := NewClassHandler(service.NewClassService(repo, &teacherExistsStub{known: map[string]bool{"tch-1": true}}, nil, nil))

	adminOnly := internalmiddleware.RequireRoles(models.RoleAdmin)
	router.GET("/classes", classes.List)
	router.GET("/classes/:id", classes.Get)
	router.POST("/classes", adminOnly, classes.Create)
	router.PATCH("/classes/:id", adminOnly, classes.Update)
	router.DELETE("/classes/:id", adminOnly, classes.Delete)
	return router
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestClassRoutesIntegration(t *testing.T) {
	repo := &classRepoStub{
		items: map[string]*models.Class{"cls-1": {ID: "cls-1", Name: "Grade 7A", GradeLevel: "7", Capacity: 30, Active: true}},
		refs:  map[string]int{"cls-1": 2},
	}
	router := buildClassRouter(repo)

	t.Run("list success", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/classes", nil)
		req.Header.Set("X-Test-Role", string(models.RoleTeacher))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"Grade 7A"`)
	})

	t.Run("create forbidden for teacher", func(t *testing.T) {
		body, _ := json.Marshal(service.CreateClassRequest{Name: "Grade 9C", GradeLevel: "9", Capacity: 25})
		req, _ := http.NewRequest(http.MethodPost, "/classes", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RoleTeacher))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("create success for admin", func(t *testing.T) {
		body, _ := json.Marshal(service.CreateClassRequest{Name: "Grade 9C", GradeLevel: "9", Capacity: 25})
		req, _ := http.NewRequest(http.MethodPost, "/classes", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RoleAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusCreated, resp.Code)
	})

	t.Run("delete conflict while referenced", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, "/classes/cls-1", nil)
		req.Header.Set("X-Test-Role", string(models.RoleAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("get missing returns 404", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/classes/cls-missing", nil)
		req.Header.Set("X-Test-Role", string(models.RoleAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("unauthenticated blocked from admin route", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, "/classes/cls-1", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}
