package rbac_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	userDatamodel "github.com/frahmantamala/wanderhub/internal/core/datamodel/user"
	"github.com/frahmantamala/wanderhub/internal/rbac"
	rbacPostgres "github.com/frahmantamala/wanderhub/internal/rbac/postgres"
	"github.com/frahmantamala/wanderhub/internal/transport"
	"github.com/frahmantamala/wanderhub/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("RBAC Handler", func() {
	var (
		db     *gorm.DB
		router *chi.Mux
	)

	BeforeEach(func() {
		db = openTestDB()
		service := rbac.NewService(rbacPostgres.NewRBACRepository(db), logger.Discard())
		handler := &rbac.Handler{BaseHandler: transport.NewBaseHandler(logger.Discard()), Service: service}

		router = chi.NewRouter()
		router.Get("/roles", handler.ListRoles)
		router.Post("/roles", handler.CreateRole)
		router.Get("/roles/{id}", handler.GetRole)
		router.Patch("/roles/{id}", handler.UpdateRole)
		router.Delete("/roles/{id}", handler.DeleteRole)
		router.Get("/permissions", handler.ListPermissions)
		router.Post("/permissions", handler.CreatePermission)
		router.Get("/permissions/{id}", handler.GetPermission)
		router.Patch("/permissions/{id}", handler.UpdatePermission)
		router.Delete("/permissions/{id}", handler.DeletePermission)
	})

	do := func(method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		var decoded map[string]any
		if rec.Body.Len() > 0 {
			Expect(json.Unmarshal(rec.Body.Bytes(), &decoded)).To(Succeed())
		}
		return rec, decoded
	}

	It("creates a permission and a role that holds it", func() {
		rec, perm := do(http.MethodPost, "/permissions", `{"code":"locations:read","name":"Read locations"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(perm).To(HaveKeyWithValue("code", "locations:read"))

		rec, role := do(http.MethodPost, "/roles", `{"name":"member","is_default":true,"permission_ids":[1]}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(role).To(HaveKeyWithValue("name", "member"))
		Expect(role).To(HaveKeyWithValue("is_default", true))
		Expect(role["permissions"]).To(HaveLen(1))

		rec, got := do(http.MethodGet, "/roles/1", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(got).To(HaveKeyWithValue("name", "member"))
	})

	It("renders an empty permission list as an array", func() {
		rec, role := do(http.MethodPost, "/roles", `{"name":"bare"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(role["permissions"]).To(BeEmpty())
		Expect(role["permissions"]).NotTo(BeNil())
	})

	It("answers 404 with the error body for an unknown role", func() {
		rec, body := do(http.MethodGet, "/roles/42", "")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(body).To(HaveKeyWithValue("error", "NOT_FOUND"))
		Expect(body).To(HaveKeyWithValue("message", "Role not found"))
	})

	It("answers 422 for a malformed id", func() {
		rec, body := do(http.MethodGet, "/roles/abc", "")
		Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
		Expect(body).To(HaveKeyWithValue("error", "VALIDATION_ERROR"))
	})

	It("answers 422 for out of range pagination", func() {
		rec, body := do(http.MethodGet, "/roles?page=0&limit=500", "")
		Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
		Expect(body["details"]).To(HaveKeyWithValue("errors", HaveLen(2)))
	})

	It("answers 400 for a malformed body", func() {
		rec, body := do(http.MethodPost, "/roles", `{"name":`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(body).To(HaveKeyWithValue("error", "BAD_REQUEST"))
	})

	It("answers 400 for a duplicate role name", func() {
		rec, _ := do(http.MethodPost, "/roles", `{"name":"member"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))

		rec, body := do(http.MethodPost, "/roles", `{"name":"member"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(body).To(HaveKeyWithValue("error", "CONFLICT"))
	})

	It("refuses to delete a role in use", func() {
		rec, _ := do(http.MethodPost, "/roles", `{"name":"member"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(db.Create(&userDatamodel.User{Email: "a@example.com", Name: "A", PasswordHash: "x", RoleID: 1}).Error).To(Succeed())

		rec, body := do(http.MethodDelete, "/roles/1", "")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(body).To(HaveKeyWithValue("error", "CONFLICT"))
	})

	It("patches only the fields sent", func() {
		rec, _ := do(http.MethodPost, "/roles", `{"name":"member","description":"default"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))

		rec, body := do(http.MethodPatch, "/roles/1", `{"is_default":true}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(body).To(HaveKeyWithValue("is_default", true))
		Expect(body).To(HaveKeyWithValue("description", "default"))
	})

	It("lists permissions as a page", func() {
		for _, code := range []string{"a", "b", "c"} {
			rec, _ := do(http.MethodPost, "/permissions", `{"code":"`+code+`","name":"`+code+`"}`)
			Expect(rec.Code).To(Equal(http.StatusCreated))
		}

		rec, body := do(http.MethodGet, "/permissions?limit=2", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(body).To(HaveKeyWithValue("total", BeNumerically("==", 3)))
		Expect(body).To(HaveKeyWithValue("pages", BeNumerically("==", 2)))
		Expect(body["items"]).To(HaveLen(2))
	})
})
