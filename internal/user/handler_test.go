package user_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/wanderhub/internal/rbac"
	rbacPostgres "github.com/frahmantamala/wanderhub/internal/rbac/postgres"
	"github.com/frahmantamala/wanderhub/internal/transport"
	"github.com/frahmantamala/wanderhub/internal/user"
	userPostgres "github.com/frahmantamala/wanderhub/internal/user/postgres"
	"github.com/frahmantamala/wanderhub/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = Describe("User Handler", func() {
	var (
		ctx     context.Context
		service *user.Service
		router  *chi.Mux
		caller  *user.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		db := openTestDB()
		roles := rbac.NewService(rbacPostgres.NewRBACRepository(db), logger.Discard())
		service = user.NewService(userPostgres.NewUserRepository(db), roles, nil, bcrypt.MinCost, logger.Discard())

		_, err := roles.CreateRole(ctx, rbac.CreateRoleDTO{Name: "member", IsDefault: true})
		Expect(err).NotTo(HaveOccurred())

		caller, err = service.Register(ctx, user.RegisterDTO{Email: "ana@example.com", Name: "Ana", Password: "correct-horse"})
		Expect(err).NotTo(HaveOccurred())

		handler := &user.Handler{BaseHandler: transport.NewBaseHandler(logger.Discard()), Service: service}

		router = chi.NewRouter()
		router.Get("/anonymous/me", handler.GetCurrentUser)
		router.Group(func(r chi.Router) {
			r.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					next.ServeHTTP(w, r.WithContext(user.ContextWithUser(r.Context(), caller)))
				})
			})
			r.Get("/users/me", handler.GetCurrentUser)
			r.Patch("/users/me", handler.UpdateCurrentUser)
			r.Put("/users/me/password", handler.ChangePassword)
			r.Get("/users", handler.ListUsers)
			r.Get("/users/{id}", handler.GetUser)
			r.Patch("/users/{id}", handler.UpdateUser)
			r.Post("/users/{id}/deactivate", handler.DeactivateUser)
		})
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

	It("returns the caller without the password hash", func() {
		rec, body := do(http.MethodGet, "/users/me", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(body["email"]).To(Equal("ana@example.com"))
		Expect(body).NotTo(HaveKey("password_hash"))
		Expect(body).NotTo(HaveKey("PasswordHash"))
		Expect(body["role"]).To(HaveKeyWithValue("name", "member"))
	})

	It("is unauthorized when no caller is attached", func() {
		rec, body := do(http.MethodGet, "/anonymous/me", "")
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(body["error"]).To(Equal("UNAUTHORIZED"))
	})

	It("updates the caller's profile", func() {
		rec, body := do(http.MethodPatch, "/users/me", `{"name":"Ana Lima"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(body["name"]).To(Equal("Ana Lima"))
		Expect(body["email"]).To(Equal("ana@example.com"))
	})

	It("changes the password with no content", func() {
		rec, body := do(http.MethodPut, "/users/me/password", `{"current_password":"nope-nope","new_password":"another-pass"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(body["error"]).To(Equal("BAD_REQUEST"))

		rec, _ = do(http.MethodPut, "/users/me/password", `{"current_password":"correct-horse","new_password":"another-pass"}`)
		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(rec.Body.Len()).To(BeZero())
	})

	It("lists accounts as a page", func() {
		rec, body := do(http.MethodGet, "/users?page=1&limit=5", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(body["total"]).To(BeEquivalentTo(1))
		Expect(body["items"]).To(HaveLen(1))
	})

	It("reports unknown and malformed ids", func() {
		rec, body := do(http.MethodGet, "/users/999", "")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(body["error"]).To(Equal("NOT_FOUND"))

		rec, body = do(http.MethodGet, "/users/abc", "")
		Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
		Expect(body["error"]).To(Equal("VALIDATION_ERROR"))
	})

	It("applies an admin update and a deactivation", func() {
		other, err := service.Register(ctx, user.RegisterDTO{Email: "bo@example.com", Name: "Bo", Password: "correct-horse"})
		Expect(err).NotTo(HaveOccurred())

		rec, body := do(http.MethodPatch, "/users/"+itoa(other.ID), `{"is_superuser":true}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(body["is_superuser"]).To(BeTrue())
		Expect(body["is_active"]).To(BeTrue())

		rec, body = do(http.MethodPatch, "/users/"+itoa(other.ID), `{"is_active":null}`)
		Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))

		rec, body = do(http.MethodPost, "/users/"+itoa(other.ID)+"/deactivate", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(body["is_active"]).To(BeFalse())
	})
})
