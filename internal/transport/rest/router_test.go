package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/wanderhub/internal/auth"
	locationDatamodel "github.com/frahmantamala/wanderhub/internal/core/datamodel/location"
	rbacDatamodel "github.com/frahmantamala/wanderhub/internal/core/datamodel/rbac"
	userDatamodel "github.com/frahmantamala/wanderhub/internal/core/datamodel/user"
	"github.com/frahmantamala/wanderhub/internal/location"
	locationPostgres "github.com/frahmantamala/wanderhub/internal/location/postgres"
	"github.com/frahmantamala/wanderhub/internal/rbac"
	rbacPostgres "github.com/frahmantamala/wanderhub/internal/rbac/postgres"
	"github.com/frahmantamala/wanderhub/internal/store"
	"github.com/frahmantamala/wanderhub/internal/transport"
	"github.com/frahmantamala/wanderhub/internal/transport/rest"
	"github.com/frahmantamala/wanderhub/internal/transport/swagger"
	"github.com/frahmantamala/wanderhub/internal/user"
	userPostgres "github.com/frahmantamala/wanderhub/internal/user/postgres"
	"github.com/frahmantamala/wanderhub/pkg/logger"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var _ = Describe("Router", func() {
	var (
		ctx    context.Context
		router *chi.Mux
		doc    *openapi3.T
		tokens *auth.JWTTokenGenerator
		ids    map[string]int64
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		doc, err = swagger.Load(ctx)
		Expect(err).NotTo(HaveOccurred())

		gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := gdb.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		DeferCleanup(sqlDB.Close)
		Expect(gdb.AutoMigrate(
			&rbacDatamodel.Permission{},
			&rbacDatamodel.Role{},
			&rbacDatamodel.RolePermission{},
			&userDatamodel.User{},
			&locationDatamodel.Location{},
		)).To(Succeed())

		lg := logger.Discard()
		rbacService := rbac.NewService(rbacPostgres.NewRBACRepository(gdb), lg)
		userService := user.NewService(userPostgres.NewUserRepository(gdb), rbacService, nil, bcrypt.MinCost, lg)
		locationService := location.NewService(locationPostgres.NewLocationRepository(gdb), lg)

		roles := map[string]int64{}
		for _, name := range []string{rest.RoleAdmin, rest.RoleEditor, "member"} {
			role, err := rbacService.CreateRole(ctx, rbac.CreateRoleDTO{Name: name, IsDefault: name == "member"})
			Expect(err).NotTo(HaveOccurred())
			roles[name] = role.ID
		}

		ids = map[string]int64{}
		accounts := []struct {
			key, role string
			superuser bool
		}{
			{"root", rest.RoleAdmin, true},
			{"ada", rest.RoleAdmin, false},
			{"eddie", rest.RoleEditor, false},
			{"mia", "member", false},
		}
		for _, a := range accounts {
			u, err := userService.Register(ctx, user.RegisterDTO{Email: a.key + "@example.com", Name: a.key, Password: "correct-horse"})
			Expect(err).NotTo(HaveOccurred())
			_, err = userService.AdminUpdate(ctx, u.ID, u.ID, user.AdminUpdateDTO{
				RoleID:      store.Some(roles[a.role]),
				IsSuperuser: store.Some(a.superuser),
			})
			Expect(err).NotTo(HaveOccurred())
			ids[a.key] = u.ID
		}

		tokens = auth.NewJWTTokenGenerator("router-test-secret-with-enough-bytes", time.Hour, "wanderhub")
		guard := auth.NewGuard(tokens, auth.NewIdentityResolver(userService, lg), lg)
		base := transport.NewBaseHandler(lg)

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Dependencies{
			DB:              sqlx.NewDb(sqlDB, "sqlite3"),
			Guard:           guard,
			AuthHandler:     &auth.Handler{BaseHandler: base, Service: auth.NewService(userService, userService, tokens, lg)},
			UserHandler:     &user.Handler{BaseHandler: base, Service: userService},
			RBACHandler:     &rbac.Handler{BaseHandler: base, Service: rbacService},
			LocationHandler: location.NewHandler(base, locationService),
			Logger:          lg,
			AllowedOrigins:  []string{"*"},
		})
	})

	do := func(method, path, as, body string) (*httptest.ResponseRecorder, map[string]any) {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		}
		if as != "" {
			token, _, err := tokens.GenerateAccessToken(ids[as])
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		var decoded map[string]any
		if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
			Expect(json.Unmarshal(rec.Body.Bytes(), &decoded)).To(Succeed())
		}
		return rec, decoded
	}

	conforms := func(schema string, body map[string]any) {
		ref, ok := doc.Components.Schemas[schema]
		Expect(ok).To(BeTrue(), schema)
		Expect(ref.Value.VisitJSON(body)).To(Succeed())
	}

	It("documents exactly the routes it serves", func() {
		served := map[string]bool{}
		err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			if !strings.HasPrefix(route, rest.APIPrefix+"/") {
				return nil
			}
			path := strings.TrimPrefix(route, rest.APIPrefix)
			served[method+" "+path] = true

			item := doc.Paths.Value(path)
			Expect(item).NotTo(BeNil(), "undocumented path "+path)
			Expect(item.GetOperation(method)).NotTo(BeNil(), "undocumented operation "+method+" "+path)
			return nil
		})
		Expect(err).NotTo(HaveOccurred())

		for path, item := range doc.Paths.Map() {
			for method := range item.Operations() {
				Expect(served).To(HaveKey(method+" "+path), "documented but not served")
			}
		}
	})

	It("serves the document and liveness probes", func() {
		rec, _ := do(http.MethodGet, swagger.SpecPath, "", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Content-Type")).To(Equal("application/yaml"))
		Expect(rec.Header().Get("X-Request-ID")).NotTo(BeEmpty())
		Expect(rec.Header().Get("X-Frame-Options")).To(Equal("DENY"))

		rec, body := do(http.MethodGet, "/api/v1/ping", "", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(body["status"]).To(Equal("OK"))

		rec, body = do(http.MethodGet, "/api/v1/health", "", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(body["status"]).To(Equal("healthy"))
		database := body["components"].(map[string]any)["database"].(map[string]any)
		Expect(database["details"]).To(HaveKeyWithValue("schema_version", "unknown"))
		conforms("Health", body)
	})

	It("logs in over HTTP and uses the token", func() {
		rec, body := do(http.MethodPost, "/api/v1/auth/login", "", `{"email":"mia@example.com","password":"correct-horse"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+body["access_token"].(string))
		me := httptest.NewRecorder()
		router.ServeHTTP(me, req)
		Expect(me.Code).To(Equal(http.StatusOK))

		var decoded map[string]any
		Expect(json.Unmarshal(me.Body.Bytes(), &decoded)).To(Succeed())
		Expect(decoded["email"]).To(Equal("mia@example.com"))
		conforms("User", decoded)
	})

	It("requires a token for protected routes", func() {
		rec, body := do(http.MethodGet, "/api/v1/users/me", "", "")
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(body["error"]).To(Equal("UNAUTHORIZED"))
		conforms("Error", body)
	})

	DescribeTable("role and superuser gates",
		func(method, path, as, body string, expected int) {
			rec, _ := do(method, path, as, body)
			Expect(rec.Code).To(Equal(expected))
		},
		Entry("member lists users", http.MethodGet, "/api/v1/users", "mia", "", http.StatusForbidden),
		Entry("admin lists users", http.MethodGet, "/api/v1/users", "ada", "", http.StatusOK),
		Entry("admin without superuser creates a role", http.MethodPost, "/api/v1/roles", "ada", `{"name":"auditor"}`, http.StatusForbidden),
		Entry("superuser creates a role", http.MethodPost, "/api/v1/roles", "root", `{"name":"auditor"}`, http.StatusCreated),
		Entry("editor reads roles", http.MethodGet, "/api/v1/roles", "eddie", "", http.StatusForbidden),
		Entry("member creates a location", http.MethodPost, "/api/v1/locations", "mia", `{"name":"Bali"}`, http.StatusForbidden),
		Entry("editor creates a location", http.MethodPost, "/api/v1/locations", "eddie", `{"name":"Bali"}`, http.StatusCreated),
		Entry("anonymous lists locations", http.MethodGet, "/api/v1/locations", "", "", http.StatusOK),
		Entry("admin deactivates without superuser", http.MethodPost, "/api/v1/users/4/deactivate", "ada", "", http.StatusForbidden),
	)

	It("locks out a deactivated account on its next request", func() {
		rec, _ := do(http.MethodGet, "/api/v1/users/me", "mia", "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		path := "/api/v1/users/" + jsonID(ids["mia"]) + "/deactivate"
		rec, body := do(http.MethodPost, path, "root", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(body["is_active"]).To(BeFalse())

		rec, body = do(http.MethodGet, "/api/v1/users/me", "mia", "")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(body["error"]).To(Equal("BAD_REQUEST"))
	})

	It("returns locations in the documented shapes", func() {
		rec, body := do(http.MethodPost, "/api/v1/locations", "eddie", `{"name":"Kyoto","country_code":"jp"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		conforms("Location", body)

		rec, body = do(http.MethodGet, "/api/v1/locations?page=1&limit=10", "", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(body["items"]).To(HaveLen(1))
		conforms("LocationPage", body)
	})
})

func jsonID(id int64) string {
	raw, err := json.Marshal(id)
	Expect(err).NotTo(HaveOccurred())
	return string(raw)
}
