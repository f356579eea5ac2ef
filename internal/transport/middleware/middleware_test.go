package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/wanderhub/internal"
	"github.com/frahmantamala/wanderhub/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func decode(rec *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
	return body
}

var _ = Describe("RequestID", func() {
	var seen string

	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = internal.RequestIDFromContext(r.Context())
	}))

	It("reuses an inbound id", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "trace-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		Expect(seen).To(Equal("trace-123"))
		Expect(rec.Header().Get(RequestIDHeader)).To(Equal("trace-123"))
	})

	It("mints an id when none or an oversized one is sent", func() {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(seen).To(HaveLen(36))
		Expect(rec.Header().Get(RequestIDHeader)).To(Equal(seen))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", 129))
		handler.ServeHTTP(httptest.NewRecorder(), req)
		Expect(seen).To(HaveLen(36))
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("answers a panic with a generic internal error", func() {
		handler := RecoveryMiddleware(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("database password is hunter2")
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		body := decode(rec)
		Expect(body["error"]).To(Equal("INTERNAL_ERROR"))
		Expect(body["message"]).To(Equal("Internal server error"))
		Expect(rec.Body.String()).NotTo(ContainSubstring("hunter2"))
	})

	It("lets http.ErrAbortHandler through", func() {
		handler := RecoveryMiddleware(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(http.ErrAbortHandler)
		}))

		Expect(func() {
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		}).To(PanicWith(http.ErrAbortHandler))
	})
})

var _ = Describe("Throttle", func() {
	It("answers 429 once the window is used up", func() {
		handler := Throttle(2, time.Minute, logger.Discard())(okHandler)

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))
			codes = append(codes, rec.Code)
			if rec.Code == http.StatusTooManyRequests {
				body := decode(rec)
				Expect(body["error"]).To(Equal("BAD_REQUEST"))
			}
		}
		Expect(codes).To(Equal([]int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}))
	})

	It("is a no-op with a non-positive limit", func() {
		handler := Throttle(0, time.Minute, logger.Discard())(okHandler)
		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
		}
	})
})

var _ = Describe("CORS", func() {
	handler := CORS([]string{"https://app.wanderhub.io/"})(okHandler)

	preflight := func(origin, method string) *http.Request {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/locations", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", method)
		req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
		return req
	}

	It("reflects an allowed origin", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.wanderhub.io")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://app.wanderhub.io"))
		Expect(rec.Header().Get("Access-Control-Expose-Headers")).To(Equal(http.CanonicalHeaderKey(RequestIDHeader)))
	})

	It("ignores other origins", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})

	It("answers preflight requests without reaching the route", func() {
		reached := false
		h := CORS([]string{"https://app.wanderhub.io"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, preflight("https://app.wanderhub.io", http.MethodPatch))

		Expect(reached).To(BeFalse())
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://app.wanderhub.io"))
		Expect(rec.Header().Get("Access-Control-Allow-Methods")).To(ContainSubstring(http.MethodPatch))
		Expect(rec.Header().Get("Access-Control-Allow-Headers")).To(ContainSubstring("Authorization"))
		Expect(rec.Header().Get("Access-Control-Max-Age")).To(Equal("600"))
	})

	It("grants nothing to a preflight from another origin", func() {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, preflight("https://evil.example", http.MethodDelete))

		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
		Expect(rec.Header().Get("Access-Control-Allow-Methods")).To(BeEmpty())
	})

	It("allows any origin with a wildcard", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		CORS([]string{"*"})(okHandler).ServeHTTP(rec, req)

		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
	})

	It("sends no CORS headers when no origin is configured", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		CORS(nil)(okHandler).ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})
})

var _ = Describe("SecureHeaders", func() {
	It("sets hardening headers", func() {
		rec := httptest.NewRecorder()
		SecureHeaders(logger.Discard(), false)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("X-Frame-Options")).To(Equal("DENY"))
		Expect(rec.Header().Get("X-Content-Type-Options")).To(Equal("nosniff"))
		Expect(rec.Header().Get("Referrer-Policy")).To(Equal("strict-origin-when-cross-origin"))
	})
})

var _ = Describe("LoggingMiddleware", func() {
	It("masks secrets and leaves the body readable downstream", func() {
		var out bytes.Buffer
		lg := logger.New(&out, "info", "json")

		var received string
		handler := RequestID(LoggingMiddleware(lg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := io.ReadAll(r.Body)
			Expect(err).NotTo(HaveOccurred())
			received = string(raw)
			w.WriteHeader(http.StatusCreated)
		})))

		payload := `{"email":"ana@example.com","password":"hunter22"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer abc.def.ghi")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		Expect(received).To(Equal(payload))
		Expect(out.String()).NotTo(ContainSubstring("hunter22"))
		Expect(out.String()).NotTo(ContainSubstring("abc.def.ghi"))
		Expect(out.String()).To(ContainSubstring("ana@example.com"))
		Expect(out.String()).To(ContainSubstring(`"status_code":201`))
		Expect(out.String()).To(ContainSubstring(`"request_id"`))
	})

	It("filters nested JSON fields", func() {
		filtered := filterSensitiveJSON(map[string]interface{}{
			"user":  map[string]interface{}{"new_password": "x", "name": "Ana"},
			"items": []interface{}{map[string]interface{}{"api_key": "k"}},
		})

		Expect(filtered).To(Equal(map[string]interface{}{
			"user":  map[string]interface{}{"new_password": "[FILTERED]", "name": "Ana"},
			"items": []interface{}{map[string]interface{}{"api_key": "[FILTERED]"}},
		}))
	})
})
