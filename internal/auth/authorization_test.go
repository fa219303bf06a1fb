package auth_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/chat-users/internal/auth"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RoleAuthorization", func() {
	var ra *auth.RoleAuthorization

	BeforeEach(func() {
		ra = auth.NewRoleAuthorization(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
	})

	serve := func(mw func(http.Handler) http.Handler, u *auth.User) int {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if u != nil {
			req = req.WithContext(auth.ContextWithUser(req.Context(), u))
		}
		w := httptest.NewRecorder()
		mw(next).ServeHTTP(w, req)
		return w.Code
	}

	DescribeTable("RequireVerified",
		func(u *auth.User, expected int) {
			Expect(serve(ra.RequireVerified(), u)).To(Equal(expected))
		},
		Entry("admin", &auth.User{ID: "a", Role: auth.RoleAdmin}, http.StatusOK),
		Entry("user", &auth.User{ID: "u", Role: auth.RoleUser}, http.StatusOK),
		Entry("custom role", &auth.User{ID: "p", Role: "premium"}, http.StatusOK),
		Entry("pending", &auth.User{ID: "x", Role: auth.RolePending}, http.StatusForbidden),
		Entry("no role", &auth.User{ID: "x"}, http.StatusForbidden),
		Entry("anonymous", nil, http.StatusUnauthorized),
	)

	DescribeTable("RequireAdmin",
		func(u *auth.User, expected int) {
			Expect(serve(ra.RequireAdmin(), u)).To(Equal(expected))
		},
		Entry("admin", &auth.User{ID: "a", Role: auth.RoleAdmin}, http.StatusOK),
		Entry("user", &auth.User{ID: "u", Role: auth.RoleUser}, http.StatusForbidden),
		Entry("pending", &auth.User{ID: "x", Role: auth.RolePending}, http.StatusForbidden),
		Entry("anonymous", nil, http.StatusUnauthorized),
	)
})
