package user_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/chat-users/internal"
	"github.com/frahmantamala/chat-users/internal/auth"
	"github.com/frahmantamala/chat-users/internal/user"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type errorBody struct {
	Error struct {
		Code    internal.ErrorCode `json:"code"`
		Message string             `json:"message"`
	} `json:"error"`
}

var _ = Describe("Handler", func() {
	var (
		users    *mockUserRepository
		presence *mockPresence
		router   *chi.Mux
		caller   *auth.User
	)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	errorCode := func(w *httptest.ResponseRecorder) internal.ErrorCode {
		var body errorBody
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		return body.Error.Code
	}

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		users = newMockUserRepository()
		presence = &mockPresence{active: map[string]bool{}}

		service := user.NewService(user.Deps{
			Users:       users,
			Credentials: newMockCredentialStore(users),
			Chats:       &mockChatRepository{chats: map[string]*user.ChatRef{}},
			Groups:      &mockGroupRepository{},
			Presence:    presence,
			Permissions: &mockPermissions{},
			Hasher:      mockHasher{},
			Events:      &mockPublisher{},
		}, slogger)
		handler := user.NewHandler(service)

		users.add(&user.User{ID: "primary", Name: "Primary", Email: "primary@mail.com", Role: auth.RoleAdmin})
		users.add(&user.User{ID: "member", Name: "Member", Email: "member@mail.com", Role: auth.RoleUser, ProfileImageURL: "/m.png"})
		caller = &auth.User{ID: "primary", Role: auth.RoleAdmin}

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if caller != nil {
					r = r.WithContext(auth.ContextWithUser(r.Context(), caller))
				}
				next.ServeHTTP(w, r)
			})
		})
		router.Get("/active", handler.GetActiveUsers)
		router.Get("/", handler.GetUsers)
		router.Get("/all", handler.GetAllUsers)
		router.Get("/groups", handler.GetUserGroups)
		router.Get("/user/settings", handler.GetSettings)
		router.Post("/user/settings/update", handler.UpdateSettings)
		router.Get("/user/info", handler.GetInfo)
		router.Post("/user/info/update", handler.UpdateInfo)
		router.Get("/{user_id}", handler.GetUserByID)
		router.Get("/{user_id}/active", handler.GetUserActiveStatus)
		router.Post("/{user_id}/update", handler.UpdateUserByID)
		router.Delete("/{user_id}", handler.DeleteUserByID)
	})

	It("should list active user ids", func() {
		presence.active["member"] = true

		w := do(http.MethodGet, "/active", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp user.ActiveUsersResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.UserIDs).To(Equal([]string{"member"}))
	})

	It("should return a page of users with the total", func() {
		w := do(http.MethodGet, "/?page=1", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		var list user.UserList
		Expect(json.NewDecoder(w.Body).Decode(&list)).To(Succeed())
		Expect(list.Total).To(Equal(int64(2)))
		Expect(list.Users).To(HaveLen(2))
	})

	It("should reject a non-numeric page", func() {
		w := do(http.MethodGet, "/?page=abc", "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should return the public profile of a user", func() {
		w := do(http.MethodGet, "/member", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		var profile user.PublicProfile
		Expect(json.NewDecoder(w.Body).Decode(&profile)).To(Succeed())
		Expect(profile.Name).To(Equal("Member"))
		Expect(profile.Active).To(BeFalse())
	})

	It("should answer 404 for an unknown user", func() {
		w := do(http.MethodGet, "/ghost", "")
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(errorCode(w)).To(Equal(internal.ErrCodeUserNotFound))
	})

	It("should report the active flag for any id", func() {
		presence.active["member"] = true
		w := do(http.MethodGet, "/member/active", "")

		var resp user.ActiveStatusResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Active).To(BeTrue())
	})

	It("should round-trip the caller's settings", func() {
		caller = &auth.User{ID: "member", Role: auth.RoleUser}

		w := do(http.MethodPost, "/user/settings/update", `{"ui":{"theme":"dark","toolServers":[{"url":"x"}]}}`)
		Expect(w.Code).To(Equal(http.StatusOK))

		w = do(http.MethodGet, "/user/settings", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var settings map[string]map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&settings)).To(Succeed())
		Expect(settings["ui"]).To(HaveKeyWithValue("theme", "dark"))
		Expect(settings["ui"]).NotTo(HaveKey("toolServers"))
	})

	It("should reject an empty settings body", func() {
		w := do(http.MethodPost, "/user/settings/update", "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(w)).To(Equal(internal.ErrCodeInvalidBody))
	})

	It("should merge info updates", func() {
		caller = &auth.User{ID: "member", Role: auth.RoleUser}

		do(http.MethodPost, "/user/info/update", `{"a":1}`)
		w := do(http.MethodPost, "/user/info/update", `{"b":2}`)

		Expect(w.Code).To(Equal(http.StatusOK))
		var info map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&info)).To(Succeed())
		Expect(info).To(HaveKey("a"))
		Expect(info).To(HaveKey("b"))
	})

	It("should update another user", func() {
		body := `{"role":"admin","name":"Promoted","email":"member@mail.com","profile_image_url":"/m.png"}`

		w := do(http.MethodPost, "/member/update", body)

		Expect(w.Code).To(Equal(http.StatusOK))
		var updated user.User
		Expect(json.NewDecoder(w.Body).Decode(&updated)).To(Succeed())
		Expect(updated.Role).To(Equal(auth.RoleAdmin))
		Expect(updated.Name).To(Equal("Promoted"))
	})

	It("should answer 409 when the email is taken", func() {
		body := `{"role":"user","name":"Member","email":"primary@mail.com","profile_image_url":"/m.png"}`
		w := do(http.MethodPost, "/member/update", body)
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(errorCode(w)).To(Equal(internal.ErrCodeEmailTaken))
	})

	It("should answer 400 for an incomplete form", func() {
		w := do(http.MethodPost, "/member/update", `{"name":"x"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(w)).To(Equal(internal.ErrCodeValidationFailed))
	})

	It("should delete another user and answer true", func() {
		w := do(http.MethodDelete, "/member", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(strings.TrimSpace(w.Body.String())).To(Equal("true"))
	})

	It("should answer 403 when the admin deletes itself", func() {
		w := do(http.MethodDelete, "/primary", "")
		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(errorCode(w)).To(Equal(internal.ErrCodeActionProhibited))
	})

	It("should answer 401 without a caller", func() {
		caller = nil
		w := do(http.MethodGet, "/user/settings", "")
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})
})
