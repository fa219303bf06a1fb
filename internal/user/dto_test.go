package user_test

import (
	"net/url"

	"github.com/frahmantamala/chat-users/internal"
	"github.com/frahmantamala/chat-users/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ListQuery", func() {
	It("should default to the first page", func() {
		q, err := user.ParseListQuery(url.Values{}.Get)
		Expect(err).NotTo(HaveOccurred())
		Expect(q.Page).To(Equal(1))
		Expect(q.Offset()).To(Equal(0))
	})

	It("should compute the offset from fixed pages of 30", func() {
		q, err := user.ParseListQuery(url.Values{"page": {"3"}, "direction": {"ASC"}, "query": {" bob "}}.Get)
		Expect(err).NotTo(HaveOccurred())
		Expect(q.Offset()).To(Equal(60))
		Expect(q.Filter()).To(Equal(user.ListFilter{Query: "bob", Direction: "asc"}))
	})

	It("should treat pages below one as the first page", func() {
		Expect(user.ListQuery{Page: 0}.Offset()).To(Equal(0))
		Expect(user.ListQuery{Page: -4}.Offset()).To(Equal(0))
	})

	It("should reject a non-numeric page", func() {
		_, err := user.ParseListQuery(url.Values{"page": {"two"}}.Get)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
	})
})

var _ = Describe("UpdateUserForm", func() {
	It("should lowercase and trim the email", func() {
		f := user.UpdateUserForm{Role: " user ", Name: " Bob ", Email: " Bob@Mail.COM "}
		f.Normalize()
		Expect(f.Email).To(Equal("bob@mail.com"))
		Expect(f.Name).To(Equal("Bob"))
		Expect(f.Role).To(Equal("user"))
	})

	It("should name every missing field", func() {
		err := user.UpdateUserForm{}.Validate()

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		details, ok := appErr.Details.(internal.ValidationErrors)
		Expect(ok).To(BeTrue())

		var fields []string
		for _, e := range details.Errors {
			fields = append(fields, e.Field)
		}
		Expect(fields).To(ConsistOf("role", "name", "email", "profile_image_url"))
	})

	It("should reject a malformed email", func() {
		err := user.UpdateUserForm{Role: "user", Name: "n", Email: "nope", ProfileImageURL: "/x.png"}.Validate()
		Expect(err).To(MatchError(ContainSubstring("email must be a valid email")))
	})

	It("should accept a complete form without password", func() {
		err := user.UpdateUserForm{Role: "user", Name: "n", Email: "n@mail.com", ProfileImageURL: "/x.png"}.Validate()
		Expect(err).NotTo(HaveOccurred())
	})
})

var _ = Describe("Settings", func() {
	It("should create the ui map on demand", func() {
		s := user.Settings{}
		s.UI()["theme"] = "dark"
		Expect(s["ui"]).To(HaveKeyWithValue("theme", "dark"))
	})

	It("should leave a malformed ui value untouched", func() {
		s := user.Settings{"ui": "broken"}
		Expect(s.UI()).To(BeEmpty())
		Expect(s).To(HaveKeyWithValue("ui", "broken"))
	})

	It("should reject a ui value that is not an object", func() {
		err := user.Settings{"ui": "broken"}.Validate()
		Expect(err).To(HaveOccurred())
		Expect(user.Settings{"ui": map[string]interface{}{}}.Validate()).To(Succeed())
		Expect(user.Settings{"lang": "id"}.Validate()).To(Succeed())
	})
})
