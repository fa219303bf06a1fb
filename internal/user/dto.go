package user

import (
	"strconv"
	"strings"

	"github.com/frahmantamala/chat-users/internal"
	"github.com/frahmantamala/chat-users/internal/core/common/validation"
)

// ListQuery is the query string of the paginated listing.
type ListQuery struct {
	Query     string
	OrderBy   string
	Direction string
	Page      int
}

func ParseListQuery(get func(string) string) (ListQuery, error) {
	q := ListQuery{
		Query:     strings.TrimSpace(get("query")),
		OrderBy:   strings.TrimSpace(get("order_by")),
		Direction: strings.ToLower(strings.TrimSpace(get("direction"))),
		Page:      1,
	}

	if raw := strings.TrimSpace(get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return ListQuery{}, internal.NewValidationFieldErrors([]internal.ValidationError{{
				Field:   "page",
				Message: "page must be an integer",
				Code:    string(internal.ErrCodeValidationFailed),
			}})
		}
		q.Page = page
	}
	return q, nil
}

// Offset is the number of rows skipped for the requested page. Pages below 1 read as 1.
func (q ListQuery) Offset() int {
	page := q.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * PageSize
}

func (q ListQuery) Filter() ListFilter {
	return ListFilter{
		Query:     q.Query,
		OrderBy:   q.OrderBy,
		Direction: q.Direction,
	}
}

type UpdateUserForm struct {
	Role            string `json:"role" validate:"required"`
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	ProfileImageURL string `json:"profile_image_url" validate:"required"`
	Password        string `json:"password,omitempty"`
}

func (f *UpdateUserForm) Normalize() {
	f.Role = strings.TrimSpace(f.Role)
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
}

func (f UpdateUserForm) Validate() error {
	if appErr := validation.Struct(f); appErr != nil {
		return appErr
	}
	return nil
}

type ActiveUsersResponse struct {
	UserIDs []string `json:"user_ids"`
}

type ActiveStatusResponse struct {
	Active bool `json:"active"`
}
