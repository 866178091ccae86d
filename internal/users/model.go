package users

import "time"

// Plan names. Limits for each live in the usage package.
const (
	PlanFree       = "free"
	PlanBasic      = "basic"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FullName         string    `json:"fullName"`
	GivenName        string    `json:"givenName"`
	FamilyName       string    `json:"familyName"`
	PictureURL       string    `json:"pictureUrl"`
	Plan             string    `json:"plan"`
	StripeCustomerID string    `json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ValidPlan reports whether the given plan name is one we recognize.
func ValidPlan(plan string) bool {
	switch plan {
	case PlanFree, PlanBasic, PlanPro, PlanEnterprise:
		return true
	default:
		return false
	}
}
