package invitation

import (
	"strings"

	"github.com/timeguard/timeguard-api/internal/pkg/session"
	"github.com/timeguard/timeguard-api/internal/pkg/validator"
)

type CreateRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

func (r *CreateRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if validator.IsEmpty(r.Email) {
		errs.Add("email", "email is required")
	} else if !validator.IsValidEmail(r.Email) {
		errs.Add("email", "email must be a valid email address")
	}
	if validator.IsEmpty(r.FirstName) {
		errs.Add("first_name", "first_name is required")
	}
	if validator.IsEmpty(r.LastName) {
		errs.Add("last_name", "last_name is required")
	}
	if r.Role == "" {
		r.Role = string(session.RoleEmployee)
	} else if !session.ValidRole(r.Role) {
		errs.Add("role", "role must be one of: admin, manager, employee")
	}

	return errs.Err()
}

type ResendRequest struct {
	Email string `json:"email"`
}

func (r *ResendRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if !validator.IsValidEmail(r.Email) {
		errs.Add("email", "email must be a valid email address")
	}

	return errs.Err()
}

type ValidateRequest struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

func (r *ValidateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Token) {
		errs.Add("token", "token is required")
	}
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if !validator.IsValidEmail(r.Email) {
		errs.Add("email", "email must be a valid email address")
	}

	return errs.Err()
}

type EnrollRequest struct {
	Token           string  `json:"token"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	ConfirmPassword string  `json:"confirm_password"`
	PhoneNumber     *string `json:"phone_number,omitempty"`
	MailingAddress  *string `json:"mailing_address,omitempty"`
}

func (r *EnrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Token) {
		errs.Add("token", "token is required")
	}
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if !validator.IsValidEmail(r.Email) {
		errs.Add("email", "email must be a valid email address")
	}

	if validator.IsEmpty(r.Password) {
		errs.Add("password", "password is required")
	} else if len(r.Password) < 8 {
		errs.Add("password", "password must be at least 8 characters long")
	} else if len(r.Password) > 72 {
		errs.Add("password", "password must not exceed 72 characters")
	}
	if r.ConfirmPassword != r.Password {
		errs.Add("confirm_password", "password and confirm_password do not match")
	}

	if r.PhoneNumber != nil && *r.PhoneNumber != "" && !validator.IsValidPhoneNumber(*r.PhoneNumber) {
		errs.Add("phone_number", "phone_number must contain 7 to 15 digits")
	}

	return errs.Err()
}

type InvitationResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	ExpiresAt string `json:"expires_at"`
}

type EnrollmentResponse struct {
	ProfileID          string `json:"profile_id"`
	Email              string `json:"email"`
	FullName           string `json:"full_name"`
	Role               string `json:"role"`
	RegistrationStatus string `json:"registration_status"`
	CreatedAt          string `json:"created_at"`
}

func ToResponse(inv Invitation) InvitationResponse {
	return InvitationResponse{
		ID:        inv.ID,
		Email:     inv.Email,
		FirstName: inv.FirstName,
		LastName:  inv.LastName,
		Role:      string(inv.Role),
		Status:    string(inv.Status),
		ExpiresAt: inv.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
