package request

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mehrdadmmz/StagePass/internal/domain"
)

func TestSignupRequest_Validate(t *testing.T) {
	t.Parallel()

	valid := func() SignupRequest {
		return SignupRequest{
			Email:           "fan@example.com",
			Password:        "hunter2go",
			ConfirmPassword: "hunter2go",
			Name:            "Fan",
		}
	}

	req := valid()
	assert.NoError(t, req.Validate())
	assert.Equal(t, domain.RoleAttendee, req.UserRole())

	staff := valid()
	staff.Role = string(domain.RoleStaff)
	assert.NoError(t, staff.Validate())
	assert.Equal(t, domain.RoleStaff, staff.UserRole())

	tests := map[string]func(*SignupRequest){
		"bad email":         func(r *SignupRequest) { r.Email = "fan" },
		"no digit":          func(r *SignupRequest) { r.Password, r.ConfirmPassword = "password", "password" },
		"too short":         func(r *SignupRequest) { r.Password, r.ConfirmPassword = "abc123", "abc123" },
		"mismatch":          func(r *SignupRequest) { r.ConfirmPassword = "hunter3go" },
		"unknown role":      func(r *SignupRequest) { r.Role = "admin" },
		"missing name":      func(r *SignupRequest) { r.Name = "" },
		"missing password":  func(r *SignupRequest) { r.Password = "" },
		"missing confirmed": func(r *SignupRequest) { r.ConfirmPassword = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			req := valid()
			mutate(&req)
			assert.Error(t, req.Validate())
		})
	}
}

func TestCreateEventRequest_Validate(t *testing.T) {
	t.Parallel()

	req := CreateEventRequest{
		Name: "Summer Fest",
		TicketTypes: []CreateTicketTypeRequest{
			{Name: "General", Price: decimal.RequireFromString("10.50"), TotalAvailable: 100},
		},
	}
	assert.NoError(t, req.Validate())

	event := req.ToDomain()
	assert.Equal(t, "Summer Fest", event.Name)
	assert.Len(t, event.TicketTypes, 1)
	assert.Equal(t, 100, event.TicketTypes[0].TotalAvailable)

	req.TicketTypes[0].Price = decimal.RequireFromString("-1")
	assert.Error(t, req.Validate())

	req.TicketTypes[0].Price = decimal.Zero
	req.TicketTypes[0].TotalAvailable = -1
	assert.Error(t, req.Validate())

	assert.Error(t, (&CreateEventRequest{Name: "No Types"}).Validate())
}

func TestTicketValidationRequest_Validate(t *testing.T) {
	t.Parallel()

	id := uuid.NewString()

	assert.NoError(t, (&TicketValidationRequest{ID: id, Method: "QR_CODE"}).Validate())
	assert.NoError(t, (&TicketValidationRequest{ID: id, Method: "MANUAL"}).Validate())
	assert.Error(t, (&TicketValidationRequest{ID: id, Method: "qr_code"}).Validate())
	assert.Error(t, (&TicketValidationRequest{ID: "ticket-1", Method: "MANUAL"}).Validate())
	assert.Error(t, (&TicketValidationRequest{Method: "MANUAL"}).Validate())
}
