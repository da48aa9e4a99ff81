package validators

import (
	"errors"
	"testing"

	"autoassist/internal/models"
)

func validRequest() *models.BreakdownRequest {
	return &models.BreakdownRequest{
		CustomerName:  "Meera",
		ContactNumber: "+14155550100",
		VehicleNumber: "KA-01-1234",
		IssueType:     "Engine failure",
		Location:      "NH-48 near toll plaza",
		Status:        models.RequestStatusNew,
	}
}

func TestValidateBreakdownRequest(t *testing.T) {
	if err := ValidateBreakdownRequest(validRequest()); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
}

func TestValidateBreakdownRequestFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.BreakdownRequest)
		field  string
	}{
		{"missing customer", func(r *models.BreakdownRequest) { r.CustomerName = "" }, "CustomerName"},
		{"bad phone", func(r *models.BreakdownRequest) { r.ContactNumber = "not-a-phone" }, "ContactNumber"},
		{"unknown status", func(r *models.BreakdownRequest) { r.Status = "Cancelled" }, "Status"},
		{"missing location", func(r *models.BreakdownRequest) { r.Location = "" }, "Location"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			request := validRequest()
			tc.mutate(request)

			err := ValidateBreakdownRequest(request)
			if err == nil {
				t.Fatal("invalid request accepted")
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("unexpected error type: %v", err)
			}
			if _, ok := verrs.Fields()[tc.field]; !ok {
				t.Errorf("error does not name field %s: %v", tc.field, verrs.Fields())
			}
		})
	}
}

func TestValidateEmployee(t *testing.T) {
	employee := &models.Employee{
		EmployeeName: "Ravi",
		Email:        "ravi@autoassist.test",
		ContactNo:    "+14155550111",
		Position:     models.PositionDriver,
	}
	if err := ValidateEmployee(employee); err != nil {
		t.Fatalf("valid employee rejected: %v", err)
	}

	employee.Position = "janitor"
	if err := ValidateEmployee(employee); err == nil {
		t.Fatal("unknown position accepted")
	}

	employee.Position = models.PositionDriver
	employee.Email = "not-an-email"
	if err := ValidateEmployee(employee); err == nil {
		t.Fatal("bad email accepted")
	}
}

func TestPhoneNumberRule(t *testing.T) {
	cases := []struct {
		phone string
		valid bool
	}{
		{"+14155550100", true},
		{"+1 (415) 555-0100", true},
		{"98765 43210", true},
		{"", false},
		{"abc", false},
		{"0000", false},
	}

	for _, tc := range cases {
		request := validRequest()
		request.ContactNumber = tc.phone
		err := ValidateBreakdownRequest(request)
		if tc.valid && err != nil {
			t.Errorf("%q rejected: %v", tc.phone, err)
		}
		if !tc.valid && err == nil {
			t.Errorf("%q accepted", tc.phone)
		}
	}
}
