package schemas

import (
	"strings"
	"time"

	"github.com/dalemusser/hrms/internal/app/system/htmlsanitize"
	"github.com/dalemusser/hrms/internal/app/system/inputval"
	"github.com/dalemusser/hrms/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Required fields are pointers so an omitted or null field is distinguishable
// from a zero value. Apply is only called on inputs that validated cleanly.

// VacationInput is the create/update schema for a vacation.
type VacationInput struct {
	StartDate *string  `json:"start_date" validate:"required,isodate" label:"Start date"`
	EndDate   *string  `json:"end_date" validate:"required,isodate" label:"End date"`
	DaysTaken *float64 `json:"days_taken" validate:"required,integer,gte=0,lte=366" label:"Days taken"`
	UserID    *string  `json:"user_id" validate:"required,objectid" label:"User"`
}

func (in *VacationInput) Check() inputval.Result {
	var res inputval.Result
	start, _ := inputval.ParseDate(*in.StartDate)
	end, _ := inputval.ParseDate(*in.EndDate)
	if end.Before(start) {
		res.Add("end_date", "End date must not be before Start date.")
	}
	return res
}

// Apply copies the input onto v.
func (in VacationInput) Apply(v *models.Vacation) {
	v.StartDate = mustDate(*in.StartDate)
	v.EndDate = mustDate(*in.EndDate)
	v.DaysTaken = int(*in.DaysTaken)
	v.UserID = mustOID(*in.UserID)
}

// PerformanceEvaluationInput is the create/update schema for an evaluation.
type PerformanceEvaluationInput struct {
	EvaluationDate *string  `json:"evaluation_date" validate:"required,isodate" label:"Evaluation date"`
	Score          *float64 `json:"score" validate:"required,gte=0,lte=100" label:"Score"`
	Comments       *string  `json:"comments" validate:"omitempty,max=2000" label:"Comments"`
	UserID         *string  `json:"user_id" validate:"required,objectid" label:"User"`
	EvaluatorID    *string  `json:"evaluator_id" validate:"required,objectid" label:"Evaluator"`
}

// Apply copies the input onto e. Comments are stored as plain text.
func (in PerformanceEvaluationInput) Apply(e *models.PerformanceEvaluation) {
	e.EvaluationDate = mustDate(*in.EvaluationDate)
	e.Score = *in.Score
	e.Comments = ""
	if in.Comments != nil {
		e.Comments = htmlsanitize.PlainText(*in.Comments)
	}
	e.UserID = mustOID(*in.UserID)
	e.EvaluatorID = mustOID(*in.EvaluatorID)
}

// TimeTrackingInput is the create/update schema for a time tracking entry.
type TimeTrackingInput struct {
	Date        *string  `json:"date" validate:"required,isodate" label:"Date"`
	HoursWorked *float64 `json:"hours_worked" validate:"required,gte=0,lte=24" label:"Hours worked"`
	UserID      *string  `json:"user_id" validate:"required,objectid" label:"User"`
}

// Apply copies the input onto t.
func (in TimeTrackingInput) Apply(t *models.TimeTracking) {
	t.Date = mustDate(*in.Date)
	t.HoursWorked = *in.HoursWorked
	t.UserID = mustOID(*in.UserID)
}

// PayrollInput is the create/update schema for a payroll.
type PayrollInput struct {
	PayDate     *string  `json:"pay_date" validate:"required,isodate" label:"Pay date"`
	GrossSalary *float64 `json:"gross_salary" validate:"required,gte=0" label:"Gross salary"`
	Deductions  *float64 `json:"deductions" validate:"required,gte=0" label:"Deductions"`
	UserID      *string  `json:"user_id" validate:"required,objectid" label:"User"`
}

func (in *PayrollInput) Check() inputval.Result {
	var res inputval.Result
	if *in.Deductions > *in.GrossSalary {
		res.Add("deductions", "Deductions must not exceed Gross salary.")
	}
	return res
}

// Apply copies the input onto p and derives the net salary.
func (in PayrollInput) Apply(p *models.Payroll) {
	p.PayDate = mustDate(*in.PayDate)
	p.GrossSalary = *in.GrossSalary
	p.Deductions = *in.Deductions
	p.NetSalary = *in.GrossSalary - *in.Deductions
	p.UserID = mustOID(*in.UserID)
}

// UserInput is the create schema for an employee account.
type UserInput struct {
	Email      *string  `json:"email" validate:"required,email,max=254" label:"Email"`
	FirstName  *string  `json:"first_name" validate:"required,max=100" label:"First name"`
	LastName   *string  `json:"last_name" validate:"required,max=100" label:"Last name"`
	AvatarURL  *string  `json:"avatar_url" validate:"omitempty,url" label:"Avatar URL"`
	Roles      []string `json:"roles" validate:"omitempty,max=10,dive,required,max=64" label:"Roles"`
	AuthMethod *string  `json:"auth_method" validate:"omitempty,authmethod" label:"Auth method"`
	Password   *string  `json:"password" validate:"omitempty,min=8" label:"Password"`
}

// bcrypt ignores input past 72 bytes.
const maxPasswordBytes = 72

// Method is the auth method the account gets. A password without an
// explicit method implies the password method.
func (in UserInput) Method() string {
	if in.AuthMethod != nil && strings.TrimSpace(*in.AuthMethod) != "" {
		return strings.ToLower(strings.TrimSpace(*in.AuthMethod))
	}
	if in.hasPassword() {
		return models.AuthMethodPassword
	}
	return models.AuthMethodTrust
}

func (in UserInput) hasPassword() bool {
	return in.Password != nil && *in.Password != ""
}

func (in *UserInput) Check() inputval.Result {
	var res inputval.Result
	switch {
	case in.Method() == models.AuthMethodPassword && !in.hasPassword():
		res.Add("password", "Password is required when Auth method is password.")
	case in.Method() != models.AuthMethodPassword && in.hasPassword():
		res.Add("password", "Password is only used with the password auth method.")
	case in.hasPassword() && len(*in.Password) > maxPasswordBytes:
		res.Add("password", "Password must be at most 72 bytes.")
	}
	return res
}

// Apply copies the input onto u. Email is stored as given and folded
// for case-insensitive lookup. The password is hashed by the caller.
func (in UserInput) Apply(u *models.User) {
	u.Email = strings.TrimSpace(*in.Email)
	u.EmailCI = text.Fold(u.Email)
	u.FirstName = strings.TrimSpace(*in.FirstName)
	u.LastName = strings.TrimSpace(*in.LastName)
	if in.AvatarURL != nil {
		u.AvatarURL = *in.AvatarURL
	}
	u.Roles = append([]string(nil), in.Roles...)
	u.AuthMethod = in.Method()
}

func mustDate(s string) time.Time {
	t, _ := inputval.ParseDate(s)
	return t
}

func mustOID(s string) primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return id
}
