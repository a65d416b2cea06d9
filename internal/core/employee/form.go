package employee

import (
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout は日付項目の入出力フォーマットです。
const DateLayout = "2006-01-02"

// MaxSalary は給与列 NUMERIC(12,2) に格納できる上限 (排他) です。
const MaxSalary = 1e10

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	salaryPattern = regexp.MustCompile(`^[0-9]+([.,][0-9]+)?$`)
)

// FormData は登録フォームから送信される値です。値は画面入力のまま文字列で受け取ります。
type FormData struct {
	Name            string `json:"name" validate:"notblank"`
	Email           string `json:"email" validate:"notblank,email_shape"`
	Phone           string `json:"phone" validate:"notblank"`
	Title           string `json:"title" validate:"notblank"`
	Department      string `json:"department" validate:"notblank"`
	DepartmentOther string `json:"department_other"`
	Salary          string `json:"salary" validate:"notblank,positive_number"`
	AdmissionDate   string `json:"admission_date" validate:"notblank,date_ymd"`
	BirthDate       string `json:"birth_date" validate:"notblank,date_ymd"`
	DocumentID      string `json:"document_id" validate:"notblank"`
	MaritalStatus   string `json:"marital_status" validate:"notblank,oneof=single married divorced widowed"`
	Gender          string `json:"gender" validate:"notblank,oneof=male female other"`
	PostalCode      string `json:"postal_code"`
	Street          string `json:"street"`
	Number          string `json:"number"`
	Neighborhood    string `json:"neighborhood"`
	City            string `json:"city"`
	State           string `json:"state"`
	Notes           string `json:"notes"`
	PhotoURL        string `json:"photo_url"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	must := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	must("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	must("email_shape", func(fl validator.FieldLevel) bool {
		return IsEmailShape(fl.Field().String())
	})
	must("positive_number", func(fl validator.FieldLevel) bool {
		_, err := ParseSalary(fl.Field().String())
		return err == nil
	})
	must("date_ymd", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})

	return v
}

// ValidateForm は登録フォームの必須項目と形式を検証します。問題があれば *ValidationError を返します。
func ValidateForm(form FormData) error {
	fields := make(map[string]string)

	if err := validate.Struct(form); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
	}

	if isOtherDepartment(form.Department) && strings.TrimSpace(form.DepartmentOther) == "" {
		fields["department_other"] = "is required"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank":
		return "is required"
	case "email_shape":
		return "is invalid"
	case "positive_number":
		return "must be a positive number"
	case "date_ymd":
		return "must be a date in YYYY-MM-DD format"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}

// IsEmailShape は local@domain.tld 形式かを判定します。
func IsEmailShape(raw string) bool {
	return emailPattern.MatchString(strings.TrimSpace(raw))
}

// ParseSalary は給与を 10 進表記の 0 より大きい数値として解釈します。小数点はカンマも受け付けます。
func ParseSalary(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if !salaryPattern.MatchString(trimmed) {
		return 0, ErrInvalidSalary
	}
	v, err := strconv.ParseFloat(strings.Replace(trimmed, ",", ".", 1), 64)
	if err != nil || !ValidSalary(v) {
		return 0, ErrInvalidSalary
	}
	return v, nil
}

// ValidSalary は給与が有限の正の値で、格納可能な範囲にある場合に true を返します。
func ValidSalary(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0 && v < MaxSalary
}

// ParseDate は YYYY-MM-DD を UTC 0 時の日付として解釈します。
func ParseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.UTC)
}

// ResolveDepartment は "Other" が選ばれた場合に自由入力の部署名へ置き換えます。
func ResolveDepartment(department, other string) string {
	if isOtherDepartment(department) {
		return strings.TrimSpace(other)
	}
	return strings.TrimSpace(department)
}

func isOtherDepartment(department string) bool {
	return strings.EqualFold(strings.TrimSpace(department), DepartmentOther)
}

// toNewEmployee は検証済みのフォームからストア形式のレコードを組み立てます。
func toNewEmployee(companyID string, form FormData) (*NewEmployee, error) {
	salary, err := ParseSalary(form.Salary)
	if err != nil {
		return nil, err
	}
	admission, err := ParseDate(form.AdmissionDate)
	if err != nil {
		return nil, err
	}
	birth, err := ParseDate(form.BirthDate)
	if err != nil {
		return nil, err
	}

	return &NewEmployee{
		CompanyID:     companyID,
		Name:          strings.TrimSpace(form.Name),
		Email:         strings.TrimSpace(form.Email),
		Phone:         strings.TrimSpace(form.Phone),
		DocumentID:    strings.TrimSpace(form.DocumentID),
		Title:         strings.TrimSpace(form.Title),
		Department:    ResolveDepartment(form.Department, form.DepartmentOther),
		Salary:        salary,
		AdmissionDate: admission,
		Status:        StatusActive,
		BirthDate:     birth,
		MaritalStatus: MaritalStatus(strings.TrimSpace(form.MaritalStatus)),
		Gender:        Gender(strings.TrimSpace(form.Gender)),
		Address: Address{
			PostalCode:   strings.TrimSpace(form.PostalCode),
			Street:       strings.TrimSpace(form.Street),
			Number:       strings.TrimSpace(form.Number),
			Neighborhood: strings.TrimSpace(form.Neighborhood),
			City:         strings.TrimSpace(form.City),
			State:        strings.TrimSpace(form.State),
		},
		Notes:    optionalString(form.Notes),
		PhotoURL: optionalString(form.PhotoURL),
	}, nil
}

func optionalString(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
