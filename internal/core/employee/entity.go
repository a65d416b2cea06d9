package employee

import "time"

// Status は社員の在籍状態を表します。
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusOnLeave  Status = "on_leave"
)

// MaritalStatus は婚姻状況です。
type MaritalStatus string

const (
	MaritalSingle   MaritalStatus = "single"
	MaritalMarried  MaritalStatus = "married"
	MaritalDivorced MaritalStatus = "divorced"
	MaritalWidowed  MaritalStatus = "widowed"
)

// Gender は性別です。
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// DepartmentOther は自由入力の部署名へ置き換えられる選択肢です。
const DepartmentOther = "Other"

// Departments は登録フォームで選択できる部署の一覧です。
var Departments = []string{
	"Technology",
	"Human Resources",
	"Finance",
	"Marketing",
	"Sales",
	"Operations",
	"Management",
	"Customer Service",
	"Legal",
	DepartmentOther,
}

// StateCodes は住所の州コードの候補です。
var StateCodes = []string{
	"AC", "AL", "AP", "AM", "BA", "CE", "DF", "ES", "GO",
	"MA", "MT", "MS", "MG", "PA", "PB", "PR", "PE", "PI",
	"RJ", "RN", "RS", "RO", "RR", "SC", "SP", "SE", "TO",
}

// Address は社員の住所です。すべての項目が任意です。
type Address struct {
	PostalCode   string `json:"postal_code"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

// Employee は社員エンティティです。
type Employee struct {
	ID            string
	CompanyID     string
	Name          string
	Email         string
	Phone         string
	DocumentID    string
	Title         string
	Department    string
	Salary        float64
	AdmissionDate time.Time
	Status        Status
	BirthDate     time.Time
	MaritalStatus MaritalStatus
	Gender        Gender
	Address       Address
	Notes         *string
	PhotoURL      *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewEmployee はストアへ挿入する社員レコードです。ID とタイムスタンプはストアが採番します。
type NewEmployee struct {
	CompanyID     string
	Name          string
	Email         string
	Phone         string
	DocumentID    string
	Title         string
	Department    string
	Salary        float64
	AdmissionDate time.Time
	Status        Status
	BirthDate     time.Time
	MaritalStatus MaritalStatus
	Gender        Gender
	Address       Address
	Notes         *string
	PhotoURL      *string
}

// Patch は部分更新で送信する項目です。nil の項目は送信されません。
type Patch struct {
	Name       *string
	Email      *string
	Phone      *string
	Title      *string
	Department *string
	Salary     *float64
	Status     *Status
	Notes      *string
}

// IsEmpty は送信する項目が一つもない場合に true を返します。
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Title == nil &&
		p.Department == nil && p.Salary == nil && p.Status == nil && p.Notes == nil
}

// Clone は社員のディープコピーを返します。
func (e *Employee) Clone() *Employee {
	if e == nil {
		return nil
	}
	c := *e
	c.Notes = cloneString(e.Notes)
	c.PhotoURL = cloneString(e.PhotoURL)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// IsValidStatus は在籍状態が既知の値かを判定します。
func IsValidStatus(status Status) bool {
	switch status {
	case StatusActive, StatusInactive, StatusOnLeave:
		return true
	default:
		return false
	}
}
