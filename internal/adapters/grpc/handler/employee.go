package handler

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/staffboard/internal/core/employee"
)

const (
	// EmployeeServiceName は gRPC のサービス名です。
	EmployeeServiceName = "staffboard.v1.EmployeeService"

	ListEmployeesMethod  = "/" + EmployeeServiceName + "/ListEmployees"
	GetEmployeeMethod    = "/" + EmployeeServiceName + "/GetEmployee"
	CreateEmployeeMethod = "/" + EmployeeServiceName + "/CreateEmployee"
	UpdateEmployeeMethod = "/" + EmployeeServiceName + "/UpdateEmployee"
	DeleteEmployeeMethod = "/" + EmployeeServiceName + "/DeleteEmployee"
)

// EmployeeServer は EmployeeService のサーバー実装です。
type EmployeeServer interface {
	ListEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CreateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DeleteEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// EmployeeServiceDesc は google.protobuf.Struct を入出力とする EmployeeService の定義です。
var EmployeeServiceDesc = grpc.ServiceDesc{
	ServiceName: EmployeeServiceName,
	HandlerType: (*EmployeeServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListEmployees", Handler: listEmployeesHandler},
		{MethodName: "GetEmployee", Handler: getEmployeeHandler},
		{MethodName: "CreateEmployee", Handler: createEmployeeHandler},
		{MethodName: "UpdateEmployee", Handler: updateEmployeeHandler},
		{MethodName: "DeleteEmployee", Handler: deleteEmployeeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "staffboard/v1/employee.proto",
}

var (
	listEmployeesHandler = unaryStructHandler(ListEmployeesMethod, func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
		return srv.(EmployeeServer).ListEmployees(ctx, req)
	})
	getEmployeeHandler = unaryStructHandler(GetEmployeeMethod, func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
		return srv.(EmployeeServer).GetEmployee(ctx, req)
	})
	createEmployeeHandler = unaryStructHandler(CreateEmployeeMethod, func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
		return srv.(EmployeeServer).CreateEmployee(ctx, req)
	})
	updateEmployeeHandler = unaryStructHandler(UpdateEmployeeMethod, func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
		return srv.(EmployeeServer).UpdateEmployee(ctx, req)
	})
	deleteEmployeeHandler = unaryStructHandler(DeleteEmployeeMethod, func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
		return srv.(EmployeeServer).DeleteEmployee(ctx, req)
	})
)

// RegisterEmployeeServer は srv を gRPC サーバーへ登録します。
func RegisterEmployeeServer(s grpc.ServiceRegistrar, srv EmployeeServer) {
	s.RegisterService(&EmployeeServiceDesc, srv)
}

// InvokeEmployee はクライアントから EmployeeService のメソッドを呼び出します。
func InvokeEmployee(ctx context.Context, cc grpc.ClientConnInterface, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invokeStruct(ctx, cc, method, req, opts...)
}

// EmployeeHandler は EmployeeService の gRPC 実装です。
type EmployeeHandler struct{}

// NewEmployeeHandler は EmployeeHandler を生成します。
func NewEmployeeHandler() *EmployeeHandler {
	return &EmployeeHandler{}
}

type employeeMessage struct {
	ID            string                 `json:"id"`
	CompanyID     string                 `json:"company_id"`
	Name          string                 `json:"name"`
	Email         string                 `json:"email"`
	Phone         string                 `json:"phone"`
	DocumentID    string                 `json:"document_id"`
	Title         string                 `json:"title"`
	Department    string                 `json:"department"`
	Salary        float64                `json:"salary"`
	AdmissionDate string                 `json:"admission_date"`
	Status        employee.Status        `json:"status"`
	BirthDate     string                 `json:"birth_date"`
	MaritalStatus employee.MaritalStatus `json:"marital_status"`
	Gender        employee.Gender        `json:"gender"`
	Address       employee.Address       `json:"address"`
	Notes         *string                `json:"notes,omitempty"`
	PhotoURL      *string                `json:"photo_url,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

type employeeListMessage struct {
	Employees   []employeeMessage `json:"employees"`
	Departments []string          `json:"departments"`
	Count       int               `json:"count"`
	Total       int               `json:"total"`
	Loading     bool              `json:"loading"`
}

type listEmployeesRequest struct {
	Search     string `json:"search"`
	Status     string `json:"status"`
	Department string `json:"department"`
}

type employeeIDRequest struct {
	ID string `json:"id"`
}

type createEmployeeRequest struct {
	Employee employee.FormData `json:"employee"`
}

type updateEmployeeRequest struct {
	ID         string           `json:"id"`
	Name       *string          `json:"name"`
	Email      *string          `json:"email"`
	Phone      *string          `json:"phone"`
	Title      *string          `json:"title"`
	Department *string          `json:"department"`
	Salary     *float64         `json:"salary"`
	Status     *employee.Status `json:"status"`
	Notes      *string          `json:"notes"`
}

// ListEmployees は検索条件で絞り込んだ社員の一覧を返します。
func (h *EmployeeHandler) ListEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := requestPrincipal(ctx, req)
	if err != nil {
		return nil, err
	}

	var in listEmployeesRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, toStatusError(err)
	}

	r, err := p.Workspace.View(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	all := r.Employees()
	filtered := employee.Search(all, employee.ListFilter{Term: in.Search, Status: in.Status, Department: in.Department})
	return respond(employeeListMessage{
		Employees:   toEmployeeMessages(filtered),
		Departments: employee.DepartmentsOf(all),
		Count:       len(filtered),
		Total:       len(all),
		Loading:     r.Loading(),
	})
}

// GetEmployee は社員を取得します。
func (h *EmployeeHandler) GetEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := requestPrincipal(ctx, req)
	if err != nil {
		return nil, err
	}

	var in employeeIDRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, toStatusError(err)
	}

	r, err := p.Workspace.View(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	found, err := r.Find(in.ID)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(toEmployeeMessage(found))
}

// CreateEmployee は社員を登録し、再読み込み後の一覧を返します。
func (h *EmployeeHandler) CreateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := requestPrincipal(ctx, req)
	if err != nil {
		return nil, err
	}

	var in createEmployeeRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, toStatusError(err)
	}

	r, err := p.Workspace.Roster(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	if err := r.Create(ctx, in.Employee); err != nil {
		return nil, toStatusError(err)
	}

	all := r.Employees()
	return respond(employeeListMessage{
		Employees:   toEmployeeMessages(all),
		Departments: employee.DepartmentsOf(all),
		Count:       len(all),
		Total:       len(all),
		Loading:     r.Loading(),
	})
}

// UpdateEmployee は指定された項目だけを更新します。
func (h *EmployeeHandler) UpdateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := requestPrincipal(ctx, req)
	if err != nil {
		return nil, err
	}

	var in updateEmployeeRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, toStatusError(err)
	}

	r, err := p.Workspace.Roster(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	if err := r.Update(ctx, in.ID, employee.Patch{
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Title:      in.Title,
		Department: in.Department,
		Salary:     in.Salary,
		Status:     in.Status,
		Notes:      in.Notes,
	}); err != nil {
		return nil, toStatusError(err)
	}

	updated, err := r.Find(in.ID)
	if err != nil {
		// 再読み込みに失敗した場合は更新後の値を返せない。
		return &structpb.Struct{}, nil
	}
	return respond(toEmployeeMessage(updated))
}

// DeleteEmployee は社員を削除します。
func (h *EmployeeHandler) DeleteEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := requestPrincipal(ctx, req)
	if err != nil {
		return nil, err
	}

	var in employeeIDRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, toStatusError(err)
	}
	r, err := p.Workspace.Roster(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	if err := r.Delete(ctx, in.ID); err != nil {
		return nil, toStatusError(err)
	}
	return &structpb.Struct{}, nil
}

func toEmployeeMessage(e *employee.Employee) employeeMessage {
	return employeeMessage{
		ID:            e.ID,
		CompanyID:     e.CompanyID,
		Name:          e.Name,
		Email:         e.Email,
		Phone:         e.Phone,
		DocumentID:    e.DocumentID,
		Title:         e.Title,
		Department:    e.Department,
		Salary:        e.Salary,
		AdmissionDate: e.AdmissionDate.Format(employee.DateLayout),
		Status:        e.Status,
		BirthDate:     e.BirthDate.Format(employee.DateLayout),
		MaritalStatus: e.MaritalStatus,
		Gender:        e.Gender,
		Address:       e.Address,
		Notes:         e.Notes,
		PhotoURL:      e.PhotoURL,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func toEmployeeMessages(list []*employee.Employee) []employeeMessage {
	out := make([]employeeMessage, 0, len(list))
	for _, e := range list {
		out = append(out, toEmployeeMessage(e))
	}
	return out
}
