package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/staffboard/internal/core/employee"
)

const (
	// DashboardServiceName は gRPC のサービス名です。
	DashboardServiceName = "staffboard.v1.DashboardService"
	// GetDashboardMethod は GetDashboard の完全なメソッド名です。
	GetDashboardMethod = "/" + DashboardServiceName + "/GetDashboard"
)

// DashboardServer は DashboardService のサーバー実装です。
type DashboardServer interface {
	GetDashboard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// DashboardServiceDesc は google.protobuf.Struct を入出力とする DashboardService の定義です。
var DashboardServiceDesc = grpc.ServiceDesc{
	ServiceName: DashboardServiceName,
	HandlerType: (*DashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetDashboard", Handler: getDashboardHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "staffboard/v1/dashboard.proto",
}

var getDashboardHandler = unaryStructHandler(GetDashboardMethod, func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return srv.(DashboardServer).GetDashboard(ctx, req)
})

// RegisterDashboardServer は srv を gRPC サーバーへ登録します。
func RegisterDashboardServer(s grpc.ServiceRegistrar, srv DashboardServer) {
	s.RegisterService(&DashboardServiceDesc, srv)
}

// GetDashboard はクライアントから DashboardService/GetDashboard を呼び出します。
func GetDashboard(ctx context.Context, cc grpc.ClientConnInterface, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invokeStruct(ctx, cc, GetDashboardMethod, req, opts...)
}

// DashboardHandler は DashboardService の gRPC 実装です。
type DashboardHandler struct{}

// NewDashboardHandler は DashboardHandler を生成します。
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

type recentAdmission struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Title         string          `json:"title"`
	Department    string          `json:"department"`
	AdmissionDate string          `json:"admission_date"`
	Status        employee.Status `json:"status"`
}

type dashboardMessage struct {
	Period      employee.Period            `json:"period"`
	Overall     employee.Stats             `json:"overall"`
	PeriodStats employee.Stats             `json:"period_stats"`
	Chart       []employee.Bucket          `json:"chart"`
	Departments []employee.DepartmentCount `json:"departments"`
	Recent      []recentAdmission          `json:"recent"`
	StatusMix   []employee.StatusCount     `json:"status_mix"`
}

// GetDashboard は認証済みセッションの会社のダッシュボードを返します。
// リクエストの "period" は day / month / year のいずれかで、省略時は month です。
func (h *DashboardHandler) GetDashboard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := requestPrincipal(ctx, req)
	if err != nil {
		return nil, err
	}

	var raw string
	if v, ok := req.GetFields()["period"]; ok {
		if _, isString := v.GetKind().(*structpb.Value_StringValue); !isString {
			return nil, status.Error(codes.InvalidArgument, "period must be a string")
		}
		raw = v.GetStringValue()
	}

	period, err := employee.ParsePeriod(raw)
	if err != nil {
		return nil, toStatusError(err)
	}

	r, err := p.Workspace.View(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	d := employee.BuildDashboard(r.Employees(), period, r.Now())
	return respond(toDashboardMessage(d))
}

func toDashboardMessage(d employee.Dashboard) dashboardMessage {
	recent := make([]recentAdmission, 0, len(d.Recent))
	for _, e := range d.Recent {
		recent = append(recent, recentAdmission{
			ID:            e.ID,
			Name:          e.Name,
			Title:         e.Title,
			Department:    e.Department,
			AdmissionDate: e.AdmissionDate.Format(employee.DateLayout),
			Status:        e.Status,
		})
	}
	return dashboardMessage{
		Period:      d.Period,
		Overall:     d.Overall,
		PeriodStats: d.PeriodStats,
		Chart:       d.Chart,
		Departments: d.Departments,
		Recent:      recent,
		StatusMix:   d.StatusMix,
	}
}
