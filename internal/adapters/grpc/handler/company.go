package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/staffboard/internal/core/company"
	"github.com/ogurasousui/staffboard/internal/core/session"
)

const (
	// CompanyServiceName は gRPC のサービス名です。
	CompanyServiceName = "staffboard.v1.CompanyService"

	GetCompanyMethod    = "/" + CompanyServiceName + "/GetCompany"
	UpdateCompanyMethod = "/" + CompanyServiceName + "/UpdateCompany"
	SetThemeMethod      = "/" + CompanyServiceName + "/SetTheme"
)

// CompanyServer は CompanyService のサーバー実装です。
type CompanyServer interface {
	GetCompany(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateCompany(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	SetTheme(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// CompanyServiceDesc は google.protobuf.Struct を入出力とする CompanyService の定義です。
var CompanyServiceDesc = grpc.ServiceDesc{
	ServiceName: CompanyServiceName,
	HandlerType: (*CompanyServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetCompany", Handler: getCompanyHandler},
		{MethodName: "UpdateCompany", Handler: updateCompanyHandler},
		{MethodName: "SetTheme", Handler: setThemeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "staffboard/v1/company.proto",
}

var (
	getCompanyHandler = unaryStructHandler(GetCompanyMethod, func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
		return srv.(CompanyServer).GetCompany(ctx, req)
	})
	updateCompanyHandler = unaryStructHandler(UpdateCompanyMethod, func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
		return srv.(CompanyServer).UpdateCompany(ctx, req)
	})
	setThemeHandler = unaryStructHandler(SetThemeMethod, func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
		return srv.(CompanyServer).SetTheme(ctx, req)
	})
)

// RegisterCompanyServer は srv を gRPC サーバーへ登録します。
func RegisterCompanyServer(s grpc.ServiceRegistrar, srv CompanyServer) {
	s.RegisterService(&CompanyServiceDesc, srv)
}

// InvokeCompany はクライアントから CompanyService のメソッドを呼び出します。
func InvokeCompany(ctx context.Context, cc grpc.ClientConnInterface, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invokeStruct(ctx, cc, method, req, opts...)
}

// ThemeSetter はテーマ変更のユースケースです。
type ThemeSetter interface {
	SetTheme(ctx context.Context, id string, theme company.Theme) (*company.Company, error)
}

// CompanyHandler は CompanyService の gRPC 実装です。
type CompanyHandler struct {
	companies ThemeSetter
}

// NewCompanyHandler は CompanyHandler を生成します。
func NewCompanyHandler(companies ThemeSetter) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

type setThemeRequest struct {
	Theme company.Theme `json:"theme"`
}

// GetCompany はセッションの会社を返します。
func (h *CompanyHandler) GetCompany(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := requestPrincipal(ctx, req)
	if err != nil {
		return nil, err
	}

	comp := p.Workspace.Session.Snapshot().Company
	if comp == nil {
		return nil, toStatusError(session.ErrNoCompany)
	}
	return respond(comp)
}

// UpdateCompany は会社情報を部分更新します。
func (h *CompanyHandler) UpdateCompany(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := requestPrincipal(ctx, req)
	if err != nil {
		return nil, err
	}

	var patch company.Patch
	if err := fromStruct(req, &patch); err != nil {
		return nil, toStatusError(err)
	}

	updated, err := p.Workspace.Session.UpdateCompany(ctx, patch)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(updated)
}

// SetTheme はテーマを変更し、セッションの会社へ反映します。
func (h *CompanyHandler) SetTheme(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := requestPrincipal(ctx, req)
	if err != nil {
		return nil, err
	}

	var in setThemeRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, toStatusError(err)
	}

	comp := p.Workspace.Session.Snapshot().Company
	if comp == nil {
		return nil, toStatusError(session.ErrNoCompany)
	}

	updated, err := h.companies.SetTheme(ctx, comp.ID, in.Theme)
	if err != nil {
		return nil, toStatusError(err)
	}

	p.Workspace.Session.ReplaceCompany(updated)
	return respond(updated)
}
