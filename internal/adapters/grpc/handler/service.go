package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/staffboard/internal/adapters/authn"
)

var errInvalidRequest = errors.New("invalid request")

// structCall は google.protobuf.Struct を入出力とするメソッドの呼び出しです。
type structCall func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

// unaryStructHandler は生成コードの _Handler 関数と同じ形の grpc.MethodHandler を作ります。
func unaryStructHandler(fullMethod string, call structCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv, ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func invokeStruct(ctx context.Context, cc grpc.ClientConnInterface, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// requestPrincipal はリクエストの検証と認証済み主体の取り出しを行います。
func requestPrincipal(ctx context.Context, req *structpb.Struct) (*authn.Principal, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	p, ok := authn.PrincipalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "not authenticated")
	}
	return p, nil
}

// fromStruct は Struct を JSON 経由で v へ復号します。
func fromStruct(in *structpb.Struct, v any) error {
	b, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return nil
}

func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return out, nil
}

// respond は v を Struct に変換します。変換できない場合は Internal を返します。
func respond(v any) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		return nil, toStatusError(err)
	}
	return out, nil
}
