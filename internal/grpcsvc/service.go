// Package grpcsvc exposes input validation as a gRPC service. Messages are
// google.protobuf.Struct values, so no generated code is needed:
//
//	request:  {"type": "SignupInput", "input": {...}}
//	response: {"valid": true, "value": {...}, "validationErrors": []}
package grpcsvc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	executor "github.com/hanpama/gqlvalidate/internal/executor"
	schema "github.com/hanpama/gqlvalidate/internal/schema"
	validation "github.com/hanpama/gqlvalidate/internal/validation"
)

const (
	ServiceName    = "gqlvalidate.v1.Validation"
	ValidateMethod = "/" + ServiceName + "/Validate"
)

// ValidationServer is the server API of the Validation service.
type ValidationServer interface {
	Validate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the Validation service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ValidationServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Validate", Handler: validateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gqlvalidate/v1/validation.proto",
}

func validateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ValidationServer).Validate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ValidateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ValidationServer).Validate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Service validates input objects of one schema.
type Service struct {
	schema    *schema.Schema
	validator *validation.Validator
}

var _ ValidationServer = (*Service)(nil)

func New(sch *schema.Schema, v *validation.Validator) *Service {
	return &Service{schema: sch, validator: v}
}

// Register adds the service to s.
func (s *Service) Register(gs *grpc.Server) {
	gs.RegisterService(&ServiceDesc, s)
}

func (s *Service) Validate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	typeName, input, err := decodeRequest(req)
	if err != nil {
		return nil, err
	}
	if s.validator.Shape(typeName) == nil {
		return nil, status.Errorf(codes.NotFound, "unknown input type %q", typeName)
	}

	value, err := executor.CoerceInputObject(s.schema, typeName, input)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "input: %v", err)
	}

	out, err := s.validator.ValidateInput(ctx, typeName, value)
	var failure *validation.Failure
	switch {
	case errors.As(err, &failure):
		return encodeResponse(false, nil, failure.Extensions()[validation.ExtensionKey].([]any))
	case err != nil:
		return nil, status.Errorf(codes.Internal, "validate %s: %v", typeName, err)
	}
	return encodeResponse(true, out, []any{})
}

func decodeRequest(req *structpb.Struct) (string, map[string]any, error) {
	fields := req.GetFields()
	tv, ok := fields["type"]
	if !ok || tv.GetStringValue() == "" {
		return "", nil, status.Error(codes.InvalidArgument, "request.type must be a non-empty string")
	}
	iv, ok := fields["input"]
	if !ok {
		return "", nil, status.Error(codes.InvalidArgument, "request.input is required")
	}
	switch iv.GetKind().(type) {
	case *structpb.Value_NullValue:
		return tv.GetStringValue(), nil, nil
	case *structpb.Value_StructValue:
		return tv.GetStringValue(), iv.GetStructValue().AsMap(), nil
	}
	return "", nil, status.Error(codes.InvalidArgument, "request.input must be an object or null")
}

func encodeResponse(valid bool, value map[string]any, details []any) (*structpb.Struct, error) {
	var v any
	if value != nil {
		v = value
	}
	resp, err := structpb.NewStruct(map[string]any{
		"valid":            valid,
		"value":            v,
		"validationErrors": details,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return resp, nil
}
