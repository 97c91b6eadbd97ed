// grpc.go - 수동으로 작성한 gRPC 서비스 정의
// protoc 생성 코드와 같은 모양의 클라이언트/서버 바인딩
package admissionv1

import (
	"context"

	"google.golang.org/grpc"
)

// AdmissionService_ServiceName is the fully-qualified service name.
const AdmissionService_ServiceName = "admission.v1.AdmissionService"

// AdmissionServiceClient is the client API for the admission service.
type AdmissionServiceClient interface {
	SubmitTransactions(ctx context.Context, in *SubmitTransactionsRequest, opts ...grpc.CallOption) (*SubmitTransactionsResponse, error)
	GetStatus(ctx context.Context, in *GetStatusRequest, opts ...grpc.CallOption) (*GetStatusResponse, error)
}

type admissionServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAdmissionServiceClient creates a client over an existing connection.
func NewAdmissionServiceClient(cc grpc.ClientConnInterface) AdmissionServiceClient {
	return &admissionServiceClient{cc}
}

func (c *admissionServiceClient) SubmitTransactions(ctx context.Context, in *SubmitTransactionsRequest, opts ...grpc.CallOption) (*SubmitTransactionsResponse, error) {
	out := new(SubmitTransactionsResponse)
	err := c.cc.Invoke(ctx, "/"+AdmissionService_ServiceName+"/SubmitTransactions", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *admissionServiceClient) GetStatus(ctx context.Context, in *GetStatusRequest, opts ...grpc.CallOption) (*GetStatusResponse, error) {
	out := new(GetStatusResponse)
	err := c.cc.Invoke(ctx, "/"+AdmissionService_ServiceName+"/GetStatus", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AdmissionServiceServer is the server API for the admission service.
type AdmissionServiceServer interface {
	SubmitTransactions(ctx context.Context, in *SubmitTransactionsRequest) (*SubmitTransactionsResponse, error)
	GetStatus(ctx context.Context, in *GetStatusRequest) (*GetStatusResponse, error)
}

// UnimplementedAdmissionServiceServer provides forward-compatible defaults.
type UnimplementedAdmissionServiceServer struct{}

func (UnimplementedAdmissionServiceServer) SubmitTransactions(ctx context.Context, in *SubmitTransactionsRequest) (*SubmitTransactionsResponse, error) {
	return nil, nil
}

func (UnimplementedAdmissionServiceServer) GetStatus(ctx context.Context, in *GetStatusRequest) (*GetStatusResponse, error) {
	return nil, nil
}

// RegisterAdmissionServiceServer registers the service implementation.
func RegisterAdmissionServiceServer(s grpc.ServiceRegistrar, srv AdmissionServiceServer) {
	s.RegisterService(&AdmissionService_ServiceDesc, srv)
}

func _AdmissionService_SubmitTransactions_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SubmitTransactionsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdmissionServiceServer).SubmitTransactions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + AdmissionService_ServiceName + "/SubmitTransactions",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AdmissionServiceServer).SubmitTransactions(ctx, req.(*SubmitTransactionsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _AdmissionService_GetStatus_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetStatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdmissionServiceServer).GetStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + AdmissionService_ServiceName + "/GetStatus",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AdmissionServiceServer).GetStatus(ctx, req.(*GetStatusRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// AdmissionService_ServiceDesc is the grpc.ServiceDesc for the service.
var AdmissionService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: AdmissionService_ServiceName,
	HandlerType: (*AdmissionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SubmitTransactions",
			Handler:    _AdmissionService_SubmitTransactions_Handler,
		},
		{
			MethodName: "GetStatus",
			Handler:    _AdmissionService_GetStatus_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "admission/v1/admission.proto",
}
