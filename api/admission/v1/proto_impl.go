// proto_impl.go - protobuf Message 인터페이스 구현
// gRPC에서 사용하기 위해 proto.Message 인터페이스를 구현
package admissionv1

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// ================================================================================
//                          SubmitTransactionsRequest proto.Message 구현
// ================================================================================

var _ proto.Message = (*SubmitTransactionsRequest)(nil)

func (*SubmitTransactionsRequest) ProtoMessage() {}

func (x *SubmitTransactionsRequest) Reset() {
	*x = SubmitTransactionsRequest{}
}

func (x *SubmitTransactionsRequest) String() string {
	return fmt.Sprintf("SubmitTransactionsRequest{Txs:%d}", len(x.Transactions))
}

func (*SubmitTransactionsRequest) ProtoReflect() protoreflect.Message {
	return nil // 최소 구현
}

// ================================================================================
//                          SubmitTransactionsResponse proto.Message 구현
// ================================================================================

var _ proto.Message = (*SubmitTransactionsResponse)(nil)

func (*SubmitTransactionsResponse) ProtoMessage() {}

func (x *SubmitTransactionsResponse) Reset() {
	*x = SubmitTransactionsResponse{}
}

func (x *SubmitTransactionsResponse) String() string {
	return fmt.Sprintf("SubmitTransactionsResponse{Accept:%d, Invalid:%d}", len(x.Accept), len(x.Invalid))
}

func (*SubmitTransactionsResponse) ProtoReflect() protoreflect.Message {
	return nil
}

// ================================================================================
//                          GetStatusRequest proto.Message 구현
// ================================================================================

var _ proto.Message = (*GetStatusRequest)(nil)

func (*GetStatusRequest) ProtoMessage() {}

func (x *GetStatusRequest) Reset() {
	*x = GetStatusRequest{}
}

func (x *GetStatusRequest) String() string {
	return "GetStatusRequest"
}

func (*GetStatusRequest) ProtoReflect() protoreflect.Message {
	return nil
}

// ================================================================================
//                          GetStatusResponse proto.Message 구현
// ================================================================================

var _ proto.Message = (*GetStatusResponse)(nil)

func (*GetStatusResponse) ProtoMessage() {}

func (x *GetStatusResponse) Reset() {
	*x = GetStatusResponse{}
}

func (x *GetStatusResponse) String() string {
	return fmt.Sprintf("GetStatusResponse{NodeId:%s}", x.NodeId)
}

func (*GetStatusResponse) ProtoReflect() protoreflect.Message {
	return nil
}
