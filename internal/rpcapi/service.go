package rpcapi

import (
	"context"

	"google.golang.org/grpc"
)

const (
	UserServiceName = "noteapp.UserService"
	NoteServiceName = "noteapp.NoteService"
)

type UserServiceServer interface {
	GetUserByEmail(context.Context, *GetUserByEmailRequest) (*UserResponse, error)
	CreateUser(context.Context, *CreateUserRequest) (*UserResponse, error)
}

type NoteServiceServer interface {
	ListNotes(context.Context, *ListNotesRequest) (*ListNotesResponse, error)
	CreateNote(context.Context, *CreateNoteRequest) (*NoteResponse, error)
	UpdateNote(context.Context, *UpdateNoteRequest) (*NoteResponse, error)
	DeleteNote(context.Context, *DeleteNoteRequest) (*DeleteNoteResponse, error)
}

func RegisterUserServiceServer(s grpc.ServiceRegistrar, srv UserServiceServer) {
	s.RegisterService(&userServiceDesc, srv)
}

func RegisterNoteServiceServer(s grpc.ServiceRegistrar, srv NoteServiceServer) {
	s.RegisterService(&noteServiceDesc, srv)
}

// unary adapts a typed method into a grpc.MethodDesc handler.
func unary[S any, Req any, Resp any](service, method string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + service + "/" + method,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var userServiceDesc = grpc.ServiceDesc{
	ServiceName: UserServiceName,
	HandlerType: (*UserServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(UserServiceName, "GetUserByEmail", UserServiceServer.GetUserByEmail),
		unary(UserServiceName, "CreateUser", UserServiceServer.CreateUser),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "noteapp/user.rpc",
}

var noteServiceDesc = grpc.ServiceDesc{
	ServiceName: NoteServiceName,
	HandlerType: (*NoteServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(NoteServiceName, "ListNotes", NoteServiceServer.ListNotes),
		unary(NoteServiceName, "CreateNote", NoteServiceServer.CreateNote),
		unary(NoteServiceName, "UpdateNote", NoteServiceServer.UpdateNote),
		unary(NoteServiceName, "DeleteNote", NoteServiceServer.DeleteNote),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "noteapp/note.rpc",
}

// Invoke calls service/method on conn with the JSON codec.
func Invoke[Resp any](ctx context.Context, conn grpc.ClientConnInterface, service, method string, req interface{}, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append(CallOptions(), opts...)
	if err := conn.Invoke(ctx, "/"+service+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
