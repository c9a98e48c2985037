package server

import (
	"context"
	"errors"

	"warmtest/internal/domain"
	"warmtest/internal/execution"
	"warmtest/internal/protocol"
)

// rpcError carries a JSON-RPC error code to the client
type rpcError struct {
	code int
	msg  string
}

func (e *rpcError) Error() string  { return e.msg }
func (e *rpcError) ErrorCode() int { return e.code }

// Service is the JSON-RPC receiver registered under protocol.ServiceName
type Service struct {
	exec execution.Executor
	info func() domain.DaemonInfo
}

// Run serves warm_run
func (s *Service) Run(ctx context.Context, file string, args []string) (string, error) {
	out, err := s.exec.Run(ctx, file, args)
	if err == nil {
		return out, nil
	}
	if errors.Is(err, ErrInvalidArgument) {
		return "", &rpcError{code: protocol.CodeInvalidArgument, msg: err.Error()}
	}
	return "", &rpcError{code: protocol.CodeRunFailed, msg: err.Error()}
}

// Status serves warm_status
func (s *Service) Status() domain.DaemonInfo {
	if s.info == nil {
		return domain.DaemonInfo{}
	}
	return s.info()
}
