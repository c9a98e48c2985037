// Package client forwards test runs to a running daemon.
package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"

	"warmtest/internal/domain"
	"warmtest/internal/protocol"
)

var (
	// ErrServerUnavailable means no daemon could be reached or the connection broke
	ErrServerUnavailable = errors.New("test server unavailable")
	// ErrInvalidArgument means the daemon refused the request
	ErrInvalidArgument = errors.New("invalid argument pattern")
)

// RemoteError is a failure reported by the daemon while running
type RemoteError struct {
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("test server error %d: %s", e.Code, e.Message)
}

// Dispatcher sends runs to the daemon listening on a socket
type Dispatcher struct {
	socket string
}

// New creates a Dispatcher for socket
func New(socket string) *Dispatcher {
	return &Dispatcher{socket: socket}
}

// Dispatch runs req on the daemon and returns its captured output
func (d *Dispatcher) Dispatch(ctx context.Context, req domain.RunRequest) (string, error) {
	c, err := d.dial(ctx)
	if err != nil {
		return "", err
	}
	defer c.Close()

	args := req.Args
	if args == nil {
		args = []string{}
	}

	var out string
	if err := c.CallContext(ctx, &out, protocol.MethodRun, req.File, args); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", mapError(err)
	}
	return out, nil
}

// Status asks the daemon to describe itself
func (d *Dispatcher) Status(ctx context.Context) (*domain.DaemonInfo, error) {
	c, err := d.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	var info domain.DaemonInfo
	if err := c.CallContext(ctx, &info, protocol.MethodStatus); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, mapError(err)
	}
	return &info, nil
}

func (d *Dispatcher) dial(ctx context.Context) (*rpc.Client, error) {
	c, err := rpc.DialIPC(ctx, d.socket)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	return c, nil
}

func mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var rerr rpc.Error
	if !errors.As(err, &rerr) {
		return fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	if rerr.ErrorCode() == protocol.CodeInvalidArgument {
		return fmt.Errorf("%w: %s", ErrInvalidArgument, rerr.Error())
	}
	return &RemoteError{Code: rerr.ErrorCode(), Message: rerr.Error()}
}
