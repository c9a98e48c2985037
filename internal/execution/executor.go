package execution

import "context"

// Executor runs one suite file with runner arguments and returns the captured output
type Executor interface {
	Run(ctx context.Context, file string, args []string) (string, error)
}
