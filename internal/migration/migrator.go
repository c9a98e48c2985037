package migration

import "context"

// Migrator prepares external state once before the environment is warm
type Migrator interface {
	Run(ctx context.Context, env []string) error
}
