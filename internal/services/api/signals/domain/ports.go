package domain

import "context"

// ServicePort defines the service contract for signals
type ServicePort interface {
	Extract(ctx context.Context, in ExtractInput) (ExtractOutput, error)
	Batch(ctx context.Context, in BatchInput) (BatchOutput, error)
	Vocabulary(ctx context.Context) Vocabulary
}

// PackPort is what other modules may learn about the loaded rule pack
type PackPort interface {
	PackVersion() int
	RuleTotal() int
}
