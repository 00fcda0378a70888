package ports

import "context"

type TallyService interface {
	RecomputeAll(ctx context.Context) error
}
