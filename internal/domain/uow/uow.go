package uow

import (
	"context"

	"scholarship-backend/internal/domain/application"
	"scholarship-backend/internal/domain/communityservice"
	"scholarship-backend/internal/domain/disbursement"
	"scholarship-backend/internal/domain/document"
	"scholarship-backend/internal/domain/program"
	"scholarship-backend/internal/domain/student"
)

// Repos bundles repositories bound to one transaction.
type Repos struct {
	Applications  application.Repository
	Programs      program.Repository
	Students      student.Repository
	Documents     document.Repository
	Service       communityservice.Repository
	Disbursements disbursement.Repository
}

type UnitOfWork interface {
	// repositories on the plain connection, for reads outside a tx
	Repos() Repos
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the application first, then pass it in
	WithinApplicationTx(ctx context.Context, applicationID uint64, fn func(r Repos, a *application.Application) error) error
}
