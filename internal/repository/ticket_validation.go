package repository

import (
	"context"
	"fmt"

	"github.com/mehrdadmmz/StagePass/internal/domain"
	"github.com/mehrdadmmz/StagePass/internal/repository/dao"
)

var ErrTicketAlreadyValidated = dao.ErrTicketAlreadyChecked

type TicketValidationDAO interface {
	Insert(ctx context.Context, validation dao.TicketValidation) (dao.TicketValidation, error)
}

type TicketValidationRepository struct {
	dao TicketValidationDAO
}

func NewTicketValidationRepository(dao TicketValidationDAO) *TicketValidationRepository {
	return &TicketValidationRepository{
		dao: dao,
	}
}

func (r *TicketValidationRepository) Create(ctx context.Context, v domain.TicketValidation) (domain.TicketValidation, error) {
	created, err := r.dao.Insert(ctx, dao.TicketValidation{
		ID:          v.ID,
		TicketID:    v.TicketID,
		Method:      string(v.Method),
		ValidatedAt: v.ValidatedAt,
	})
	if err != nil {
		return domain.TicketValidation{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return domain.TicketValidation{
		ID:          created.ID,
		TicketID:    created.TicketID,
		Method:      domain.ValidationMethod(created.Method),
		ValidatedAt: created.ValidatedAt,
	}, nil
}
