package card

import (
	"context"

	"github.com/google/uuid"
	"github.com/nhattran/cardfolio/internal/domain/card"
)

// ListOwnCardsUseCase returns every card the caller owns, full fields.
// Ownership is the filter, so no visibility policy applies.

type ListOwnCardsUseCase struct {
	cardRepo card.Repository
}

func NewListOwnCardsUseCase(repo card.Repository) *ListOwnCardsUseCase {
	return &ListOwnCardsUseCase{cardRepo: repo}
}

type ListOwnCardsInput struct{ OwnerID uuid.UUID }
type ListOwnCardsOutput struct{ Cards []*card.Card }

func (uc *ListOwnCardsUseCase) Execute(ctx context.Context, in ListOwnCardsInput) (*ListOwnCardsOutput, error) {
	cards, err := uc.cardRepo.ListByOwner(ctx, in.OwnerID)
	if err != nil {
		return nil, err
	}
	return &ListOwnCardsOutput{Cards: cards}, nil
}
