package api

import (
	"context"
	"fmt"
	"net/http"

	ferrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/transactions"
)

const transactionsPath = "/transactions/"

type TransactionsService struct {
	client *Client
}

// MessageResponse is the body of delete-style endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

func (s *TransactionsService) List(ctx context.Context, filter transactions.Filter) ([]transactions.Transaction, error) {
	req := NewRequest(http.MethodGet, transactionsPath)
	req.Query = filter.Values()

	var list []transactions.Transaction
	if err := s.client.doJSON(ctx, req, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *TransactionsService) Get(ctx context.Context, id int64) (*transactions.Transaction, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: transaction id must be positive", ferrors.ErrInvalidArgument)
	}

	var tx transactions.Transaction
	if err := s.client.doJSON(ctx, NewRequest(http.MethodGet, transactionPath(id)), &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *TransactionsService) Create(ctx context.Context, in transactions.Input) (*transactions.Transaction, error) {
	if err := in.ValidateCreate(); err != nil {
		return nil, err
	}
	req, err := NewJSONRequest(http.MethodPost, transactionsPath, in)
	if err != nil {
		return nil, err
	}

	var tx transactions.Transaction
	if err := s.client.doJSON(ctx, req, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// Update sends only the fields set in in.
func (s *TransactionsService) Update(ctx context.Context, id int64, in transactions.Input) (*transactions.Transaction, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: transaction id must be positive", ferrors.ErrInvalidArgument)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	req, err := NewJSONRequest(http.MethodPut, transactionPath(id), in)
	if err != nil {
		return nil, err
	}

	var tx transactions.Transaction
	if err := s.client.doJSON(ctx, req, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *TransactionsService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: transaction id must be positive", ferrors.ErrInvalidArgument)
	}
	var msg MessageResponse
	return s.client.doJSON(ctx, NewRequest(http.MethodDelete, transactionPath(id)), &msg)
}

func transactionPath(id int64) string {
	return fmt.Sprintf("%s%d", transactionsPath, id)
}
