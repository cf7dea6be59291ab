package repository

import (
	"context"

	"app/internal/domain/model"
)

type EnquiryListFilter struct {
	Page   int
	Limit  int
	Status string
}

type EnquiryRepository interface {
	Create(ctx context.Context, e model.Enquiry) (int64, error)
	FindByID(ctx context.Context, enquiryID int64) (model.Enquiry, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Enquiry, int64, error)
	UpdateStatus(ctx context.Context, enquiryID int64, status model.EnquiryStatus) error
	//admin用の一覧
	List(ctx context.Context, f EnquiryListFilter) ([]model.Enquiry, int64, error)
}
