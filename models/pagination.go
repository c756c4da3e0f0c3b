package models

import "gorm.io/gorm"

const DefaultPageSize = 10

type PaginationInput struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}

type PageResult[T any] struct {
	Records    []*T  `json:"records"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func (p *PaginationInput) normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 100 {
		p.PageSize = DefaultPageSize
	}
}

// Paginate counts the query and fetches one page ordered by the given clause.
func Paginate[T any](query *gorm.DB, input PaginationInput, order string) (*PageResult[T], error) {
	input.normalize()

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var records []*T
	offset := (input.Page - 1) * input.PageSize
	if err := query.Order(order).Offset(offset).Limit(input.PageSize).Find(&records).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(input.PageSize) - 1) / int64(input.PageSize))
	return &PageResult[T]{
		Records:    records,
		Page:       input.Page,
		PageSize:   input.PageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}
