package storage

import (
	"context"
	"errors"

	"rangeScope/internal/model"
)

// Storage defines a sink for range quotes.
type Storage interface {
	PutRangeQuotes(ctx context.Context, quotes []model.RangeQuote) error
}

// Multi fans a batch out to every sink and joins their errors.
type Multi []Storage

func (m Multi) PutRangeQuotes(ctx context.Context, quotes []model.RangeQuote) error {
	var errs []error
	for _, s := range m {
		if err := s.PutRangeQuotes(ctx, quotes); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
