// Package journal fans settlements out to the configured sinks.
package journal

import (
	"context"
	"errors"

	"github.com/xtrntr/auction/internal/auction"
	"github.com/xtrntr/auction/internal/models"
)

// Multi records to every sink in order and joins their errors. One failing
// sink does not stop the others.
type Multi []auction.Journal

func (m Multi) Record(ctx context.Context, s models.Settlement) error {
	var errs []error
	for _, j := range m {
		if err := j.Record(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
