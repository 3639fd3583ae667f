package storage

import (
	"context"
	"fmt"

	"campusbook/internal/domain/bookings"
	"campusbook/internal/domain/offices"
	"campusbook/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Container struct {
	pool     dbx.TxBeginner // IMPORTANT: set the pool so WithBookingTx works
	Offices  offices.Store
	Bookings bookings.Store
}

func NewContainer(db dbx.TxBeginner) *Container {
	return &Container{
		pool:     db,
		Offices:  offices.NewRepository(db),
		Bookings: bookings.NewRepository(db),
	}
}

// WithBookingTx runs a booking unit-of-work atomically. fn receives a
// bookings store bound to the transaction.
func (c *Container) WithBookingTx(ctx context.Context, fn func(s bookings.Store) error) error {
	if c.pool == nil {
		return fmt.Errorf("storage container pool is nil (did you forget to set pool in NewContainer?)")
	}

	return dbx.WithTx(ctx, c.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(bookings.NewRepository(tx))
	})
}
