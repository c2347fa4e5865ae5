package repository

import "context"

// SequenceRepository contador atómico por nombre (lectura-incremento en una sola sentencia).
type SequenceRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}
