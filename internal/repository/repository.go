// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres) and return sql.ErrNoRows
// unchanged so services can map it to their own not-found errors.
package repository

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
