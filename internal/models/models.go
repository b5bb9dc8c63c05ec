package models

import "time"

// Model is a persisted history entity: a [Run] or a [RunTrack].
type Model interface {
	ID() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Validate() error // checked before every insert and update
}

// Repository is the CRUD surface each history table exposes.
//
// List criteria keys are repository specific (for runs: "stage", "status", "limit").
type Repository[T Model] interface {
	Create(model T) error
	Get(id string) (T, error)
	Update(model T) error
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}
