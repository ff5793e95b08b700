// Package section implements the record-collection operations shared by the
// report sections B–G and the R-7 manifest.
//
// Each collection is one Schema value: an accessor into the report, a key
// accessor, a validator and an optional prepare step that fills derived
// fields. Add, Replace and Remove are written once and leave the report
// untouched when they fail.
package section

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/erj-report/internal/domain"
)

// Schema describes one keyed collection inside a report.
type Schema[T any] struct {
	name     string
	items    func(*domain.Report) *[]T
	key      func(*T) *uuid.UUID
	validate func(T) error
	prepare  func(*domain.Report, T) T
}

// Name returns the collection name used in URLs and error messages.
func (s Schema[T]) Name() string { return s.name }

// Items returns the collection's current entries in r.
func (s Schema[T]) Items(r *domain.Report) []T { return *s.items(r) }

// Add validates v, assigns it a fresh key, runs the prepare step and appends
// it to the collection. It returns the stored entry.
func (s Schema[T]) Add(r *domain.Report, v T) (T, error) {
	if err := s.validate(v); err != nil {
		var zero T
		return zero, err
	}
	*s.key(&v) = uuid.New()
	if s.prepare != nil {
		v = s.prepare(r, v)
	}
	items := s.items(r)
	*items = append(*items, v)
	return v, nil
}

// Replace overwrites the entry identified by key with v. The key is kept;
// any key carried by v is ignored.
func (s Schema[T]) Replace(r *domain.Report, key uuid.UUID, v T) (T, error) {
	var zero T
	i := s.index(r, key)
	if i < 0 {
		return zero, fmt.Errorf("%s entry %s: %w", s.name, key, domain.ErrNotFound)
	}
	if err := s.validate(v); err != nil {
		return zero, err
	}
	*s.key(&v) = key
	if s.prepare != nil {
		v = s.prepare(r, v)
	}
	(*s.items(r))[i] = v
	return v, nil
}

// Remove deletes the entry identified by key, preserving the order of the rest.
func (s Schema[T]) Remove(r *domain.Report, key uuid.UUID) error {
	i := s.index(r, key)
	if i < 0 {
		return fmt.Errorf("%s entry %s: %w", s.name, key, domain.ErrNotFound)
	}
	items := s.items(r)
	out := make([]T, 0, len(*items)-1)
	out = append(out, (*items)[:i]...)
	out = append(out, (*items)[i+1:]...)
	*items = out
	return nil
}

// Decode parses a JSON entry. Malformed input is a validation error.
func (s Schema[T]) Decode(body []byte) (T, error) {
	var v T
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, domain.NewFieldError("body", "is not a valid "+s.name+" entry: "+err.Error())
	}
	return v, nil
}

func (s Schema[T]) index(r *domain.Report, key uuid.UUID) int {
	items := s.items(r)
	for i := range *items {
		if *s.key(&(*items)[i]) == key {
			return i
		}
	}
	return -1
}

// Section is the type-erased form of a Schema used by the generic
// section endpoints, which receive raw JSON.
type Section interface {
	Name() string
	AddJSON(r *domain.Report, body []byte) (any, error)
	ReplaceJSON(r *domain.Report, key uuid.UUID, body []byte) (any, error)
	Remove(r *domain.Report, key uuid.UUID) error
}

// AddJSON decodes body and adds it.
func (s Schema[T]) AddJSON(r *domain.Report, body []byte) (any, error) {
	v, err := s.Decode(body)
	if err != nil {
		return nil, err
	}
	out, err := s.Add(r, v)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceJSON decodes body and replaces the entry identified by key.
func (s Schema[T]) ReplaceJSON(r *domain.Report, key uuid.UUID, body []byte) (any, error) {
	v, err := s.Decode(body)
	if err != nil {
		return nil, err
	}
	out, err := s.Replace(r, key, v)
	if err != nil {
		return nil, err
	}
	return out, nil
}
