package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"socialdash/internal/db"
	apperrors "socialdash/internal/errors"
	"socialdash/internal/logging"
)

// Store defines the CRUD operations every entity service builds on.
// Lookups that find nothing return a nil document and a nil error.
type Store[T any] interface {
	Create(ctx context.Context, doc *T) error
	Find(ctx context.Context, q Query) ([]T, error)
	FindOne(ctx context.Context, q Query) (*T, error)
	FindByID(ctx context.Context, id string) (*T, error)
	UpdateByID(ctx context.Context, id string, patch map[string]interface{}) (*T, error)
	DeleteByID(ctx context.Context, id string) (*T, error)
	Count(ctx context.Context, q Query) (int64, error)
	Save(ctx context.Context, doc *T) error
}

// Repository is the GORM implementation of Store for one document type.
type Repository[T any] struct {
	conn   *db.Connector
	entity string
	logger logging.Logger
}

// New creates a repository for documents of type T. entity names the
// document in logs and errors.
func New[T any](conn *db.Connector, entity string, logger logging.Logger) *Repository[T] {
	return &Repository[T]{conn: conn, entity: entity, logger: logging.OrDiscard(logger)}
}

// Create inserts doc. Generated id and timestamps are written back into doc.
func (r *Repository[T]) Create(ctx context.Context, doc *T) error {
	tx, err := r.session(ctx)
	if err != nil {
		return r.fail("create", err)
	}
	if err := tx.Create(doc).Error; err != nil {
		return r.fail("create", err)
	}
	return nil
}

// Find returns every document matching q, or an empty slice.
func (r *Repository[T]) Find(ctx context.Context, q Query) ([]T, error) {
	tx, err := r.session(ctx)
	if err != nil {
		return nil, r.fail("find", err)
	}
	if tx, err = q.apply(tx); err != nil {
		return nil, r.fail("find", err)
	}
	docs := []T{}
	if err := tx.Find(&docs).Error; err != nil {
		return nil, r.fail("find", err)
	}
	return docs, nil
}

// FindOne returns the first document matching q.
func (r *Repository[T]) FindOne(ctx context.Context, q Query) (*T, error) {
	tx, err := r.session(ctx)
	if err != nil {
		return nil, r.fail("findOne", err)
	}
	if tx, err = q.apply(tx); err != nil {
		return nil, r.fail("findOne", err)
	}
	var doc T
	if err := tx.First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, r.fail("findOne", err)
	}
	return &doc, nil
}

// FindByID returns the document with the given id.
func (r *Repository[T]) FindByID(ctx context.Context, id string) (*T, error) {
	if err := validateID(id); err != nil {
		return nil, r.fail("findById", err)
	}
	tx, err := r.session(ctx)
	if err != nil {
		return nil, r.fail("findById", err)
	}
	return r.first(tx, "findById", id)
}

// UpdateByID applies patch (column name to value) and returns the updated document.
func (r *Repository[T]) UpdateByID(ctx context.Context, id string, patch map[string]interface{}) (*T, error) {
	if err := validateID(id); err != nil {
		return nil, r.fail("updateById", err)
	}
	tx, err := r.session(ctx)
	if err != nil {
		return nil, r.fail("updateById", err)
	}
	doc, err := r.first(tx, "updateById", id)
	if err != nil || doc == nil {
		return nil, err
	}
	if len(patch) > 0 {
		if err := tx.Model(doc).Updates(patch).Error; err != nil {
			return nil, r.fail("updateById", err)
		}
	}
	return r.first(tx, "updateById", id)
}

// DeleteByID removes the document and returns it as it was before removal.
func (r *Repository[T]) DeleteByID(ctx context.Context, id string) (*T, error) {
	if err := validateID(id); err != nil {
		return nil, r.fail("deleteById", err)
	}
	tx, err := r.session(ctx)
	if err != nil {
		return nil, r.fail("deleteById", err)
	}
	doc, err := r.first(tx, "deleteById", id)
	if err != nil || doc == nil {
		return nil, err
	}
	if err := tx.Delete(doc).Error; err != nil {
		return nil, r.fail("deleteById", err)
	}
	return doc, nil
}

// Count returns how many documents match q.
func (r *Repository[T]) Count(ctx context.Context, q Query) (int64, error) {
	tx, err := r.session(ctx)
	if err != nil {
		return 0, r.fail("count", err)
	}
	if tx, err = q.apply(tx.Model(new(T))); err != nil {
		return 0, r.fail("count", err)
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, r.fail("count", err)
	}
	return n, nil
}

// Save writes the full document, inserting it when it has no row yet.
func (r *Repository[T]) Save(ctx context.Context, doc *T) error {
	tx, err := r.session(ctx)
	if err != nil {
		return r.fail("save", err)
	}
	if err := tx.Save(doc).Error; err != nil {
		return r.fail("save", err)
	}
	return nil
}

func (r *Repository[T]) first(tx *gorm.DB, op, id string) (*T, error) {
	var doc T
	if err := tx.Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, r.fail(op, err)
	}
	return &doc, nil
}

func (r *Repository[T]) session(ctx context.Context) (*gorm.DB, error) {
	gormDB, err := r.conn.DB(ctx)
	if err != nil {
		return nil, err
	}
	return gormDB.WithContext(ctx), nil
}

// fail logs err with the entity and operation, then returns it classified.
func (r *Repository[T]) fail(op string, err error) error {
	err = classify(err)
	r.logger.WithFields(logging.Fields{
		"entity": r.entity,
		"op":     op,
	}).WithError(err).Error("storage operation failed")
	var se *apperrors.StorageError
	if errors.As(err, &se) {
		return err
	}
	return &apperrors.StorageError{Entity: r.entity, Op: op, Err: err}
}

func classify(err error) error {
	switch {
	case errors.Is(err, apperrors.ErrConnection),
		errors.Is(err, apperrors.ErrInvalidID),
		errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrDuplicate):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", apperrors.ErrDuplicate, err)
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, context.DeadlineExceeded),
		isNetError(err):
		return fmt.Errorf("%w: %w", apperrors.ErrConnection, err)
	}
	return err
}

func isNetError(err error) bool {
	var ne net.Error
	return errors.As(err, &ne)
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidID, id)
	}
	return nil
}
