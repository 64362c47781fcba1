package baas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/frahmantamala/campus-resources/internal"
	"github.com/frahmantamala/campus-resources/internal/resource"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// TokenSource yields the signed-in session token. session.Store satisfies it.
type TokenSource interface {
	Token() (string, error)
}

// Table queries one hosted table directly with row-level
// select/insert/update/delete and eq/in filters. R is the row model,
// T the record handed to the rest of the application. Every call needs a
// session token and fails before touching the database without one.
type Table[T any, R any] struct {
	db       *gorm.DB
	tokens   TokenSource
	schema   *schema.Schema
	toRecord func(R) T
	logger   *slog.Logger
}

func NewTable[T any, R any](db *gorm.DB, tokens TokenSource, toRecord func(R) T, logger *slog.Logger) (*Table[T, R], error) {
	sch, err := schema.Parse(new(R), &sync.Map{}, db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("failed to parse row schema: %w", err)
	}
	return &Table[T, R]{
		db:       db,
		tokens:   tokens,
		schema:   sch,
		toRecord: toRecord,
		logger:   logger.With("table", sch.Table),
	}, nil
}

func (t *Table[T, R]) List(ctx context.Context, params resource.ListParams) (resource.Page[T], error) {
	if err := t.authorize(); err != nil {
		return resource.Page[T]{}, err
	}
	params = params.Normalize()

	filters, err := t.eqFilters(params.Filters)
	if err != nil {
		return resource.Page[T]{}, err
	}

	var total int64
	if err := t.db.WithContext(ctx).Model(new(R)).Scopes(filters).Count(&total).Error; err != nil {
		return resource.Page[T]{}, err
	}

	var rows []R
	err = t.db.WithContext(ctx).
		Scopes(filters).
		Order("id ASC").
		Offset(params.Offset()).
		Limit(params.PageSize).
		Find(&rows).Error
	if err != nil {
		return resource.Page[T]{}, err
	}

	data := make([]T, len(rows))
	for i, row := range rows {
		data[i] = t.toRecord(row)
	}

	return resource.Page[T]{
		Data:       data,
		Total:      int(total),
		Page:       params.Page,
		TotalPages: resource.TotalPages(int(total), params.PageSize),
	}, nil
}

func (t *Table[T, R]) Create(ctx context.Context, payload resource.Payload) (T, error) {
	var zero T
	if err := t.authorize(); err != nil {
		return zero, err
	}
	row, err := decodeRow[R](payload)
	if err != nil {
		return zero, err
	}
	if err := t.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return zero, err
	}
	return t.toRecord(row), nil
}

func (t *Table[T, R]) Update(ctx context.Context, id int64, payload resource.Payload) (T, error) {
	var zero T
	if err := t.authorize(); err != nil {
		return zero, err
	}
	columns, err := t.columns(ctx, payload)
	if err != nil {
		return zero, err
	}

	err = t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row R
		if err := tx.First(&row, "id = ?", id).Error; err != nil {
			return err
		}
		if len(columns) > 0 {
			if err := tx.Model(new(R)).Where("id = ?", id).Updates(columns).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return zero, internal.NewNotFoundError(fmt.Sprintf("%s %d not found", t.schema.Table, id), internal.ErrCodeRecordNotFound)
	}
	if err != nil {
		return zero, err
	}

	var row R
	if err := t.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return zero, err
	}
	return t.toRecord(row), nil
}

func (t *Table[T, R]) Delete(ctx context.Context, ids []int64) error {
	if err := t.authorize(); err != nil {
		return err
	}
	return t.db.WithContext(ctx).Where("id IN ?", ids).Delete(new(R)).Error
}

func (t *Table[T, R]) BulkUpdateStatus(ctx context.Context, ids []int64, status string) error {
	if err := t.authorize(); err != nil {
		return err
	}
	if t.schema.LookUpField("status") == nil {
		return internal.NewValidationError(fmt.Sprintf("%s has no status column", t.schema.Table), internal.ErrCodeUnknownField)
	}
	return t.db.WithContext(ctx).Model(new(R)).Where("id IN ?", ids).Update("status", status).Error
}

func (t *Table[T, R]) BulkCreate(ctx context.Context, items []resource.Payload) (int, error) {
	if err := t.authorize(); err != nil {
		return 0, err
	}
	rows := make([]R, 0, len(items))
	for _, item := range items {
		row, err := decodeRow[R](item)
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}
	if err := t.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (t *Table[T, R]) authorize() error {
	_, err := t.tokens.Token()
	return err
}

// eqFilters only accepts known columns so filter keys never reach SQL unchecked.
func (t *Table[T, R]) eqFilters(filters map[string]string) (func(*gorm.DB) *gorm.DB, error) {
	conds := make([]clause.Expression, 0, len(filters))
	for key, value := range filters {
		if value == "" {
			continue
		}
		field := t.schema.LookUpField(key)
		if field == nil || field.DBName == "" {
			return nil, internal.NewValidationFieldError(key, fmt.Sprintf("cannot filter %s by %s", t.schema.Table, key), internal.ErrCodeUnknownField)
		}
		conds = append(conds, clause.Eq{Column: clause.Column{Name: field.DBName}, Value: value})
	}
	return func(db *gorm.DB) *gorm.DB {
		if len(conds) == 0 {
			return db
		}
		return db.Clauses(clause.Where{Exprs: conds})
	}, nil
}

// columns maps payload keys to typed column values, dropping the primary key
// and anything the row does not have.
func (t *Table[T, R]) columns(ctx context.Context, payload resource.Payload) (map[string]any, error) {
	row, err := decodeRow[R](payload)
	if err != nil {
		return nil, err
	}
	value := reflect.ValueOf(&row).Elem()

	columns := make(map[string]any, len(payload))
	for key := range payload {
		field := t.schema.LookUpField(key)
		if field == nil || field.DBName == "" || field.PrimaryKey {
			t.logger.Debug("ignoring payload key", "key", key)
			continue
		}
		columns[field.DBName] = field.ReflectValueOf(ctx, value).Interface()
	}
	return columns, nil
}

func decodeRow[R any](payload resource.Payload) (R, error) {
	var row R
	data, err := json.Marshal(payload)
	if err != nil {
		return row, fmt.Errorf("failed to encode payload: %w", err)
	}
	if err := json.Unmarshal(data, &row); err != nil {
		return row, internal.NewValidationError(fmt.Sprintf("payload does not match record shape: %v", err), internal.ErrCodeInvalidValue)
	}
	return row, nil
}
