package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/atango/internal/db"
)

// CreateIndex issues FT.CREATE for a reply index over hashes.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := createArgs(def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// DropIndex removes the index. The reply hashes stay.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	cmd := s.b().Arbitrary("FT.DROPINDEX").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	return nil
}

// IndexExists probes FT.INFO.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

func createArgs(def *db.IndexDefinition) ([]string, error) {
	if def == nil {
		return nil, errors.New("index definition is required")
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	args := []string{def.Name, "ON", "HASH", "PREFIX", "1", def.Prefix, "SCHEMA"}
	for _, f := range def.Fields {
		fa, err := fieldArgs(f)
		if err != nil {
			return nil, err
		}
		args = append(args, fa...)
	}
	return args, nil
}

func fieldArgs(f db.IndexField) ([]string, error) {
	switch f.Kind {
	case db.FieldSearchable:
		if f.Weight > 0 {
			return []string{f.Name, "TEXT", "WEIGHT", strconv.FormatFloat(f.Weight, 'g', -1, 64)}, nil
		}
		return []string{f.Name, "TEXT"}, nil
	case db.FieldStored:
		return []string{f.Name, "TEXT", "NOINDEX"}, nil
	case db.FieldRanked:
		return []string{f.Name, "NUMERIC", "SORTABLE"}, nil
	default:
		return nil, fmt.Errorf("field %s: unknown kind %d", f.Name, int(f.Kind))
	}
}
