//go:build integration
// +build integration

package testinfra

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

type TestSuite struct {
	Postgres   *PostgresContainer
	Kafka      *KafkaContainer
	Opensearch *OpensearchContainer
}

type SuiteOptions struct {
	WithKafka      bool
	WithOpensearch bool
}

// NewTestSuite starts the requested containers in parallel.
// Postgres is always started.
func NewTestSuite(ctx context.Context, opts SuiteOptions) (*TestSuite, error) {
	suite := &TestSuite{}
	var g errgroup.Group
	var errs [3]error

	g.Go(func() error {
		suite.Postgres, errs[0] = NewPostgres(ctx)
		return nil
	})
	if opts.WithKafka {
		g.Go(func() error {
			suite.Kafka, errs[1] = NewKafka(ctx)
			return nil
		})
	}
	if opts.WithOpensearch {
		g.Go(func() error {
			suite.Opensearch, errs[2] = NewOpensearch(ctx)
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(errs[:]...); err != nil {
		suite.Cleanup(ctx)
		return nil, fmt.Errorf("failed to start containers: %w", err)
	}
	return suite, nil
}

func (s *TestSuite) Cleanup(ctx context.Context) {
	if s.Opensearch != nil {
		s.Opensearch.Cleanup(ctx)
	}
	if s.Kafka != nil {
		s.Kafka.Cleanup(ctx)
	}
	if s.Postgres != nil {
		s.Postgres.Cleanup(ctx)
	}
}
