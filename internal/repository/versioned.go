package repository

import (
	"context"

	"devconnector/internal/models"
	"devconnector/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// MaxVersionRetries bounds how often a nested-list mutation is re-applied
// after losing an optimistic concurrency race.
const MaxVersionRetries = 3

// versioned is an aggregate row guarded by a version column.
type versioned interface {
	*models.Post | *models.Profile
}

func versionOf[T versioned](row T) *int {
	switch v := any(row).(type) {
	case *models.Post:
		return &v.Version
	case *models.Profile:
		return &v.Version
	}
	return nil
}

// mutateVersioned loads the row, applies fn and writes columns back only if
// the version is unchanged. A lost race reloads and re-applies fn. Errors
// returned by fn abort the loop unchanged.
func mutateVersioned[T versioned](
	ctx context.Context,
	db *gorm.DB,
	aggregate string,
	columns []string,
	load func(ctx context.Context) (T, error),
	fn func(T) error,
) (T, error) {
	ctx, span := observability.StartSpan(ctx, "repository."+aggregate+".mutate",
		attribute.String("aggregate", aggregate),
	)
	var (
		zero T
		err  error
	)
	defer func() { observability.EndSpan(span, err) }()

	for attempt := 1; attempt <= MaxVersionRetries; attempt++ {
		var row T
		row, err = load(ctx)
		if err != nil {
			return zero, err
		}
		if err = fn(row); err != nil {
			return zero, err
		}

		version := versionOf(row)
		expected := *version
		*version = expected + 1

		res := db.WithContext(ctx).
			Model(row).
			Where("version = ?", expected).
			Select(append(columns, "version")).
			Updates(row)
		if res.Error != nil {
			err = models.NewInternalError(res.Error)
			return zero, err
		}
		if res.RowsAffected > 0 {
			if attempt > 1 {
				observability.VersionConflicts.WithLabelValues(aggregate, "recovered").Inc()
			}
			span.SetAttributes(attribute.Int("attempts", attempt))
			return row, nil
		}
		observability.VersionConflicts.WithLabelValues(aggregate, "retry").Inc()
	}

	observability.VersionConflicts.WithLabelValues(aggregate, "exhausted").Inc()
	err = models.NewConflictError(aggregate)
	return zero, err
}
