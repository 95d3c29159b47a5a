package analytics

import (
	"context"
	"strings"
)

// Cache keeps computed Results per student, stamped with the student's generation.
// Invalidate bumps the generation, so entries stored under an older one are never served again,
// even when they are written after the invalidation (a compute racing a write).
// Entries expire on their own; nothing extends the lifetime of an existing entry.
type Cache interface {
	// Generation returns the student's current generation; read it before computing.
	Generation(ctx context.Context, studentID string) (int64, error)
	// Get decodes the entry stored under gen into dst; ok is false on a miss.
	Get(ctx context.Context, studentID string, gen int64, key string, dst interface{}) (ok bool, err error)
	Set(ctx context.Context, studentID string, gen int64, key string, value interface{}) error
	// Invalidate bumps the generation of the given students.
	Invalidate(ctx context.Context, studentIDs ...string) error
}

// Cacheable reports whether results of kind can round trip through a Cache.
// Progress series are cheap to rebuild and keep their points unexported, so they are never cached.
func Cacheable(kind Kind) bool {
	return kind.Valid() && kind != KindProgressSeries
}

// CacheKey identifies a Compute call within a student's entries.
func CacheKey(kind Kind, opts Options) string {
	parts := []string{string(kind)}
	switch kind {
	case KindSubjectAverage:
		parts = append(parts, string(opts.Subject))
	case KindWeeklyAttendance:
		base := opts.Base
		if base.IsZero() {
			base = TodayFunc()
		}
		parts = append(parts, WeekOf(base)[0].String())
	}
	return strings.Join(parts, ":")
}

type nopCache struct{}

// NopCache never hits.
func NopCache() Cache { return nopCache{} }

func (nopCache) Generation(context.Context, string) (int64, error) { return 0, nil }
func (nopCache) Get(context.Context, string, int64, string, interface{}) (bool, error) {
	return false, nil
}
func (nopCache) Set(context.Context, string, int64, string, interface{}) error { return nil }
func (nopCache) Invalidate(context.Context, ...string) error                  { return nil }
