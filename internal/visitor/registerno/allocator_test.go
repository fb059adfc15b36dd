package registerno

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "visitorreg/pkg/domain-errors"
)

// issuedSource is an in-test Source backed by a slice of issued numbers.
type issuedSource struct {
	issued []string
	err    error
}

func (s *issuedSource) PeekLatestRegisterNo(_ context.Context, dayPrefix string) (string, bool, error) {
	if s.err != nil {
		return "", false, s.err
	}
	latest, found := "", false
	for _, no := range s.issued {
		if strings.HasPrefix(no, dayPrefix) && no > latest {
			latest, found = no, true
		}
	}
	return latest, found, nil
}

func TestAllocate_SequentialWithinDay(t *testing.T) {
	ctx := context.Background()
	src := &issuedSource{}
	a := New(src, WithLocation(time.UTC))
	day := time.Date(2026, 2, 4, 8, 30, 0, 0, time.UTC)

	for i, want := range []string{"V202602040001", "V202602040002", "V202602040003"} {
		got, err := a.Allocate(ctx, day.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, want, got)
		src.issued = append(src.issued, got)
	}

	next, err := a.Allocate(ctx, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, "V202602050001", next, "new day resets the sequence")
}

func TestAllocate_UsesConfiguredLocation(t *testing.T) {
	taipei := time.FixedZone("UTC+8", 8*60*60)
	a := New(&issuedSource{}, WithLocation(taipei))

	// 20:00 UTC on Feb 3 is already Feb 4 in UTC+8.
	got, err := a.Allocate(context.Background(), time.Date(2026, 2, 3, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "V202602040001", got)
}

func TestAllocate_CorruptSuffixRestartsAtOne(t *testing.T) {
	a := New(&issuedSource{issued: []string{"V20260204ABCD"}}, WithLocation(time.UTC))
	got, err := a.Allocate(context.Background(), time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "V202602040001", got)
}

func TestAllocate_Exhausted(t *testing.T) {
	a := New(&issuedSource{issued: []string{"V202602049999"}}, WithLocation(time.UTC))
	_, err := a.Allocate(context.Background(), time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestAllocate_SourceError(t *testing.T) {
	a := New(&issuedSource{err: errors.New("db down")})
	_, err := a.Allocate(context.Background(), time.Now())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestNext(t *testing.T) {
	assert.Equal(t, 2, Next("V202602040001", "V20260204"))
	assert.Equal(t, 100, Next("V202602040099", "V20260204"))
	assert.Equal(t, 1, Next("V20260204", "V20260204"))
	assert.Equal(t, 1, Next("V20260204-12", "V20260204"))
}
