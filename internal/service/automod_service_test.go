package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/moderation-backend/internal/models"
)

func TestAutomodService_Analyze_CleanText(t *testing.T) {
	svc := NewAutomodService(DefaultAutomodTerms())

	verdict, err := svc.Analyze(context.Background(), "Just a normal post about my cat.")

	assert.NoError(t, err)
	assert.Equal(t, models.ActionNoAction, verdict.SuggestedAction)
	assert.Equal(t, 0, verdict.Score)
	assert.Empty(t, verdict.Matches)
}

func TestAutomodService_Analyze_EmptyText(t *testing.T) {
	svc := NewAutomodService(DefaultAutomodTerms())

	verdict, err := svc.Analyze(context.Background(), "   \n\t")

	assert.NoError(t, err)
	assert.Equal(t, models.ActionNoAction, verdict.SuggestedAction)
}

func TestAutomodService_Analyze_RestrictThreshold(t *testing.T) {
	svc := NewAutomodService(DefaultAutomodTerms())

	// scam (5) — ровно порог ограничения видимости.
	verdict, err := svc.Analyze(context.Background(), "This looks like a SCAM to me")

	assert.NoError(t, err)
	assert.Equal(t, models.ActionRestrictedVisibility, verdict.SuggestedAction)
	assert.Equal(t, 5, verdict.Score)
	assert.Len(t, verdict.Matches, 1)
	assert.Equal(t, "scam", verdict.Matches[0].Term)
}

func TestAutomodService_Analyze_RejectThreshold(t *testing.T) {
	svc := NewAutomodService(DefaultAutomodTerms())

	// phishing (8) + click here (2) = 10.
	verdict, err := svc.Analyze(context.Background(), "Phishing alert: click here now")

	assert.NoError(t, err)
	assert.Equal(t, models.ActionRejected, verdict.SuggestedAction)
	assert.Equal(t, 10, verdict.Score)
	assert.Len(t, verdict.Matches, 2)
	// Совпадения отсортированы по убыванию веса.
	assert.Equal(t, "phishing", verdict.Matches[0].Term)
	assert.Equal(t, "click here", verdict.Matches[1].Term)
}

func TestAutomodService_Analyze_CountsRepeats(t *testing.T) {
	svc := NewAutomodService(map[string]int{"spam": 3})

	verdict, err := svc.Analyze(context.Background(), "spam spam spam spam")

	assert.NoError(t, err)
	assert.Equal(t, 12, verdict.Score)
	assert.Equal(t, 4, verdict.Matches[0].Count)
	assert.Equal(t, models.ActionRejected, verdict.SuggestedAction)
}

func TestAutomodService_NormalizesDictionary(t *testing.T) {
	svc := NewAutomodService(map[string]int{
		"  SPAM ": 3,
		"":        5,
		"junk":    0,
	})

	verdict, err := svc.Analyze(context.Background(), "spam and junk")

	assert.NoError(t, err)
	assert.Len(t, verdict.Matches, 1)
	assert.Equal(t, "spam", verdict.Matches[0].Term)
}

func TestAutomodService_Analyze_CancelledContext(t *testing.T) {
	svc := NewAutomodService(DefaultAutomodTerms())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Analyze(ctx, "spam")
	assert.ErrorIs(t, err, context.Canceled)
}
