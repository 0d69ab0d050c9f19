package service

import (
	"context"
	"sort"
	"strings"

	"github.com/ignatzorin/moderation-backend/internal/models"
)

// AutomodMatch — сработавшее правило автоматической проверки.
type AutomodMatch struct {
	Term     string `json:"term"`
	Count    int    `json:"count"`
	Severity int    `json:"severity"`
}

// AutomodVerdict — итог автоматической проверки текста: рекомендуемое
// действие и список сработавших правил. Вердикт носит рекомендательный
// характер, финальное решение за модератором.
type AutomodVerdict struct {
	SuggestedAction models.ModerationAction `json:"suggested_action"`
	Score           int                     `json:"score"`
	Matches         []AutomodMatch          `json:"matches"`
}

// Пороги суммарного веса сработавших правил.
const (
	automodRejectThreshold   = 10
	automodRestrictThreshold = 5
)

// AutomodService — эвристическая предпроверка текста перед ручной
// модерацией: словарь терминов с весами, без внешних вызовов.
type AutomodService struct {
	terms map[string]int
}

// NewAutomodService создаёт сервис с переданным словарём. Ключи
// приводятся к нижнему регистру.
func NewAutomodService(terms map[string]int) *AutomodService {
	normalized := make(map[string]int, len(terms))
	for term, severity := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" || severity <= 0 {
			continue
		}
		normalized[term] = severity
	}
	return &AutomodService{terms: normalized}
}

// DefaultAutomodTerms — стартовый словарь. Операторы заменяют его
// своим через конфигурацию.
func DefaultAutomodTerms() map[string]int {
	return map[string]int{
		"spam":       3,
		"scam":       5,
		"phishing":   8,
		"free money": 5,
		"click here": 2,
	}
}

// Analyze прогоняет текст по словарю и возвращает вердикт.
// Пустой текст и текст без совпадений получают NO_ACTION.
func (s *AutomodService) Analyze(ctx context.Context, text string) (*AutomodVerdict, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	verdict := &AutomodVerdict{SuggestedAction: models.ActionNoAction}

	lowered := strings.ToLower(text)
	if strings.TrimSpace(lowered) == "" {
		return verdict, nil
	}

	for term, severity := range s.terms {
		count := strings.Count(lowered, term)
		if count == 0 {
			continue
		}
		verdict.Matches = append(verdict.Matches, AutomodMatch{
			Term:     term,
			Count:    count,
			Severity: severity,
		})
		verdict.Score += count * severity
	}

	sort.Slice(verdict.Matches, func(i, j int) bool {
		if verdict.Matches[i].Severity != verdict.Matches[j].Severity {
			return verdict.Matches[i].Severity > verdict.Matches[j].Severity
		}
		return verdict.Matches[i].Term < verdict.Matches[j].Term
	})

	switch {
	case verdict.Score >= automodRejectThreshold:
		verdict.SuggestedAction = models.ActionRejected
	case verdict.Score >= automodRestrictThreshold:
		verdict.SuggestedAction = models.ActionRestrictedVisibility
	}

	return verdict, nil
}
