package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/podsage/podsage/engine/domain"
	"github.com/podsage/podsage/pkg/resilience"
)

func TestAskErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrEmptyQuery, http.StatusBadRequest},
		{domain.ErrQueryTooLong, http.StatusBadRequest},
		{fmt.Errorf("rag: %w", domain.ErrIndexUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("openai: %w", domain.ErrRateLimited), http.StatusTooManyRequests},
		{domain.ErrGenerationService, http.StatusBadGateway},
		{resilience.ErrCircuitOpen, http.StatusBadGateway},
		{fmt.Errorf("something else"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got, _ := askErrorStatus(tc.err); got != tc.want {
			t.Errorf("askErrorStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
