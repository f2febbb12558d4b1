package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/regharvest/fedresurs-cli/internal/model"
)

func TestBrowserConfig_Defaults(t *testing.T) {
	cfg := BrowserConfig{}.withDefaults()
	assert.Equal(t, 45*time.Second, cfg.NavTimeout)
	assert.Equal(t, 2*time.Second, cfg.LoadMoreWait)
	assert.Equal(t, 30, cfg.MaxLoadMore)
	assert.Zero(t, cfg.RecycleEvery)
}

func TestClassify(t *testing.T) {
	b := &Browser{}

	tests := []struct {
		name string
		err  error
		want model.FailureKind
	}{
		{"deadline", context.DeadlineExceeded, model.FailTimeout},
		{"chrome net error", errors.New("page load error net::ERR_CONNECTION_RESET"), model.FailNavigation},
		{"navigate failure", errors.New("could not navigate to page"), model.FailNavigation},
		{"websocket drop", errors.New("websocket url timeout reached"), model.FailNavigation},
		{"anything else", errors.New("boom"), model.FailUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := b.classify(tt.err)
			assert.Equal(t, tt.want, fe.Kind)
			assert.ErrorIs(t, fe, tt.err)
		})
	}
}

func TestIsNavigationErr(t *testing.T) {
	assert.True(t, isNavigationErr(errors.New("net::ERR_ABORTED")))
	assert.True(t, isNavigationErr(errors.New("ERR_NAME_NOT_RESOLVED")))
	assert.False(t, isNavigationErr(errors.New("context canceled")))
}
