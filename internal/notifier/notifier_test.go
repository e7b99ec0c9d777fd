package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VRSentinel/internal/model"
)

func testResult() *model.BatchResult {
	target := 120.0
	weekly := 2.5
	upside := 20.0
	return &model.BatchResult{
		Benchmark: "SPY",
		End:       time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC),
		Order:     []string{"AAPL", "NODATA"},
		Results: map[string]model.SymbolResult{
			"AAPL": {
				Symbol:      "AAPL",
				TargetPrice: &target,
				Metrics:     &model.RiskMetrics{Symbol: "AAPL", Benchmark: "SPY", DERI: 1.234567, MEVAR: 1.1, VR: 61.239, SampleSize: 1250},
				Classification: model.Classification{
					DERI: model.ClassModerate, MEVAR: model.ClassAggressive, Overall: model.ClassAggressive,
				},
				Snapshot: &model.PriceSnapshot{Spot: 100, WeeklyChange: &weekly, Upside: &upside,
					ReferenceDate: time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)},
			},
			"NODATA": {
				Symbol: "NODATA",
				Err:    fmt.Errorf("%w: NODATA", model.ErrDataUnavailable),
			},
		},
	}
}

func TestFormatBatchReport(t *testing.T) {
	msg := FormatBatchReport("core <tech>", testResult())

	assert.Contains(t, msg, "core &lt;tech&gt;")
	assert.Contains(t, msg, "scored 1/2")
	assert.Contains(t, msg, "<b>AAPL</b> VR 61.24 | DERI 1.2346 | MEVAR 1.1000 | AGGRESSIVE")
	assert.Contains(t, msg, "(+2.5% vs 06-21)")
	assert.Contains(t, msg, "target +20.0%")
	assert.Contains(t, msg, "<b>NODATA</b> N/A (DATA_UNAVAILABLE)")
	assert.Contains(t, msg, "not scored: DATA_UNAVAILABLE×1")
	assert.Less(t, strings.Index(msg, "AAPL"), strings.Index(msg, "NODATA"), "request order kept")
}

func TestFormatBenchmarkFailure(t *testing.T) {
	msg := FormatBenchmarkFailure("reits", &model.BenchmarkError{Symbol: "VNQ", Err: errors.New("a < b")})
	assert.Contains(t, msg, "benchmark VNQ: a &lt; b")
}

func TestFormatWatchlists(t *testing.T) {
	assert.Equal(t, "no watchlists configured", FormatWatchlists(nil))
	msg := FormatWatchlists(map[string][]string{"reits": {"O", "PLD"}, "core": {"AAPL"}})
	assert.Less(t, strings.Index(msg, "core"), strings.Index(msg, "reits"))
	assert.Contains(t, msg, "reits: O, PLD")
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))
	assert.Equal(t, []string{"aaaa", "bbbb", "cc"}, splitMessage("aaaa\nbbbb\ncc", 6))
	assert.Equal(t, []string{"abcdef", "ghij"}, splitMessage("abcdefghij", 6))
}

func TestSendWithRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "42", payload["chat_id"])
		assert.Equal(t, "HTML", payload["parse_mode"])
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "", zerolog.Nop())
	tn.BaseURL = srv.URL
	require.NoError(t, tn.sendWithRetry(context.Background(), "hello", 2, time.Millisecond))
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestSendWithRetry_Exhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "", zerolog.Nop())
	tn.BaseURL = srv.URL
	err := tn.sendWithRetry(context.Background(), "hello", 1, time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 retries exhausted")
}

func TestPollOnce_DispatchesCommands(t *testing.T) {
	var replies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/botTOKEN/getUpdates":
			assert.Equal(t, "7", r.URL.Query().Get("offset"))
			w.Write([]byte(`{"ok":true,"result":[
				{"update_id":7,"message":{"text":" /vr aapl "}},
				{"update_id":8},
				{"update_id":9,"message":{"text":"/unknown"}}
			]}`))
		case "/botTOKEN/sendMessage":
			var payload map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			replies = append(replies, payload["text"])
			w.Write([]byte(`{"ok":true}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "", zerolog.Nop())
	tn.BaseURL = srv.URL
	var seen []string
	next, err := tn.pollOnce(context.Background(), srv.Client(), 7, func(_ context.Context, cmd string) string {
		seen = append(seen, cmd)
		if strings.HasPrefix(cmd, "/vr") {
			return "scored"
		}
		return ""
	})
	require.NoError(t, err)
	assert.Equal(t, 10, next)
	assert.Equal(t, []string{"/vr aapl", "/unknown"}, seen)
	assert.Equal(t, []string{"scored"}, replies)
}
