package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sseServer(t *testing.T, lines []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n\n", line)
		}
	}))
}

func TestStreamClient_DeliversEvents(t *testing.T) {
	server := sseServer(t, []string{
		`data: {"status": "Starting...", "step": "init"}`,
		`data: {"status": "Done!", "step": "complete", "result": {"name": "Acme"}}`,
	})
	defer server.Close()

	client := NewStreamClient(server.URL, 0, zap.NewNop())

	var events []Event
	err := client.Stream(context.Background(), "/stream-brand-info", map[string]string{"brandName": "Acme"}, func(e Event) {
		events = append(events, e)
	})

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "init", events[0].Step)
	assert.Equal(t, "complete", events[1].Step)
	assert.JSONEq(t, `{"name": "Acme"}`, string(events[1].Result))
}

func TestStreamClient_SkipsMalformedLines(t *testing.T) {
	server := sseServer(t, []string{
		`data: {"step": "init"}`,
		`data: {not json`,
		`: comment line without prefix`,
		`data: {"step": "complete", "result": {}}`,
	})
	defer server.Close()

	client := NewStreamClient(server.URL, 0, zap.NewNop())

	var steps []string
	err := client.Stream(context.Background(), "/x", nil, func(e Event) {
		steps = append(steps, e.Step)
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"init", "complete"}, steps)
}

func TestStreamClient_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewStreamClient(server.URL, 0, zap.NewNop())

	err := client.Stream(context.Background(), "/x", nil, func(Event) {
		t.Fatal("no events expected")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestStreamClient_UnreachableService(t *testing.T) {
	client := NewStreamClient("http://127.0.0.1:1", 0, zap.NewNop())

	err := client.Stream(context.Background(), "/x", nil, func(Event) {})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to reach analysis service")
}

func TestParseEventLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantOK  bool
		wantErr bool
		want    Event
	}{
		{
			name:   "full event",
			line:   `data: {"error": "", "status": "working", "step": "init", "progress": 10}`,
			wantOK: true,
			want:   Event{Status: "working", Step: "init", Progress: floatPtr(10)},
		},
		{
			name:   "not an event line",
			line:   "retry: 3000",
			wantOK: false,
		},
		{
			name:    "malformed payload",
			line:    "data: {broken",
			wantOK:  true,
			wantErr: true,
		},
		{
			name:   "error event",
			line:   `data: {"error": "boom"}`,
			wantOK: true,
			want:   Event{Error: "boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, ok, err := parseEventLine(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantOK {
				assert.Equal(t, tt.want.Error, event.Error)
				assert.Equal(t, tt.want.Status, event.Status)
				assert.Equal(t, tt.want.Step, event.Step)
				if tt.want.Progress != nil {
					require.NotNil(t, event.Progress)
					assert.Equal(t, *tt.want.Progress, *event.Progress)
				}
			}
		})
	}
}

func TestEventRoundTrip(t *testing.T) {
	raw := `{"status": "ok", "step": "complete", "progress": 100, "result": {"queries": []}}`

	var event Event
	require.NoError(t, json.Unmarshal([]byte(raw), &event))
	assert.Equal(t, "complete", event.Step)
	require.NotNil(t, event.Progress)
	assert.Equal(t, 100.0, *event.Progress)
}
