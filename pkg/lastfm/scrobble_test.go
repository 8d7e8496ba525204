package lastfm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestScrobbleService_Scrobble tests the Scrobble method (single scrobble).
func TestScrobbleService_Scrobble(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Parse form data
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}

		// Verify method
		if method := r.FormValue("method"); method != "track.scrobble" {
			t.Errorf("expected method track.scrobble, got %s", method)
		}

		// Verify batch parameters (single scrobble uses [0] index)
		if artist := r.FormValue("artist[0]"); artist != "Beck" {
			t.Errorf("expected artist[0] Beck, got %s", artist)
		}
		if track := r.FormValue("track[0]"); track != "Loser" {
			t.Errorf("expected track[0] Loser, got %s", track)
		}
		if timestamp := r.FormValue("timestamp[0]"); timestamp == "" {
			t.Error("expected timestamp[0] to be present")
		}

		response := `<?xml version="1.0" encoding="utf-8"?>
<lfm status="ok">
	<scrobbles accepted="1" ignored="0">
		<scrobble>
			<artist corrected="0">Beck</artist>
			<track corrected="0">Loser</track>
			<album corrected="0">Mellow Gold</album>
			<timestamp>1234567890</timestamp>
		</scrobble>
	</scrobbles>
</lfm>`
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(response)); err != nil {
			t.Fatalf("failed to write response body: %v", err)
		}
	}))
	defer server.Close()

	client, err := NewClient(Config{
		APIKey:     "test-api-key",
		APISecret:  "test-secret",
		SessionKey: "test-session-key",
		BaseURL:    server.URL,
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	ctx := context.Background()
	track := Track{
		Artist: "Beck",
		Track:  "Loser",
		Album:  "Mellow Gold",
	}
	timestamp := time.Now()

	resp, err := client.Scrobble().Scrobble(ctx, track, timestamp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Accepted != 1 {
		t.Errorf("expected accepted 1, got %d", resp.Accepted)
	}
	if resp.Ignored != 0 {
		t.Errorf("expected ignored 0, got %d", resp.Ignored)
	}
}

// TestScrobbleService_ScrobbleBatch tests the ScrobbleBatch method.
func TestScrobbleService_ScrobbleBatch(t *testing.T) {
	tests := []struct {
		name         string
		response     string
		statusCode   int
		scrobbles    []Scrobble
		wantAccepted int
		wantIgnored  int
		wantErr      bool
		errContains  string
	}{
		{
			name: "success - multiple scrobbles",
			response: `<?xml version="1.0" encoding="utf-8"?>
<lfm status="ok">
	<scrobbles accepted="2" ignored="0">
		<scrobble>
			<artist corrected="0">Beck</artist>
			<track corrected="0">Loser</track>
			<album corrected="0">Mellow Gold</album>
			<timestamp>1234567890</timestamp>
		</scrobble>
		<scrobble>
			<artist corrected="0">Beck</artist>
			<track corrected="0">Devils Haircut</track>
			<album corrected="0">Odelay</album>
			<timestamp>1234567950</timestamp>
		</scrobble>
	</scrobbles>
</lfm>`,
			statusCode: http.StatusOK,
			scrobbles: []Scrobble{
				{
					Track: Track{
						Artist: "Beck",
						Track:  "Loser",
						Album:  "Mellow Gold",
					},
					Timestamp: time.Unix(1234567890, 0),
				},
				{
					Track: Track{
						Artist: "Beck",
						Track:  "Devils Haircut",
						Album:  "Odelay",
					},
					Timestamp: time.Unix(1234567950, 0),
				},
			},
			wantAccepted: 2,
			wantIgnored:  0,
			wantErr:      false,
		},
		{
			name: "ignored scrobble",
			response: `<?xml version="1.0" encoding="utf-8"?>
<lfm status="ok">
	<scrobbles accepted="0" ignored="1">
		<scrobble>
			<artist corrected="0">Beck</artist>
			<track corrected="0">Loser</track>
			<timestamp>1</timestamp>
			<ignoredMessage code="3">Timestamp too old</ignoredMessage>
		</scrobble>
	</scrobbles>
</lfm>`,
			statusCode: http.StatusOK,
			scrobbles: []Scrobble{
				{
					Track:     Track{Artist: "Beck", Track: "Loser"},
					Timestamp: time.Unix(1, 0),
				},
			},
			wantAccepted: 0,
			wantIgnored:  1,
			wantErr:      false,
		},
		{
			name:         "empty batch",
			scrobbles:    []Scrobble{},
			wantAccepted: 0,
			wantIgnored:  0,
			wantErr:      false,
		},
		{
			name: "api error - invalid api key",
			response: `<?xml version="1.0" encoding="utf-8"?>
<lfm status="failed">
	<error code="10">Invalid API key</error>
</lfm>`,
			statusCode: http.StatusOK,
			scrobbles: []Scrobble{
				{
					Track:     Track{Artist: "Beck", Track: "Loser"},
					Timestamp: time.Unix(1234567890, 0),
				},
			},
			wantErr:     true,
			errContains: "error 10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Handle empty batch case (no server needed)
			if len(tt.scrobbles) == 0 {
				client, err := NewClient(Config{
					APIKey:     "test-api-key",
					APISecret:  "test-secret",
					SessionKey: "test-session-key",
				})
				if err != nil {
					t.Fatalf("failed to create client: %v", err)
				}

				ctx := context.Background()
				resp, err := client.Scrobble().ScrobbleBatch(ctx, tt.scrobbles)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if resp.Accepted != 0 || resp.Ignored != 0 {
					t.Errorf("expected empty response, got accepted=%d ignored=%d", resp.Accepted, resp.Ignored)
				}
				return
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				// Parse form data
				if err := r.ParseForm(); err != nil {
					t.Fatalf("failed to parse form: %v", err)
				}

				// Verify method
				if method := r.FormValue("method"); method != "track.scrobble" {
					t.Errorf("expected method track.scrobble, got %s", method)
				}

				// Verify batch parameters
				for i, scrobble := range tt.scrobbles {
					idx := fmt.Sprintf("[%d]", i)
					if artist := r.FormValue("artist" + idx); artist != scrobble.Track.Artist {
						t.Errorf("expected artist%s %s, got %s", idx, scrobble.Track.Artist, artist)
					}
					if track := r.FormValue("track" + idx); track != scrobble.Track.Track {
						t.Errorf("expected track%s %s, got %s", idx, scrobble.Track.Track, track)
					}
					expectedTimestamp := fmt.Sprintf("%d", scrobble.Timestamp.Unix())
					if timestamp := r.FormValue("timestamp" + idx); timestamp != expectedTimestamp {
						t.Errorf("expected timestamp%s %s, got %s", idx, expectedTimestamp, timestamp)
					}
				}

				w.WriteHeader(tt.statusCode)
				if _, err := w.Write([]byte(tt.response)); err != nil {
					t.Fatalf("failed to write response body: %v", err)
				}
			}))
			defer server.Close()

			client, err := NewClient(Config{
				APIKey:     "test-api-key",
				APISecret:  "test-secret",
				SessionKey: "test-session-key",
				BaseURL:    server.URL,
			})
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}

			ctx := context.Background()
			resp, err := client.Scrobble().ScrobbleBatch(ctx, tt.scrobbles)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("expected error to contain %q, got %v", tt.errContains, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if resp.Accepted != tt.wantAccepted {
				t.Errorf("expected accepted %d, got %d", tt.wantAccepted, resp.Accepted)
			}
			if resp.Ignored != tt.wantIgnored {
				t.Errorf("expected ignored %d, got %d", tt.wantIgnored, resp.Ignored)
			}
		})
	}
}

// TestScrobbleService_ScrobbleBatch_MaxBatchSize tests that batch size is limited to 50.
func TestScrobbleService_ScrobbleBatch_MaxBatchSize(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++

		// Parse form data
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}

		// Count how many scrobbles were sent
		count := 0
		for i := 0; i < 100; i++ {
			if r.FormValue(fmt.Sprintf("artist[%d]", i)) != "" {
				count++
			}
		}

		if count != MaxBatchSize {
			t.Errorf("expected %d scrobbles in batch, got %d", MaxBatchSize, count)
		}

		response := `<?xml version="1.0" encoding="utf-8"?>
<lfm status="ok">
	<scrobbles accepted="50" ignored="0">
	</scrobbles>
</lfm>`
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(response)); err != nil {
			t.Fatalf("failed to write response body: %v", err)
		}
	}))
	defer server.Close()

	client, err := NewClient(Config{
		APIKey:     "test-api-key",
		APISecret:  "test-secret",
		SessionKey: "test-session-key",
		BaseURL:    server.URL,
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	// Create 60 scrobbles (more than max)
	scrobbles := make([]Scrobble, 60)
	for i := range scrobbles {
		scrobbles[i] = Scrobble{
			Track: Track{
				Artist: fmt.Sprintf("Artist %d", i),
				Track:  fmt.Sprintf("Track %d", i),
			},
			Timestamp: time.Now(),
		}
	}

	ctx := context.Background()
	resp, err := client.Scrobble().ScrobbleBatch(ctx, scrobbles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Accepted != MaxBatchSize {
		t.Errorf("expected accepted %d, got %d", MaxBatchSize, resp.Accepted)
	}

	if requestCount != 1 {
		t.Errorf("expected 1 request, got %d", requestCount)
	}
}

// TestScrobbleService_NoSessionKey tests that scrobbling requires a session key.
func TestScrobbleService_NoSessionKey(t *testing.T) {
	client, err := NewClient(Config{
		APIKey:    "test-api-key",
		APISecret: "test-secret",
		// No session key
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	ctx := context.Background()
	track := Track{
		Artist: "Beck",
		Track:  "Loser",
	}

	// Test Scrobble
	_, err = client.Scrobble().Scrobble(ctx, track, time.Now())
	if err == nil {
		t.Error("expected error for Scrobble without session key, got nil")
	}
	if !strings.Contains(err.Error(), "session key required") {
		t.Errorf("expected error to contain 'session key required', got %v", err)
	}

	// Test ScrobbleBatch
	_, err = client.Scrobble().ScrobbleBatch(ctx, []Scrobble{{Track: track, Timestamp: time.Now()}})
	if err == nil {
		t.Error("expected error for ScrobbleBatch without session key, got nil")
	}
	if !strings.Contains(err.Error(), "session key required") {
		t.Errorf("expected error to contain 'session key required', got %v", err)
	}
}

// TestScrobbleService_ContextCancellation tests context cancellation.
func TestScrobbleService_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Simulate slow server
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`<lfm status="ok"><scrobbles accepted="1" ignored="0"></scrobbles></lfm>`)); err != nil {
			t.Fatalf("failed to write response body: %v", err)
		}
	}))
	defer server.Close()

	client, err := NewClient(Config{
		APIKey:     "test-api-key",
		APISecret:  "test-secret",
		SessionKey: "test-session-key",
		BaseURL:    server.URL,
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	track := Track{
		Artist: "Beck",
		Track:  "Loser",
	}

	_, err = client.Scrobble().Scrobble(ctx, track, time.Now())
	if err == nil {
		t.Error("expected error for cancelled context, got nil")
	}
	if !strings.Contains(err.Error(), "context") {
		t.Errorf("expected context error, got %v", err)
	}
}
