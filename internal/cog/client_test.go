package cog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"terrain-desktop/internal/cache"
	"terrain-desktop/internal/common"
	"terrain-desktop/internal/export"
	"terrain-desktop/internal/ratelimit"
)

const footprintInfo = `{
  "type": "Feature",
  "geometry": {
    "type": "Polygon",
    "coordinates": [[[7.5,45.8],[7.9,45.8],[7.9,46.1],[7.5,46.1],[7.5,45.8]]]
  },
  "properties": {"bounds": [2600000, 1080000, 2630000, 1110000]}
}`

func TestParseInfo(t *testing.T) {
	tests := []struct {
		name string
		data string
		want common.Bounds
	}{
		{
			name: "bbox",
			data: `{"type":"Feature","bbox":[1,2,3,4],"geometry":null,"properties":{}}`,
			want: common.Bounds{West: 1, South: 2, East: 3, North: 4},
		},
		{
			name: "geometry",
			data: footprintInfo,
			want: common.Bounds{West: 7.5, South: 45.8, East: 7.9, North: 46.1},
		},
		{
			name: "properties bounds",
			data: `{"type":"Feature","geometry":null,"properties":{"bounds":[-10,-5,10,5]}}`,
			want: common.Bounds{West: -10, South: -5, East: 10, North: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInfo([]byte(tt.data))
			if err != nil {
				t.Fatalf("ParseInfo: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseInfoNoBounds(t *testing.T) {
	_, err := ParseInfo([]byte(`{"type":"Feature","geometry":null,"properties":{"name":"x"}}`))
	if !errors.Is(err, ErrNoBounds) {
		t.Errorf("err = %v, want ErrNoBounds", err)
	}
}

func TestClientBoundsCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/cog/info.geojson" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("url") != "s3://bucket/dem.tif" {
			http.Error(w, "bad url", http.StatusBadRequest)
			return
		}
		w.Write([]byte(footprintInfo))
	}))
	defer srv.Close()

	bc, err := cache.NewBoundsCache("", nil)
	if err != nil {
		t.Fatal(err)
	}
	c := NewClient(srv.URL+"/", bc, time.Second)

	for i := 0; i < 3; i++ {
		b, err := c.Bounds(context.Background(), "s3://bucket/dem.tif")
		if err != nil {
			t.Fatalf("Bounds: %v", err)
		}
		if b.West != 7.5 || b.North != 46.1 {
			t.Errorf("bounds = %v", b)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("server hits = %d, want 1", hits.Load())
	}
}

func TestClientBoundsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, time.Second)
	if _, err := c.Bounds(context.Background(), "x.tif"); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestClientSharesBackoffWithExport(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(footprintInfo))
	}))
	defer srv.Close()

	limiter := ratelimit.NewHandler(nil)
	// A throttled bbox export against the same tiling service
	bboxURL := export.BBoxURL(srv.URL, common.Bounds{West: 7, South: 45.9, East: 7.1, North: 46}, 8, 8, "<x/>")
	limiter.CheckStatus(ratelimit.ServiceKey(bboxURL), http.StatusTooManyRequests)

	c := NewClient(srv.URL, nil, time.Second)
	c.SetLimiter(limiter)
	if _, err := c.Bounds(context.Background(), "s3://bucket/dem.tif"); err == nil {
		t.Error("expected lookup to be skipped while the service backs off")
	}
	if hits.Load() != 0 {
		t.Errorf("server hits = %d, want 0", hits.Load())
	}
}
