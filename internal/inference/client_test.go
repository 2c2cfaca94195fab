package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func encodeImage(t *testing.T, format string) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for x := range 4 {
		for y := range 4 {
			img.Set(x, y, color.NRGBA{R: 200, G: 10, B: 10, A: 128})
		}
	}
	var buf bytes.Buffer
	switch format {
	case "png":
		require.NoError(t, png.Encode(&buf, img))
	case "jpeg":
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	}
	return buf.Bytes()
}

func TestGenerateSendsPayloadAndReturnsPNG(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/stabilityai/stable-diffusion-2-1", r.URL.Path)
		require.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(encodeImage(t, "jpeg"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "hf_test")
	data, err := c.Generate(context.Background(), "stabilityai/stable-diffusion-2-1", "a red fox in snow")
	require.NoError(t, err)
	require.Equal(t, Request{Inputs: "a red fox in snow", Parameters: DefaultParameters}, got)

	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "png", format)
	require.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())
}

func TestGenerateFlattensTransparentPNG(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(encodeImage(t, "png"))
	}))
	defer srv.Close()

	data, err := NewClient(srv.URL, "k").Generate(context.Background(), "m", "p")
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	_, _, _, a := img.At(0, 0).RGBA()
	require.Equal(t, uint32(0xffff), a)
}

func TestGenerateStatusMessages(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		want        string
	}{
		{name: "model loading", status: 503, want: msgModelLoading},
		{name: "rate limited", status: 429, want: msgRateLimited},
		{name: "unauthorized", status: 401, want: msgUnauthorized},
		{name: "other status", status: 502, want: "API request failed with status 502"},
		{name: "json error", status: 200, contentType: "application/json", body: `{"error":"Model too busy"}`, want: "API Error: Model too busy"},
		{name: "json error list", status: 200, contentType: "application/json", body: `{"error":["Input is invalid"]}`, want: "API Error: Input is invalid"},
		{name: "json without error", status: 200, contentType: "application/json", body: `{}`, want: "API Error: " + msgUnknownAPIErr},
		{name: "not json", status: 200, contentType: "text/plain", body: "oops", want: msgUnexpected},
		{name: "bad image", status: 200, contentType: "image/png", body: "not a png", want: msgBadImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, "k").Generate(context.Background(), "m", "p")
			var ierr *Error
			require.ErrorAs(t, err, &ierr)
			require.Equal(t, tt.want, ierr.Message)
		})
	}
}

func TestGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))
	_, err := c.Generate(context.Background(), "m", "p")
	var ierr *Error
	require.ErrorAs(t, err, &ierr)
	require.Equal(t, msgTimeout, ierr.Message)
}

func TestGenerateConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "k").Generate(context.Background(), "m", "p")
	var ierr *Error
	require.ErrorAs(t, err, &ierr)
	require.Equal(t, msgConnection, ierr.Message)
	require.NotNil(t, ierr.Unwrap())
}

func TestModelsCatalog(t *testing.T) {
	models := Models()
	require.Len(t, models, 15)
	require.Equal(t, "stabilityai/stable-diffusion-2-1", models[0].ID)

	// callers get a copy
	models[0].ID = "changed"
	require.Equal(t, "stabilityai/stable-diffusion-2-1", Models()[0].ID)
}
