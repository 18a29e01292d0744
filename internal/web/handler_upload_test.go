package web

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/konsinyasi/internal/catalog"
	"github.com/vbonduro/konsinyasi/internal/domain"
	"github.com/vbonduro/konsinyasi/internal/feed"
)

func TestAllowedImageMIME(t *testing.T) {
	tests := []struct {
		name         string
		data         []byte
		wantMIME     string
		wantDetected bool
	}{
		{"JPEG", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}, "image/jpeg", true},
		{"PNG", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, "image/png", true},
		{"GIF", []byte("GIF89a"), "image/gif", true},
		{"WebP", append([]byte("RIFF\x00\x00\x00\x00WEBP"), make([]byte, 10)...), "image/webp", true},
		{"RIFF but not WebP", append([]byte("RIFF\x00\x00\x00\x00WAVE"), make([]byte, 10)...), "", false},
		{"PDF disguised as image", []byte("%PDF-1.4 malicious content"), "", false},
		{"empty", []byte{}, "", false},
		{"too short for WebP check", []byte("RIFF"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotMIME, gotDetected := allowedImageMIME(tt.data)
			assert.Equal(t, tt.wantDetected, gotDetected)
			assert.Equal(t, tt.wantMIME, gotMIME)
		})
	}
}

func TestJourneyIndex(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/attendance/a1/journey/2/photo", nil)
	r.SetPathValue("id", "a1")
	r.SetPathValue("index", "2")

	id, index, err := journeyIndex(r)
	require.NoError(t, err)
	assert.Equal(t, "a1", id)
	assert.Equal(t, 2, index)

	for _, bad := range []string{"-1", "x", ""} {
		r.SetPathValue("index", bad)
		_, _, err := journeyIndex(r)
		assert.True(t, domain.IsValidation(err), bad)
	}
}

func TestCheckOrigin(t *testing.T) {
	s := &Server{origins: []string{"https://kasir.example"}}

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"https://kasir.example", true},
		{"http://example.com", true},
		{"https://evil.example", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "http://example.com/ws/products", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.want, s.checkOrigin(r), tt.origin)
	}

	wildcard := &Server{origins: []string{"*"}}
	r := httptest.NewRequest("GET", "http://example.com/ws/products", nil)
	r.Header.Set("Origin", "https://anywhere.example")
	assert.True(t, wildcard.checkOrigin(r))
}

func TestFeedPayload(t *testing.T) {
	msg := feedPayload(feed.Snapshot{
		Collection: domain.CollectionPartners,
		Data:       []domain.Entry{{ID: "p1", Name: "ZETA MART"}},
	})
	partners, ok := msg.Data.([]domain.Entry)
	require.True(t, ok)
	assert.Len(t, partners, len(catalog.SeedPartners)+1)
	assert.True(t, catalog.Contains(partners, "ZETA MART"))

	msg = feedPayload(feed.Snapshot{Collection: domain.CollectionEmployees, Data: []domain.Entry{}})
	employees, ok := msg.Data.([]domain.Entry)
	require.True(t, ok)
	assert.Len(t, employees, len(catalog.SeedEmployees))

	msg = feedPayload(feed.Snapshot{Collection: domain.CollectionProducts, Data: []domain.Product{}})
	products, ok := msg.Data.([]domain.Product)
	require.True(t, ok)
	assert.Len(t, products, len(catalog.SeedProducts))

	txns := []domain.Transaction{{ID: "d1"}}
	msg = feedPayload(feed.Snapshot{Collection: domain.CollectionDropoffs, Data: txns})
	assert.Equal(t, txns, msg.Data)

	msg = feedPayload(feed.Snapshot{Collection: domain.CollectionReturns, Err: errors.New("disk gone")})
	assert.Nil(t, msg.Data)
	assert.Equal(t, "disk gone", msg.Error)
}
