package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/isdelr/haulboard-be/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagination(t *testing.T) {
	cases := []struct {
		query       string
		page, limit int
		wantErr     bool
	}{
		{"", 1, 20, false},
		{"?page=3&limit=50", 3, 50, false},
		{"?limit=100", 1, 100, false},
		{"?page=0", 0, 0, true},
		{"?page=-1", 0, 0, true},
		{"?page=two", 0, 0, true},
		{"?page=1000000&limit=100", 1000000, 100, false},
		{"?page=1000001", 0, 0, true},
		{"?page=9223372036854775807&limit=100", 0, 0, true},
		{"?limit=0", 0, 0, true},
		{"?limit=101", 0, 0, true},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/x"+tc.query, nil)
		page, limit, err := pagination(r)
		if tc.wantErr {
			assert.True(t, apperr.IsKind(err, apperr.KindValidation), tc.query)
			continue
		}
		require.NoError(t, err, tc.query)
		assert.Equal(t, tc.page, page, tc.query)
		assert.Equal(t, tc.limit, limit, tc.query)
	}
}

func TestOptionalBool(t *testing.T) {
	v, err := optionalBool(httptest.NewRequest(http.MethodGet, "/x", nil), "read")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = optionalBool(httptest.NewRequest(http.MethodGet, "/x?read=true", nil), "read")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.True(t, *v)

	v, err = optionalBool(httptest.NewRequest(http.MethodGet, "/x?read=false", nil), "read")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.False(t, *v)

	_, err = optionalBool(httptest.NewRequest(http.MethodGet, "/x?read=1", nil), "read")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"name":"ok"}`))
	require.NoError(t, decodeJSON(httptest.NewRecorder(), r, &dst))
	assert.Equal(t, "ok", dst.Name)

	r = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"name":`))
	assert.True(t, apperr.IsKind(decodeJSON(httptest.NewRecorder(), r, &dst), apperr.KindValidation))

	r = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(""))
	assert.True(t, apperr.IsKind(decodeJSON(httptest.NewRecorder(), r, &dst), apperr.KindValidation))

	r = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(""))
	assert.NoError(t, decodeOptionalJSON(httptest.NewRecorder(), r, &dst))
}

func TestCurrentUser_MissingIsUnauthenticated(t *testing.T) {
	_, err := currentUser(httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}
