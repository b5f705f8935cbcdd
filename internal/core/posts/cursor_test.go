package posts

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	createdAt := time.Date(2024, 3, 9, 10, 11, 12, 123456789, time.UTC)
	post := &Post{ID: "p-42", CreatedAt: createdAt}

	cursor, err := DecodeCursor(EncodeCursor(post))

	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.True(t, cursor.CreatedAt.Equal(createdAt))
	assert.Equal(t, "p-42", cursor.ID)
}

func TestDecodeCursor(t *testing.T) {
	makeCursor := func(raw string) string {
		return base64.URLEncoding.EncodeToString([]byte(raw))
	}
	validTimestamp := time.Now().UTC().Format(time.RFC3339Nano)

	tests := []struct {
		name    string
		cursor  string
		wantNil bool
		wantErr bool
		errMsg  string
	}{
		{name: "empty cursor is first page", cursor: "", wantNil: true},
		{name: "valid cursor", cursor: makeCursor(validTimestamp + "|abc")},
		{name: "id containing separator", cursor: makeCursor(validTimestamp + "|a|b")},
		{
			name:    "cursor too long",
			cursor:  makeCursor(validTimestamp + "|" + strings.Repeat("x", 600)),
			wantErr: true,
			errMsg:  "exceeds maximum length",
		},
		{name: "invalid base64", cursor: "not-valid-base64!!!", wantErr: true, errMsg: "invalid base64"},
		{name: "missing separator", cursor: makeCursor(validTimestamp), wantErr: true, errMsg: "malformed"},
		{name: "empty id", cursor: makeCursor(validTimestamp + "|"), wantErr: true, errMsg: "malformed"},
		{name: "bad timestamp", cursor: makeCursor("yesterday|abc"), wantErr: true, errMsg: "invalid timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cursor, err := DecodeCursor(tt.cursor)

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidCursor)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, cursor)
			} else {
				assert.NotNil(t, cursor)
			}
		})
	}
}

func TestCursorAfter(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cursor := &Cursor{CreatedAt: t0, ID: "m"}

	assert.True(t, cursor.After(&Post{ID: "z", CreatedAt: t0.Add(-time.Second)}), "older post")
	assert.False(t, cursor.After(&Post{ID: "a", CreatedAt: t0.Add(time.Second)}), "newer post")
	assert.True(t, cursor.After(&Post{ID: "a", CreatedAt: t0}), "same instant, lower id")
	assert.False(t, cursor.After(&Post{ID: "m", CreatedAt: t0}), "cursor post itself")
	assert.False(t, cursor.After(&Post{ID: "z", CreatedAt: t0}), "same instant, higher id")

	var first *Cursor
	assert.True(t, first.After(&Post{ID: "a", CreatedAt: t0}))
}
