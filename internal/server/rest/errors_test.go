package rest

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gopherblog/internal/common"
	"github.com/dmitrijs2005/gopherblog/internal/server/session"
)

func TestSessionStatus(t *testing.T) {
	tests := []struct {
		kind    session.Kind
		refresh bool
		want    int
	}{
		{session.KindMissingToken, true, http.StatusBadRequest},
		{session.KindMissingToken, false, http.StatusUnauthorized},
		{session.KindTokenExpiredOrInvalid, true, http.StatusBadRequest},
		{session.KindTokenExpiredOrInvalid, false, http.StatusUnauthorized},
		{session.KindInvalidCredentials, false, http.StatusBadRequest},
		{session.KindPasswordMismatch, false, http.StatusBadRequest},
		{session.KindUserNotFound, true, http.StatusUnauthorized},
		{session.KindUserNotFound, false, http.StatusUnauthorized},
		{session.KindNotVerified, false, http.StatusUnauthorized},
		{session.KindInvalidRefreshState, true, http.StatusUnauthorized},
		{session.KindDuplicateEmail, false, http.StatusConflict},
		{session.Kind(0), false, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, sessionStatus(tt.kind, tt.refresh))
		})
	}
}

func TestSessionError_HidesCause(t *testing.T) {
	err := sessionError(errors.New("connection reset"), false)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusInternalServerError, he.Code)
	assert.Equal(t, "internal error", he.Message)
	assert.ErrorIs(t, he.Internal, common.ErrorInternal)
}

func TestPostError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{common.ErrorInvalidID, http.StatusBadRequest},
		{common.ErrorNotFound, http.StatusNotFound},
		{common.ErrorStorageDisabled, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		var he *echo.HTTPError
		require.ErrorAs(t, postError(tt.err, "x"), &he)
		assert.Equal(t, tt.want, he.Code, tt.err.Error())
	}
}
