package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/shared"
)

func TestRespondError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   string
		detail string
	}{
		{"validation", shared.Validationf("name is required"), http.StatusBadRequest, "validation", "name is required"},
		{"wrapped auth", fmt.Errorf("auth: login: %w", shared.ErrInvalidCredentials), http.StatusUnauthorized, "auth", "Invalid credentials"},
		{"not found", shared.NotFoundf("product 7 not found"), http.StatusNotFound, "not_found", "product 7 not found"},
		{"protected", shared.ErrProtectedRecord, http.StatusConflict, "protected_record", "record is protected"},
		{"internal", fmt.Errorf("disk on fire"), http.StatusInternalServerError, "internal", "An internal error occurred"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, tc.err)
			require.Equal(t, tc.status, rec.Code)
			var body ProblemDetail
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, tc.kind, body.Kind)
			require.Equal(t, tc.detail, body.Detail)
		})
	}
}
