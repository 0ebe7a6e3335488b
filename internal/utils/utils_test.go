package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACSHA512Signature(t *testing.T) {
	payload := []byte(`{"order_id":"42","payment_status":"finished"}`)
	sig := SignHMACSHA512("secret", payload)

	assert.Len(t, sig, 128)
	assert.True(t, VerifyHMACSHA512("secret", payload, sig))
	assert.False(t, VerifyHMACSHA512("other", payload, sig))
	assert.False(t, VerifyHMACSHA512("secret", payload, ""))
	assert.False(t, VerifyHMACSHA512("secret", []byte(`{"order_id":"43"}`), sig))
}

func TestHMACSHA512IsCaseSensitive(t *testing.T) {
	payload := []byte(`{"a":1}`)
	sig := SignHMACSHA512("secret", payload)

	upper := []byte(sig)
	for i, ch := range upper {
		if ch >= 'a' && ch <= 'f' {
			upper[i] = ch - 32
		}
	}
	require.NotEqual(t, sig, string(upper))
	assert.False(t, VerifyHMACSHA512("secret", payload, string(upper)))
}

func TestCanonicalJSON(t *testing.T) {
	out, err := CanonicalJSON([]byte(`{ "payment_status": "finished", "order_id": "42", "pay_amount": 0.00150000, "note": "<a&b>" }`))
	require.NoError(t, err)
	assert.Equal(t, `{"note":"<a&b>","order_id":"42","pay_amount":0.00150000,"payment_status":"finished"}`, string(out))

	_, err = CanonicalJSON([]byte(`not json`))
	assert.Error(t, err)
}

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateJWT(7, "ada", true, 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "ada", claims.Username)
	assert.True(t, claims.IsAdmin)

	SetJWTSecret("rotated")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

type sampleRequest struct {
	Email string `json:"email" validate:"required,email"`
	Price string `json:"price" validate:"required,decimal_positive"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(&sampleRequest{Email: "a@b.co", Price: "9.99"}))

	errs := GetValidationErrors(ValidateStruct(&sampleRequest{Email: "nope", Price: "-1"}))
	require.Len(t, errs, 2)
	assert.Equal(t, "email", errs[0].Field)
	assert.Equal(t, "Invalid email format", errs[0].Message)
	assert.Equal(t, "price", errs[1].Field)
	assert.Equal(t, "decimal_positive", errs[1].Tag)
}

func TestPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=0&limit=500&order=sideways", nil)

	params := GetPaginationParams(c)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 20, params.Limit)
	assert.Equal(t, "desc", params.Order)

	result := CreatePaginationResult([]int{1, 2}, 41, params)
	assert.Equal(t, 3, result.TotalPages)

	PaginatedResponse(c, result)
	assert.Equal(t, "41", w.Header().Get("X-Total-Count"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
}
