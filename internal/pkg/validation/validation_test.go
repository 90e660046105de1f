package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
)

type sample struct {
	Name    string  `json:"name" binding:"required,max=5"`
	Email   string  `json:"email" binding:"required,email"`
	Gender  string  `json:"gender" binding:"omitempty,oneof=male female other"`
	Born    *string `json:"born" binding:"omitempty,datetime=2006-01-02"`
	Year    int     `json:"year" binding:"omitempty,min=1900"`
	Ignored string  `json:"-"`
}

func bind(t *testing.T, body string) (sample, error) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	Setup()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var s sample
	err := BindJSON(c, &s)
	return s, err
}

func TestBindJSON_Valid(t *testing.T) {
	s, err := bind(t, `{"name":"ana","email":"ana@example.com","gender":"female","born":"2001-02-03"}`)
	require.NoError(t, err)
	assert.Equal(t, "ana", s.Name)
}

func TestBindJSON_ReportsEveryField(t *testing.T) {
	_, err := bind(t, `{"name":"toolongname","email":"nope","gender":"robot","born":"03/02/2001","year":12}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	fields, ok := apperrors.FieldsOf(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Ensure this field has no more than 5 characters."}, fields["name"])
	assert.Equal(t, []string{"Enter a valid email address."}, fields["email"])
	assert.Equal(t, []string{`"robot" is not a valid choice.`}, fields["gender"])
	assert.Contains(t, fields["born"][0], "YYYY-MM-DD")
	assert.Equal(t, []string{"Ensure this value is greater than or equal to 1900."}, fields["year"])
}

func TestBindJSON_EmptyBodyReportsRequired(t *testing.T) {
	_, err := bind(t, ``)
	fields, ok := apperrors.FieldsOf(err)
	require.True(t, ok)
	assert.Equal(t, []string{"email", "name"}, fields.Fields())
	assert.Equal(t, []string{"This field is required."}, fields["name"])
}

func TestBindJSON_Malformed(t *testing.T) {
	_, err := bind(t, `{"name":`)
	fields, ok := apperrors.FieldsOf(err)
	require.True(t, ok)
	assert.Contains(t, fields, NonFieldErrors)

	_, err = bind(t, `{"name":"ana","email":"ana@example.com","year":"soon"}`)
	fields, ok = apperrors.FieldsOf(err)
	require.True(t, ok)
	assert.Equal(t, []string{"A valid integer is required."}, fields["year"])
}

func TestTranslate_Nil(t *testing.T) {
	assert.NoError(t, Translate(nil))
}
