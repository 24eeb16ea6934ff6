package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	domainerr "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	authport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/auth"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/api/dto"
	mockauth "github.com/amirhossein-jamali/wingo-engine/mocks/port/auth"
	mockcore "github.com/amirhossein-jamali/wingo-engine/mocks/port/core"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuth(t *testing.T) {
	tokens := mockauth.NewMockTokenIssuer(t)
	tokens.EXPECT().Parse("good").Return(&authport.Claims{UserID: 42, Role: entity.RoleAdmin}, nil).Maybe()
	tokens.EXPECT().Parse("bad").Return(nil, domainerr.ErrUnauthorized).Maybe()

	router := gin.New()
	router.GET("/whoami", Auth(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": UserID(c), "role": Role(c)})
	})
	router.GET("/admin", Auth(tokens), RequireOperator(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	t.Run("valid token", func(t *testing.T) {
		rec := serve(router, "/whoami", "Bearer good")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":42,"role":"admin"}`, rec.Body.String())
	})

	t.Run("scheme is case-insensitive", func(t *testing.T) {
		rec := serve(router, "/admin", "bearer good")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	for name, header := range map[string]string{
		"missing":      "",
		"wrong scheme": "Basic good",
		"empty token":  "Bearer ",
		"rejected":     "Bearer bad",
	} {
		t.Run(name, func(t *testing.T) {
			rec := serve(router, "/whoami", header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, domainerr.CodeUnauthorized, errorBody(t, rec).Code)
		})
	}
}

func TestRequireOperator_RejectsPlayers(t *testing.T) {
	tokens := mockauth.NewMockTokenIssuer(t)
	tokens.EXPECT().Parse("player").Return(&authport.Claims{UserID: 7, Role: entity.RoleUser}, nil)

	router := gin.New()
	router.GET("/admin", Auth(tokens), RequireOperator(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	rec := serve(router, "/admin", "Bearer player")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, domainerr.CodeForbidden, errorBody(t, rec).Code)
}

func TestErrorHandler_RecoversPanics(t *testing.T) {
	log := mockcore.NewMockLogger(t)
	log.EXPECT().Error("Panic recovered in API request", mock.MatchedBy(func(fields map[string]any) bool {
		return fields["path"] == "/boom"
	})).Once()

	router := gin.New()
	router.Use(ErrorHandler(log))
	router.GET("/boom", func(*gin.Context) {
		panic(errors.New("settlement exploded"))
	})

	rec := serve(router, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := errorBody(t, rec)
	assert.Equal(t, domainerr.CodeInternalServer, body.Code)
	assert.Equal(t, "Internal server error", body.Message)
}
