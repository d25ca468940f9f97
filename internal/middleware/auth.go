// Package middleware authenticates dashboard requests with JWTs issued by
// the identity provider.
package middleware

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"

	"biorreator-telemetry/internal/models"
	"biorreator-telemetry/internal/utils"
)

// EnsureValidToken builds the middleware that validates the Authorization
// bearer token against the issuer's JWKS.
func EnsureValidToken(issuer, audience string) (func(http.Handler) http.Handler, error) {
	issuerURL, err := url.Parse(issuer)
	if err != nil {
		return nil, fmt.Errorf("parsing issuer URL: %w", err)
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)
	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
	)
	if err != nil {
		return nil, fmt.Errorf("setting up JWT validator: %w", err)
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		log.Printf("JWT validation failed: %v", err)
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeUnauthorized,
			"invalid or missing token", nil, http.StatusUnauthorized))
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)
	return middleware.CheckJWT, nil
}
