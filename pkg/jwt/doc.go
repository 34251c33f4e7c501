// Package jwt signs and validates session tokens.
//
// Tokens are HS256 JWTs carrying the user's record id and display name:
//
//	svc, err := jwt.NewService(jwt.Config{
//	    Secret:     os.Getenv("JWT_SECRET"),
//	    Issuer:     "jobtrack",
//	    Expiration: 24 * time.Hour,
//	})
//
//	token, err := svc.Sign("user:abc", "Ann")
//
//	claims, err := svc.Validate(token)
//	if errors.Is(err, jwt.ErrTokenExpired) {
//	    // ask the user to log in again
//	}
package jwt
