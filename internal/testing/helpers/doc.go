// Package helpers provides request builders and assertions for integration
// tests that drive the HTTP handlers against a real database.
//
// # JWT Helpers
//
// Issue tokens the code under test accepts:
//
//	jwtHelper := helpers.NewJWTHelper(t)
//	tokens := service.NewTokenService(service.TokenServiceConfig{JWTService: jwtHelper.Service})
//
// # Requests
//
//	rr := helpers.NewRequest(t, http.MethodPost, "/api/v1/jobs").
//	    WithAuth(jwtHelper, user).
//	    WithBody(map[string]string{"company": "Acme", "position": "Engineer"}).
//	    Do(handler)
//
// # Assertions
//
//	helpers.AssertStatus(t, rr, http.StatusCreated)
//	helpers.AssertAPIError(t, rr, http.StatusNotFound, "job not found")
//	helpers.AssertRecordExists(t, db, job.ID)
package helpers
