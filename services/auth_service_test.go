package services

import (
	"errors"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/smartystreets/goconvey/convey"
)

func TestAuthService(t *testing.T) {
	cfg := AuthConfig{
		AdminEmail:    "admin@x.com",
		AdminPassword: "secret",
		SessionSecret: "0123456789abcdef0123456789abcdef",
		SessionTTL:    time.Hour,
	}

	convey.Convey("Given a configured admin identity", t, func() {
		svc := NewAuthService(cfg)

		convey.Convey("When logging in with the right credentials", func() {
			token, err := svc.Login("admin@x.com", "secret")
			convey.So(err, convey.ShouldBeNil)
			convey.So(token, convey.ShouldNotBeEmpty)

			convey.Convey("Then the token verifies and carries the identity", func() {
				identity, ok := svc.Verify(token)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(identity, convey.ShouldEqual, "admin@x.com")
			})

			convey.Convey("And a tampered token fails verification", func() {
				_, ok := svc.Verify(token + "x")
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When logging in with a wrong password", func() {
			_, err := svc.Login("admin@x.com", "wrong")
			convey.So(errors.Is(err, ErrInvalidCredentials), convey.ShouldBeTrue)
		})

		convey.Convey("When logging in with a wrong email", func() {
			_, err := svc.Login("intruder@x.com", "secret")
			convey.So(errors.Is(err, ErrInvalidCredentials), convey.ShouldBeTrue)
		})

		convey.Convey("When the email differs only in case", func() {
			token, err := svc.Login("Admin@X.com", "secret")
			convey.So(err, convey.ShouldBeNil)
			convey.So(token, convey.ShouldNotBeEmpty)
		})

		convey.Convey("When presenting an expired token", func() {
			past := time.Now().Add(-2 * time.Hour)
			tok, err := jwt.NewBuilder().
				Subject(cfg.AdminEmail).
				IssuedAt(past).
				Expiration(past.Add(time.Hour)).
				Build()
			convey.So(err, convey.ShouldBeNil)
			signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, []byte(cfg.SessionSecret)))
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then it fails exactly like an invalid one", func() {
				_, ok := svc.Verify(string(signed))
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When presenting no token at all", func() {
			_, ok := svc.Verify("")
			convey.So(ok, convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given no configured identity", t, func() {
		svc := NewAuthService(AuthConfig{})

		convey.Convey("Then login reports NotConfigured before checking credentials", func() {
			_, err := svc.Login("admin@x.com", "secret")
			convey.So(errors.Is(err, ErrNotConfigured), convey.ShouldBeTrue)
		})

		convey.Convey("And nothing verifies", func() {
			_, ok := svc.Verify("anything")
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}
