package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"game-site-backend/models"
	"game-site-backend/services"
	"game-site-backend/store"
	"game-site-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/smartystreets/goconvey/convey"
)

func newTestApp(st store.Store, authCfg services.AuthConfig) *fiber.App {
	app := fiber.New()

	ranking := services.NewRankingService(st)
	leaderboard := services.NewLeaderboardService(st)
	contact := services.NewContactService(st)
	newsletter := services.NewNewsletterService(st)
	scores := services.NewScoreService(st)
	events := services.NewEventService(st)
	export := services.NewExportService(st)
	auth := services.NewAuthService(authCfg)

	SetupSiteRoutes(app, ranking, leaderboard, contact, newsletter, scores, events)
	SetupAdminRoutes(app, auth, contact, newsletter, scores, leaderboard, events, export)
	return app
}

func testAuthConfig() services.AuthConfig {
	return services.AuthConfig{
		AdminEmail:    "admin@x.com",
		AdminPassword: "secret",
		SessionSecret: "0123456789abcdef0123456789abcdef",
		SessionTTL:    time.Hour,
	}
}

func jsonReq(method, target string, body any) *http.Request {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeEnvelope(t *testing.T, resp *http.Response) utils.APIResponse {
	t.Helper()
	defer resp.Body.Close()
	var env utils.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func seedEvent(t *testing.T, st store.Store, id, name string) {
	t.Helper()
	doc, err := store.Encode(models.Event{ID: id, Name: name, CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("encode event: %v", err)
	}
	if _, err := st.Create(context.Background(), store.CollectionEvents, doc); err != nil {
		t.Fatalf("seed event: %v", err)
	}
}

func seedScoreDoc(t *testing.T, st store.Store, participantID, eventID string, value float64, submittedAt time.Time) {
	t.Helper()
	doc, err := store.Encode(models.ScoreRecord{
		ParticipantID: participantID,
		EventID:       eventID,
		Value:         value,
		SubmittedAt:   submittedAt,
	})
	if err != nil {
		t.Fatalf("encode score: %v", err)
	}
	delete(doc, "id")
	if _, err := st.Create(context.Background(), store.CollectionScores, doc); err != nil {
		t.Fatalf("seed score: %v", err)
	}
}

func TestRankingsEndpoint(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	convey.Convey("Given the public rankings endpoint", t, func() {
		st := store.NewMemStore()
		app := newTestApp(st, testAuthConfig())
		seedScoreDoc(t, st, "p1", "e1", 120, base)
		seedScoreDoc(t, st, "p1", "e1", 110, base.Add(time.Minute))
		seedScoreDoc(t, st, "p2", "e1", 115, base.Add(2*time.Minute))

		convey.Convey("Then a missing eventId is a 400 envelope", func() {
			resp, err := app.Test(jsonReq(http.MethodGet, "/rankings", nil))
			convey.So(err, convey.ShouldBeNil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusBadRequest)
			env := decodeEnvelope(t, resp)
			convey.So(env.Success, convey.ShouldBeFalse)
			convey.So(env.Error, convey.ShouldNotBeEmpty)
		})

		convey.Convey("And a valid query returns the paged ranking payload", func() {
			resp, err := app.Test(jsonReq(http.MethodGet, "/rankings?eventId=e1&page=1&pageSize=10", nil))
			convey.So(err, convey.ShouldBeNil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			env := decodeEnvelope(t, resp)
			convey.So(env.Success, convey.ShouldBeTrue)
			data := env.Data.(map[string]any)
			convey.So(data["total"], convey.ShouldEqual, 2)
			convey.So(data["event"], convey.ShouldEqual, "e1")
			convey.So(data["page"], convey.ShouldEqual, 1)
			convey.So(data["pageSize"], convey.ShouldEqual, 10)
			convey.So(data["totalPages"], convey.ShouldEqual, 1)

			rankings := data["rankings"].([]any)
			convey.So(rankings, convey.ShouldHaveLength, 2)
			first := rankings[0].(map[string]any)
			convey.So(first["participantId"], convey.ShouldEqual, "p1")
			convey.So(first["bestValue"], convey.ShouldEqual, 110)
			convey.So(first["rank"], convey.ShouldEqual, 1)
		})

		convey.Convey("And an unknown event is an empty 200, not an error", func() {
			resp, err := app.Test(jsonReq(http.MethodGet, "/rankings?eventId=ghost", nil))
			convey.So(err, convey.ShouldBeNil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			env := decodeEnvelope(t, resp)
			data := env.Data.(map[string]any)
			convey.So(data["total"], convey.ShouldEqual, 0)
			convey.So(data["totalPages"], convey.ShouldEqual, 0)
		})
	})
}

func TestLeaderboardEndpoints(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	convey.Convey("Given the leaderboard endpoints", t, func() {
		st := store.NewMemStore()
		app := newTestApp(st, testAuthConfig())
		seedScoreDoc(t, st, "p1", "g1", 100, base)

		convey.Convey("Then update without a gameId is a 400", func() {
			resp, err := app.Test(jsonReq(http.MethodPost, "/leaderboard/update", map[string]string{}))
			convey.So(err, convey.ShouldBeNil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("And update recomputes and reports counts", func() {
			resp, err := app.Test(jsonReq(http.MethodPost, "/leaderboard/update", map[string]string{"gameId": "g1"}))
			convey.So(err, convey.ShouldBeNil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			env := decodeEnvelope(t, resp)
			convey.So(env.Success, convey.ShouldBeTrue)
			data := env.Data.(map[string]any)
			convey.So(data["entriesUpdated"], convey.ShouldEqual, 1)
			convey.So(data["totalEntries"], convey.ShouldEqual, 1)

			convey.Convey("And the status probe sees the entries", func() {
				resp, err := app.Test(jsonReq(http.MethodGet, "/leaderboard/status?gameId=g1", nil))
				convey.So(err, convey.ShouldBeNil)
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				status := decodeEnvelope(t, resp).Data.(map[string]any)
				convey.So(status["hasEntries"], convey.ShouldEqual, true)
				convey.So(status["entryCount"], convey.ShouldEqual, 1)
			})

			convey.Convey("And the public read returns them best-first", func() {
				resp, err := app.Test(jsonReq(http.MethodGet, "/leaderboard?gameId=g1", nil))
				convey.So(err, convey.ShouldBeNil)
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				entries := decodeEnvelope(t, resp).Data.([]any)
				convey.So(entries, convey.ShouldHaveLength, 1)
			})
		})

		convey.Convey("And the status probe without gameId is a 400", func() {
			resp, err := app.Test(jsonReq(http.MethodGet, "/leaderboard/status", nil))
			convey.So(err, convey.ShouldBeNil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestAdminAuthFlow(t *testing.T) {
	convey.Convey("Given the admin area", t, func() {
		st := store.NewMemStore()
		app := newTestApp(st, testAuthConfig())

		convey.Convey("Then wrong credentials are a 401", func() {
			resp, err := app.Test(jsonReq(http.MethodPost, "/admin/login", map[string]string{
				"email": "admin@x.com", "password": "wrong",
			}))
			convey.So(err, convey.ShouldBeNil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusUnauthorized)
		})

		convey.Convey("And a malformed body is a 400", func() {
			req := httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader([]byte("{nope")))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			convey.So(err, convey.ShouldBeNil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("And an unauthenticated GET is redirected to login with the original path", func() {
			resp, err := app.Test(jsonReq(http.MethodGet, "/admin/contact-messages", nil))
			convey.So(err, convey.ShouldBeNil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusFound)
			convey.So(resp.Header.Get("Location"), convey.ShouldContainSubstring, "/admin/login?redirect=")
			convey.So(resp.Header.Get("Location"), convey.ShouldContainSubstring, "contact-messages")

			convey.Convey("And the login page it points at is not itself redirected", func() {
				followed, err := app.Test(jsonReq(http.MethodGet, resp.Header.Get("Location"), nil))
				convey.So(err, convey.ShouldBeNil)
				convey.So(followed.StatusCode, convey.ShouldNotEqual, http.StatusFound)
				convey.So(followed.Header.Get("Location"), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("And an unauthenticated DELETE is a 401 envelope", func() {
			resp, err := app.Test(jsonReq(http.MethodDelete, "/admin/scores/some-id", nil))
			convey.So(err, convey.ShouldBeNil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusUnauthorized)
		})

		convey.Convey("When logging in with the configured identity", func() {
			resp, err := app.Test(jsonReq(http.MethodPost, "/admin/login", map[string]string{
				"email": "admin@x.com", "password": "secret",
			}))
			convey.So(err, convey.ShouldBeNil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			var session *http.Cookie
			for _, c := range resp.Cookies() {
				if c.Name == services.SessionCookie {
					session = c
				}
			}
			convey.So(session, convey.ShouldNotBeNil)
			convey.So(session.Value, convey.ShouldNotBeEmpty)

			convey.Convey("Then the session cookie opens the admin area", func() {
				req := jsonReq(http.MethodGet, "/admin/contact-messages", nil)
				req.AddCookie(session)
				resp, err := app.Test(req)
				convey.So(err, convey.ShouldBeNil)
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			})

			convey.Convey("And deletes through it are idempotent 200s", func() {
				req := jsonReq(http.MethodDelete, "/admin/scores/never-existed", nil)
				req.AddCookie(session)
				resp, err := app.Test(req)
				convey.So(err, convey.ShouldBeNil)
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(decodeEnvelope(t, resp).Success, convey.ShouldBeTrue)
			})

			convey.Convey("And logout clears the cookie", func() {
				resp, err := app.Test(jsonReq(http.MethodPost, "/admin/logout", nil))
				convey.So(err, convey.ShouldBeNil)
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				var cleared *http.Cookie
				for _, c := range resp.Cookies() {
					if c.Name == services.SessionCookie {
						cleared = c
					}
				}
				convey.So(cleared, convey.ShouldNotBeNil)
				convey.So(cleared.Value, convey.ShouldBeEmpty)
			})
		})
	})

	convey.Convey("Given no configured admin identity", t, func() {
		st := store.NewMemStore()
		app := newTestApp(st, services.AuthConfig{})

		convey.Convey("Then login answers 503, not 401", func() {
			resp, err := app.Test(jsonReq(http.MethodPost, "/admin/login", map[string]string{
				"email": "admin@x.com", "password": "secret",
			}))
			convey.So(err, convey.ShouldBeNil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestSiteFormEndpoints(t *testing.T) {
	convey.Convey("Given the public site forms", t, func() {
		st := store.NewMemStore()
		app := newTestApp(st, testAuthConfig())
		seedEvent(t, st, "speed-run", "Speed Run")

		convey.Convey("Then the contact form validates its fields", func() {
			resp, err := app.Test(jsonReq(http.MethodPost, "/contact", map[string]string{
				"name": "Ada", "email": "not-an-email", "message": "hi",
			}))
			convey.So(err, convey.ShouldBeNil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusBadRequest)

			resp, err = app.Test(jsonReq(http.MethodPost, "/contact", map[string]string{
				"name": "Ada", "email": "ada@x.com", "message": "hi there",
			}))
			convey.So(err, convey.ShouldBeNil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			env := decodeEnvelope(t, resp)
			convey.So(env.Success, convey.ShouldBeTrue)
			convey.So(env.Data.(map[string]any)["id"], convey.ShouldNotBeEmpty)
		})

		convey.Convey("And resubscribing to the newsletter is a no-op", func() {
			body := map[string]string{"email": "fan@x.com"}
			resp, err := app.Test(jsonReq(http.MethodPost, "/newsletter/subscribe", body))
			convey.So(err, convey.ShouldBeNil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			resp, err = app.Test(jsonReq(http.MethodPost, "/newsletter/subscribe", body))
			convey.So(err, convey.ShouldBeNil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			convey.So(decodeEnvelope(t, resp).Message, convey.ShouldEqual, "already subscribed")

			docs, err := st.Query(context.Background(), store.CollectionNewsletter, nil)
			convey.So(err, convey.ShouldBeNil)
			convey.So(docs, convey.ShouldHaveLength, 1)
		})

		convey.Convey("And score submission checks the event", func() {
			resp, err := app.Test(jsonReq(http.MethodPost, "/scores", map[string]any{
				"participantId": "p1", "eventId": "ghost", "value": 42.5,
			}))
			convey.So(err, convey.ShouldBeNil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusBadRequest)

			resp, err = app.Test(jsonReq(http.MethodPost, "/scores", map[string]any{
				"participantId": "p1", "eventId": "speed-run", "value": 42.5,
			}))
			convey.So(err, convey.ShouldBeNil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			resp, err = app.Test(jsonReq(http.MethodPost, "/scores", map[string]any{
				"participantId": "p1", "eventId": "speed-run", "value": -1,
			}))
			convey.So(err, convey.ShouldBeNil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("And the public event list includes the seeded event", func() {
			resp, err := app.Test(jsonReq(http.MethodGet, "/events", nil))
			convey.So(err, convey.ShouldBeNil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			events := decodeEnvelope(t, resp).Data.([]any)
			convey.So(events, convey.ShouldHaveLength, 1)
			convey.So(events[0].(map[string]any)["id"], convey.ShouldEqual, "speed-run")
		})
	})
}
