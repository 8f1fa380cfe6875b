package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func scrape(m *Manager) string {
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager()

			Convey("Then it owns a registry of its own", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Registry(), ShouldNotBeNil)
				So(manager.Registry(), ShouldNotEqual, prometheus.DefaultRegisterer)
			})

			Convey("Then a second manager does not collide with the first", func() {
				So(func() { NewManager() }, ShouldNotPanic)
			})
		})

		Convey("When given an explicit registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithRegistry(registry), WithNamespace("test"))

			Convey("Then collectors are registered on it", func() {
				So(manager.Registry(), ShouldEqual, registry)
				manager.MatchCreated()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestDomainMetrics(t *testing.T) {
	Convey("Given a metrics manager", t, func() {
		manager := NewManager()

		Convey("When domain events are recorded", func() {
			manager.MatchCreated()
			manager.MatchCreated()
			manager.MatchTransitioned("SCHEDULED", "ACTIVE")
			manager.ReviewSubmitted(3)
			manager.LoginCompleted()
			manager.ScoutReport("fallback_unconfigured")

			body := scrape(manager)

			Convey("Then they are exposed under the service namespace", func() {
				So(body, ShouldContainSubstring, "pitchperfect_matches_created_total 2")
				So(body, ShouldContainSubstring, `pitchperfect_match_transitions_total{from="SCHEDULED",to="ACTIVE"} 1`)
				So(body, ShouldContainSubstring, "pitchperfect_reviews_submitted_total 1")
				So(body, ShouldContainSubstring, "pitchperfect_ratings_applied_total 3")
				So(body, ShouldContainSubstring, "pitchperfect_logins_completed_total 1")
				So(body, ShouldContainSubstring, `pitchperfect_scout_reports_total{outcome="fallback_unconfigured"} 1`)
			})
		})
	})
}

func TestHTTPMetrics(t *testing.T) {
	Convey("Given a metrics manager with custom buckets", t, func() {
		manager := NewManager(WithHistogramBuckets([]float64{0.1, 1}))

		Convey("When a request is observed", func() {
			manager.ObserveHTTPRequest("/api/matches/{id}", http.MethodGet, http.StatusNotFound, 50*time.Millisecond)

			body := scrape(manager)

			Convey("Then the counter and histogram carry the route pattern", func() {
				So(body, ShouldContainSubstring,
					`pitchperfect_http_requests_total{method="GET",route="/api/matches/{id}",status_code="404"} 1`)
				So(body, ShouldContainSubstring,
					`pitchperfect_http_request_duration_seconds_bucket{method="GET",route="/api/matches/{id}",status_code="404",le="0.1"} 1`)
			})
		})
	})
}

func TestDisabledManager(t *testing.T) {
	Convey("Given a disabled metrics manager", t, func() {
		manager := NewManager(WithMetricsEnabled(false))

		Convey("When events are recorded", func() {
			manager.MatchCreated()
			manager.ReviewSubmitted(2)
			manager.ObserveHTTPRequest("/healthz", http.MethodGet, http.StatusOK, time.Millisecond)

			Convey("Then nothing is counted", func() {
				body := scrape(manager)
				So(body, ShouldNotContainSubstring, "pitchperfect_matches_created_total 1")
				So(body, ShouldNotContainSubstring, "pitchperfect_ratings_applied_total 2")
				So(body, ShouldNotContainSubstring, "http_requests_total{")
			})
		})
	})
}
