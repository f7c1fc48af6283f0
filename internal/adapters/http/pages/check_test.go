package pages

import (
	"context"
	"net/http"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pagewatch/internal/adapters/monitorapi"
	"github.com/okian/pagewatch/internal/domain/model"
)

func detailedCheck(id string) *model.Check {
	return &model.Check{
		ID:              id,
		Name:            strPtr("Prices"),
		URL:             "https://shop.example.com/prices",
		Interval:        15,
		ChangeThreshold: floatPtr(5),
		Status:          model.StatusActive,
		LastResult:      model.ResultNoChange,
		LastCheckedAt:   ts("2024-01-02T03:04:05Z"),
	}
}

func TestDetailsPage(t *testing.T) {
	Convey("Given a known check", t, func() {
		api := newFakeAPI()
		api.get = func(_ context.Context, id string) (*model.Check, error) { return detailedCheck(id), nil }
		h := newTestServer(api)

		Convey("When its details page is opened", func() {
			w := get(h, "/check/abc")
			body := w.Body.String()

			Convey("Then the fixed fields are filled in", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(api.lastID, ShouldEqual, "abc")
				So(body, ShouldContainSubstring, `<h1 id="monitorNameTitle">Prices</h1>`)
				So(body, ShouldContainSubstring, `<a id="monitorUrl" href="https://shop.example.com/prices"`)
				So(body, ShouldContainSubstring, `<dd id="monitorSelector">Whole page</dd>`)
				So(body, ShouldContainSubstring, `<dd id="monitorThreshold">5%</dd>`)
				So(body, ShouldContainSubstring, `<dd id="monitorInterval">15</dd>`)
				So(body, ShouldContainSubstring, `data-status="active">Active</dd>`)
				So(body, ShouldContainSubstring, `<dd id="lastCheckTime">2024-01-02 03:04:05</dd>`)
				So(body, ShouldContainSubstring, `<dd id="nextCheckTime">Not scheduled</dd>`)
				So(body, ShouldContainSubstring, `class="status-no_change">No change</dd>`)
			})

			Convey("Then the actions post to the check's routes", func() {
				So(body, ShouldContainSubstring, `action="/check/abc/manual-check"`)
				So(body, ShouldContainSubstring, `action="/check/abc/toggle-status"`)
				So(body, ShouldContainSubstring, `action="/check/abc/delete"`)
				So(body, ShouldContainSubstring, `href="/check/abc/edit"`)
				So(body, ShouldContainSubstring, ">Pause<")
			})

			Convey("Then the delete confirmation is localized", func() {
				So(body, ShouldContainSubstring, `data-confirm="Delete this check?"`)
			})

			Convey("Then the history section is a placeholder", func() {
				So(body, ShouldContainSubstring, `id="checkHistoryList"`)
				So(body, ShouldContainSubstring, "History will be available later.")
			})
		})

		Convey("When the id needs escaping", func() {
			w := get(h, "/check/my%20check")

			Convey("Then the decoded id is fetched", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(api.lastID, ShouldEqual, "my check")
			})
		})

		Convey("When the id contains URL syntax", func() {
			body := get(h, "/check/a%3Fb").Body.String()

			Convey("Then every action path keeps it escaped", func() {
				So(api.lastID, ShouldEqual, "a?b")
				So(body, ShouldContainSubstring, `action="/check/a%3Fb/manual-check"`)
				So(body, ShouldContainSubstring, `action="/check/a%3Fb/toggle-status"`)
				So(body, ShouldContainSubstring, `action="/check/a%3Fb/delete"`)
				So(body, ShouldContainSubstring, `href="/check/a%3Fb/edit"`)
			})
		})
	})

	Convey("Given a request without a usable check id", t, func() {
		api := newFakeAPI()
		h := newTestServer(api)

		for _, target := range []string{"/check", "/check/", "/check/a%2Fb", "/check/%2E%2E"} {
			w := get(h, target)

			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldContainSubstring, "Could not determine the check ID.")
		}
		So(api.total(), ShouldEqual, 0)
	})

	Convey("Given a check the backend does not know", t, func() {
		api := newFakeAPI()
		api.get = func(context.Context, string) (*model.Check, error) {
			return nil, &monitorapi.APIError{Op: monitorapi.OpGetCheck, Status: 404, StatusText: "Not Found", Message: "Check not found"}
		}
		w := get(newTestServer(api), "/check/gone")

		So(w.Code, ShouldEqual, http.StatusNotFound)
		So(w.Body.String(), ShouldContainSubstring, "Could not load check details: Check not found")
		So(w.Body.String(), ShouldNotContainSubstring, `id="monitorNameTitle"`)
	})

	Convey("Given a backend that fails the lookup", t, func() {
		api := newFakeAPI()
		api.get = func(context.Context, string) (*model.Check, error) {
			return nil, &monitorapi.APIError{Op: monitorapi.OpGetCheck, Status: 500, Message: "db locked"}
		}
		w := get(newTestServer(api), "/check/abc")

		So(w.Code, ShouldEqual, http.StatusOK)
		So(w.Body.String(), ShouldContainSubstring, "Could not load check details: db locked")
		So(w.Body.String(), ShouldContainSubstring, `href="/check/abc"`)
	})
}

func TestCheckActions(t *testing.T) {
	Convey("Given a check", t, func() {
		api := newFakeAPI()
		h := newTestServer(api)

		Convey("When it is run manually", func() {
			w := post(h, "/check/abc/manual-check", nil)

			Convey("Then the browser is sent back to the details with the result", func() {
				So(w.Code, ShouldEqual, http.StatusSeeOther)
				So(w.Header().Get("Location"), ShouldEqual, "/check/abc?notice=manual&result=changed")
				So(api.count("manual"), ShouldEqual, 1)
			})
		})

		Convey("When it is paused", func() {
			w := post(h, "/check/abc/toggle-status", nil)

			Convey("Then the new status is carried to the details page", func() {
				So(w.Code, ShouldEqual, http.StatusSeeOther)
				So(w.Header().Get("Location"), ShouldEqual, "/check/abc?notice=toggled&status=paused")
			})
		})

		Convey("When it is deleted", func() {
			w := post(h, "/check/abc/delete", nil)

			Convey("Then the browser goes back to the list", func() {
				So(w.Code, ShouldEqual, http.StatusSeeOther)
				So(w.Header().Get("Location"), ShouldEqual, "/?notice=deleted")
				So(api.lastID, ShouldEqual, "abc")
			})
		})

		Convey("When the backend refuses an action", func() {
			api.toggle = func(context.Context, string) (*model.ToggleResult, error) {
				return nil, &monitorapi.APIError{Op: monitorapi.OpToggleStatus, Status: 409, Message: "job busy"}
			}
			w := post(h, "/check/abc/toggle-status", nil)

			Convey("Then the details page is shown again with the reason", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "Action failed: job busy")
				So(w.Body.String(), ShouldContainSubstring, `id="monitorNameTitle"`)
				So(api.count("get"), ShouldEqual, 1)
			})
		})

		Convey("When an action targets an unusable id", func() {
			w := post(h, "/check/a%2Fb/delete", nil)

			Convey("Then nothing is sent", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(api.total(), ShouldEqual, 0)
			})
		})
	})
}

func TestNotices(t *testing.T) {
	Convey("Given redirect notices", t, func() {
		h := newTestServer(newFakeAPI())

		Convey("Then known notices are shown", func() {
			So(get(h, "/?notice=deleted").Body.String(), ShouldContainSubstring, "Check deleted.")
			So(get(h, "/?notice=created").Body.String(), ShouldContainSubstring, "Check added successfully!")
			So(get(h, "/check/abc?notice=toggled&status=paused").Body.String(), ShouldContainSubstring, "Check is now Paused.")
			So(get(h, "/check/abc?notice=manual&result=no_change").Body.String(), ShouldContainSubstring, "Check ran: No change")
			So(get(h, "/check/abc?notice=updated").Body.String(), ShouldContainSubstring, "Check updated.")
		})

		Convey("Then unknown notices and values are ignored", func() {
			So(get(h, "/?notice=pwned").Body.String(), ShouldNotContainSubstring, `class="notice`)
			So(get(h, "/check/abc?notice=toggled&status=%3Cb%3E").Body.String(), ShouldNotContainSubstring, "Check is now")
		})
	})
}
