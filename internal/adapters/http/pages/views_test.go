package pages

import (
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/pagewatch/internal/domain/model"
)

func testBuilder() viewBuilder {
	now := time.Date(2024, 1, 2, 4, 4, 5, 0, time.UTC)
	return viewBuilder{
		msgs:       catalogFor("en"),
		loc:        time.UTC,
		now:        func() time.Time { return now },
		previewLen: 10,
		urlLen:     20,
	}
}

func TestTruncate(t *testing.T) {
	convey.Convey("Given strings of different lengths", t, func() {
		convey.So(truncate("short", 10), convey.ShouldEqual, "short")
		convey.So(truncate("exactly10!", 10), convey.ShouldEqual, "exactly10!")
		convey.So(truncate("a little too long", 10), convey.ShouldEqual, "a little t...")
		convey.So(truncate("перевірка сайту", 9), convey.ShouldEqual, "перевірка...")
		convey.So(truncate("anything", 0), convey.ShouldEqual, "anything")
	})
}

func TestCheckItemView(t *testing.T) {
	convey.Convey("Given a check with long content", t, func() {
		b := testBuilder()
		c := &model.Check{
			ID:             "a/b c",
			URL:            "https://example.com/a/very/long/path",
			Interval:       5,
			LastResult:     "CHANGED",
			LastCheckedAt:  ts("2024-01-02T03:04:05Z"),
			CurrentContent: strPtr("one\n  two   three four"),
		}
		item := b.checkItem(c)

		convey.So(item.Href, convey.ShouldEqual, "/check/a%2Fb%20c")
		convey.So(item.Name, convey.ShouldEqual, "Unnamed")
		convey.So(item.URLText, convey.ShouldEqual, "https://example.com/...")
		convey.So(item.Preview, convey.ShouldEqual, "one two th...")
		convey.So(item.BadgeClass, convey.ShouldEqual, "status-changed")
		convey.So(item.BadgeLabel, convey.ShouldEqual, "Changed")
		convey.So(item.LastChecked, convey.ShouldEqual, "2024-01-02 03:04:05")
		convey.So(item.LastAgo, convey.ShouldEqual, "1 hour ago")
		convey.So(item.NextCheck, convey.ShouldEqual, "Not scheduled")
	})

	convey.Convey("Given a check with only a last extracted value", t, func() {
		item := testBuilder().checkItem(&model.Check{ID: "x", LastExtractedValue: strPtr("42")})

		convey.So(item.Preview, convey.ShouldEqual, "42")
		convey.So(item.LastChecked, convey.ShouldEqual, "Never checked")
	})
}

func TestStatusView(t *testing.T) {
	convey.Convey("Given overdue jobs with fractional seconds", t, func() {
		st := testBuilder().status(&model.SystemStatus{
			SchedulerStatus:     "Running",
			ActiveScheduledJobs: intPtr(1234567),
			OverdueJobs: []model.OverdueJob{
				{ID: "j1", OverdueBySeconds: 59.6},
				{ID: "j2", Name: "Slow", OverdueBySeconds: 7200},
			},
		})

		convey.So(st.Running, convey.ShouldBeTrue)
		convey.So(st.ActiveJobs, convey.ShouldEqual, "1,234,567")
		convey.So(st.OverdueTitle, convey.ShouldEqual, "2 overdue job(s)")
		convey.So(st.Overdue, convey.ShouldHaveLength, 2)
		convey.So(st.Overdue[0].Name, convey.ShouldEqual, "j1")
		convey.So(st.Overdue[0].Seconds, convey.ShouldEqual, int64(60))
		convey.So(st.Overdue[0].Human, convey.ShouldEqual, "1 minute")
		convey.So(st.Overdue[1].Human, convey.ShouldEqual, "2 hours")
		convey.So(st.TimeUTC, convey.ShouldEqual, "N/A")
	})
}

func TestDetailsView(t *testing.T) {
	convey.Convey("Given a check with a fractional threshold and a selector", t, func() {
		d := testBuilder().details(&model.Check{
			ID:              "x",
			Selector:        strPtr(" .price "),
			ChangeThreshold: floatPtr(12.5),
			Status:          "PAUSED",
		})

		convey.So(d.Threshold, convey.ShouldEqual, "12.5%")
		convey.So(d.Selector, convey.ShouldEqual, ".price")
		convey.So(d.Name, convey.ShouldEqual, "N/A")
		convey.So(d.NameTitle, convey.ShouldEqual, "Unnamed")
		convey.So(d.StatusLabel, convey.ShouldEqual, "Paused")
		convey.So(d.Paused, convey.ShouldBeTrue)
		convey.So(d.LastResult, convey.ShouldEqual, "No data")
	})
}

func TestCatalog(t *testing.T) {
	convey.Convey("Given the message catalogs", t, func() {
		en := catalogFor("en")
		uk := catalogFor("uk")

		convey.Convey("Then every English key has a Ukrainian entry", func() {
			for key := range en {
				_, ok := uk[key]
				convey.So(ok, convey.ShouldBeTrue)
			}
		})

		convey.Convey("Then unknown keys come back unchanged", func() {
			convey.So(en.T("no.such.key"), convey.ShouldEqual, "no.such.key")
		})

		convey.Convey("Then arguments are formatted", func() {
			convey.So(en.T("list.interval", 5), convey.ShouldEqual, "Every 5 min")
		})
	})
}
