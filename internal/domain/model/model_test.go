package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/pagewatch/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestCheckDecoding(t *testing.T) {
	convey.Convey("Given a check payload from the list endpoint", t, func() {
		payload := `{
			"id": "42",
			"name": "  Docs  ",
			"url": "https://example.com/docs",
			"selector": null,
			"interval": 15,
			"change_threshold": 12.5,
			"status": "active",
			"last_result": "changed",
			"last_checked_at": "2024-05-01T10:00:00",
			"next_check_at": "2024-05-01T10:15:00+02:00",
			"last_extracted_value": "old",
			"current_content": "new"
		}`

		var c model.Check
		err := json.Unmarshal([]byte(payload), &c)

		convey.Convey("Then every field is decoded", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(c.ID, convey.ShouldEqual, "42")
			convey.So(c.DisplayName(), convey.ShouldEqual, "Docs")
			convey.So(c.SelectorText(), convey.ShouldEqual, "")
			convey.So(*c.ChangeThreshold, convey.ShouldEqual, 12.5)
			convey.So(c.IsPaused(), convey.ShouldBeFalse)
			convey.So(c.LastResult.Normalize(), convey.ShouldEqual, model.ResultChanged)
		})

		convey.Convey("Then zone-less times are read as UTC", func() {
			want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
			convey.So(c.LastCheckedAt.Equal(want), convey.ShouldBeTrue)
			convey.So(c.NextCheckAt.UTC().Hour(), convey.ShouldEqual, 8)
		})

		convey.Convey("Then the current value prefers current_content", func() {
			convey.So(c.CurrentValue(), convey.ShouldEqual, "new")
			c.CurrentContent = nil
			convey.So(c.CurrentValue(), convey.ShouldEqual, "old")
			c.LastExtractedValue = nil
			convey.So(c.CurrentValue(), convey.ShouldEqual, "")
		})
	})

	convey.Convey("Given a check with missing optional fields", t, func() {
		var c model.Check
		err := json.Unmarshal([]byte(`{"id":"1","url":"u","interval":1,"last_checked_at":""}`), &c)

		convey.So(err, convey.ShouldBeNil)
		convey.So(c.DisplayName(), convey.ShouldEqual, "")
		convey.So(c.LastResult.Normalize(), convey.ShouldEqual, model.ResultUnknown)
		convey.So(c.LastCheckedAt.Valid(), convey.ShouldBeFalse)
		convey.So(c.NextCheckAt.Valid(), convey.ShouldBeFalse)
	})

	convey.Convey("Given malformed timestamps", t, func() {
		var c model.Check
		err := json.Unmarshal([]byte(`{"id":"1","last_checked_at":"01/05/2024 12:00","next_check_at":42}`), &c)

		convey.Convey("Then the check still decodes with the times unset", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(c.ID, convey.ShouldEqual, "1")
			convey.So(c.LastCheckedAt.Valid(), convey.ShouldBeFalse)
			convey.So(c.NextCheckAt.Valid(), convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given numbers sent as strings", t, func() {
		var c model.Check
		err := json.Unmarshal([]byte(`{"id":"1","interval":" 15 ","change_threshold":"7.5%"}`), &c)

		convey.So(err, convey.ShouldBeNil)
		convey.So(c.Interval, convey.ShouldEqual, 15)
		convey.So(c.ChangeThreshold, convey.ShouldNotBeNil)
		convey.So(*c.ChangeThreshold, convey.ShouldEqual, 7.5)
	})

	convey.Convey("Given numeric fields that are not numbers", t, func() {
		var c model.Check
		err := json.Unmarshal([]byte(`{"id":"1","interval":true,"change_threshold":"lots"}`), &c)

		convey.So(err, convey.ShouldBeNil)
		convey.So(c.Interval, convey.ShouldEqual, 0)
		convey.So(c.ChangeThreshold, convey.ShouldBeNil)
	})

	convey.Convey("Given a paused check", t, func() {
		c := model.Check{Status: " Paused "}
		convey.So(c.IsPaused(), convey.ShouldBeTrue)
	})

	convey.Convey("Given a record that is not an object", t, func() {
		var c model.Check
		convey.So(json.Unmarshal([]byte(`"oops"`), &c), convey.ShouldNotBeNil)
	})
}

func TestTimestampDecoding(t *testing.T) {
	convey.Convey("Given timestamp values of every shape", t, func() {
		cases := map[string]bool{
			`"2024-05-01T12:00:00Z"`:       true,
			`"2024-05-01T12:00:00.123456"`: true,
			`"2024-05-01 12:00:00"`:        true,
			`""`:                           false,
			`"not a time"`:                 false,
			`17`:                           false,
			`{"at":"now"}`:                 false,
		}
		for raw, valid := range cases {
			var ts model.Timestamp
			convey.So(json.Unmarshal([]byte(raw), &ts), convey.ShouldBeNil)
			convey.So(ts.Valid(), convey.ShouldEqual, valid)
		}
	})
}

func TestLastResultNormalize(t *testing.T) {
	convey.Convey("Given raw result values", t, func() {
		cases := map[model.LastResult]model.LastResult{
			"changed":   model.ResultChanged,
			"NO_CHANGE": model.ResultNoChange,
			" error ":   model.ResultError,
			"":          model.ResultUnknown,
			"weird":     model.ResultUnknown,
		}
		for in, want := range cases {
			convey.So(in.Normalize(), convey.ShouldEqual, want)
		}
	})
}

func TestNewCheckEncoding(t *testing.T) {
	convey.Convey("Given a new check with blank optionals", t, func() {
		body, err := json.Marshal(model.NewCheck{URL: "https://example.com", Interval: 5})

		convey.Convey("Then the optionals are sent as null", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(body), convey.ShouldEqual,
				`{"name":null,"url":"https://example.com","selector":null,"change_threshold":null,"interval":5}`)
		})
	})
}

func TestSystemStatus(t *testing.T) {
	convey.Convey("Given a system status payload", t, func() {
		payload := `{
			"scheduler_status": "Running",
			"active_scheduled_jobs": 3,
			"current_time_utc": "2024-05-01T10:00:00Z",
			"app_version": "0.1.2",
			"overdue_jobs_count": 1,
			"overdue_jobs": [{"id":"check_7","name":"Docs","overdue_by_seconds":93.4}]
		}`
		var s model.SystemStatus
		err := json.Unmarshal([]byte(payload), &s)

		convey.So(err, convey.ShouldBeNil)
		convey.So(s.IsRunning(), convey.ShouldBeTrue)
		convey.So(*s.ActiveScheduledJobs, convey.ShouldEqual, 3)
		convey.So(s.HasOverdue(), convey.ShouldBeTrue)
		convey.So(s.OverdueJobs[0].OverdueBySeconds, convey.ShouldAlmostEqual, 93.4)
	})

	convey.Convey("Given a stopped scheduler", t, func() {
		s := model.SystemStatus{SchedulerStatus: "stopped"}
		convey.So(s.IsRunning(), convey.ShouldBeFalse)
		convey.So(s.HasOverdue(), convey.ShouldBeFalse)
	})
}

func TestSchedulerDiagnostics(t *testing.T) {
	convey.Convey("Given diagnostics from a current backend", t, func() {
		var d model.SchedulerDiagnostics
		err := json.Unmarshal([]byte(`{
			"status":"running","jobs_count":2,
			"jobs":[
				{"id":"a","name":"A","next_run_utc":"2024-05-01T10:00:00Z","is_overdue":true},
				{"id":"b","name":"B","next_run_local":"2024-05-01T12:00:00"}
			]}`), &d)

		convey.So(err, convey.ShouldBeNil)
		convey.So(d.JobCount(), convey.ShouldEqual, 2)
		convey.So(d.OverdueCount(), convey.ShouldEqual, 1)
		convey.So(d.Jobs[0].NextRun().UTC().Hour(), convey.ShouldEqual, 10)
		convey.So(d.Jobs[1].NextRun().Hour(), convey.ShouldEqual, 12)
	})

	convey.Convey("Given diagnostics from an older backend", t, func() {
		var d model.SchedulerDiagnostics
		err := json.Unmarshal([]byte(`{"status":"running","total_jobs":5,
			"jobs":[{"id":"a","name":"A","next_run_time":"2024-05-01T10:00:00","trigger":"interval[0:05:00]"}]}`), &d)

		convey.So(err, convey.ShouldBeNil)
		convey.So(d.JobCount(), convey.ShouldEqual, 5)
		convey.So(d.Jobs[0].NextRun().Valid(), convey.ShouldBeTrue)
		convey.So(d.Jobs[0].Trigger, convey.ShouldEqual, "interval[0:05:00]")
	})

	convey.Convey("Given diagnostics without any count", t, func() {
		d := model.SchedulerDiagnostics{Jobs: make([]model.DiagnosticJob, 3)}
		convey.So(d.JobCount(), convey.ShouldEqual, 3)
		convey.So(d.Jobs[0].NextRun(), convey.ShouldBeNil)
	})
}

func TestForceCheckResult(t *testing.T) {
	convey.Convey("Given a force-check reply", t, func() {
		var r model.ForceCheckResult
		convey.So(json.Unmarshal([]byte(`{"message":"Checked 2 jobs","checked":2}`), &r), convey.ShouldBeNil)
		convey.So(r.Message(), convey.ShouldEqual, "Checked 2 jobs")
		convey.So(model.ForceCheckResult{}.Message(), convey.ShouldEqual, "")
	})
}
