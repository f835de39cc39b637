// Package viewtest provides fakes and a tester for element view tests.
//
// # Quick Start
//
//	func TestHeading(t *testing.T) {
//	    tester := viewtest.NewTesterWithT(t)
//	    el := tester.Mount("abc123", schema, map[string]any{"title": "Hi"})
//
//	    el.Settings().Set("title_color", "#f00")
//	    tester.Pump()
//
//	    if !strings.Contains(tester.Stylesheet(el), "color:#f00") {
//	        t.Error("expected color rule")
//	    }
//	}
//
// # Remote Renders
//
// The fake back end holds every request until the test answers it:
//
//	tester.Remote.Respond(0, "<p>markup</p>")
//	tester.WaitPosted(time.Second)
//	tester.Pump()
//
// # Snapshot Testing
//
//	tester.Capture(el).MatchesFile(t, "testdata/heading.snapshot.json")
//
// Update snapshots with:
//
//	PAGEBUILDER_UPDATE_SNAPSHOTS=1 go test ./...
package viewtest
