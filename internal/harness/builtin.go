package harness

import "github.com/roach88/viewcheck/public"

// Element ids of the dashboard widget.
const (
	IDBatteryLevel = "battery-level"
	IDCustomID     = "custom-id"
	IDClock        = "clock"
	IDFullViewOnly = "full-view-only"
)

// MiniViewClass is the body class of the compact default rendering.
const MiniViewClass = "mini-view"

// MiniViewSuite checks the widget's default rendering: the compact view with
// its status fields, and the history section hidden.
func MiniViewSuite() *Suite {
	return &Suite{
		Name:        "mini_view",
		Description: "Dashboard widget renders the Mini View by default",
		Snapshot:    public.IndexPath,
		Cases: []Case{
			{
				Name:        "renders the Mini View elements by default",
				Description: "Body carries the mini-view class and the status fields exist",
				Checks: []Check{
					{Type: CheckClassEquals, Expect: MiniViewClass},
					{Type: CheckPresent, ID: IDBatteryLevel},
					{Type: CheckPresent, ID: IDCustomID},
					{Type: CheckPresent, ID: IDClock},
				},
			},
			{
				Name:        "hides the history in the Mini View",
				Description: "The full-view-only region is hidden inline",
				Checks: []Check{
					{Type: CheckStyleEquals, ID: IDFullViewOnly, Property: "display", Expect: "none"},
				},
			},
		},
	}
}
