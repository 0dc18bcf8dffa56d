// Package clock provides the get_current_time tool.
package clock

import (
	"time"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/tool"
)

// Layout is the format of returned timestamps.
const Layout = "2006-01-02 15:04:05"

// Args is empty; the tool takes no arguments.
type Args struct{}

// Now returns a tool reporting the current local time.
func Now() tool.Tool { return NowFunc(time.Now) }

// NowFunc is Now with an injectable clock.
func NowFunc(now func() time.Time) tool.Tool {
	return tool.NewTypedTool("get_current_time", "Returns the current local date and time.",
		func(_ *core.ToolContext, _ Args) (string, error) {
			return now().Format(Layout), nil
		})
}
