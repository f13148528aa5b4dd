package utils

import (
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

const (
	StatsViewAddr = "localhost:18066"
	StatsViewPath = "/debug/statsview"
)

// LaunchStatsView serves runtime charts on addr in a new goroutine. The
// returned func shuts the server down.
func LaunchStatsView(addr string) (stop func()) {
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()
	go mgr.Start()
	return mgr.Stop
}
