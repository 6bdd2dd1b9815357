package main

import (
	"fmt"
	"io"
	"strings"

	"compass-backend/internal/recommend"
)

const barWidth = 30

// terminalRenderer prints chart and view updates as they arrive.
type terminalRenderer struct {
	w       io.Writer
	verbose bool
	last    recommend.State
}

func (r *terminalRenderer) RenderChart(chart recommend.ChartData) {
	writeChart(r.w, chart)
}

func (r *terminalRenderer) RenderView(v recommend.View) {
	if v.State == r.last && !r.verbose {
		return
	}
	r.last = v.State
	switch v.State {
	case recommend.StateAwaitingInput:
		if r.verbose {
			fmt.Fprintf(r.w, "等待选择: %s\n", joinDimensions(v.Missing))
		}
	case recommend.StateLoading:
		fmt.Fprintln(r.w, "正在生成建议…")
	case recommend.StateReady:
		if v.Result != nil {
			writeResult(r.w, *v.Result)
		}
	case recommend.StateFailed:
		if r.verbose {
			fmt.Fprintln(r.w, v.Message)
		}
	}
}

func writeChart(w io.Writer, chart recommend.ChartData) {
	for i, label := range chart.Labels {
		value := chart.Values[i]
		filled := 0
		if chart.Max > 0 {
			filled = value * barWidth / chart.Max
		}
		fmt.Fprintf(w, "%s %s%s %d/%d\n", label,
			strings.Repeat("█", filled), strings.Repeat("░", barWidth-filled), value, chart.Max)
	}
}

func writeResult(w io.Writer, r recommend.Result) {
	fmt.Fprintf(w, "\n培训重点: %s\n内容建议: %s\n模块组合: %s\n", r.Focus, r.Content, r.Combination)
}
