package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// showSpeedChart renders a quick line chart (HTML) of the raw and
// processed speed series using go-echarts. This is a debugging-only
// endpoint to eyeball the effect of outlier repair without a UI.
func (s *Server) showSpeedChart(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadTrack(w, r)
	if !ok {
		return
	}

	target, ok := s.requestUnits(w, r)
	if !ok {
		return
	}

	raw, processed, err := statsSeries(rec)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(raw) == 0 {
		s.writeJSONError(w, http.StatusNotFound, "track has no speed intervals")
		return
	}

	raw = convertSeries(raw, target)
	processed = convertSeries(processed, target)

	x := make([]string, len(raw))
	rawData := make([]opts.LineData, len(raw))
	for i, v := range raw {
		x[i] = fmt.Sprintf("%d", i)
		rawData[i] = opts.LineData{Value: v}
	}
	processedData := make([]opts.LineData, len(processed))
	for i, v := range processed {
		processedData[i] = opts.LineData{Value: v}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Track Speeds", Theme: "dark", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    rec.Name,
			Subtitle: fmt.Sprintf("track=%s intervals=%d units=%s", rec.ID, len(raw), target),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "interval"}),
		charts.WithYAxisOpts(opts.YAxis{Name: fmt.Sprintf("speed (%s)", target)}),
	)

	line.SetXAxis(x).
		AddSeries("raw", rawData).
		AddSeries("processed", processedData,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
