package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dmitrijs2005/geoposts/internal/client/models"
	"github.com/dmitrijs2005/geoposts/internal/client/services"
	dto "github.com/prometheus/client_model/go"
)

func printFilter(w io.Writer, cats []models.Category) {
	if len(cats) == 0 {
		fmt.Fprintln(w, "Filter: all categories")
		return
	}
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	fmt.Fprintln(w, "Filter:", strings.Join(names, ", "))
}

func printMarkers(w io.Writer, st services.MapState) {
	fmt.Fprintf(w, "%d marker(s) around %.5f, %.5f\n", len(st.Markers), st.Region.Latitude, st.Region.Longitude)
	for _, m := range st.Markers {
		fmt.Fprintf(w, "  #%d at %.5f, %.5f\n", m.ID, m.Latitude, m.Longitude)
	}
}

func printPreview(w io.Writer, p *models.PostPreview) {
	if p == nil {
		return
	}
	fmt.Fprintf(w, "[%s] %s\n", p.Category, p.Text)
	if p.Author != "" {
		fmt.Fprintf(w, "  by %s", p.Author)
		if p.Created != nil && !p.Created.IsZero() {
			fmt.Fprintf(w, " on %s", p.Created.Local().Format("2006-01-02 15:04"))
		}
		fmt.Fprintln(w)
	}
	if len(p.Contents) > 0 {
		ids := make([]string, len(p.Contents))
		for i, id := range p.Contents {
			ids[i] = fmt.Sprint(id)
		}
		fmt.Fprintln(w, "  images:", strings.Join(ids, ", "))
	}
	if len(p.Reactions) > 0 {
		fmt.Fprintf(w, "  %d reaction(s)\n", len(p.Reactions))
	}
}

func printDraft(w io.Writer, st services.PostState) {
	if st.DraftID == nil {
		fmt.Fprintf(w, "Draft (%s)\n", st.Status)
	} else {
		fmt.Fprintf(w, "Draft #%d (%s)\n", *st.DraftID, st.Status)
	}
	fmt.Fprintf(w, "  text:     %q\n", st.Text)
	fmt.Fprintf(w, "  category: %s\n", orNone(string(st.Category)))
	fmt.Fprintf(w, "  location: %.5f, %.5f\n", st.Region.Latitude, st.Region.Longitude)

	pending := 0
	for _, c := range st.Contents {
		switch {
		case c.Pending():
			pending++
			fmt.Fprintf(w, "  queued image %d (%d bytes)\n", pending, len(c.Data))
		case c.Unavailable:
			fmt.Fprintf(w, "  image #%d (unavailable)\n", *c.ID)
		default:
			fmt.Fprintf(w, "  image #%d (%d bytes)\n", *c.ID, len(c.Data))
		}
	}
	if st.Err != nil {
		fmt.Fprintln(w, "  last error:", errorMessage(st.Err))
	}
	if st.CanPublish {
		fmt.Fprintln(w, "  ready to publish")
	}
}

// printStats lists gateway counters and latency totals gathered from the
// registry.
func printStats(w io.Writer, mfs []*dto.MetricFamily) {
	var lines []string
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			key := mf.GetName() + "{" + strings.Join(labels, ",") + "}"

			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				lines = append(lines, fmt.Sprintf("%s %g", key, m.GetCounter().GetValue()))
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				lines = append(lines, fmt.Sprintf("%s count=%d sum=%.3fs", key, h.GetSampleCount(), h.GetSampleSum()))
			}
		}
	}
	if len(lines) == 0 {
		fmt.Fprintln(w, "No requests yet.")
		return
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
