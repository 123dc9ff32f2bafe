package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ChristianF88/bitsort/output"
	"github.com/ChristianF88/bitsort/radix"
)

// maxVectorLen caps how many elements of a vector the detail panel shows.
const maxVectorLen = 256

// SummaryText renders the report header panel.
func SummaryText(report *output.JSONOutput) string {
	var b strings.Builder
	b.WriteString("[white::b]Sort Summary[white::-]\n\n")
	if report == nil {
		b.WriteString("[dim]no report[white]\n")
		return b.String()
	}
	g := report.General
	fmt.Fprintf(&b, "[dim]Elements:[white] %s  ", output.FormatNumber(g.Length))
	fmt.Fprintf(&b, "[dim]Max value:[white] %d  ", g.MaxValue)
	fmt.Fprintf(&b, "[dim]Passes:[white] %d\n", g.Digits)
	fmt.Fprintf(&b, "[dim]Workers:[white] %d  ", g.Workers)
	fmt.Fprintf(&b, "[dim]Grain:[white] %s  ", output.FormatNumber(g.Grain))
	fmt.Fprintf(&b, "[dim]Counters:[white] %d-bit\n", g.CounterBits)
	fmt.Fprintf(&b, "[dim]Sort time:[white] %dus  ", g.Sorting.DurationUS)
	fmt.Fprintf(&b, "[dim]Rate:[white] %s keys/sec\n", output.FormatNumber(int(g.Sorting.RatePerSecond)))
	if v := report.Verification; v != nil {
		if v.OK() {
			b.WriteString("[green]verified[white]\n")
		} else {
			fmt.Fprintf(&b, "[red]verification failed[white] sorted=%t permutation=%t\n", v.Sorted, v.Permutation)
		}
	}
	return b.String()
}

// PassTitle is the list entry of one pass.
func PassTitle(p radix.Pass) string {
	return fmt.Sprintf("bit %2d  %d|%d", p.Bit, p.Zeros, p.Ones)
}

// PassText renders the detail panel of one pass.
func PassText(p radix.Pass) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[white::b]Pass %d[white::-]  bit %d  mask %#x\n", p.Index, p.Bit, p.Mask)
	fmt.Fprintf(&b, "[dim]zeros:[white] %d  [dim]ones:[white] %d  [dim]time:[white] %s\n\n", p.Zeros, p.Ones, p.Duration)

	d := p.Detail
	if d == nil {
		b.WriteString("[yellow]vectors were not recorded for this sort[white]\n")
		return b.String()
	}
	writeVector(&b, "input", d.Input)
	writeLabels(&b, "labels", d.Labels)
	writeVector(&b, "zeros", d.ZeroCounts)
	writeVector(&b, "ones", d.OneCounts)
	writeVector(&b, "output", d.Output)
	return b.String()
}

func writeVector(b *strings.Builder, name string, xs []uint64) {
	fmt.Fprintf(b, "[dim]%s[white] ", name)
	for i, x := range xs {
		if i == maxVectorLen {
			fmt.Fprintf(b, " ...%d more", len(xs)-maxVectorLen)
			break
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatUint(x, 10))
	}
	b.WriteByte('\n')
}

// writeLabels colours set bits so the partition is visible at a glance.
func writeLabels(b *strings.Builder, name string, labels []radix.Label) {
	fmt.Fprintf(b, "[dim]%s[white] ", name)
	for i, l := range labels {
		if i == maxVectorLen {
			fmt.Fprintf(b, " ...%d more", len(labels)-maxVectorLen)
			break
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		if l == 1 {
			b.WriteString("[yellow]1[white]")
		} else {
			b.WriteByte('0')
		}
	}
	b.WriteByte('\n')
}

func statusText(passes int) string {
	if passes == 0 {
		return "[yellow]No passes[white] | 'q' to quit"
	}
	return fmt.Sprintf("[yellow]%d passes[white] | Up/Down or n/p to browse, 'q' to quit", passes)
}
