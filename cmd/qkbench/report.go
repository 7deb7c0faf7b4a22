// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/tools/benchmark/parse"
)

// benchRow is one benchmark result split into kernel and variant.
type benchRow struct {
	Kernel  string
	Variant string
	NsPerOp float64
	MBPerS  float64
	Allocs  uint64
}

func newReportCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize go test -bench output by kernel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := cmd.InOrStdin()
			if input != "" && input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return fmt.Errorf("open benchmark output: %w", err)
				}
				defer f.Close()
				r = f
			}
			rows, err := parseBenchRows(r)
			if err != nil {
				return err
			}
			writeReport(cmd.OutOrStdout(), rows)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "benchmark output file (default stdin)")
	return cmd
}

// parseBenchRows reads go test -bench output. When a benchmark ran more
// than once, the last measurement wins.
func parseBenchRows(r io.Reader) ([]benchRow, error) {
	set, err := parse.ParseSet(r)
	if err != nil {
		return nil, fmt.Errorf("parse benchmark output: %w", err)
	}
	var rows []benchRow
	for name, runs := range set {
		if len(runs) == 0 {
			continue
		}
		b := runs[len(runs)-1]
		kernel, variant := splitBenchName(name)
		rows = append(rows, benchRow{
			Kernel:  kernel,
			Variant: variant,
			NsPerOp: b.NsPerOp,
			MBPerS:  b.MBPerS,
			Allocs:  b.AllocsPerOp,
		})
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no benchmark results found")
	}
	return rows, nil
}

// splitBenchName maps "BenchmarkFullyConnected/direct/1x256x256-8" to
// ("FullyConnected", "direct/1x256x256").
func splitBenchName(name string) (kernel, variant string) {
	name = strings.TrimPrefix(name, "Benchmark")
	if i := strings.LastIndexByte(name, '-'); i > 0 {
		if _, err := strconv.Atoi(name[i+1:]); err == nil {
			name = name[:i]
		}
	}
	kernel, variant, _ = strings.Cut(name, "/")
	return kernel, variant
}

func writeReport(w io.Writer, rows []benchRow) {
	p := message.NewPrinter(language.English)
	title := cases.Title(language.English, cases.NoLower)

	groups := lo.GroupBy(rows, func(r benchRow) string { return r.Kernel })
	kernels := lo.Keys(groups)
	slices.Sort(kernels)

	for _, kernel := range kernels {
		group := groups[kernel]
		slices.SortFunc(group, func(a, b benchRow) int { return strings.Compare(a.Variant, b.Variant) })
		width := max(8, lo.Max(lo.Map(group, func(r benchRow, _ int) int { return len(r.Variant) })))

		p.Fprintf(w, "%s\n", title.String(kernel))
		for _, r := range group {
			variant := r.Variant
			if variant == "" {
				variant = "-"
			}
			fmt.Fprintf(w, "  %-*s", width, variant)
			p.Fprintf(w, " %14.1f ns/op", r.NsPerOp)
			if r.MBPerS > 0 {
				p.Fprintf(w, " %10.2f MB/s", r.MBPerS)
			}
			if r.Allocs > 0 {
				p.Fprintf(w, " %6d allocs/op", r.Allocs)
			}
			fmt.Fprintln(w)
		}
		fastest := lo.MinBy(group, func(a, b benchRow) bool { return a.NsPerOp < b.NsPerOp })
		if len(group) > 1 {
			p.Fprintf(w, "  fastest: %s\n", fastest.Variant)
		}
		fmt.Fprintln(w)
	}
}
