// Copyright 2017-25 the original author or authors.
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
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/destel/rill"
	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	pbar "gopkg.in/cheggaaa/pb.v1"

	"github.com/tilecore/osmpbf"
	"github.com/tilecore/osmpbf/model"
)

func init() {
	rootCmd.AddCommand(infoCmd)

	flags := infoCmd.Flags()
	flags.BoolP("json", "j", false, "format information in JSON")
	flags.Uint16P("cpu", "c", uint16(runtime.GOMAXPROCS(-1)), "number of independent parsers to use for an extended scan")
	flags.BoolP("extended", "e", false, "provide extended information (scans entire file)")
}

type extendedHeader struct {
	*model.Header

	NodeCount     int64 `json:"node_count,omitempty"`
	WayCount      int64 `json:"way_count,omitempty"`
	RelationCount int64 `json:"relation_count,omitempty"`
}

var infoCmd = &cobra.Command{
	Use:   "info <OSM file>",
	Short: "Print information about an OSM PBF file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		flags := cmd.Flags()

		ncpu, err := flags.GetUint16("cpu")
		if err != nil {
			return err
		}

		extended, err := flags.GetBool("extended")
		if err != nil {
			return err
		}

		jsonfmt, err := flags.GetBool("json")
		if err != nil {
			return err
		}

		info, err := runInfo(cmd.Context(), path, ncpu, extended)
		if err != nil {
			return err
		}

		if jsonfmt {
			return renderJSON(info, extended)
		}

		renderTxt(info, extended)

		return nil
	},
}

// runInfo opens path once to read its header, then, for an extended scan,
// fans out across ncpu independent *osmpbf.Parser instances (a Parser is
// not safe for concurrent use, so parallelism here means "many parsers,"
// not "one parser shared"), each owning a disjoint slice of the file's
// indexed fileblocks.
func runInfo(ctx context.Context, path string, ncpu uint16, extended bool) (*extendedHeader, error) {
	p, err := osmpbf.Open(path)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	info := &extendedHeader{Header: p.Header()}

	if !extended {
		return info, nil
	}

	total := p.Size()
	if total == 0 {
		return info, nil
	}

	bar := pbar.New(total).SetWidth(79)
	bar.Output = os.Stderr
	bar.Start()
	defer bar.Finish()

	n := int(ncpu)
	if n < 1 {
		n = 1
	}

	results := scanBlocks(ctx, path, total, n, bar)

	for r := range results {
		if r.Error != nil {
			return nil, r.Error
		}

		info.NodeCount += r.Value.nodes
		info.WayCount += r.Value.ways
		info.RelationCount += r.Value.relations
	}

	return info, nil
}

type blockCounts struct {
	nodes, ways, relations int64
}

// scanBlocks partitions [0, total) fileblock ordinals across n workers,
// each with its own Parser, and streams one blockCounts per scanned
// fileblock back on the returned channel — the same rill.Try[T] shape the
// teacher's goroutine decode pipeline uses to carry a value-or-
// error across a channel.
func scanBlocks(ctx context.Context, path string, total, n int, bar *pbar.ProgressBar) <-chan rill.Try[blockCounts] {
	out := make(chan rill.Try[blockCounts])

	work := make(chan int)

	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			worker, err := osmpbf.Open(path)
			if err != nil {
				out <- rill.Try[blockCounts]{Error: err}
				return
			}
			defer worker.Close()

			for idx := range work {
				if err := ctx.Err(); err != nil {
					return
				}

				if err := worker.Seek(idx); err != nil {
					slog.Error("seeking fileblock", "index", idx, "error", err)
					out <- rill.Try[blockCounts]{Error: err}

					return
				}

				nodes, ways, relations := worker.Data()
				out <- rill.Try[blockCounts]{Value: blockCounts{
					nodes:     int64(len(nodes)),
					ways:      int64(len(ways)),
					relations: int64(len(relations)),
				}}

				bar.Increment()
			}
		}()
	}

	go func() {
		defer close(work)

		for i := 0; i < total; i++ {
			select {
			case <-ctx.Done():
				return
			case work <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

func renderJSON(info *extendedHeader, extended bool) error {
	var v any = info.Header
	if extended {
		v = info
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	fmt.Println(string(b))

	return nil
}

func renderTxt(info *extendedHeader, extended bool) {
	h := info.Header

	fmt.Printf("BoundingBox: %s\n", h.BoundingBox)
	fmt.Printf("RequiredFeatures: %s\n", strings.Join(h.RequiredFeatures, ", "))
	fmt.Printf("OptionalFeatures: %s\n", strings.Join(h.OptionalFeatures, ", "))
	fmt.Printf("WritingProgram: %s\n", h.WritingProgram)
	fmt.Printf("Source: %s\n", h.Source)
	fmt.Printf("OsmosisReplicationTimestamp: %s\n", h.OsmosisReplicationTimestamp.UTC().Format(time.RFC3339))
	fmt.Printf("OsmosisReplicationSequenceNumber: %d\n", h.OsmosisReplicationSequenceNumber)
	fmt.Printf("OsmosisReplicationBaseURL: %s\n", h.OsmosisReplicationBaseURL)

	if extended {
		fmt.Printf("NodeCount: %s\n", humanize.Comma(info.NodeCount))
		fmt.Printf("WayCount: %s\n", humanize.Comma(info.WayCount))
		fmt.Printf("RelationCount: %s\n", humanize.Comma(info.RelationCount))
	}
}
