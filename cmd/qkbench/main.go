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

// Command qkbench checks and summarizes the quantized kernels.
//
//	qkbench verify [--seed N] [--max-depth N] [--max-out N]
//	go test -bench . ./hwy/contrib/... | qkbench report
//
// verify runs randomized sweeps comparing the direct and blocked
// fully-connected strategies and every kernel at several lane batch widths
// against element-at-a-time execution. report groups benchmark output by
// kernel.
package main

import (
	"log"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "qkbench",
		Short:         "Verify and benchmark quantized integer kernels",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newVerifyCmd(), newReportCmd())
	return root
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("qkbench: ")
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}
