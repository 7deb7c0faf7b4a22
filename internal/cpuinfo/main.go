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

// Package main prints the CPU features detected by Go and the lane batch
// widths the quantized kernels will use on this machine.
package main

import (
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sys/cpu"

	"github.com/ajroetker/go-qnn/hwy"
	"github.com/ajroetker/go-qnn/hwy/contrib/dense"
)

func main() {
	fmt.Printf("GOOS: %s\n", runtime.GOOS)
	fmt.Printf("GOARCH: %s\n", runtime.GOARCH)
	fmt.Printf("NumCPU: %d\n", runtime.NumCPU())
	fmt.Println()

	fmt.Printf("Dispatch level: %s\n", hwy.CurrentLevel())
	fmt.Printf("Dispatch width: %d bytes\n", hwy.CurrentWidth())
	fmt.Printf("Dispatch name:  %s\n", hwy.CurrentName())
	fmt.Printf("QNN_NO_SIMD:    %v\n", hwy.NoSimdEnv())
	if v := os.Getenv("QNN_LANE_BYTES"); v != "" {
		fmt.Printf("QNN_LANE_BYTES: %s\n", v)
	}
	fmt.Println()

	fmt.Println("=== Lane batches ===")
	fmt.Printf("  Add int8:           %d lanes\n", hwy.MaxLanes[int8]())
	fmt.Printf("  Add int16:          %d lanes\n", hwy.MaxLanes[int16]())
	fmt.Printf("  Mul:                %d lanes\n", hwy.MaxLanes[int16]())
	fmt.Printf("  FullyConnected:     %d lanes\n", hwy.MaxLanes[int64]())
	fmt.Printf("  Transpose block:    %d rows\n", dense.TransposeBlock)
	fmt.Printf("  FC strategy:        %s\n", dense.CurrentStrategy())
	fmt.Println()

	switch runtime.GOARCH {
	case "arm64":
		printARM64Features()
	case "amd64":
		printAMD64Features()
	}
}

func printARM64Features() {
	fmt.Println("=== golang.org/x/sys/cpu.ARM64 ===")
	fmt.Printf("  HasASIMD:    %v (NEON baseline)\n", cpu.ARM64.HasASIMD)
	fmt.Printf("  HasASIMDDP:  %v (int8 dot product)\n", cpu.ARM64.HasASIMDDP)
	fmt.Printf("  HasASIMDHP:  %v (FP16 NEON)\n", cpu.ARM64.HasASIMDHP)
	fmt.Printf("  HasSVE:      %v (Scalable Vector Extension)\n", cpu.ARM64.HasSVE)
	fmt.Printf("  HasSVE2:     %v (SVE2)\n", cpu.ARM64.HasSVE2)
}

func printAMD64Features() {
	fmt.Println("=== golang.org/x/sys/cpu.X86 ===")
	fmt.Printf("  HasSSE2:       %v\n", cpu.X86.HasSSE2)
	fmt.Printf("  HasSSE41:      %v\n", cpu.X86.HasSSE41)
	fmt.Printf("  HasAVX2:       %v\n", cpu.X86.HasAVX2)
	fmt.Printf("  HasAVX512F:    %v\n", cpu.X86.HasAVX512F)
	fmt.Printf("  HasAVX512BW:   %v\n", cpu.X86.HasAVX512BW)
	fmt.Printf("  HasAVX512VNNI: %v (int8 dot product)\n", cpu.X86.HasAVX512VNNI)
	fmt.Printf("  HasAVX512VL:   %v\n", cpu.X86.HasAVX512VL)
}
