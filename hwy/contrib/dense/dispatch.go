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

package dense

import (
	"fmt"
	"os"
	"strings"
)

// Strategy selects the fully-connected traversal.
type Strategy int

const (
	// StrategyDirect walks the input row once per output channel.
	StrategyDirect Strategy = iota
	// StrategyBlocked transposes the weights and walks the input row once
	// per block of output channels.
	StrategyBlocked
)

func (s Strategy) String() string {
	switch s {
	case StrategyDirect:
		return "direct"
	case StrategyBlocked:
		return "blocked"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy parses "direct" or "blocked", ignoring case.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "direct", "a":
		return StrategyDirect, nil
	case "blocked", "b":
		return StrategyBlocked, nil
	}
	return StrategyDirect, fmt.Errorf("unknown fully-connected strategy %q", name)
}

// FullyConnectedInt8 computes an 8-bit fully-connected layer with int32 bias.
// It is bound at init to the strategy named by QNN_FC_STRATEGY.
var FullyConnectedInt8 func(p Params, input []int8, weights []int8, bias []int32, output []int8, batches, depth, outChannels int)

// FullyConnectedInt16 computes a 16-bit fully-connected layer with int64 bias.
// It is bound at init to the strategy named by QNN_FC_STRATEGY.
var FullyConnectedInt16 func(p Params, input []int16, weights []int8, bias []int64, output []int16, batches, depth, outChannels int)

var currentStrategy Strategy

// CurrentStrategy returns the strategy bound to the typed entry points.
func CurrentStrategy() Strategy {
	return currentStrategy
}

// strategyEnv returns the strategy named by QNN_FC_STRATEGY, or
// StrategyDirect when the variable is unset or unrecognized.
func strategyEnv() Strategy {
	raw := os.Getenv("QNN_FC_STRATEGY")
	if raw == "" {
		return StrategyDirect
	}
	s, err := ParseStrategy(raw)
	if err != nil {
		return StrategyDirect
	}
	return s
}

func setStrategy(s Strategy) {
	currentStrategy = s
	switch s {
	case StrategyBlocked:
		FullyConnectedInt8 = FullyConnectedBlocked[int8, int32]
		FullyConnectedInt16 = FullyConnectedBlocked[int16, int64]
	default:
		currentStrategy = StrategyDirect
		FullyConnectedInt8 = FullyConnected[int8, int32]
		FullyConnectedInt16 = FullyConnected[int16, int64]
	}
}

func init() {
	setStrategy(strategyEnv())
}
