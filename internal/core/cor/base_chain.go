// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cor

import (
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

// BaseChain runs its commands in order.
//
// For every command the chain:
//  1. stops if an earlier command recorded an error, unless ContinueOnFailure
//     was set,
//  2. opens a child span and hands the command a Go context bound to it,
//  3. runs Execute when IsExecutable allows it, timing the call,
//  4. moves the command's CtxOut value to CtxIn for the next command.
type BaseChain struct {
	BaseCommand
	continueOnFailure bool
	commands          []Command
}

// NewBaseChain creates an empty chain.
//
// Inputs:
//   - name: The chain name. It names the chain's span ("<name>_execute") and
//     its metrics, and is attached to every command span as the "chain"
//     attribute.
//
// Outputs:
//   - *BaseChain: A chain that stops at the first failure. Call
//     ContinueOnFailure(true) to change that.
func NewBaseChain(name string) *BaseChain {
	return &BaseChain{BaseCommand: *NewBaseCommand(name)}
}

func (c *BaseChain) ContinueOnFailure(continueOnFailure bool) Chain {
	c.continueOnFailure = continueOnFailure
	return c
}

func (c *BaseChain) AddCommand(command Command) Chain {
	c.commands = append(c.commands, command)
	return c
}

// Commands returns the chain's commands in execution order.
func (c *BaseChain) Commands() []Command {
	return append([]Command(nil), c.commands...)
}

// IsExecutable only needs a Go context; the first command checks the input.
func (c *BaseChain) IsExecutable(context Context) bool {
	return context != nil && context.GetContext() != nil
}

// Execute runs every command against chCtx.
//
// Inputs:
//   - chCtx: The shared workflow context. Its CtxIn value is the first
//     command's input and its Go context is the parent of the chain span.
//
// Outputs:
//   - None directly. Errors are recorded in chCtx and the last command's
//     output is left under CtxIn. The Go context is restored on return.
func (c *BaseChain) Execute(chCtx Context) {
	parentCtx := chCtx.GetContext()
	outerCtx, chainSpan := c.Tracer.Start(parentCtx, fmt.Sprintf("%s_execute", c.GetName()))
	defer chainSpan.End()
	defer chCtx.SetContext(parentCtx)

	for _, command := range c.commands {
		if chCtx.HasErrors() && !c.continueOnFailure {
			slog.DebugContext(outerCtx, "skipping command after earlier failure", "chain", c.GetName(), "command", command.GetName())
			break
		}

		commandCtx, commandSpan := c.Tracer.Start(outerCtx, command.GetName())
		errorsBefore := len(chCtx.GetErrors())

		if command.IsExecutable(chCtx) {
			chCtx.SetContext(commandCtx)
			start := time.Now()
			command.Execute(chCtx)
			elapsed := float64(time.Since(start).Microseconds()) / 1000
			if h := command.GetDurationHistogram(); h != nil {
				h.Record(commandCtx, elapsed, metric.WithAttributes(attribute.String("chain", c.GetName())))
			}
			chCtx.SetContext(outerCtx)
		} else {
			commandSpan.SetAttributes(attribute.Bool("cor.skipped", true))
			slog.DebugContext(commandCtx, "command not executable", "chain", c.GetName(), "command", command.GetName())
		}

		if len(chCtx.GetErrors()) > errorsBefore {
			commandSpan.SetStatus(codes.Error, "command recorded an error")
		} else {
			commandSpan.SetStatus(codes.Ok, "")
		}
		commandSpan.End()

		out := chCtx.Get(CtxOut)
		chCtx.Remove(CtxIn)
		if out != nil {
			chCtx.Add(CtxIn, out)
		}
		chCtx.Remove(CtxOut)
	}

	if chCtx.HasErrors() {
		chainSpan.SetStatus(codes.Error, "chain failed to execute")
	} else {
		chainSpan.SetStatus(codes.Ok, "")
	}
}
