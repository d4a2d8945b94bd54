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

package cor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/cor"
	"github.com/zeebo/assert"
)

type appendCommand struct {
	cor.BaseCommand
	suffix string
	fail   bool
}

func newAppend(name, suffix string, fail bool) *appendCommand {
	return &appendCommand{BaseCommand: *cor.NewBaseCommand(name), suffix: suffix, fail: fail}
}

func (a *appendCommand) Execute(context cor.Context) {
	if a.fail {
		a.Fail(context, errors.New("boom"))
		return
	}
	in := context.Get(a.GetInputParam()).(string)
	context.Add(a.GetOutputParam(), in+a.suffix)
	context.AddStat(cor.Stat{Command: a.GetName(), RowsIn: len(in), RowsOut: len(in) + len(a.suffix)})
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func run(chain cor.Chain, input string) cor.Context {
	chCtx := cor.NewBaseContext()
	chCtx.SetContext(context.Background())
	chCtx.Add(cor.CtxIn, input)
	chain.Execute(chCtx)
	return chCtx
}

func TestChainPipesOutputToInput(t *testing.T) {
	chain := cor.NewBaseChain("pipe").
		AddCommand(newAppend("a", "-a", false)).
		AddCommand(newAppend("b", "-b", false))

	chCtx := run(chain, "x")
	assert.Equal(t, chCtx.HasErrors(), false)
	assert.Equal(t, "x-a-b", chCtx.Get(cor.CtxIn))
	assert.Nil(t, chCtx.Get(cor.CtxOut))
	assert.Equal(t, 2, len(chCtx.GetStats()))
	assert.Equal(t, "b", chCtx.GetStats()[1].Command)
}

func TestChainStopsOnFailure(t *testing.T) {
	chain := cor.NewBaseChain("stop").
		AddCommand(newAppend("a", "-a", false)).
		AddCommand(newAppend("broken", "", true)).
		AddCommand(newAppend("c", "-c", false))

	chCtx := run(chain, "x")
	assert.Equal(t, chCtx.HasErrors(), true)
	assert.NotNil(t, chCtx.GetErrors()["broken"])
	assert.Equal(t, 1, len(chCtx.GetStats()))
}

func TestChainContinueOnFailure(t *testing.T) {
	chain := cor.NewBaseChain("continue").
		AddCommand(newAppend("a", "-a", false)).
		AddCommand(newAppend("broken", "", true)).
		AddCommand(newAppend("c", "-c", false)).
		ContinueOnFailure(true)

	chCtx := run(chain, "x")
	assert.Equal(t, chCtx.HasErrors(), true)
	// the failing command produced no output, so "c" has no input to work on
	assert.Equal(t, 1, len(chCtx.GetStats()))
}

func TestCustomParams(t *testing.T) {
	cmd := newAppend("named", "!", false)
	cmd.WithParams("greeting", "shout")

	chCtx := cor.NewBaseContext()
	chCtx.Add("greeting", "hi")
	assert.Equal(t, cmd.IsExecutable(chCtx), true)
	cmd.Execute(chCtx)
	assert.Equal(t, "hi!", chCtx.Get("shout"))
}

func TestNotExecutableWithoutInput(t *testing.T) {
	cmd := newAppend("idle", "", false)
	assert.Equal(t, cmd.IsExecutable(cor.NewBaseContext()), false)
}

func TestCloseReleasesInReverseOrder(t *testing.T) {
	var order []int
	chCtx := cor.NewBaseContext()
	chCtx.AddCloser(closerFunc(func() error { order = append(order, 1); return nil }))
	chCtx.AddCloser(closerFunc(func() error { order = append(order, 2); return errors.New("ignored") }))
	chCtx.Close()
	assert.DeepEqual(t, []int{2, 1}, order)
}
