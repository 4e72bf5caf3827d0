/*
Copyright 2026 The Quantbench Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package testutil

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// FakeCmd is a fake implementation of the command runner interface. It
// matches commands against the expected sequence and replays the canned
// output or error for each.
type FakeCmd struct {
	mu   sync.Mutex
	runs []run
}

type run struct {
	command string
	output  []byte
	err     error
	hasOut  bool
}

// CmdRun expects one command to be run without capturing its output.
func CmdRun(command string) *FakeCmd {
	return (&FakeCmd{}).AndRun(command)
}

// CmdRunErr expects one command to be run and fails it with err.
func CmdRunErr(command string, err error) *FakeCmd {
	return (&FakeCmd{}).AndRunErr(command, err)
}

// CmdRunOut expects one command to be run and returns output as its stdout.
func CmdRunOut(command string, output string) *FakeCmd {
	return (&FakeCmd{}).AndRunOut(command, output)
}

// CmdRunOutErr expects one command to be run and fails it with err after
// producing output.
func CmdRunOutErr(command string, output string, err error) *FakeCmd {
	return (&FakeCmd{}).AndRunOutErr(command, output, err)
}

func (c *FakeCmd) AndRun(command string) *FakeCmd {
	c.runs = append(c.runs, run{command: command})
	return c
}

func (c *FakeCmd) AndRunErr(command string, err error) *FakeCmd {
	c.runs = append(c.runs, run{command: command, err: err})
	return c
}

func (c *FakeCmd) AndRunOut(command string, output string) *FakeCmd {
	c.runs = append(c.runs, run{command: command, output: []byte(output), hasOut: true})
	return c
}

func (c *FakeCmd) AndRunOutErr(command string, output string, err error) *FakeCmd {
	c.runs = append(c.runs, run{command: command, output: []byte(output), hasOut: true, err: err})
	return c
}

func (c *FakeCmd) popRun() (run, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.runs) == 0 {
		return run{}, fmt.Errorf("no more commands expected")
	}

	r := c.runs[0]
	c.runs = c.runs[1:]
	return r, nil
}

// RunCmdOut implements the command runner interface for tests.
func (c *FakeCmd) RunCmdOut(cmd *exec.Cmd) ([]byte, error) {
	command := strings.Join(cmd.Args, " ")

	r, err := c.popRun()
	if err != nil {
		return nil, fmt.Errorf("unable to run RunCmdOut() with command %q: %w", command, err)
	}

	if r.command != command {
		return nil, fmt.Errorf("expected: %q. Got: %q", r.command, command)
	}

	if !r.hasOut {
		return nil, fmt.Errorf("expected RunCmd(%s) to be called. Got RunCmdOut(%s)", r.command, command)
	}

	return r.output, r.err
}

// RunCmd implements the command runner interface for tests.
func (c *FakeCmd) RunCmd(cmd *exec.Cmd) error {
	command := strings.Join(cmd.Args, " ")

	r, err := c.popRun()
	if err != nil {
		return fmt.Errorf("unable to run RunCmd() with command %q: %w", command, err)
	}

	if r.command != command {
		return fmt.Errorf("expected: %q. Got: %q", r.command, command)
	}

	if r.hasOut {
		return fmt.Errorf("expected RunCmdOut(%s) to be called. Got RunCmd(%s)", r.command, command)
	}

	return r.err
}
